// Package prior defines the three-point sparse prior used by the signal-side
// denoiser and by the instance generator.
//
// Each coordinate of a signal takes values in {-1, 0, +1} with
//
//	P(+1) = (ε/2)(1+α),  P(-1) = (ε/2)(1-α),  P(0) = 1-ε.
//
// A Pair holds one such prior per signal; the two coordinates of a row are
// independent, so the joint prior is a 9-point distribution.
package prior

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Sentinel errors returned by the prior package.
var (
	// ErrBadSparsity indicates ε outside [0, 1].
	ErrBadSparsity = errors.New("prior: sparsity must be in [0, 1]")

	// ErrBadBias indicates α outside [-1, 1].
	ErrBadBias = errors.New("prior: bias must be in [-1, 1]")

	// ErrBadSize indicates a non-positive sample size.
	ErrBadSize = errors.New("prior: sample size must be positive")
)

// Values lists the support of a single coordinate in enumeration order.
var Values = [3]float64{-1, 0, 1}

// ThreePoint is the per-coordinate prior with sparsity Eps and sign bias Alpha.
type ThreePoint struct {
	Eps   float64 // probability of a non-zero coordinate
	Alpha float64 // sign bias: P(+1) - P(-1) = Eps*Alpha
}

// Validate checks 0 ≤ Eps ≤ 1 and -1 ≤ Alpha ≤ 1.
func (t ThreePoint) Validate() error {
	if !(t.Eps >= 0 && t.Eps <= 1) {
		return fmt.Errorf("ThreePoint(eps=%g): %w", t.Eps, ErrBadSparsity)
	}
	if !(t.Alpha >= -1 && t.Alpha <= 1) {
		return fmt.Errorf("ThreePoint(alpha=%g): %w", t.Alpha, ErrBadBias)
	}

	return nil
}

// PMF returns the prior mass at beta; any value outside {-1,0,1} has mass 0.
func (t ThreePoint) PMF(beta float64) float64 {
	switch beta {
	case 1:
		return (t.Eps / 2) * (1 + t.Alpha)
	case -1:
		return (t.Eps / 2) * (1 - t.Alpha)
	case 0:
		return 1 - t.Eps
	default:
		return 0
	}
}

// Mean returns E[β] = ε·α.
func (t ThreePoint) Mean() float64 { return t.Eps * t.Alpha }

// SecondMoment returns E[β²] = ε.
func (t ThreePoint) SecondMoment() float64 { return t.Eps }

// Variance returns ε − (εα)².
func (t ThreePoint) Variance() float64 {
	m := t.Mean()
	return t.Eps - m*m
}

// weights returns the PMF over Values, in order.
func (t ThreePoint) weights() []float64 {
	return []float64{t.PMF(-1), t.PMF(0), t.PMF(1)}
}

// Pair is the joint prior of one row (β1, β2) of the signal matrix.
type Pair struct {
	First  ThreePoint
	Second ThreePoint
}

// NewPair builds a Pair from a sparsity vector and a shared bias, the way the
// model is parameterized: eps = [ε1, ε2], alpha shared by both signals.
func NewPair(eps [2]float64, alpha float64) Pair {
	return Pair{
		First:  ThreePoint{Eps: eps[0], Alpha: alpha},
		Second: ThreePoint{Eps: eps[1], Alpha: alpha},
	}
}

// Validate checks both marginals.
func (p Pair) Validate() error {
	if err := p.First.Validate(); err != nil {
		return fmt.Errorf("Pair.First: %w", err)
	}
	if err := p.Second.Validate(); err != nil {
		return fmt.Errorf("Pair.Second: %w", err)
	}

	return nil
}

// Atom is one support point of the 9-point joint prior.
type Atom struct {
	Beta [2]float64 // (β1, β2)
	Mass float64    // P(β1)·P(β2)
}

// Support enumerates the 9 atoms in (β1 outer, β2 inner) order over Values.
// Atoms with zero mass are kept so callers see a fixed layout.
func (p Pair) Support() [9]Atom {
	var (
		out  [9]Atom
		k    int
		b1   float64
		b2   float64
		i, j int
	)
	for i = range Values {
		b1 = Values[i]
		for j = range Values {
			b2 = Values[j]
			out[k] = Atom{Beta: [2]float64{b1, b2}, Mass: p.First.PMF(b1) * p.Second.PMF(b2)}
			k++
		}
	}

	return out
}

// Mean returns (E[β1], E[β2]).
func (p Pair) Mean() []float64 {
	return []float64{p.First.Mean(), p.Second.Mean()}
}

// Cov returns the 2×2 covariance of a row; diagonal because the coordinates
// are independent.
func (p Pair) Cov() *mat.SymDense {
	return mat.NewSymDense(2, []float64{p.First.Variance(), 0, 0, p.Second.Variance()})
}

// Sample draws a rows×2 matrix whose rows are iid from the pair.
// rng must not be shared across goroutines.
func (p Pair) Sample(rng rand.Source, rows int) (*mat.Dense, error) {
	if rows <= 0 {
		return nil, ErrBadSize
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	out := mat.NewDense(rows, 2, nil)
	for j, t := range [2]ThreePoint{p.First, p.Second} {
		cat := distuv.NewCategorical(t.weights(), rng)
		for i := 0; i < rows; i++ {
			out.Set(i, j, Values[int(cat.Rand())])
		}
	}

	return out, nil
}
