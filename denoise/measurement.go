package denoise

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/mixgamp/linalg"
)

// Measurement is the g_k denoiser for one iteration.
// It is immutable after construction; Denoise may run on many rows concurrently.
type Measurement struct {
	p1         float64
	degenerate bool

	gain    *mat.Dense // Σ_xz·pinv(Σ_zz): E[Z | Z_k] = gain·z
	varPinv *mat.Dense // pinv(Σ_xx − gain·Σ_zx)

	hyp [2]hypothesis // [0]: label 1 (coordinate 0 active), [1]: label 0 (coordinate 1 active)
}

// hypothesis holds the precomputed conditional law of (Z_k, Ȳ) under one label.
type hypothesis struct {
	logPrior float64
	gain     *mat.Dense       // 2×3: E[Z | Z_k, Ȳ, label] = gain·(z, y)
	density  *linalg.Gaussian // law of (Z_k, Ȳ) given the label
}

// NewMeasurement prepares g_k from the 4×4 State Evolution covariance sigma,
// the mixture probability p1 and the noise standard deviation noiseSD.
// condFactor feeds the PSD tolerance (≤0 selects linalg.DefaultCondFactor).
//
// A degenerate Σ_k (augmented covariance not PSD, or non-finite entries) is
// not an error: the returned denoiser emits NaN for every row.
//
// Errors: ErrShape if sigma is not 4×4.
func NewMeasurement(sigma mat.Matrix, p1, noiseSD, condFactor float64) (*Measurement, error) {
	if err := linalg.ValidateShape(sigma, 4, 4); err != nil {
		return nil, fmt.Errorf("NewMeasurement: %w: %v", ErrShape, err)
	}
	g := &Measurement{p1: p1}
	if linalg.ValidateFinite(sigma) != nil {
		g.degenerate = true
		return g, nil
	}

	var (
		xx = subMatrix(sigma, 0, 2, 0, 2)
		xz = subMatrix(sigma, 0, 2, 2, 4)
		zx = subMatrix(sigma, 2, 4, 0, 2)
		zz = subMatrix(sigma, 2, 4, 2, 4)
	)

	// Stage 1: Var[Z | Z_k] and the Z_k-only conditional mean gain.
	g.gain = mat.NewDense(2, 2, nil)
	g.gain.Mul(xz, linalg.Pinv(zz))
	var cond mat.Dense
	cond.Mul(g.gain, zx)
	cond.Sub(xx, &cond)
	g.varPinv = linalg.Pinv(&cond)

	// Stage 2: one augmented 3×3 law per label hypothesis.
	noiseVar := noiseSD * noiseSD
	priors := [2]float64{p1, 1 - p1}
	for h, active := range [2]int{0, 1} {
		aug := mat.NewSymDense(3, nil)
		aug.SetSym(0, 0, sigma.At(2, 2))
		aug.SetSym(0, 1, sigma.At(2, 3))
		aug.SetSym(1, 1, sigma.At(3, 3))
		aug.SetSym(0, 2, sigma.At(active, 2))
		aug.SetSym(1, 2, sigma.At(active, 3))
		aug.SetSym(2, 2, sigma.At(active, active)+noiseVar)

		cross := mat.NewDense(2, 3, []float64{
			sigma.At(0, 2), sigma.At(0, 3), sigma.At(active, 0),
			sigma.At(1, 2), sigma.At(1, 3), sigma.At(active, 1),
		})

		density, err := linalg.NewGaussian(aug, condFactor)
		if err != nil {
			if errors.Is(err, linalg.ErrNotPSD) || errors.Is(err, linalg.ErrNaNInf) || errors.Is(err, linalg.ErrEigenFailed) {
				g.degenerate = true
				return g, nil
			}
			return nil, fmt.Errorf("NewMeasurement: %w", err)
		}

		gain := mat.NewDense(2, 3, nil)
		gain.Mul(cross, linalg.Pinv(aug))
		g.hyp[h] = hypothesis{logPrior: math.Log(priors[h]), gain: gain, density: density}
	}

	return g, nil
}

// Degenerate reports whether every output of this denoiser is the NaN sentinel.
func (g *Measurement) Degenerate() bool { return g.degenerate }

// Denoise writes g_k(z, y) into dst (length 2). z has length 2.
// On degeneracy dst is filled with NaN.
func (g *Measurement) Denoise(dst, z []float64, y float64) {
	if g.degenerate {
		dst[0], dst[1] = math.NaN(), math.NaN()
		return
	}
	w := [3]float64{z[0], z[1], y}

	// Stage 3-4: label posteriors from the two augmented likelihoods.
	var logPost [2]float64
	for h := range g.hyp {
		logPost[h] = g.hyp[h].logPrior + g.hyp[h].density.LogDensity(w[:], nil)
	}
	top := math.Max(logPost[0], logPost[1])
	if math.IsInf(top, -1) || math.IsNaN(top) {
		dst[0], dst[1] = math.NaN(), math.NaN()
		return
	}
	e1, e0 := math.Exp(logPost[0]-top), math.Exp(logPost[1]-top)
	post1 := e1 / (e1 + e0)
	post0 := e0 / (e1 + e0)

	// Stage 5: mixture of the hypothesis-conditional means minus E[Z | Z_k].
	var diff [2]float64
	for i := 0; i < 2; i++ {
		var m1, m0 float64
		for j := 0; j < 3; j++ {
			m1 += g.hyp[0].gain.At(i, j) * w[j]
			m0 += g.hyp[1].gain.At(i, j) * w[j]
		}
		diff[i] = post1*m1 + post0*m0 - (g.gain.At(i, 0)*z[0] + g.gain.At(i, 1)*z[1])
	}

	dst[0] = g.varPinv.At(0, 0)*diff[0] + g.varPinv.At(0, 1)*diff[1]
	dst[1] = g.varPinv.At(1, 0)*diff[0] + g.varPinv.At(1, 1)*diff[1]
}

// ApplyRows maps Denoise over the rows of theta (n×2) paired with y (length n)
// and returns the n×2 residual matrix R̂.
//
// Errors: ErrShape on mismatched inputs.
func (g *Measurement) ApplyRows(theta *mat.Dense, y []float64) (*mat.Dense, error) {
	n, c := theta.Dims()
	if c != 2 || len(y) != n {
		return nil, fmt.Errorf("Measurement.ApplyRows: %w", ErrShape)
	}
	out := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		g.Denoise(out.RawRowView(i), theta.RawRowView(i), y[i])
	}

	return out, nil
}

// subMatrix copies rows [r0,r1) × cols [c0,c1) of m.
func subMatrix(m mat.Matrix, r0, r1, c0, c1 int) *mat.Dense {
	out := mat.NewDense(r1-r0, c1-c0, nil)
	for i := r0; i < r1; i++ {
		for j := c0; j < c1; j++ {
			out.Set(i-r0, j-c0, m.At(i, j))
		}
	}

	return out
}
