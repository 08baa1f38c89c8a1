package denoise

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/mixgamp/linalg"
	"github.com/katalvlaran/mixgamp/prior"
)

// Signal is the f_k denoiser for one iteration: the posterior mean of a row
// β ∈ {-1,0,1}² given s = M·β + N(0, T), with its Jacobian in s.
// It is immutable after construction.
type Signal struct {
	degenerate bool
	density    *linalg.Gaussian
	atoms      []signalAtom
	tPinv      *mat.Dense
}

// signalAtom is one prior support point with its shifted mean.
type signalAtom struct {
	beta    [2]float64
	logMass float64
	mean    [2]float64 // M·β
	pull    [2]float64 // pinv(T)·M·β, the constant part of ∇_s log N
}

// NewSignal prepares f_k for the effective channel (M, T) under the prior pair.
// Atoms with zero prior mass are skipped. A T that fails the PSD check yields
// a degenerate denoiser (NaN outputs), not an error.
//
// Errors: ErrShape if M or T is not 2×2.
func NewSignal(M, T mat.Matrix, pair prior.Pair, condFactor float64) (*Signal, error) {
	if err := linalg.ValidateShape(M, 2, 2); err != nil {
		return nil, fmt.Errorf("NewSignal(M): %w: %v", ErrShape, err)
	}
	if err := linalg.ValidateShape(T, 2, 2); err != nil {
		return nil, fmt.Errorf("NewSignal(T): %w: %v", ErrShape, err)
	}
	f := &Signal{}
	if linalg.ValidateFinite(M) != nil || linalg.ValidateFinite(T) != nil {
		f.degenerate = true
		return f, nil
	}

	density, err := linalg.NewGaussian(linalg.SymLower(T), condFactor)
	if err != nil {
		if errors.Is(err, linalg.ErrNotPSD) || errors.Is(err, linalg.ErrEigenFailed) {
			f.degenerate = true
			return f, nil
		}
		return nil, fmt.Errorf("NewSignal: %w", err)
	}
	f.density = density
	f.tPinv = linalg.Pinv(T)

	for _, a := range pair.Support() {
		if a.Mass <= 0 {
			continue
		}
		at := signalAtom{beta: a.Beta, logMass: math.Log(a.Mass)}
		at.mean[0] = M.At(0, 0)*a.Beta[0] + M.At(0, 1)*a.Beta[1]
		at.mean[1] = M.At(1, 0)*a.Beta[0] + M.At(1, 1)*a.Beta[1]
		at.pull[0] = f.tPinv.At(0, 0)*at.mean[0] + f.tPinv.At(0, 1)*at.mean[1]
		at.pull[1] = f.tPinv.At(1, 0)*at.mean[0] + f.tPinv.At(1, 1)*at.mean[1]
		f.atoms = append(f.atoms, at)
	}

	return f, nil
}

// Degenerate reports whether every output of this denoiser is the NaN sentinel.
func (f *Signal) Degenerate() bool { return f.degenerate }

// weights fills w with the unnormalized posterior weights scaled by the
// largest one and returns the log of that scale. It returns -Inf when every
// atom has zero likelihood (or the denoiser is degenerate).
func (f *Signal) weights(w []float64, s []float64) float64 {
	if f.degenerate || len(f.atoms) == 0 {
		return math.Inf(-1)
	}
	for k := range f.atoms {
		at := &f.atoms[k]
		w[k] = at.logMass + f.density.LogDensity(s, at.mean[:])
	}
	top := floats.Max(w[:len(f.atoms)])
	if math.IsInf(top, -1) || math.IsNaN(top) {
		return math.Inf(-1)
	}
	for k := range f.atoms {
		w[k] = math.Exp(w[k] - top)
	}

	return top
}

// LogEvidence returns ln Σ_β P(β)·N(s; Mβ, T), the log of the posterior
// normalizer. It is finite for finite s and a positive-definite T.
func (f *Signal) LogEvidence(s []float64) float64 {
	var w [9]float64
	top := f.weights(w[:], s)
	if math.IsInf(top, -1) {
		return top
	}

	return top + math.Log(floats.Sum(w[:len(f.atoms)]))
}

// Mean writes the posterior mean E[β | s] into dst (length 2).
// dst is NaN-filled when the posterior is undefined.
func (f *Signal) Mean(dst, s []float64) {
	var w [9]float64
	if math.IsInf(f.weights(w[:], s), -1) {
		dst[0], dst[1] = math.NaN(), math.NaN()
		return
	}
	var num [2]float64
	var den float64
	for k := range f.atoms {
		num[0] += w[k] * f.atoms[k].beta[0]
		num[1] += w[k] * f.atoms[k].beta[1]
		den += w[k]
	}
	dst[0], dst[1] = num[0]/den, num[1]/den
}

// JacobianTo writes ∂E[β | s]/∂s into dst (2×2, row i = gradient of the i-th
// posterior-mean coordinate) by the quotient rule over the atom sum:
//
//	J_i = (Σ w β_i g − (Σ w β_i)(Σ w g)/Σ w) / Σ w,   g = pinv(T)(Mβ − s).
//
// dst is NaN-filled when the posterior is undefined.
func (f *Signal) JacobianTo(dst *mat.Dense, s []float64) {
	var w [9]float64
	if math.IsInf(f.weights(w[:], s), -1) {
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				dst.Set(i, j, math.NaN())
			}
		}
		return
	}
	ts0 := f.tPinv.At(0, 0)*s[0] + f.tPinv.At(0, 1)*s[1]
	ts1 := f.tPinv.At(1, 0)*s[0] + f.tPinv.At(1, 1)*s[1]

	var (
		num      [2]float64
		numDeriv [2][2]float64
		den      float64
		denDeriv [2]float64
		g        [2]float64
	)
	for k := range f.atoms {
		at := &f.atoms[k]
		g[0], g[1] = at.pull[0]-ts0, at.pull[1]-ts1
		for i := 0; i < 2; i++ {
			num[i] += w[k] * at.beta[i]
			numDeriv[i][0] += w[k] * at.beta[i] * g[0]
			numDeriv[i][1] += w[k] * at.beta[i] * g[1]
		}
		den += w[k]
		denDeriv[0] += w[k] * g[0]
		denDeriv[1] += w[k] * g[1]
	}

	den2 := den * den
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			dst.Set(i, j, (numDeriv[i][j]*den-num[i]*denDeriv[j])/den2)
		}
	}
}

// MeanRows maps Mean over the rows of S (p×2) and returns B̂ (p×2).
//
// Errors: ErrShape if S does not have two columns.
func (f *Signal) MeanRows(S *mat.Dense) (*mat.Dense, error) {
	p, c := S.Dims()
	if c != 2 {
		return nil, fmt.Errorf("Signal.MeanRows: %w", ErrShape)
	}
	out := mat.NewDense(p, 2, nil)
	for j := 0; j < p; j++ {
		f.Mean(out.RawRowView(j), S.RawRowView(j))
	}

	return out, nil
}

// SumJacobian returns Σ_j J(S_j) / n: the Onsager coefficient F_{k+1} when
// n is the number of measurements.
//
// Errors: ErrShape if S does not have two columns or n ≤ 0.
func (f *Signal) SumJacobian(S *mat.Dense, n int) (*mat.Dense, error) {
	p, c := S.Dims()
	if c != 2 || n <= 0 {
		return nil, fmt.Errorf("Signal.SumJacobian: %w", ErrShape)
	}
	out := mat.NewDense(2, 2, nil)
	jac := mat.NewDense(2, 2, nil)
	for j := 0; j < p; j++ {
		f.JacobianTo(jac, S.RawRowView(j))
		out.Add(out, jac)
	}
	out.Scale(1/float64(n), out)

	return out, nil
}
