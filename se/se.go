// Package se implements the State Evolution bookkeeping of the matrix-GAMP
// iteration: the 4×4 covariance Σ_k of (true latent pair, effective
// observation pair), the Onsager pre-correction C_k, the effective-noise
// covariance M_k and a Monte Carlo prediction of the achievable correlation.
//
// Σ_k block layout:
//
//	[0:2,0:2] covariance of the true latent pair Z = X·β (fixed across k)
//	[0:2,2:4] cross-covariance of Z and the effective observation Z_k
//	[2:4,2:4] covariance of Z_k
//
// All inputs are read-only; every function returns a freshly allocated matrix
// so callers can keep the previous iterate for their history.
package se

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/mixgamp/linalg"
)

// Sentinel errors returned by the se package.
var (
	// ErrShape indicates an input with unexpected dimensions.
	ErrShape = errors.New("se: unexpected input shape")

	// ErrBadDelta indicates a non-positive sampling ratio δ = n/p.
	ErrBadDelta = errors.New("se: delta must be positive")
)

// InitialSigma builds Σ_0 from the first and second moments of the true
// signal rows (signalMean, signalCov) and of the initial estimate rows
// (estMean, estCov), scaled by 1/δ:
//
//	Σ_0[0:2,0:2] = Cov(β̄) + E[β̄]E[β̄]ᵀ
//	Σ_0[0:2,2:4] = E[β̄]E[β̂_0]ᵀ          (signal and initial estimate independent)
//	Σ_0[2:4,2:4] = Cov(β̂_0) + E[β̂_0]E[β̂_0]ᵀ
//
// Errors: ErrBadDelta, ErrShape.
func InitialSigma(delta float64, signalMean []float64, signalCov mat.Matrix, estMean []float64, estCov mat.Matrix) (*mat.Dense, error) {
	const op = "InitialSigma"
	if !(delta > 0) {
		return nil, fmt.Errorf("%s: %w", op, ErrBadDelta)
	}
	if len(signalMean) != 2 || len(estMean) != 2 {
		return nil, fmt.Errorf("%s: means: %w", op, ErrShape)
	}
	if linalg.ValidateShape(signalCov, 2, 2) != nil || linalg.ValidateShape(estCov, 2, 2) != nil {
		return nil, fmt.Errorf("%s: covariances: %w", op, ErrShape)
	}

	sigma := mat.NewDense(4, 4, nil)
	var i, j int
	for i = 0; i < 2; i++ {
		for j = 0; j < 2; j++ {
			sigma.Set(i, j, signalCov.At(i, j)+signalMean[i]*signalMean[j])
			sigma.Set(2+i, 2+j, estCov.At(i, j)+estMean[i]*estMean[j])
			sigma.Set(i, 2+j, signalMean[i]*estMean[j])
			sigma.Set(2+j, i, signalMean[i]*estMean[j])
		}
	}
	sigma.Scale(1/delta, sigma)

	return sigma, nil
}

// ComputeC returns C_k, the Onsager pre-correction used in
//
//	B_{k+1} = Xᵀ·R̂_k − B̂_k·C_kᵀ,
//
// computed as (pinv(Σ_zz)·(Θᵀ R̂/n − Σ_zx·R̂ᵀR̂/n))ᵀ. theta and rHat are n×2.
//
// Errors: ErrShape.
func ComputeC(theta, rHat *mat.Dense, sigma mat.Matrix) (*mat.Dense, error) {
	const op = "ComputeC"
	n, c := theta.Dims()
	if rn, rc := rHat.Dims(); c != 2 || rc != 2 || rn != n {
		return nil, fmt.Errorf("%s: %w", op, ErrShape)
	}
	if linalg.ValidateShape(sigma, 4, 4) != nil {
		return nil, fmt.Errorf("%s: sigma: %w", op, ErrShape)
	}
	inv := 1 / float64(n)

	var part1, rr, part2 mat.Dense
	part1.Mul(theta.T(), rHat)
	part1.Scale(inv, &part1)
	rr.Mul(rHat.T(), rHat)
	rr.Scale(inv, &rr)
	part2.Mul(block(sigma, 2, 0), &rr)
	part1.Sub(&part1, &part2)

	var out mat.Dense
	out.Mul(linalg.Pinv(block(sigma, 2, 2)), &part1)

	return mat.DenseCopyOf(out.T()), nil
}

// NoiseCov returns M_{k+1} = R̂ᵀR̂ / n, the sample second moment of the
// residual rows. It is the effective-channel matrix of the signal denoiser.
func NoiseCov(rHat *mat.Dense) *mat.Dense {
	return linalg.SecondMoment(rHat)
}

// NextSigma returns Σ_{k+1}: the top-left block is carried over from prev and
// the estimate second moment B̂ᵀB̂/(p·δ) fills the three remaining blocks.
//
// Errors: ErrBadDelta, ErrShape.
func NextSigma(prev mat.Matrix, bHat *mat.Dense, delta float64) (*mat.Dense, error) {
	const op = "NextSigma"
	if !(delta > 0) {
		return nil, fmt.Errorf("%s: %w", op, ErrBadDelta)
	}
	if linalg.ValidateShape(prev, 4, 4) != nil {
		return nil, fmt.Errorf("%s: sigma: %w", op, ErrShape)
	}
	if _, c := bHat.Dims(); c != 2 {
		return nil, fmt.Errorf("%s: estimate: %w", op, ErrShape)
	}

	est := linalg.SecondMoment(bHat)
	est.Scale(1/delta, est)

	next := mat.NewDense(4, 4, nil)
	var i, j int
	for i = 0; i < 2; i++ {
		for j = 0; j < 2; j++ {
			next.Set(i, j, prev.At(i, j))
			next.Set(i, 2+j, est.At(i, j))
			next.Set(2+i, j, est.At(i, j))
			next.Set(2+i, 2+j, est.At(i, j))
		}
	}

	return next, nil
}

// block copies the 2×2 block of a 4×4 matrix starting at (r0, c0).
func block(m mat.Matrix, r0, c0 int) *mat.Dense {
	out := mat.NewDense(2, 2, nil)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			out.Set(i, j, m.At(r0+i, c0+j))
		}
	}

	return out
}
