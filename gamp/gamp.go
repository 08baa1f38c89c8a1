// SPDX-License-Identifier: MIT

package gamp

import (
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/mixgamp/denoise"
	"github.com/katalvlaran/mixgamp/linalg"
	"github.com/katalvlaran/mixgamp/metrics"
	"github.com/katalvlaran/mixgamp/se"
)

// Divergence causes reported in Result.Cause.
const (
	causeMeasurement = "measurement"
	causeSignal      = "signal"
	causeSE          = "state-evolution"
)

// Run executes matrix-GAMP on prob until the correlation stalls, a NaN
// sentinel appears or the iteration budget is exhausted.
//
// Terminal statuses are outcomes, not errors: a DIVERGED run still returns
// the committed history with a nil error.
//
// Errors: ErrBadProblem, option errors, prior errors and se errors raised
// while building Σ_0.
//
// Complexity: O(K·n·p) per run for K iterations.
func Run(prob Problem, opts ...Option) (Result, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := validateOptions(o); err != nil {
		return Result{}, fmt.Errorf("Run: %w", err)
	}
	n, p, err := validateProblem(prob)
	if err != nil {
		return Result{}, fmt.Errorf("Run: %w", err)
	}
	delta := float64(n) / float64(p)
	log := o.Logger

	// Stage 1: Σ_0 and the initial iterates F_0 = I, R̂_{-1} = 0.
	sigma := o.Sigma0
	if sigma == nil {
		sigma, err = se.InitialSigma(delta, prob.SignalMean, prob.SignalCov, prob.EstMean, prob.EstCov)
		if err != nil {
			return Result{}, fmt.Errorf("Run: %w", err)
		}
	} else if linalg.ValidateShape(sigma, 4, 4) != nil {
		return Result{}, fmt.Errorf("Run: Sigma0: %w", ErrBadProblem)
	}

	var (
		bHat  = mat.DenseCopyOf(prob.BHat0)
		F     = mat.NewDense(2, 2, []float64{1, 0, 0, 1})
		rPrev = mat.NewDense(n, 2, nil)
		res   = Result{
			Status:             StatusInitialized,
			Estimates:          []*mat.Dense{bHat},
			InitialCorrelation: metrics.MinCorrelation(prob.B, bHat),
			Sigma:              mat.DenseCopyOf(sigma),
		}
		prevCorr float64
	)
	log.Debug("gamp initialized",
		zap.Int("n", n), zap.Int("p", p), zap.Float64("delta", delta),
		zap.Float64s("sigma0", mat.DenseCopyOf(sigma).RawMatrix().Data),
		zap.Float64("initial_min_corr", res.InitialCorrelation))

	// Stage 2: iterate.
	res.Status = StatusIterating
	for k := 0; k < o.MaxIter; k++ {
		// Θ_k = X·B̂_k − R̂_{k-1}·F_kᵀ
		theta := mat.NewDense(n, 2, nil)
		theta.Mul(prob.X, bHat)
		var onsager mat.Dense
		onsager.Mul(rPrev, F.T())
		theta.Sub(theta, &onsager)

		g, err := denoise.NewMeasurement(sigma, o.P1, o.NoiseSD, o.CondFactor)
		if err != nil {
			return res, fmt.Errorf("Run: iteration %d: %w", k+1, err)
		}
		rHat, err := g.ApplyRows(theta, prob.Y)
		if err != nil {
			return res, fmt.Errorf("Run: iteration %d: %w", k+1, err)
		}
		if linalg.HasNaN(rHat) {
			return diverged(log, res, k+1, causeMeasurement), nil
		}

		C, err := se.ComputeC(theta, rHat, sigma)
		if err != nil {
			return res, fmt.Errorf("Run: iteration %d: %w", k+1, err)
		}

		// B_{k+1} = Xᵀ·R̂_k − B̂_k·C_kᵀ
		bEff := mat.NewDense(p, 2, nil)
		bEff.Mul(prob.X.T(), rHat)
		var corr mat.Dense
		corr.Mul(bHat, C.T())
		bEff.Sub(bEff, &corr)

		M := se.NoiseCov(rHat)
		f, err := denoise.NewSignal(M, M, o.Prior, o.CondFactor)
		if err != nil {
			return res, fmt.Errorf("Run: iteration %d: %w", k+1, err)
		}
		bNext, err := f.MeanRows(bEff)
		if err != nil {
			return res, fmt.Errorf("Run: iteration %d: %w", k+1, err)
		}
		if linalg.HasNaN(bNext) {
			return diverged(log, res, k+1, causeSignal), nil
		}
		FNext, err := f.SumJacobian(bEff, n)
		if err != nil {
			return res, fmt.Errorf("Run: iteration %d: %w", k+1, err)
		}

		sigmaNext, err := se.NextSigma(sigma, bNext, delta)
		if err != nil {
			return res, fmt.Errorf("Run: iteration %d: %w", k+1, err)
		}
		if linalg.HasNaN(sigmaNext) {
			return diverged(log, res, k+1, causeSE), nil
		}

		// Stage 3: stopping rule on the ground-truth correlation.
		minCorr := metrics.MinCorrelation(prob.B, bNext)
		log.Debug("gamp iteration",
			zap.Int("iter", k+1),
			zap.Float64("min_corr", minCorr),
			zap.Float64s("M", M.RawMatrix().Data),
			zap.Float64s("F", FNext.RawMatrix().Data))
		if prevCorr >= minCorr {
			res.Status = StatusConverged
			log.Info("gamp converged",
				zap.Int("iterations", res.Iterations),
				zap.Float64("min_corr", prevCorr))
			return res, nil
		}
		prevCorr = minCorr

		// Stage 4: commit.
		res.Estimates = append(res.Estimates, bNext)
		res.NoiseCovs = append(res.NoiseCovs, M)
		res.Correlations = append(res.Correlations, minCorr)
		res.Sigma = sigmaNext
		res.Iterations++
		bHat, F, rPrev, sigma = bNext, FNext, rHat, sigmaNext
	}

	res.Status = StatusMaxIterReached
	log.Info("gamp iteration budget exhausted",
		zap.Int("iterations", res.Iterations),
		zap.Float64("min_corr", prevCorr))

	return res, nil
}

// diverged finalizes res as DIVERGED at iteration iter.
func diverged(log *zap.Logger, res Result, iter int, cause string) Result {
	res.Status = StatusDiverged
	res.Cause = cause
	log.Warn("gamp diverged", zap.Int("iter", iter), zap.String("cause", cause))

	return res
}

// validateProblem checks presence and shapes of the problem data and returns (n, p).
func validateProblem(prob Problem) (int, int, error) {
	if linalg.ValidateNotNil(prob.X) != nil ||
		linalg.ValidateNotNil(prob.B) != nil ||
		linalg.ValidateNotNil(prob.BHat0) != nil {
		return 0, 0, ErrBadProblem
	}
	n, p := prob.X.Dims()
	if n == 0 || p == 0 || len(prob.Y) != n {
		return 0, 0, ErrBadProblem
	}
	if linalg.ValidateShape(prob.B, p, 2) != nil || linalg.ValidateShape(prob.BHat0, p, 2) != nil {
		return 0, 0, ErrBadProblem
	}

	return n, p, nil
}
