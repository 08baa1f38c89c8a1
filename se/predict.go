package se

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/katalvlaran/mixgamp/denoise"
	"github.com/katalvlaran/mixgamp/linalg"
	"github.com/katalvlaran/mixgamp/prior"
)

// ErrBadSamples indicates a non-positive Monte Carlo sample count.
var ErrBadSamples = errors.New("se: sample count must be positive")

// ErrNotPD indicates an effective-noise covariance that cannot be sampled.
var ErrNotPD = errors.New("se: effective noise covariance is not positive definite")

// PredictedCorrelation estimates, per signal, the normalized squared
// correlation State Evolution predicts for the estimate f_k(S) with
// S = M·β̄ + G, G ~ N(0, M), β̄ drawn from the prior pair:
//
//	ρ_i = E[f_i β̄_i]² / (E[f_i²]·E[β̄_i²]).
//
// Expectations are Monte Carlo averages over samples draws from rng.
// A zero denominator yields 0 for that signal.
//
// Errors: ErrBadSamples, ErrShape, ErrNotPD, and prior validation errors.
func PredictedCorrelation(M mat.Matrix, pair prior.Pair, samples int, rng rand.Source) ([2]float64, error) {
	const op = "PredictedCorrelation"
	var out [2]float64
	if samples <= 0 {
		return out, fmt.Errorf("%s: %w", op, ErrBadSamples)
	}
	if linalg.ValidateShape(M, 2, 2) != nil {
		return out, fmt.Errorf("%s: %w", op, ErrShape)
	}

	betas, err := pair.Sample(rng, samples)
	if err != nil {
		return out, fmt.Errorf("%s: %w", op, err)
	}
	noise, ok := distmv.NewNormal([]float64{0, 0}, linalg.SymLower(M), rng)
	if !ok {
		return out, fmt.Errorf("%s: %w", op, ErrNotPD)
	}
	f, err := denoise.NewSignal(M, M, pair, 0)
	if err != nil {
		return out, fmt.Errorf("%s: %w", op, err)
	}

	var (
		cross, sq [2]float64
		s, est    = make([]float64, 2), make([]float64, 2)
		g         = make([]float64, 2)
		b         []float64
	)
	for k := 0; k < samples; k++ {
		b = betas.RawRowView(k)
		noise.Rand(g)
		s[0] = M.At(0, 0)*b[0] + M.At(0, 1)*b[1] + g[0]
		s[1] = M.At(1, 0)*b[0] + M.At(1, 1)*b[1] + g[1]
		f.Mean(est, s)
		for i := 0; i < 2; i++ {
			cross[i] += est[i] * b[i]
			sq[i] += est[i] * est[i]
		}
	}

	second := [2]float64{pair.First.SecondMoment(), pair.Second.SecondMoment()}
	for i := 0; i < 2; i++ {
		c := cross[i] / float64(samples)
		den := sq[i] / float64(samples) * second[i]
		if den == 0 {
			continue
		}
		out[i] = c * c / den
	}

	return out, nil
}
