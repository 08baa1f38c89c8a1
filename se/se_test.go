package se_test

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/mixgamp/linalg"
	"github.com/katalvlaran/mixgamp/prior"
	"github.com/katalvlaran/mixgamp/se"
)

func TestInitialSigma(t *testing.T) {
	t.Parallel()

	pair := prior.NewPair([2]float64{0.1, 0.2}, 0.5)
	sigma, err := se.InitialSigma(4, pair.Mean(), pair.Cov(), pair.Mean(), pair.Cov())
	require.NoError(t, err)

	m := pair.Mean()
	// diagonal blocks hold the raw second moment ε_i, scaled by 1/δ
	assert.InDelta(t, 0.1/4, sigma.At(0, 0), 1e-15)
	assert.InDelta(t, 0.2/4, sigma.At(1, 1), 1e-15)
	assert.InDelta(t, 0.1/4, sigma.At(2, 2), 1e-15)
	assert.InDelta(t, m[0]*m[1]/4, sigma.At(0, 1), 1e-15)
	// cross blocks are products of means
	assert.InDelta(t, m[0]*m[1]/4, sigma.At(0, 3), 1e-15)
	assert.InDelta(t, m[1]*m[0]/4, sigma.At(1, 2), 1e-15)
	require.NoError(t, linalg.ValidateSymmetric(sigma, 1e-15))

	ok, err := linalg.IsPositiveSemidefinite(linalg.SymLower(sigma), 0)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInitialSigma_Errors(t *testing.T) {
	t.Parallel()

	cov := mat.NewDense(2, 2, nil)
	_, err := se.InitialSigma(0, []float64{0, 0}, cov, []float64{0, 0}, cov)
	require.True(t, errors.Is(err, se.ErrBadDelta))
	_, err = se.InitialSigma(1, []float64{0}, cov, []float64{0, 0}, cov)
	require.True(t, errors.Is(err, se.ErrShape))
	_, err = se.InitialSigma(1, []float64{0, 0}, mat.NewDense(3, 3, nil), []float64{0, 0}, cov)
	require.True(t, errors.Is(err, se.ErrShape))
}

func TestComputeC(t *testing.T) {
	t.Parallel()

	theta := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	rHat := mat.NewDense(2, 2, []float64{2, 0, 0, 2})
	sigma := mat.NewDense(4, 4, nil)
	// Σ_zz = I, Σ_zx = 0 ⇒ C = (Θᵀ R̂ / n)ᵀ = I
	sigma.Set(2, 2, 1)
	sigma.Set(3, 3, 1)

	C, err := se.ComputeC(theta, rHat, sigma)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(mat.NewDense(2, 2, []float64{1, 0, 0, 1}), C, 1e-12))

	// Σ_zx = 0.5·I subtracts 0.5·(R̂ᵀR̂/n) = I, leaving C = 0
	sigma.Set(2, 0, 0.5)
	sigma.Set(3, 1, 0.5)
	C, err = se.ComputeC(theta, rHat, sigma)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(mat.NewDense(2, 2, nil), C, 1e-12))

	_, err = se.ComputeC(theta, mat.NewDense(3, 2, nil), sigma)
	require.True(t, errors.Is(err, se.ErrShape))
}

func TestComputeC_Transposed(t *testing.T) {
	t.Parallel()

	theta := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	rHat := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	sigma := mat.NewDense(4, 4, nil)
	sigma.Set(2, 2, 1)
	sigma.Set(3, 3, 1)

	// Θᵀ R̂ / 2 = [[1,3],[2,4]]/2 ; C is its transpose.
	C, err := se.ComputeC(theta, rHat, sigma)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(mat.NewDense(2, 2, []float64{0.5, 1, 1.5, 2}), C, 1e-12))
}

func TestNoiseCov(t *testing.T) {
	t.Parallel()

	r := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	got := se.NoiseCov(r)
	assert.True(t, mat.EqualApprox(mat.NewDense(2, 2, []float64{5, 7, 7, 10}), got, 1e-12))
}

func TestNextSigma(t *testing.T) {
	t.Parallel()

	prev := mat.NewDense(4, 4, nil)
	prev.Set(0, 0, 0.7)
	prev.Set(1, 1, 0.9)
	prev.Set(0, 1, 0.1)
	prev.Set(1, 0, 0.1)
	bHat := mat.NewDense(2, 2, []float64{1, 0, 1, 2})

	next, err := se.NextSigma(prev, bHat, 2)
	require.NoError(t, err)

	// B̂ᵀB̂/p = [[1,1],[1,2]] ; /δ = [[0.5,0.5],[0.5,1]]
	want := mat.NewDense(4, 4, []float64{
		0.7, 0.1, 0.5, 0.5,
		0.1, 0.9, 0.5, 1,
		0.5, 0.5, 0.5, 0.5,
		0.5, 1, 0.5, 1,
	})
	assert.True(t, mat.EqualApprox(want, next, 1e-12))
	// prev must not be aliased
	assert.Equal(t, 0.0, prev.At(2, 2))

	_, err = se.NextSigma(prev, bHat, -1)
	require.True(t, errors.Is(err, se.ErrBadDelta))
}

func TestPredictedCorrelation(t *testing.T) {
	t.Parallel()

	pair := prior.NewPair([2]float64{0.2, 0.2}, 0)

	weak, err := se.PredictedCorrelation(mat.NewDense(2, 2, []float64{0.5, 0, 0, 0.5}), pair, 4000, rand.NewPCG(3, 4))
	require.NoError(t, err)
	strong, err := se.PredictedCorrelation(mat.NewDense(2, 2, []float64{50, 0, 0, 50}), pair, 4000, rand.NewPCG(3, 4))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		assert.GreaterOrEqual(t, weak[i], 0.0)
		assert.LessOrEqual(t, weak[i], 1.0)
		assert.Greater(t, strong[i], 0.99)
		assert.Greater(t, strong[i], weak[i])
	}

	_, err = se.PredictedCorrelation(mat.NewDense(2, 2, nil), pair, 0, rand.NewPCG(1, 1))
	require.True(t, errors.Is(err, se.ErrBadSamples))
	_, err = se.PredictedCorrelation(mat.NewDense(2, 2, []float64{1, 0, 0, -1}), pair, 10, rand.NewPCG(1, 1))
	require.True(t, errors.Is(err, se.ErrNotPD))
}
