// SPDX-License-Identifier: MIT
// Package linalg_test contains unit tests for the numeric primitives.
package linalg_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/mixgamp/linalg"
)

const tol = 1e-10

// TestIsPositiveSemidefinite checks the min-eigenvalue rule against the
// cond × ε × max|λ| tolerance.
func TestIsPositiveSemidefinite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []float64
		want bool
	}{
		{"identity", []float64{1, 0, 0, 1}, true},
		{"zero", []float64{0, 0, 0, 0}, true},
		{"rank one", []float64{1, 1, 1, 1}, true},
		{"indefinite", []float64{1, 0, 0, -1}, false},
		{"negative inside tolerance", []float64{1, 0, 0, -1e-12}, true},
		{"negative outside tolerance", []float64{1, 0, 0, -1e-8}, false},
		{"correlated", []float64{2, 1.9, 1.9, 2}, true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := linalg.IsPositiveSemidefinite(mat.NewSymDense(2, tc.data), 0)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestIsPositiveSemidefinite_Errors(t *testing.T) {
	t.Parallel()

	_, err := linalg.IsPositiveSemidefinite(nil, 0)
	require.True(t, errors.Is(err, linalg.ErrNilMatrix))

	_, err = linalg.IsPositiveSemidefinite(mat.NewSymDense(2, []float64{math.NaN(), 0, 0, 1}), 0)
	require.True(t, errors.Is(err, linalg.ErrNaNInf))
}

func TestEigTolerance(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, linalg.EigTolerance(nil, 0))
	got := linalg.EigTolerance([]float64{-3, 1, 2}, 0)
	assert.InDelta(t, 1e6*0x1p-52*3, got, 1e-24)
	assert.InDelta(t, 10*0x1p-52*2, linalg.EigTolerance([]float64{2}, 10), 1e-24)
}

func TestPinv(t *testing.T) {
	t.Parallel()

	t.Run("invertible equals inverse", func(t *testing.T) {
		a := mat.NewDense(2, 2, []float64{4, 7, 2, 6})
		var want mat.Dense
		require.NoError(t, want.Inverse(a))
		got := linalg.Pinv(a)
		assert.True(t, mat.EqualApprox(&want, got, tol))
	})

	t.Run("zero maps to zero", func(t *testing.T) {
		got := linalg.Pinv(mat.NewDense(2, 2, nil))
		assert.True(t, mat.Equal(mat.NewDense(2, 2, nil), got))
	})

	t.Run("singular diagonal", func(t *testing.T) {
		got := linalg.Pinv(mat.NewDense(2, 2, []float64{2, 0, 0, 0}))
		assert.True(t, mat.EqualApprox(mat.NewDense(2, 2, []float64{0.5, 0, 0, 0}), got, tol))
	})

	t.Run("rectangular Penrose identity", func(t *testing.T) {
		a := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
		p := linalg.Pinv(a)
		r, c := p.Dims()
		require.Equal(t, 2, r)
		require.Equal(t, 3, c)
		var apa, ap mat.Dense
		ap.Mul(a, p)
		apa.Mul(&ap, a)
		assert.True(t, mat.EqualApprox(a, &apa, 1e-9))
	})

	t.Run("NaN propagates", func(t *testing.T) {
		got := linalg.Pinv(mat.NewDense(2, 2, []float64{math.NaN(), 0, 0, 1}))
		assert.True(t, linalg.HasNaN(got))
	})
}

func TestPinvSolve(t *testing.T) {
	t.Parallel()

	a := mat.NewDense(2, 2, []float64{2, 0, 0, 4})
	b := mat.NewDense(2, 1, []float64{2, 2})
	got := linalg.PinvSolve(a, b)
	assert.InDelta(t, 1.0, got.At(0, 0), tol)
	assert.InDelta(t, 0.5, got.At(1, 0), tol)
}

func TestGaussian_FullRank(t *testing.T) {
	t.Parallel()

	g, err := linalg.NewGaussian(mat.NewSymDense(2, []float64{2, 0, 0, 3}), 0)
	require.NoError(t, err)
	require.Equal(t, 2, g.Rank())
	require.Equal(t, 2, g.Dim())

	x := []float64{1, 1}
	want := -0.5 * (2*math.Log(2*math.Pi) + math.Log(6) + 1.0/2 + 1.0/3)
	assert.InDelta(t, want, g.LogDensity(x, nil), tol)

	// shifting both x and the mean leaves the density unchanged
	assert.InDelta(t, want, g.LogDensity([]float64{2, -1}, []float64{1, -2}), tol)
	assert.InDelta(t, math.Exp(want), g.Density(x, nil), tol)
}

func TestGaussian_Singular(t *testing.T) {
	t.Parallel()

	g, err := linalg.NewGaussian(mat.NewSymDense(2, []float64{1, 0, 0, 0}), 0)
	require.NoError(t, err)
	require.Equal(t, 1, g.Rank())

	want := -0.5 * (math.Log(2*math.Pi) + 0.25)
	assert.InDelta(t, want, g.LogDensity([]float64{0.5, 0}, nil), tol)
	assert.True(t, math.IsInf(g.LogDensity([]float64{0.5, 0.1}, nil), -1))
	assert.Equal(t, 0.0, g.Density([]float64{0.5, 0.1}, nil))
}

func TestGaussian_NotPSD(t *testing.T) {
	t.Parallel()

	_, err := linalg.NewGaussian(mat.NewSymDense(2, []float64{1, 0, 0, -1}), 0)
	require.True(t, errors.Is(err, linalg.ErrNotPSD))
}

func TestRowMoments(t *testing.T) {
	t.Parallel()

	X := mat.NewDense(4, 2, []float64{
		1, 0,
		-1, 0,
		1, 2,
		-1, 2,
	})
	means, cov, err := linalg.RowMoments(X)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 1}, means, tol)
	assert.InDelta(t, 1.0, cov.At(0, 0), tol)
	assert.InDelta(t, 1.0, cov.At(1, 1), tol)
	assert.InDelta(t, 0.0, cov.At(0, 1), tol)

	_, _, err = linalg.RowMoments(nil)
	require.True(t, errors.Is(err, linalg.ErrNilMatrix))
}

func TestSecondMoment(t *testing.T) {
	t.Parallel()

	X := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	got := linalg.SecondMoment(X)
	assert.True(t, mat.EqualApprox(mat.NewDense(2, 2, []float64{5, 7, 7, 10}), got, tol))
}

func TestValidators(t *testing.T) {
	t.Parallel()

	var nilDense *mat.Dense
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil interface", linalg.ValidateNotNil(nil), linalg.ErrNilMatrix},
		{"typed nil", linalg.ValidateNotNil(nilDense), linalg.ErrNilMatrix},
		{"shape ok", linalg.ValidateShape(mat.NewDense(2, 3, nil), 2, 3), nil},
		{"shape mismatch", linalg.ValidateShape(mat.NewDense(2, 3, nil), 3, 2), linalg.ErrDimensionMismatch},
		{"square", linalg.ValidateSquare(mat.NewDense(2, 2, nil)), nil},
		{"non-square", linalg.ValidateSquare(mat.NewDense(2, 3, nil)), linalg.ErrDimensionMismatch},
		{"symmetric", linalg.ValidateSymmetric(mat.NewDense(2, 2, []float64{1, 2, 2, 1}), 0), nil},
		{"asymmetric", linalg.ValidateSymmetric(mat.NewDense(2, 2, []float64{1, 2, 3, 1}), 1e-9), linalg.ErrAsymmetry},
		{"bad tol", linalg.ValidateSymmetric(mat.NewDense(1, 1, nil), math.NaN()), linalg.ErrNaNInf},
		{"finite", linalg.ValidateFinite(mat.NewDense(1, 2, []float64{1, 2})), nil},
		{"inf", linalg.ValidateFinite(mat.NewDense(1, 2, []float64{1, math.Inf(1)})), linalg.ErrNaNInf},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if tc.want == nil {
				require.NoError(t, tc.err)
				return
			}
			require.Error(t, tc.err)
			require.Truef(t, errors.Is(tc.err, tc.want), "expected errors.Is(%v, %v)", tc.err, tc.want)
		})
	}
}

func TestSymLower(t *testing.T) {
	t.Parallel()

	s := linalg.SymLower(mat.NewDense(2, 2, []float64{1, 99, 2, 3}))
	assert.Equal(t, 2.0, s.At(0, 1))
	assert.Equal(t, 2.0, s.At(1, 0))
	assert.Panics(t, func() { linalg.SymLower(mat.NewDense(2, 3, nil)) })
}
