package metrics_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/mixgamp/metrics"
)

func TestNormSqCorr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		u, v []float64
		want float64
	}{
		{"self", []float64{1, -2, 3}, []float64{1, -2, 3}, 1},
		{"scaled and negated", []float64{1, -2, 3}, []float64{-2, 4, -6}, 1},
		{"zero vector", []float64{1, 2}, []float64{0, 0}, 0},
		{"both zero", []float64{0, 0}, []float64{0, 0}, 0},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"half", []float64{1, 0}, []float64{1, 1}, 0.5},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := metrics.NormSqCorr(tc.u, tc.v)
			assert.False(t, math.IsNaN(got))
			assert.InDelta(t, tc.want, got, 1e-15)
		})
	}
}

func TestColumnCorrelations(t *testing.T) {
	t.Parallel()

	B := mat.NewDense(3, 2, []float64{1, 0, 0, 1, -1, 1})
	BHat := mat.NewDense(3, 2, []float64{2, 0, 0, 0, -2, 0})

	got := metrics.ColumnCorrelations(B, BHat)
	assert.InDelta(t, 1.0, got[0], 1e-15)
	assert.Equal(t, 0.0, got[1])
	assert.Equal(t, 0.0, metrics.MinCorrelation(B, BHat))
	assert.InDelta(t, 1.0, metrics.MinCorrelation(B, B), 1e-15)
}

func TestMSE(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 2.5, metrics.MSE([]float64{1, 2}, []float64{0, 4}), 1e-15)
	assert.Equal(t, 0.0, metrics.MSE(nil, nil))
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	s := metrics.Summarize([]float64{1, 3})
	assert.InDelta(t, 2.0, s.Mean, 1e-15)
	assert.InDelta(t, 1.0, s.SD, 1e-15)
	assert.Equal(t, metrics.Summary{}, metrics.Summarize(nil))
}

func TestSuccessSD(t *testing.T) {
	t.Parallel()

	// the zero run is excluded from both the sum and the count
	assert.InDelta(t, 1.0, metrics.SuccessSD([]float64{0, 1, 3}, 2), 1e-15)
	assert.Equal(t, 0.0, metrics.SuccessSD([]float64{0, 0}, 1))
}
