// Package metrics provides the accuracy measures used both as the GAMP
// stopping criterion and as the reported quality of every estimator.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// NormSqCorr returns the normalized squared correlation
//
//	(u·v)² / (‖u‖²‖v‖²)
//
// and 0 when u·v is exactly 0, which also covers an all-zero u or v.
// Panics if the lengths differ.
func NormSqCorr(u, v []float64) float64 {
	dot := floats.Dot(u, v)
	if dot == 0 {
		return 0
	}
	nu := floats.Dot(u, u)
	nv := floats.Dot(v, v)

	return dot * dot / (nu * nv)
}

// MSE returns the mean squared difference of u and v.
func MSE(u, v []float64) float64 {
	if len(u) == 0 {
		return 0
	}
	d := make([]float64, len(u))
	floats.SubTo(d, u, v)

	return floats.Dot(d, d) / float64(len(u))
}

// ColumnCorrelations returns NormSqCorr of each of the two columns of the
// ground truth B against the matching column of the estimate BHat.
func ColumnCorrelations(B, BHat mat.Matrix) [2]float64 {
	r, _ := B.Dims()
	b, e := make([]float64, r), make([]float64, r)
	var out [2]float64
	for j := 0; j < 2; j++ {
		mat.Col(b, j, B)
		mat.Col(e, j, BHat)
		out[j] = NormSqCorr(b, e)
	}

	return out
}

// MinCorrelation is min over the two signals of ColumnCorrelations.
func MinCorrelation(B, BHat mat.Matrix) float64 {
	c := ColumnCorrelations(B, BHat)
	return math.Min(c[0], c[1])
}

// Summary holds the mean and population standard deviation of a sample.
type Summary struct {
	Mean float64 `json:"mean"`
	SD   float64 `json:"sd"`
}

// Summarize returns the mean and the population (1/N) standard deviation.
// An empty sample yields the zero Summary.
func Summarize(x []float64) Summary {
	if len(x) == 0 {
		return Summary{}
	}
	mean, sd := stat.PopMeanStdDev(x, nil)

	return Summary{Mean: mean, SD: sd}
}

// SuccessSD returns the standard deviation of the strictly positive entries
// of x around the given mean, normalized by their count: runs that produced
// no estimate (correlation 0) do not count. Zero successes yield 0.
func SuccessSD(x []float64, mean float64) float64 {
	var (
		acc float64
		n   int
	)
	for _, v := range x {
		if v > 0 {
			acc += (v - mean) * (v - mean)
			n++
		}
	}
	if n == 0 {
		return 0
	}

	return math.Sqrt(acc / float64(n))
}
