// SPDX-License-Identifier: MIT

package linalg

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// RowMoments returns the per-column mean and the population covariance of
// the rows of X (r×c, r ≥ 1): each row is treated as one draw of a c-vector.
//
// The population normalizer 1/r matches the second-moment bookkeeping of
// the State Evolution, which works with E[x xᵀ] − E[x]E[x]ᵀ.
//
// Errors: ErrNilMatrix, ErrDimensionMismatch (r == 0).
// Complexity: O(r*c²).
func RowMoments(X mat.Matrix) ([]float64, *mat.SymDense, error) {
	const op = "RowMoments"
	if err := ValidateNotNil(X); err != nil {
		return nil, nil, opErrorf(op, err)
	}
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, nil, opErrorf(op, ErrDimensionMismatch)
	}

	means := make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		means[j] = stat.Mean(col, nil)
	}

	cov := mat.NewSymDense(c, nil)
	if r == 1 {
		return means, cov, nil
	}
	stat.CovarianceMatrix(cov, X, nil)
	cov.ScaleSym(float64(r-1)/float64(r), cov)

	return means, cov, nil
}

// SecondMoment returns XᵀX / r, the raw (uncentered) row second moment.
func SecondMoment(X mat.Matrix) *mat.Dense {
	r, c := X.Dims()
	out := mat.NewDense(c, c, nil)
	out.Mul(X.T(), X)
	out.Scale(1/float64(r), out)

	return out
}
