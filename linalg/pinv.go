// SPDX-License-Identifier: MIT

package linalg

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultRcond is the relative singular-value cutoff of the pseudo-inverse
// (numpy.linalg.pinv default).
const DefaultRcond = 1e-15

// Pinv returns the Moore–Penrose pseudo-inverse of a (c×r for an r×c input).
// Singular values at or below DefaultRcond × σ_max are treated as zero, so a
// zero matrix maps to a zero matrix.
//
// A matrix that cannot be factorized (NaN/Inf entries) yields an all-NaN
// result: the invalid value keeps flowing to the caller's sentinel scan
// instead of being silently replaced.
//
// Complexity: O(r*c*min(r,c)).
func Pinv(a mat.Matrix) *mat.Dense {
	return PinvRcond(a, DefaultRcond)
}

// PinvRcond is Pinv with an explicit relative cutoff.
func PinvRcond(a mat.Matrix, rcond float64) *mat.Dense {
	r, c := a.Dims()
	out := mat.NewDense(c, r, nil)

	if ValidateFinite(a) != nil {
		fillNaN(out)
		return out
	}
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		fillNaN(out)
		return out
	}
	s := svd.Values(nil)
	if len(s) == 0 {
		return out
	}
	if floats.HasNaN(s) {
		fillNaN(out)
		return out
	}
	cutoff := rcond * floats.Max(s)

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	// V·diag(1/σ)·Uᵀ with small singular values dropped.
	k := len(s)
	var i, j int
	for j = 0; j < k; j++ {
		inv := 0.0
		if s[j] > cutoff {
			inv = 1 / s[j]
		}
		for i = 0; i < c; i++ {
			v.Set(i, j, v.At(i, j)*inv)
		}
	}
	out.Mul(&v, u.T())

	return out
}

// PinvSolve returns pinv(a)·b.
func PinvSolve(a, b mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Mul(Pinv(a), b)

	return &out
}

// fillNaN overwrites every entry of m with NaN.
func fillNaN(m *mat.Dense) {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.Set(i, j, math.NaN())
		}
	}
}
