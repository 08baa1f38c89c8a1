// SPDX-License-Identifier: MIT
// Package: linalg
//
// Purpose:
//   - Single source of truth for shape/nil/symmetry/finiteness guards.
//   - Return sentinels wrapped with the validator tag so call sites can match via errors.Is.
//
// Determinism & Performance:
//   - All checks are pure and allocate nothing.

package linalg

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// ValidateNotNil ensures m is neither a nil interface nor a typed nil pointer.
// Complexity: O(1).
func ValidateNotNil(m mat.Matrix) error {
	switch v := m.(type) {
	case nil:
		return opErrorf("ValidateNotNil", ErrNilMatrix)
	case *mat.Dense:
		if v == nil {
			return opErrorf("ValidateNotNil", ErrNilMatrix)
		}
	case *mat.SymDense:
		if v == nil {
			return opErrorf("ValidateNotNil", ErrNilMatrix)
		}
	case *mat.VecDense:
		if v == nil {
			return opErrorf("ValidateNotNil", ErrNilMatrix)
		}
	}

	return nil
}

// ValidateShape ensures m is non-nil and exactly rows×cols.
// Complexity: O(1).
func ValidateShape(m mat.Matrix, rows, cols int) error {
	if err := ValidateNotNil(m); err != nil {
		return err
	}
	r, c := m.Dims()
	if r != rows || c != cols {
		return opErrorf("ValidateShape", ErrDimensionMismatch)
	}

	return nil
}

// ValidateSquare ensures m is non-nil and square.
// Complexity: O(1).
func ValidateSquare(m mat.Matrix) error {
	if err := ValidateNotNil(m); err != nil {
		return err
	}
	r, c := m.Dims()
	if r != c {
		return opErrorf("ValidateSquare", ErrDimensionMismatch)
	}

	return nil
}

// ValidateSymmetric checks |A[i,j] - A[j,i]| ≤ tol for all i<j.
// A negative tolerance is treated as its absolute value; NaN/Inf tolerance is rejected.
// Complexity: O(n²) over the strict upper triangle.
func ValidateSymmetric(m mat.Matrix, tol float64) error {
	if err := ValidateSquare(m); err != nil {
		return err
	}
	if math.IsNaN(tol) || math.IsInf(tol, 0) {
		return opErrorf("ValidateSymmetric", ErrNaNInf)
	}
	tol = math.Abs(tol)

	n, _ := m.Dims()
	var i, j int
	for i = 0; i < n; i++ {
		for j = i + 1; j < n; j++ {
			if math.Abs(m.At(i, j)-m.At(j, i)) > tol {
				return opErrorf("ValidateSymmetric", ErrAsymmetry)
			}
		}
	}

	return nil
}

// ValidateFinite rejects any NaN or ±Inf entry.
// Complexity: O(r*c).
func ValidateFinite(m mat.Matrix) error {
	if err := ValidateNotNil(m); err != nil {
		return err
	}
	r, c := m.Dims()
	var (
		i, j int
		v    float64
	)
	for i = 0; i < r; i++ {
		for j = 0; j < c; j++ {
			v = m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return opErrorf("ValidateFinite", ErrNaNInf)
			}
		}
	}

	return nil
}

// HasNaN reports whether any entry of m is NaN.
// It is the driver's sentinel scan after each denoising pass.
func HasNaN(m mat.Matrix) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if math.IsNaN(m.At(i, j)) {
				return true
			}
		}
	}

	return false
}

// SymLower builds a symmetric copy of the square matrix a from its lower
// triangle (the triangle LAPACK's eigh reads by default).
// Panics with ErrDimensionMismatch if a is not square; callers validate first.
func SymLower(a mat.Matrix) *mat.SymDense {
	n, c := a.Dims()
	if n != c {
		panic(ErrDimensionMismatch)
	}
	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			s.SetSym(i, j, a.At(i, j))
		}
	}

	return s
}
