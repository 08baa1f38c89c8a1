// SPDX-License-Identifier: MIT

package linalg

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultCondFactor is the multiplier of machine epsilon used to derive the
// eigenvalue tolerance for float64 input (scipy's `_eigvalsh_to_eps` default).
const DefaultCondFactor = 1e6

// machineEps is the float64 unit roundoff as numpy reports it (2^-52).
const machineEps = 0x1p-52

// EigTolerance returns condFactor × ε_machine × max|λ| for the spectrum values.
// A non-positive condFactor selects DefaultCondFactor.
// An empty spectrum yields 0.
func EigTolerance(values []float64, condFactor float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if condFactor <= 0 {
		condFactor = DefaultCondFactor
	}
	var maxAbs float64
	for _, v := range values {
		if a := math.Abs(v); a > maxAbs {
			maxAbs = a
		}
	}

	return condFactor * machineEps * maxAbs
}

// EigenValues returns the ascending eigenvalues of the symmetric matrix a.
// Returns ErrNaNInf for non-finite input and ErrEigenFailed if LAPACK
// reports failure.
// Complexity: O(n³).
func EigenValues(a mat.Symmetric) ([]float64, error) {
	if err := ValidateFinite(a); err != nil {
		return nil, opErrorf("EigenValues", err)
	}
	var es mat.EigenSym
	if ok := es.Factorize(a, false); !ok {
		return nil, opErrorf("EigenValues", ErrEigenFailed)
	}

	return es.Values(nil), nil
}

// IsPositiveSemidefinite reports whether min λ(a) ≥ −tol with
// tol = EigTolerance(λ(a), condFactor).
//
// Inputs:
//   - a: symmetric matrix (only the stored triangle is read).
//   - condFactor: multiplier of machine epsilon; ≤0 selects DefaultCondFactor.
//
// Errors:
//   - ErrNilMatrix, ErrNaNInf, ErrEigenFailed. A matrix that merely fails the
//     check is (false, nil), not an error.
//
// Complexity: O(n³).
func IsPositiveSemidefinite(a mat.Symmetric, condFactor float64) (bool, error) {
	if err := ValidateNotNil(a); err != nil {
		return false, opErrorf("IsPositiveSemidefinite", err)
	}
	values, err := EigenValues(a)
	if err != nil {
		return false, opErrorf("IsPositiveSemidefinite", err)
	}
	if len(values) == 0 {
		return true, nil
	}

	return floats.Min(values) >= -EigTolerance(values, condFactor), nil
}
