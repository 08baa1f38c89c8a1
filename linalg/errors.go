// SPDX-License-Identifier: MIT
// Package linalg: sentinel error set.
// Algorithms return these sentinels (optionally wrapped with an operation tag)
// and tests match them via errors.Is.

package linalg

import (
	"errors"
	"fmt"
)

var (
	// ErrNilMatrix indicates that a nil matrix (interface or typed pointer) was passed.
	ErrNilMatrix = errors.New("linalg: nil matrix")

	// ErrDimensionMismatch indicates incompatible or unexpected dimensions.
	ErrDimensionMismatch = errors.New("linalg: dimension mismatch")

	// ErrAsymmetry signals that a matrix expected to be symmetric is not, within tolerance.
	ErrAsymmetry = errors.New("linalg: matrix is not symmetric within tolerance")

	// ErrNaNInf signals a NaN or ±Inf where finite values are required.
	ErrNaNInf = errors.New("linalg: NaN or Inf encountered")

	// ErrNotPSD is returned when a covariance fails the positive-semidefinite check.
	ErrNotPSD = errors.New("linalg: matrix is not positive semidefinite")

	// ErrEigenFailed indicates that the symmetric eigendecomposition did not succeed.
	ErrEigenFailed = errors.New("linalg: eigen decomposition failed")
)

// opErrorf wraps err with an operation tag: "<op>: <err>".
func opErrorf(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
