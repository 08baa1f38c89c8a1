// Package baseline implements the competing estimators that matrix-GAMP is
// compared against on the same instances:
//
//   - Spectral: top-2 eigenvectors of (1/n)·Σ y_i² x_i x_iᵀ followed by a
//     grid search over rotated unit pairs minimizing the mixture loss
//     Σ_i min((y_i − x_iᵀu1)², (y_i − x_iᵀu2)²).
//   - EM: two-component mixed linear regression with unit noise variance,
//     soft label weights and per-component weighted least squares.
//   - AMLasso: alternating minimization; hard label assignment by the smaller
//     absolute residual, then one cross-validated Lasso per component.
//
// Iterative estimators return their history: the first entry is a copy of the
// initial estimate, followed by one p×2 estimate per iteration.
//
// None of the estimators mutates X, Y or the initial estimate.
package baseline

import (
	"errors"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/mixgamp/linalg"
)

// Sentinel errors returned by the baseline estimators.
var (
	// ErrBadProblem indicates missing or inconsistently shaped X, Y or B̂_0.
	ErrBadProblem = errors.New("baseline: invalid problem shape")

	// ErrBadGrid indicates a grid step that yields fewer than two grid points.
	ErrBadGrid = errors.New("baseline: grid step must be in (0, π]")

	// ErrBadIters indicates a negative iteration count.
	ErrBadIters = errors.New("baseline: iteration count must be non-negative")

	// ErrBadLassoOptions indicates an inconsistent cross-validation configuration.
	ErrBadLassoOptions = errors.New("baseline: invalid lasso options")
)

// validateXY checks X (n×p, n,p > 0) against len(Y) and returns (n, p).
func validateXY(X *mat.Dense, Y []float64) (int, int, error) {
	if linalg.ValidateNotNil(X) != nil {
		return 0, 0, ErrBadProblem
	}
	n, p := X.Dims()
	if n == 0 || p == 0 || len(Y) != n {
		return 0, 0, ErrBadProblem
	}

	return n, p, nil
}

// validateInit checks B̂_0 is p×2.
func validateInit(BHat0 *mat.Dense, p int) error {
	if linalg.ValidateShape(BHat0, p, 2) != nil {
		return ErrBadProblem
	}

	return nil
}
