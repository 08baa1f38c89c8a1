package baseline

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// AMLasso runs iters rounds of alternating minimization from BHat0:
//
//	Part I:  J_c = {i : c minimizes |y_i − x_iᵀβ_c|}, ties go to the second signal.
//	Part II: β_c = LassoCV(X[J_c], Y[J_c]).
//
// Errors: ErrBadProblem, ErrBadIters, ErrBadLassoOptions.
//
// Complexity: O(iters·Repeats·Folds·NAlphas·MaxIter·n·p) worst case.
func AMLasso(X *mat.Dense, Y []float64, BHat0 *mat.Dense, iters int, opts LassoOptions) ([]*mat.Dense, error) {
	const op = "AMLasso"
	n, p, err := validateXY(X, Y)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = validateInit(BHat0, p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if iters < 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrBadIters)
	}
	if err = opts.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	history := make([]*mat.Dense, 0, iters+1)
	history = append(history, mat.DenseCopyOf(BHat0))
	Bk := mat.DenseCopyOf(BHat0)

	var fit mat.Dense
	for k := 0; k < iters; k++ {
		// Part I: hard label assignment.
		fit.Mul(X, Bk)
		var J [2][]int
		for i := 0; i < n; i++ {
			if math.Abs(Y[i]-fit.At(i, 0)) < math.Abs(Y[i]-fit.At(i, 1)) {
				J[0] = append(J[0], i)
			} else {
				J[1] = append(J[1], i)
			}
		}

		// Part II: one cross-validated Lasso per component.
		next := mat.NewDense(p, 2, nil)
		for c := 0; c < 2; c++ {
			beta, err := LassoCV(X, Y, J[c], opts)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			next.SetCol(c, beta)
		}
		history = append(history, next)
		Bk = next
	}

	return history, nil
}
