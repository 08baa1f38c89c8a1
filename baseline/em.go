package baseline

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/mixgamp/linalg"
)

// EM runs iters rounds of expectation maximization for the two-component
// mixed linear regression y_i = x_iᵀβ_{c_i} + noise with unit noise variance,
// starting from BHat0 and mixture weights (1/2, 1/2).
//
// E step: w_ic ∝ π_c·exp(−(y_i − x_iᵀβ_c)²/2), normalized in the log domain.
// M step: β_c = (Σ w_ic x_i x_iᵀ)⁻¹ Σ w_ic x_i y_i, π_c = mean_i w_ic.
//
// The weighted Gram matrix is solved by Cholesky; a singular one falls back
// to the pseudo-inverse.
//
// Errors: ErrBadProblem, ErrBadIters.
//
// Complexity: O(iters·(n·p² + p³)).
func EM(X *mat.Dense, Y []float64, BHat0 *mat.Dense, iters int) ([]*mat.Dense, error) {
	const op = "EM"
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

	history := make([]*mat.Dense, 0, iters+1)
	history = append(history, mat.DenseCopyOf(BHat0))

	var (
		beta = [2][]float64{mat.Col(nil, 0, BHat0), mat.Col(nil, 1, BHat0)}
		pi   = [2]float64{0.5, 0.5}
		w    = [2][]float64{make([]float64, n), make([]float64, n)}
		fit  = [2][]float64{make([]float64, n), make([]float64, n)}
		xv   = mat.NewVecDense(n, nil)
	)
	for k := 0; k < iters; k++ {
		// E step.
		for c := 0; c < 2; c++ {
			fv := mat.NewVecDense(n, fit[c])
			fv.MulVec(X, mat.NewVecDense(p, beta[c]))
		}
		for i := 0; i < n; i++ {
			var lw [2]float64
			for c := 0; c < 2; c++ {
				r := Y[i] - fit[c][i]
				lw[c] = math.Log(pi[c]) - r*r/2
			}
			top := math.Max(lw[0], lw[1])
			if math.IsInf(top, -1) {
				w[0][i], w[1][i] = 0.5, 0.5
				continue
			}
			e0, e1 := math.Exp(lw[0]-top), math.Exp(lw[1]-top)
			w[0][i], w[1][i] = e0/(e0+e1), e1/(e0+e1)
		}

		// M step.
		for c := 0; c < 2; c++ {
			Xw := mat.DenseCopyOf(X)
			for i := 0; i < n; i++ {
				s := math.Sqrt(w[c][i])
				row := Xw.RawRowView(i)
				for j := range row {
					row[j] *= s
				}
				xv.SetVec(i, w[c][i]*Y[i])
			}
			gram := mat.NewSymDense(p, nil)
			gram.SymOuterK(1/float64(n), Xw.T())
			rhs := mat.NewVecDense(p, nil)
			rhs.MulVec(X.T(), xv)
			rhs.ScaleVec(1/float64(n), rhs)

			beta[c] = solveGram(gram, rhs)
			pi[c] = floats.Sum(w[c]) / float64(n)
		}

		Bk := mat.NewDense(p, 2, nil)
		Bk.SetCol(0, beta[0])
		Bk.SetCol(1, beta[1])
		history = append(history, Bk)
	}

	return history, nil
}

// solveGram returns gram⁻¹·rhs, falling back to pinv(gram)·rhs.
func solveGram(gram *mat.SymDense, rhs *mat.VecDense) []float64 {
	p := rhs.Len()
	var chol mat.Cholesky
	if chol.Factorize(gram) {
		var sol mat.VecDense
		if err := chol.SolveVecTo(&sol, rhs); err == nil {
			return mat.Col(nil, 0, &sol)
		}
	}
	sol := linalg.PinvSolve(gram, rhs)

	return mat.Col(make([]float64, p), 0, sol)
}
