package baseline

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/mixgamp/linalg"
)

// DefaultGridStep is the angular resolution of the spectral grid search.
const DefaultGridStep = 0.3

// Spectral returns the spectral estimate of the two signals as a p×2 matrix
// with unit-norm columns.
//
// Stage 1: M = (1/n)·Σ y_i² x_i x_iᵀ and its top-2 eigenvectors v1, v2.
// Stage 2: grid G_t = v1·cos(t·step) + v2·sin(t·step), t < ⌈2π/step⌉.
// Stage 3: the pair (G_a, G_b) with the smallest mixture loss, scanning a
// outer and b inner with strict improvement, starting from (G_0, G_1).
//
// Errors: ErrBadProblem (also for p < 2), ErrBadGrid, linalg.ErrEigenFailed.
//
// Complexity: O(n·p² + p³ + T²·n) with T grid points.
func Spectral(X *mat.Dense, Y []float64, gridStep float64) (*mat.Dense, error) {
	const op = "Spectral"
	n, p, err := validateXY(X, Y)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if p < 2 {
		return nil, fmt.Errorf("%s: need p >= 2: %w", op, ErrBadProblem)
	}
	if !(gridStep > 0 && gridStep <= math.Pi) {
		return nil, fmt.Errorf("%s: %w", op, ErrBadGrid)
	}

	// Stage 1: weighted second moment. Rows of Xw are |y_i|·x_i.
	Xw := mat.DenseCopyOf(X)
	for i := 0; i < n; i++ {
		row := Xw.RawRowView(i)
		a := math.Abs(Y[i])
		for j := range row {
			row[j] *= a
		}
	}
	M := mat.NewSymDense(p, nil)
	M.SymOuterK(1/float64(n), Xw.T())

	var eig mat.EigenSym
	if ok := eig.Factorize(M, true); !ok {
		return nil, fmt.Errorf("%s: %w", op, linalg.ErrEigenFailed)
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	v1 := mat.Col(nil, p-1, &vecs)
	v2 := mat.Col(nil, p-2, &vecs)

	// Stage 2: grid of unit vectors in span{v1, v2} and their projections X·G_t.
	T := int(math.Ceil(2 * math.Pi / gridStep))
	G := mat.NewDense(p, T, nil)
	for t := 0; t < T; t++ {
		c, s := math.Cos(gridStep*float64(t)), math.Sin(gridStep*float64(t))
		for j := 0; j < p; j++ {
			G.Set(j, t, v1[j]*c+v2[j]*s)
		}
	}
	var XG mat.Dense
	XG.Mul(X, G)

	// residual² per (row, grid point)
	res := mat.NewDense(n, T, nil)
	for i := 0; i < n; i++ {
		for t := 0; t < T; t++ {
			d := Y[i] - XG.At(i, t)
			res.Set(i, t, d*d)
		}
	}
	loss := func(a, b int) float64 {
		var acc float64
		for i := 0; i < n; i++ {
			acc += math.Min(res.At(i, a), res.At(i, b))
		}
		return acc
	}

	// Stage 3: exhaustive pair search.
	bestA, bestB := 0, 1
	best := loss(0, 1)
	for a := 0; a < T; a++ {
		for b := 0; b < T; b++ {
			if l := loss(a, b); l < best {
				best, bestA, bestB = l, a, b
			}
		}
	}

	out := mat.NewDense(p, 2, nil)
	out.SetCol(0, mat.Col(nil, bestA, G))
	out.SetCol(1, mat.Col(nil, bestB, G))

	return out, nil
}
