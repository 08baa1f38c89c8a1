package baseline

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LassoOptions configures the cross-validated Lasso used by AMLasso.
//
// The objective is (1/(2m))·‖y − b0 − Xβ‖² + α·‖β‖₁ with an unpenalized
// intercept b0. α is chosen on a log-spaced path from α_max·PathRatio to
// α_max = max_j |x_jᵀ(y − ȳ)|/m by repeated K-fold cross-validation.
type LassoOptions struct {
	NAlphas   int     // path length
	PathRatio float64 // α_min / α_max
	Folds     int     // K of K-fold
	Repeats   int     // number of reshuffled K-fold rounds
	Seed      uint64  // shuffle seed
	MaxIter   int     // coordinate descent sweeps per α
	Tol       float64 // relative coefficient-change tolerance
}

// DefaultLassoOptions returns 100 alphas with ratio 1e-3, 2-fold CV repeated
// twice with seed 1, 1000 sweeps and tolerance 1e-4.
func DefaultLassoOptions() LassoOptions {
	return LassoOptions{
		NAlphas:   100,
		PathRatio: 1e-3,
		Folds:     2,
		Repeats:   2,
		Seed:      1,
		MaxIter:   1000,
		Tol:       1e-4,
	}
}

// validate checks internal consistency of LassoOptions.
func (o LassoOptions) validate() error {
	switch {
	case o.NAlphas < 1:
		return ErrBadLassoOptions
	case !(o.PathRatio > 0 && o.PathRatio <= 1):
		return ErrBadLassoOptions
	case o.Folds < 2 || o.Repeats < 1 || o.MaxIter < 1:
		return ErrBadLassoOptions
	case !(o.Tol > 0):
		return ErrBadLassoOptions
	}

	return nil
}

// design is a column-major, column-centered copy of a row subset of X with
// the centered response; the intercept is recovered from the means.
type design struct {
	cols  [][]float64 // p columns of length m, centered
	sq    []float64   // ‖x_j‖²
	xMean []float64
	y     []float64 // centered response
	yMean float64
}

// newDesign builds the centered design over the given rows.
func newDesign(X *mat.Dense, Y []float64, rows []int) *design {
	_, p := X.Dims()
	m := len(rows)
	d := &design{
		cols:  make([][]float64, p),
		sq:    make([]float64, p),
		xMean: make([]float64, p),
		y:     make([]float64, m),
	}
	for r, i := range rows {
		d.y[r] = Y[i]
	}
	d.yMean = floats.Sum(d.y) / float64(m)
	floats.AddConst(-d.yMean, d.y)

	for j := 0; j < p; j++ {
		col := make([]float64, m)
		for r, i := range rows {
			col[r] = X.At(i, j)
		}
		d.xMean[j] = floats.Sum(col) / float64(m)
		floats.AddConst(-d.xMean[j], col)
		d.cols[j] = col
		d.sq[j] = floats.Dot(col, col)
	}

	return d
}

// alphaMax is the smallest α for which the Lasso solution is all zero.
func (d *design) alphaMax() float64 {
	var top float64
	for _, col := range d.cols {
		top = math.Max(top, math.Abs(floats.Dot(col, d.y)))
	}

	return top / float64(len(d.y))
}

// intercept returns b0 = ȳ − x̄ᵀβ.
func (d *design) intercept(beta []float64) float64 {
	return d.yMean - floats.Dot(d.xMean, beta)
}

// fit runs cyclic coordinate descent for a single α, warm-started from beta
// (updated in place). resid must hold y − Xβ on entry and is kept in sync.
func (d *design) fit(beta, resid []float64, alpha float64, o LassoOptions) {
	m := float64(len(d.y))
	thresh := alpha * m
	for sweep := 0; sweep < o.MaxIter; sweep++ {
		var maxDelta, maxBeta float64
		for j, col := range d.cols {
			if d.sq[j] == 0 {
				continue
			}
			old := beta[j]
			rho := floats.Dot(col, resid) + d.sq[j]*old
			nb := softThreshold(rho, thresh) / d.sq[j]
			if nb != old {
				floats.AddScaled(resid, old-nb, col)
				beta[j] = nb
			}
			maxDelta = math.Max(maxDelta, math.Abs(nb-old))
			maxBeta = math.Max(maxBeta, math.Abs(nb))
		}
		if maxDelta <= o.Tol*math.Max(maxBeta, 1e-12) {
			return
		}
	}
}

// softThreshold is sign(x)·max(|x| − t, 0).
func softThreshold(x, t float64) float64 {
	switch {
	case x > t:
		return x - t
	case x < -t:
		return x + t
	default:
		return 0
	}
}

// alphaPath returns NAlphas log-spaced values from top down to top·PathRatio.
func alphaPath(top float64, o LassoOptions) []float64 {
	out := make([]float64, o.NAlphas)
	if o.NAlphas == 1 {
		out[0] = top
		return out
	}
	hi, lo := math.Log10(top), math.Log10(top*o.PathRatio)
	for i := range out {
		out[i] = math.Pow(10, hi-(hi-lo)*float64(i)/float64(o.NAlphas-1))
	}

	return out
}

// kFold splits a seeded permutation of m indices into k contiguous folds;
// the first m%k folds get one extra element.
func kFold(m, k int, rng *rand.Rand) [][]int {
	perm := rng.Perm(m)
	folds := make([][]int, k)
	start := 0
	for f := 0; f < k; f++ {
		size := m / k
		if f < m%k {
			size++
		}
		folds[f] = perm[start : start+size]
		start += size
	}

	return folds
}

// LassoCV fits a cross-validated Lasso of Y[rows] on X[rows] and returns the
// coefficient vector (length p, intercept excluded). Fewer rows than folds
// yield the zero vector, and so does a constant response.
//
// Errors: ErrBadLassoOptions.
func LassoCV(X *mat.Dense, Y []float64, rows []int, o LassoOptions) ([]float64, error) {
	if err := o.validate(); err != nil {
		return nil, fmt.Errorf("LassoCV: %w", err)
	}
	_, p := X.Dims()
	beta := make([]float64, p)
	if len(rows) < o.Folds {
		return beta, nil
	}

	full := newDesign(X, Y, rows)
	top := full.alphaMax()
	if top == 0 {
		return beta, nil
	}
	alphas := alphaPath(top, o)

	// Stage 1: held-out MSE per α summed over Repeats × Folds splits.
	mse := make([]float64, len(alphas))
	rng := rand.New(rand.NewPCG(o.Seed, 0))
	for r := 0; r < o.Repeats; r++ {
		for _, test := range kFold(len(rows), o.Folds, rng) {
			inTest := make(map[int]bool, len(test))
			for _, t := range test {
				inTest[t] = true
			}
			train := make([]int, 0, len(rows)-len(test))
			held := make([]int, 0, len(test))
			for pos, i := range rows {
				if inTest[pos] {
					held = append(held, i)
				} else {
					train = append(train, i)
				}
			}
			d := newDesign(X, Y, train)
			b := make([]float64, p)
			resid := append([]float64(nil), d.y...)
			for a, alpha := range alphas {
				d.fit(b, resid, alpha, o)
				b0 := d.intercept(b)
				var acc float64
				for _, i := range held {
					e := Y[i] - b0 - floats.Dot(X.RawRowView(i), b)
					acc += e * e
				}
				mse[a] += acc / float64(len(held))
			}
		}
	}

	best := 0
	for a := range mse {
		if mse[a] < mse[best] {
			best = a
		}
	}

	// Stage 2: refit on all rows along the path down to the chosen α.
	resid := append([]float64(nil), full.y...)
	for a := 0; a <= best; a++ {
		full.fit(beta, resid, alphas[a], o)
	}

	return beta, nil
}
