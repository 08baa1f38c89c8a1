// SPDX-License-Identifier: MIT
// Package: linalg
//
// Purpose:
//   - Multivariate normal density for a covariance that may be singular.
//   - Factorize once, evaluate many times: the GAMP denoisers evaluate the same
//     covariance at every row of an iteration.
//
// Semantics (scipy multivariate_normal with allow_singular=True):
//   - Eigenvalues ≤ tol are dropped; the density lives on the range of the
//     covariance with the pseudo-determinant in the normalizer.
//   - Points with a null-space component of norm ≥ tol have density 0.

package linalg

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const log2Pi = 1.8378770664093453 // ln(2π)

// Gaussian is a factorized zero-mean covariance ready for density queries.
// It is immutable after construction and safe for concurrent readers.
type Gaussian struct {
	dim     int
	rank    int
	tol     float64     // eigenvalue cutoff; also the support residual bound
	logNorm float64     // -0.5·(rank·ln 2π + ln pdet)
	whiten  [][]float64 // rank vectors: v_j/√λ_j
	null    [][]float64 // dim-rank vectors spanning the null space
}

// NewGaussian factorizes cov. condFactor ≤ 0 selects DefaultCondFactor.
//
// Errors:
//   - ErrNilMatrix, ErrNaNInf, ErrEigenFailed on structural problems.
//   - ErrNotPSD when min λ < −tol.
//
// Complexity: O(d³) once; LogDensity is O(d²).
func NewGaussian(cov mat.Symmetric, condFactor float64) (*Gaussian, error) {
	const op = "NewGaussian"
	if err := ValidateNotNil(cov); err != nil {
		return nil, opErrorf(op, err)
	}
	if err := ValidateFinite(cov); err != nil {
		return nil, opErrorf(op, err)
	}

	var es mat.EigenSym
	if ok := es.Factorize(cov, true); !ok {
		return nil, opErrorf(op, ErrEigenFailed)
	}
	values := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	g := &Gaussian{dim: len(values), tol: EigTolerance(values, condFactor)}
	var (
		j, i  int
		lam   float64
		logPd float64
	)
	for j, lam = range values {
		if lam < -g.tol {
			return nil, opErrorf(op, ErrNotPSD)
		}
		col := make([]float64, g.dim)
		for i = 0; i < g.dim; i++ {
			col[i] = vecs.At(i, j)
		}
		if lam > g.tol {
			scale := 1 / math.Sqrt(lam)
			for i = range col {
				col[i] *= scale
			}
			g.whiten = append(g.whiten, col)
			logPd += math.Log(lam)
			continue
		}
		g.null = append(g.null, col)
	}
	g.rank = len(g.whiten)
	g.logNorm = -0.5 * (float64(g.rank)*log2Pi + logPd)

	return g, nil
}

// Dim returns the dimension of the distribution.
func (g *Gaussian) Dim() int { return g.dim }

// Rank returns the number of retained eigen-directions.
func (g *Gaussian) Rank() int { return g.rank }

// LogDensity returns ln N(x; mean, Σ). A nil mean is the zero vector.
// Off-support points return −Inf. x and mean must have length Dim().
// No allocations.
func (g *Gaussian) LogDensity(x, mean []float64) float64 {
	var (
		maha, proj, d float64
		i             int
	)
	for _, w := range g.whiten {
		proj = 0
		for i = 0; i < g.dim; i++ {
			d = x[i]
			if mean != nil {
				d -= mean[i]
			}
			proj += d * w[i]
		}
		maha += proj * proj
	}

	if len(g.null) > 0 {
		var resid float64
		for _, nv := range g.null {
			proj = 0
			for i = 0; i < g.dim; i++ {
				d = x[i]
				if mean != nil {
					d -= mean[i]
				}
				proj += d * nv[i]
			}
			resid += proj * proj
		}
		if math.Sqrt(resid) >= g.tol {
			return math.Inf(-1)
		}
	}

	return g.logNorm - 0.5*maha
}

// Density returns exp(LogDensity(x, mean)).
func (g *Gaussian) Density(x, mean []float64) float64 {
	return math.Exp(g.LogDensity(x, mean))
}
