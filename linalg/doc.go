// Package linalg holds the small dense numeric primitives shared by the
// GAMP engine: a positive-semidefinite check with scipy-compatible tolerance,
// the Moore–Penrose pseudo-inverse, a multivariate Gaussian density that
// accepts singular covariances, and row moments of estimate matrices.
//
// All matrices are gonum *mat.Dense / *mat.SymDense values. Linear solves go
// through the pseudo-inverse everywhere because the 2×2 and 3×3 blocks of the
// State Evolution covariance are legitimately singular at some iterations
// (for instance a zero estimate at initialization); a direct inverse would be
// undefined there.
package linalg
