// Package denoise implements the two Bayes-optimal denoisers of the
// matrix-GAMP iteration for the binary-mixture / three-point-prior model.
//
// Measurement side (g_k): given the effective observation Z_k = Θ_i (a 2-vector),
// the scalar observation Ȳ = Y_i and the State Evolution covariance Σ_k, it
// returns the residual
//
//	pinv(Var[Z | Z_k]) · (E[Z | Z_k, Ȳ] − E[Z | Z_k])
//
// where E[Z | Z_k, Ȳ] mixes the two label hypotheses (label 1 observes
// coordinate 0, label 0 observes coordinate 1) with their posterior
// probabilities. This residual form, not the raw posterior mean, is what the
// Onsager-corrected update consumes.
//
// Signal side (f_k): the exact posterior mean of a row (β1, β2) under the
// 9-point prior given s = M·β + N(0, T), and its analytic 2×2 Jacobian.
//
// Both denoisers are built once per iteration from the shared, read-only
// iteration parameters and then mapped over rows; each row depends only on
// its own inputs. Degeneracy (a covariance that fails the PSD check, or an
// observation with zero likelihood under every hypothesis) is reported as NaN
// in the output, never as an error: the driver turns it into DIVERGED.
package denoise

import "errors"

// ErrShape indicates that an input has the wrong dimensions.
var ErrShape = errors.New("denoise: unexpected input shape")
