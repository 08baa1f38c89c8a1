// Package gamp drives the matrix-GAMP iteration for the binary-mixture model
// with Bayes-optimal denoisers and jointly tracked State Evolution.
//
// One iteration k → k+1, given B̂_k, F_k, R̂_{k-1} and Σ_k:
//
//  1. Θ_k     = X·B̂_k − R̂_{k-1}·F_kᵀ
//  2. R̂_k     = g_k(Θ_k, Y) row-wise                  (NaN ⇒ DIVERGED)
//  3. C_k     from Θ_k, R̂_k, Σ_k
//  4. B_{k+1} = Xᵀ·R̂_k − B̂_k·C_kᵀ
//  5. M_{k+1} = R̂_kᵀR̂_k / n
//  6. B̂_{k+1} = f_{k+1}(B_{k+1}) row-wise              (NaN ⇒ DIVERGED)
//  7. F_{k+1} = Σ_j f'_{k+1}(B_{k+1,j}) / n
//  8. Σ_{k+1} from Σ_k and B̂_{k+1}                     (NaN ⇒ DIVERGED)
//  9. stop as CONVERGED when min_i ρ(β_i, β̂_i) does not strictly improve;
//     the stalled estimate is not committed
//  10. stop as MAX_ITER_REACHED when the budget is exhausted
//
// States: Initialized → Iterating → {Converged, Diverged, MaxIterReached}.
// None of the terminal states is an error; Run only returns an error for
// invalid input. The committed history (B̂_0 first) survives in the Result.
//
// Options:
//
//	– WithMaxIter:    iteration budget (default 10).
//	– WithMixing:     P(label = 1), default 0.6.
//	– WithNoiseSD:    measurement noise σ, default 0.1.
//	– WithPrior:      three-point prior pair, default ε = [0.1, 0.1], α = 0.
//	– WithSigma0:     explicit Σ_0 instead of the moment construction.
//	– WithCondFactor: PSD tolerance multiplier of machine epsilon.
//	– WithLogger:     zap logger for per-iteration diagnostics (default no-op).
package gamp
