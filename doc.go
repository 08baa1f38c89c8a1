// Package mixgamp estimates two sparse signals from a noisy binary mixture of
// linear measurements.
//
// What is in the box?
//
//	A matrix-GAMP engine with Bayes-optimal denoisers for one model pair:
//		• Prior: independent three-point sparse coordinates on {-1, 0, +1}
//		• Likelihood: y_i = <x_i, β_c(i)> + noise, c(i) ~ Bernoulli(p1)
//		• State Evolution tracked jointly with the iterates
//		• Competing baselines: spectral initialization, EM, AM with Lasso
//
// Under the hood, everything is organized under these subpackages:
//
//	linalg/   - PSD check, pseudo-inverse, singular Gaussian density, moments
//	prior/    - three-point sparse prior and its 9-point pair enumeration
//	denoise/  - measurement-side g_k and signal-side f_k (+ Jacobian)
//	se/       - State Evolution recursion (Σ_k, C_k, M_k) and SE predictions
//	gamp/     - the iteration driver: explicit terminal status + history
//	metrics/  - normalized squared correlation, MSE, run summaries
//	instance/ - random problem instances with deterministic seeding
//	baseline/ - spectral, EM and AM-Lasso estimators
//	sweep/    - repeated trials over a grid of sampling ratios δ = n/p
//
// Quick example:
//
//	inst, _ := instance.Generate(instance.DefaultConfig(200, 50), 7)
//	res, _ := gamp.Run(inst.Problem(), gamp.WithPrior(inst.Config.Prior))
//	fmt.Println(res.Status, metrics.MinCorrelation(inst.B, res.Final()))
//
// The command in cmd/gampsweep runs the full comparison and writes a JSON report.
package mixgamp
