// Package sweep runs the estimator comparison across sampling ratios
// δ = n/p: for every n in Config.NList and every run, it draws one instance
// and evaluates each selected algorithm on it, then reports the mean and
// standard deviation of the per-signal normalized squared correlation.
//
// Trials run on an errgroup with bounded parallelism. Each trial owns its
// instance and random stream (seed derived from Config.Seed and the run
// index, shared across δ), and writes its result into its own slot, so the
// report does not depend on Workers or on scheduling.
//
// With Config.Cache set, finished trials are persisted in a LevelDB Store
// under Config.Fingerprint, so a rerun skips them.
package sweep
