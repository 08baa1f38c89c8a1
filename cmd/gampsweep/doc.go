// Command gampsweep compares matrix-GAMP with the spectral, EM and
// alternating-minimization Lasso estimators across sampling ratios and
// writes the resulting accuracy curves as JSON.
//
// Usage:
//
//	gampsweep [-p 500] [-deltas 1,1.5,...,5] [-p1 0.6] [-sigma 0.1]
//	          [-eps 0.1,0.1] [-alpha 0] [-iters 10] [-runs 10]
//	          [-workers N] [-seed 0] [-algos spectral,em,am,gamp]
//	          [-se 1000] [-cache trials.db]
//	          [-o report.json] [-v]
//
// With -cache, finished trials are kept in a LevelDB directory and an
// interrupted sweep rerun with the same model flags resumes from them.
//
// Every flag default can be overridden by an environment variable named
// MIXGAMP_<FLAG> (for example MIXGAMP_RUNS=3); a .env file in the working
// directory is loaded first. Explicit flags win over the environment.
package main
