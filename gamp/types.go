package gamp

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// Sentinel errors returned by Run.
var (
	// ErrBadProblem indicates missing or inconsistently shaped problem data.
	ErrBadProblem = errors.New("gamp: invalid problem shape")

	// ErrBadMaxIter indicates a negative iteration budget.
	ErrBadMaxIter = errors.New("gamp: MaxIter must be non-negative")

	// ErrBadMixing indicates a mixture probability outside [0, 1].
	ErrBadMixing = errors.New("gamp: mixing probability must be in [0, 1]")

	// ErrBadNoise indicates a negative or non-finite noise level.
	ErrBadNoise = errors.New("gamp: noise standard deviation must be finite and >= 0")
)

// Status is the state of the driver's state machine.
type Status int

const (
	// StatusInitialized: Σ_0 and the initial iterates are built, no step taken.
	StatusInitialized Status = iota

	// StatusIterating: the loop is running.
	StatusIterating

	// StatusConverged: the correlation stopped improving (fixed point or stall).
	StatusConverged

	// StatusDiverged: a denoiser or the State Evolution produced the NaN sentinel.
	StatusDiverged

	// StatusMaxIterReached: the iteration budget was exhausted.
	StatusMaxIterReached
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusInitialized:
		return "INITIALIZED"
	case StatusIterating:
		return "ITERATING"
	case StatusConverged:
		return "CONVERGED"
	case StatusDiverged:
		return "DIVERGED"
	case StatusMaxIterReached:
		return "MAX_ITER_REACHED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether s is one of the three terminal states.
func (s Status) Terminal() bool {
	return s == StatusConverged || s == StatusDiverged || s == StatusMaxIterReached
}

// Problem is the instance data consumed by the driver. All matrices are
// read-only to the driver.
type Problem struct {
	X     *mat.Dense // n×p measurement matrix
	Y     []float64  // length-n observations
	B     *mat.Dense // p×2 ground truth, used only by the stopping rule and diagnostics
	BHat0 *mat.Dense // p×2 initial estimate

	SignalMean []float64  // row mean of the true signal (length 2)
	SignalCov  mat.Matrix // row covariance of the true signal (2×2)
	EstMean    []float64  // row mean of the initial estimate (length 2)
	EstCov     mat.Matrix // row covariance of the initial estimate (2×2)
}

// Result is the outcome of a run: the terminal status and the committed history.
type Result struct {
	// Status is always terminal when Run returns without error.
	Status Status

	// Cause names the step that produced the sentinel when Status is
	// StatusDiverged ("measurement", "signal", "state-evolution"); empty otherwise.
	Cause string

	// Iterations is the number of committed iterations (len(Estimates)-1).
	Iterations int

	// Estimates holds B̂_0, B̂_1, … in order; every entry is a distinct matrix.
	Estimates []*mat.Dense

	// NoiseCovs holds M_1, M_2, … (one per committed iteration).
	NoiseCovs []*mat.Dense

	// Correlations holds min_i ρ(β_i, β̂_i) per committed iteration; it is
	// strictly increasing by construction of the stopping rule.
	Correlations []float64

	// InitialCorrelation is min_i ρ(β_i, β̂_{0,i}).
	InitialCorrelation float64

	// Sigma is the State Evolution covariance of the last committed iterate.
	Sigma *mat.Dense
}

// Final returns the last committed estimate (B̂_0 if no iteration committed).
func (r Result) Final() *mat.Dense {
	if len(r.Estimates) == 0 {
		return nil
	}
	return r.Estimates[len(r.Estimates)-1]
}
