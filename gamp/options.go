package gamp

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/mixgamp/prior"
)

// Options configures Run.
type Options struct {
	MaxIter    int         // iteration budget (≥ 0)
	P1         float64     // P(label = 1)
	NoiseSD    float64     // measurement noise standard deviation σ
	Prior      prior.Pair  // prior of the signal rows
	CondFactor float64     // PSD tolerance multiplier (≤ 0 ⇒ linalg.DefaultCondFactor)
	Sigma0     *mat.Dense  // optional explicit Σ_0 (4×4)
	Logger     *zap.Logger // diagnostics sink
}

// Option represents a functional option for configuring Run.
type Option func(*Options)

// DefaultOptions returns the reference configuration:
//   - MaxIter: 10
//   - P1:      0.6
//   - NoiseSD: 0.1
//   - Prior:   ε = [0.1, 0.1], α = 0
//   - Logger:  zap.NewNop()
func DefaultOptions() Options {
	return Options{
		MaxIter: 10,
		P1:      0.6,
		NoiseSD: 0.1,
		Prior:   prior.NewPair([2]float64{0.1, 0.1}, 0),
		Logger:  zap.NewNop(),
	}
}

// WithMaxIter sets the iteration budget.
func WithMaxIter(k int) Option {
	return func(o *Options) { o.MaxIter = k }
}

// WithMixing sets the probability that a measurement observes the first signal.
func WithMixing(p1 float64) Option {
	return func(o *Options) { o.P1 = p1 }
}

// WithNoiseSD sets the measurement noise standard deviation.
func WithNoiseSD(sigma float64) Option {
	return func(o *Options) { o.NoiseSD = sigma }
}

// WithPrior sets the three-point prior pair used by the signal denoiser.
func WithPrior(p prior.Pair) Option {
	return func(o *Options) { o.Prior = p }
}

// WithCondFactor sets the PSD tolerance multiplier of machine epsilon.
func WithCondFactor(f float64) Option {
	return func(o *Options) { o.CondFactor = f }
}

// WithSigma0 overrides the moment-based Σ_0. The matrix is copied.
func WithSigma0(sigma mat.Matrix) Option {
	return func(o *Options) { o.Sigma0 = mat.DenseCopyOf(sigma) }
}

// WithLogger sets the diagnostics logger; nil restores the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l == nil {
			l = zap.NewNop()
		}
		o.Logger = l
	}
}

// validateOptions checks internal consistency of Options.
// Complexity: O(1).
func validateOptions(o Options) error {
	if o.MaxIter < 0 {
		return ErrBadMaxIter
	}
	if !(o.P1 >= 0 && o.P1 <= 1) {
		return ErrBadMixing
	}
	if !(o.NoiseSD >= 0) || math.IsInf(o.NoiseSD, 0) {
		return ErrBadNoise
	}

	return o.Prior.Validate()
}
