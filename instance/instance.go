package instance

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/katalvlaran/mixgamp/gamp"
	"github.com/katalvlaran/mixgamp/linalg"
	"github.com/katalvlaran/mixgamp/prior"
)

// Sentinel errors returned by the generator.
var (
	// ErrBadSize indicates non-positive n or p.
	ErrBadSize = errors.New("instance: n and p must be positive")

	// ErrBadMixing indicates a mixture probability outside [0, 1].
	ErrBadMixing = errors.New("instance: mixture probability must be in [0, 1]")

	// ErrBadNoise indicates a negative or non-finite noise level.
	ErrBadNoise = errors.New("instance: noise standard deviation must be finite and >= 0")
)

// Config describes a random problem instance.
type Config struct {
	N     int        // number of measurements
	P     int        // signal dimension
	P1    float64    // P(label = 1): the measurement observes the first signal
	Sigma float64    // measurement noise standard deviation
	Prior prior.Pair // prior of the signal rows and of the initial estimate rows
}

// DefaultConfig returns an n×p configuration with the reference model
// parameters: p1 = 0.6, σ = 0.1, ε = [0.1, 0.1], α = 0.
func DefaultConfig(n, p int) Config {
	return Config{
		N:     n,
		P:     p,
		P1:    0.6,
		Sigma: 0.1,
		Prior: prior.NewPair([2]float64{0.1, 0.1}, 0),
	}
}

// Validate checks sizes, probabilities and the prior.
func (c Config) Validate() error {
	if c.N <= 0 || c.P <= 0 {
		return ErrBadSize
	}
	if !(c.P1 >= 0 && c.P1 <= 1) {
		return ErrBadMixing
	}
	if !(c.Sigma >= 0) || math.IsInf(c.Sigma, 0) {
		return ErrBadNoise
	}

	return c.Prior.Validate()
}

// Delta returns the sampling ratio δ = n/p.
func (c Config) Delta() float64 { return float64(c.N) / float64(c.P) }

// Instance is one generated problem: measurements, ground truth and a random
// initial estimate drawn independently from the same prior.
type Instance struct {
	Config Config
	X      *mat.Dense // n×p, iid N(0, 1/n)
	B      *mat.Dense // p×2 ground truth
	BHat0  *mat.Dense // p×2 initial estimate
	Y      []float64  // length n
	Labels []bool     // hidden labels: true ⇒ Y_i observes the first signal
}

// Generate draws an instance from cfg with a deterministic seed.
//
// Draw order: B, B̂_0, X (row-major), labels, noise.
//
// Errors: configuration errors from Validate.
func Generate(cfg Config, seed uint64) (*Instance, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("Generate: %w", err)
	}
	src := NewSource(seed)

	B, err := cfg.Prior.Sample(src, cfg.P)
	if err != nil {
		return nil, fmt.Errorf("Generate: %w", err)
	}
	BHat0, err := cfg.Prior.Sample(src, cfg.P)
	if err != nil {
		return nil, fmt.Errorf("Generate: %w", err)
	}

	gauss := distuv.Normal{Mu: 0, Sigma: math.Sqrt(1 / float64(cfg.N)), Src: src}
	X := mat.NewDense(cfg.N, cfg.P, nil)
	for i := 0; i < cfg.N; i++ {
		row := X.RawRowView(i)
		for j := range row {
			row[j] = gauss.Rand()
		}
	}

	label := distuv.Bernoulli{P: cfg.P1, Src: src}
	labels := make([]bool, cfg.N)
	for i := range labels {
		labels[i] = label.Rand() == 1
	}

	var theta mat.Dense
	theta.Mul(X, B)
	noise := distuv.Normal{Mu: 0, Sigma: cfg.Sigma, Src: src}
	Y := make([]float64, cfg.N)
	for i := range Y {
		col := 1
		if labels[i] {
			col = 0
		}
		Y[i] = theta.At(i, col)
		if cfg.Sigma > 0 {
			Y[i] += noise.Rand()
		}
	}

	return &Instance{Config: cfg, X: X, B: B, BHat0: BHat0, Y: Y, Labels: labels}, nil
}

// Problem packages the instance for the GAMP driver. The signal and
// initial-estimate moments are the prior's, since both are prior draws.
func (in *Instance) Problem() gamp.Problem {
	pair := in.Config.Prior
	return gamp.Problem{
		X:          in.X,
		Y:          in.Y,
		B:          in.B,
		BHat0:      in.BHat0,
		SignalMean: pair.Mean(),
		SignalCov:  pair.Cov(),
		EstMean:    pair.Mean(),
		EstCov:     pair.Cov(),
	}
}

// ProblemFrom packages the instance with a caller-supplied initial estimate
// (for example a spectral estimate). Its row moments are the empirical ones
// of BHat0, since it is no longer a prior draw.
//
// Errors: linalg shape errors when BHat0 is not p×2.
func (in *Instance) ProblemFrom(BHat0 *mat.Dense) (gamp.Problem, error) {
	if err := linalg.ValidateShape(BHat0, in.Config.P, 2); err != nil {
		return gamp.Problem{}, fmt.Errorf("ProblemFrom: %w", err)
	}
	mean, cov, err := linalg.RowMoments(BHat0)
	if err != nil {
		return gamp.Problem{}, fmt.Errorf("ProblemFrom: %w", err)
	}
	prob := in.Problem()
	prob.BHat0, prob.EstMean, prob.EstCov = BHat0, mean, cov

	return prob, nil
}

// GAMPOptions returns the driver options matching the instance's model.
func (in *Instance) GAMPOptions() []gamp.Option {
	return []gamp.Option{
		gamp.WithMixing(in.Config.P1),
		gamp.WithNoiseSD(in.Config.Sigma),
		gamp.WithPrior(in.Config.Prior),
	}
}
