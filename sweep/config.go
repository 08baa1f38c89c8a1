package sweep

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/mixgamp/baseline"
	"github.com/katalvlaran/mixgamp/prior"
)

// Algorithm names an estimator evaluated by the sweep.
type Algorithm string

// Known algorithms.
const (
	Spectral Algorithm = "spectral"
	EM       Algorithm = "em"
	AM       Algorithm = "am"
	GAMP     Algorithm = "gamp"

	// GAMPSpectral runs GAMP from the spectral estimate instead of a prior draw.
	GAMPSpectral Algorithm = "gamp-spectral"
)

// ReferenceAlgorithms is the default comparison set.
var ReferenceAlgorithms = []Algorithm{Spectral, EM, AM, GAMP}

// AllAlgorithms lists every known algorithm.
var AllAlgorithms = []Algorithm{Spectral, EM, AM, GAMP, GAMPSpectral}

// Sentinel errors returned by Run.
var (
	// ErrBadConfig indicates an invalid sweep configuration.
	ErrBadConfig = errors.New("sweep: invalid configuration")

	// ErrUnknownAlgorithm indicates an algorithm name outside AllAlgorithms.
	ErrUnknownAlgorithm = errors.New("sweep: unknown algorithm")
)

// Config describes a sweep.
type Config struct {
	P     int        `json:"p"`
	NList []int      `json:"n_list"`
	P1    float64    `json:"p1"`
	Sigma float64    `json:"sigma"`
	Prior prior.Pair `json:"prior"`

	MaxIter  int     `json:"max_iter"`  // GAMP iteration budget
	Runs     int     `json:"runs"`      // independent instances per n
	Workers  int     `json:"workers"`   // concurrent trials (≤ 0 ⇒ 1)
	GridStep float64 `json:"grid_step"` // spectral grid resolution
	EMIters  int     `json:"em_iters"`
	AMIters  int     `json:"am_iters"`
	Seed     uint64  `json:"seed"`

	// SESamples is the Monte Carlo size of the State Evolution prediction
	// attached to GAMP runs; 0 disables it.
	SESamples int `json:"se_samples"`

	Lasso      baseline.LassoOptions `json:"lasso"`
	Algorithms []Algorithm           `json:"algorithms"`

	// Cache is a LevelDB directory holding finished trials; a rerun with the
	// same fingerprint reuses them. Empty disables caching.
	Cache string `json:"cache,omitempty"`
}

// DefaultConfig returns the reference comparison: p = 500,
// n ∈ {1.0p, 1.5p, …, 5.0p}, p1 = 0.6, σ = 0.1, ε = [0.1, 0.1], α = 0,
// 10 GAMP iterations, 10 runs, one EM and one AM iteration, grid step 0.3
// and 1000 State Evolution samples.
func DefaultConfig() Config {
	const p = 500
	nList := make([]int, 0, 9)
	for d := 1.0; d <= 5.0; d += 0.5 {
		nList = append(nList, int(d*p))
	}

	return Config{
		P:          p,
		NList:      nList,
		P1:         0.6,
		Sigma:      0.1,
		Prior:      prior.NewPair([2]float64{0.1, 0.1}, 0),
		MaxIter:    10,
		Runs:       10,
		Workers:    1,
		GridStep:   baseline.DefaultGridStep,
		EMIters:    1,
		AMIters:    1,
		SESamples:  1000,
		Lasso:      baseline.DefaultLassoOptions(),
		Algorithms: append([]Algorithm(nil), ReferenceAlgorithms...),
	}
}

// Deltas returns n/p for every n in NList.
func (c Config) Deltas() []float64 {
	out := make([]float64, len(c.NList))
	for i, n := range c.NList {
		out[i] = float64(n) / float64(c.P)
	}

	return out
}

// Fingerprint identifies the per-trial computation of c: two configurations
// with equal fingerprints produce the same trial for the same (n, run).
// NList, Runs, Workers and Cache only schedule trials and are ignored.
func (c Config) Fingerprint() string {
	k := c
	k.NList, k.Runs, k.Workers, k.Cache = nil, 0, 0, ""
	data, err := json.Marshal(k)
	if err != nil {
		// unreachable for validated configs (finite floats only)
		return ""
	}
	sum := sha256.Sum256(data)

	return hex.EncodeToString(sum[:8])
}

// Validate checks sizes, counts and algorithm names. Model parameters are
// validated by the instance generator.
func (c Config) Validate() error {
	if c.P <= 0 || len(c.NList) == 0 || c.Runs <= 0 {
		return fmt.Errorf("sizes: %w", ErrBadConfig)
	}
	for _, n := range c.NList {
		if n <= 0 {
			return fmt.Errorf("n=%d: %w", n, ErrBadConfig)
		}
	}
	if c.MaxIter < 0 || c.EMIters < 0 || c.AMIters < 0 || c.SESamples < 0 {
		return fmt.Errorf("iterations: %w", ErrBadConfig)
	}
	if !(c.GridStep > 0) || math.IsInf(c.GridStep, 0) {
		return fmt.Errorf("grid step: %w", ErrBadConfig)
	}
	if len(c.Algorithms) == 0 {
		return fmt.Errorf("no algorithms: %w", ErrBadConfig)
	}
	for _, a := range c.Algorithms {
		if !selected(AllAlgorithms, a) {
			return fmt.Errorf("%q: %w", a, ErrUnknownAlgorithm)
		}
	}

	return nil
}
