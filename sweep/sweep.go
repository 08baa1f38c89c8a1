// SPDX-License-Identifier: MIT

package sweep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/mixgamp/baseline"
	"github.com/katalvlaran/mixgamp/gamp"
	"github.com/katalvlaran/mixgamp/instance"
	"github.com/katalvlaran/mixgamp/metrics"
	"github.com/katalvlaran/mixgamp/se"
)

// seStream separates the State Evolution sampling streams from the instance streams.
const seStream uint64 = 0x5e

// Curve is the per-δ accuracy of one algorithm. Index 0 of each pair refers
// to the first signal, index 1 to the second.
type Curve struct {
	Mean      [2][]float64 `json:"mean"`
	SD        [2][]float64 `json:"sd"`         // population SD over all runs
	SuccessSD [2][]float64 `json:"success_sd"` // SD over runs with positive correlation
	MSE       [2][]float64 `json:"mse"`        // mean squared error, averaged over runs
}

// Report is the outcome of a sweep.
type Report struct {
	ID         uuid.UUID           `json:"id"`
	Config     Config              `json:"config"`
	Deltas     []float64           `json:"deltas"`
	Algorithms map[Algorithm]Curve `json:"algorithms"`

	// GAMPStatus counts GAMP terminal statuses per δ (empty when GAMP is not selected).
	GAMPStatus []map[string]int `json:"gamp_status,omitempty"`

	// SEPredicted is the mean State Evolution prediction of the GAMP
	// correlation per signal and δ, from the last committed M_k of each run.
	SEPredicted *[2][]float64 `json:"se_predicted,omitempty"`
	Elapsed     time.Duration `json:"elapsed_ns"`
}

// WriteJSON writes r as indented JSON.
func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("Report.WriteJSON: %w", err)
	}

	return nil
}

// trial is the outcome of one (n, run) cell.
type trial struct {
	corr   map[Algorithm][2]float64
	mse    map[Algorithm][2]float64
	status gamp.Status
	sePred [2]float64
}

// Run executes the sweep. A nil logger is replaced by zap.NewNop().
// Cancelling ctx stops scheduling new trials and returns ctx.Err().
// With cfg.Cache set, finished trials are read from and written to the
// trial store; store read/write failures are logged and the trial is computed.
//
// Errors: ErrBadConfig, ErrUnknownAlgorithm, ErrStore (open), generator and
// estimator input errors, context errors.
func Run(ctx context.Context, cfg Config, logger *zap.Logger) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, fmt.Errorf("sweep.Run: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("sweep")
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	start := time.Now()
	id := uuid.New()
	log.Info("sweep started",
		zap.String("id", id.String()),
		zap.Int("p", cfg.P),
		zap.Ints("n_list", cfg.NList),
		zap.Int("runs", cfg.Runs),
		zap.Int("workers", workers))

	var (
		store *Store
		fp    = cfg.Fingerprint()
	)
	if cfg.Cache != "" {
		st, err := OpenStore(cfg.Cache)
		if err != nil {
			return Report{}, fmt.Errorf("sweep.Run: %w", err)
		}
		defer func() {
			if err := st.Close(); err != nil {
				log.Warn("close trial store", zap.Error(err))
			}
		}()
		store = st
		cached, _ := store.Count(fp)
		log.Info("trial store opened", zap.String("dir", cfg.Cache),
			zap.String("fingerprint", fp), zap.Int("cached", cached))
	}

	// Stage 1: trials, one slot each.
	cells := make([][]trial, len(cfg.NList))
	for i := range cells {
		cells[i] = make([]trial, cfg.Runs)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for ni, n := range cfg.NList {
		for run := 0; run < cfg.Runs; run++ {
			ni, n, run := ni, n, run
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				if store != nil {
					t, ok, err := store.load(fp, n, run)
					if err != nil {
						log.Warn("trial store read", zap.Error(err))
					}
					if ok {
						cells[ni][run] = t
						log.Debug("trial cached", zap.Int("n", n), zap.Int("run", run))
						return nil
					}
				}
				t, err := runTrial(cfg, n, run, log)
				if err != nil {
					return fmt.Errorf("n=%d run=%d: %w", n, run, err)
				}
				cells[ni][run] = t
				if store != nil {
					if err := store.save(fp, n, run, t); err != nil {
						log.Warn("trial store write", zap.Error(err))
					}
				}
				log.Debug("trial done", zap.Int("n", n), zap.Int("run", run))
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return Report{}, fmt.Errorf("sweep.Run: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Report{}, fmt.Errorf("sweep.Run: %w", err)
	}

	// Stage 2: aggregate.
	rep := Report{
		ID:         id,
		Config:     cfg,
		Deltas:     cfg.Deltas(),
		Algorithms: make(map[Algorithm]Curve, len(cfg.Algorithms)),
	}
	for _, a := range cfg.Algorithms {
		rep.Algorithms[a] = aggregate(cells, a)
	}
	if selected(cfg.Algorithms, GAMP) {
		rep.GAMPStatus = make([]map[string]int, len(cells))
		for ni, row := range cells {
			rep.GAMPStatus[ni] = make(map[string]int)
			for _, t := range row {
				rep.GAMPStatus[ni][t.status.String()]++
			}
		}
		if cfg.SESamples > 0 {
			var pred [2][]float64
			for s := 0; s < 2; s++ {
				pred[s] = make([]float64, len(cells))
				for ni, row := range cells {
					for _, t := range row {
						pred[s][ni] += t.sePred[s] / float64(len(row))
					}
				}
			}
			rep.SEPredicted = &pred
		}
	}
	rep.Elapsed = time.Since(start)
	log.Info("sweep finished", zap.String("id", id.String()), zap.Duration("elapsed", rep.Elapsed))

	return rep, nil
}

// runTrial draws the instance for (n, run) and evaluates every selected algorithm.
func runTrial(cfg Config, n, run int, log *zap.Logger) (trial, error) {
	icfg := instance.Config{N: n, P: cfg.P, P1: cfg.P1, Sigma: cfg.Sigma, Prior: cfg.Prior}
	inst, err := instance.Generate(icfg, instance.DeriveSeed(cfg.Seed, uint64(run)))
	if err != nil {
		return trial{}, err
	}

	t := trial{
		corr: make(map[Algorithm][2]float64, len(cfg.Algorithms)),
		mse:  make(map[Algorithm][2]float64, len(cfg.Algorithms)),
	}
	opts := append(inst.GAMPOptions(),
		gamp.WithMaxIter(cfg.MaxIter),
		gamp.WithLogger(log.Named("gamp").With(zap.Int("n", n), zap.Int("run", run))))

	for _, a := range cfg.Algorithms {
		var est *mat.Dense
		switch a {
		case Spectral:
			est, err = baseline.Spectral(inst.X, inst.Y, cfg.GridStep)
		case EM:
			est, err = last(baseline.EM(inst.X, inst.Y, inst.BHat0, cfg.EMIters))
		case AM:
			est, err = last(baseline.AMLasso(inst.X, inst.Y, inst.BHat0, cfg.AMIters, cfg.Lasso))
		case GAMP:
			var res gamp.Result
			res, err = gamp.Run(inst.Problem(), opts...)
			if err == nil {
				est, t.status = res.Final(), res.Status
				t.sePred, err = predict(cfg, run, res)
			}
		case GAMPSpectral:
			est, err = gampFromSpectral(cfg, inst, opts)
		}
		if err != nil {
			return trial{}, fmt.Errorf("%s: %w", a, err)
		}
		t.corr[a] = metrics.ColumnCorrelations(inst.B, est)
		t.mse[a] = [2]float64{
			metrics.MSE(mat.Col(nil, 0, inst.B), mat.Col(nil, 0, est)),
			metrics.MSE(mat.Col(nil, 1, inst.B), mat.Col(nil, 1, est)),
		}
	}

	return t, nil
}

// gampFromSpectral runs GAMP initialized at the spectral estimate.
func gampFromSpectral(cfg Config, inst *instance.Instance, opts []gamp.Option) (*mat.Dense, error) {
	init, err := baseline.Spectral(inst.X, inst.Y, cfg.GridStep)
	if err != nil {
		return nil, err
	}
	prob, err := inst.ProblemFrom(init)
	if err != nil {
		return nil, err
	}
	res, err := gamp.Run(prob, opts...)
	if err != nil {
		return nil, err
	}

	return res.Final(), nil
}

// predict returns the State Evolution correlation prediction for the last
// committed M_k of res; runs without a committed iteration predict 0.
func predict(cfg Config, run int, res gamp.Result) ([2]float64, error) {
	if cfg.SESamples == 0 || len(res.NoiseCovs) == 0 {
		return [2]float64{}, nil
	}
	M := res.NoiseCovs[len(res.NoiseCovs)-1]
	src := instance.NewSource(instance.DeriveSeed(cfg.Seed^seStream, uint64(run)))
	pred, err := se.PredictedCorrelation(M, cfg.Prior, cfg.SESamples, src)
	if errors.Is(err, se.ErrNotPD) {
		return [2]float64{}, nil
	}

	return pred, err
}

// last returns the final entry of an estimator history.
func last(hist []*mat.Dense, err error) (*mat.Dense, error) {
	if err != nil {
		return nil, err
	}

	return hist[len(hist)-1], nil
}

// aggregate summarizes one algorithm across runs for every δ.
func aggregate(cells [][]trial, a Algorithm) Curve {
	var c Curve
	for s := 0; s < 2; s++ {
		c.Mean[s] = make([]float64, len(cells))
		c.SD[s] = make([]float64, len(cells))
		c.SuccessSD[s] = make([]float64, len(cells))
		c.MSE[s] = make([]float64, len(cells))
	}
	for ni, row := range cells {
		for s := 0; s < 2; s++ {
			vals := make([]float64, len(row))
			for r, t := range row {
				vals[r] = t.corr[a][s]
			}
			sum := metrics.Summarize(vals)
			c.Mean[s][ni] = sum.Mean
			c.SD[s][ni] = sum.SD
			c.SuccessSD[s][ni] = metrics.SuccessSD(vals, sum.Mean)
			for _, t := range row {
				c.MSE[s][ni] += t.mse[a][s] / float64(len(row))
			}
		}
	}

	return c
}

// selected reports whether a is among algos.
func selected(algos []Algorithm, a Algorithm) bool {
	for _, x := range algos {
		if x == a {
			return true
		}
	}

	return false
}
