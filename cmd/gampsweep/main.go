package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/katalvlaran/mixgamp/prior"
	"github.com/katalvlaran/mixgamp/sweep"
)

const (
	exitSuccess = iota
	exitFailure
	exitUsageError
)

// envPrefix is prepended to the upper-cased flag name to form the variable
// that overrides the flag's default.
const envPrefix = "MIXGAMP_"

func main() {
	_ = godotenv.Load(".env")
	os.Exit(run(os.Args[1:]))
}

// run parses args and executes the sweep; it returns the process exit code.
func run(args []string) int {
	f := flag.NewFlagSet("gampsweep", flag.ContinueOnError)
	def := sweep.DefaultConfig()

	var (
		p       = f.Int("p", envInt("p", def.P), "signal dimension")
		deltas  = f.String("deltas", envString("deltas", "1,1.5,2,2.5,3,3.5,4,4.5,5"), "comma-separated sampling ratios n/p")
		p1      = f.Float64("p1", envFloat("p1", def.P1), "probability that a measurement observes the first signal")
		sigma   = f.Float64("sigma", envFloat("sigma", def.Sigma), "measurement noise standard deviation")
		eps     = f.String("eps", envString("eps", "0.1,0.1"), "comma-separated sparsity of the two signals")
		alpha   = f.Float64("alpha", envFloat("alpha", 0), "sign bias of the three-point prior")
		iters   = f.Int("iters", envInt("iters", def.MaxIter), "GAMP iteration budget")
		runs    = f.Int("runs", envInt("runs", def.Runs), "instances per sampling ratio")
		workers = f.Int("workers", envInt("workers", runtime.NumCPU()), "concurrent trials")
		seed    = f.Uint64("seed", uint64(envInt("seed", 0)), "base random seed")
		algos   = f.String("algos", envString("algos", "spectral,em,am,gamp"), "comma-separated algorithms (spectral, em, am, gamp, gamp-spectral)")
		seN     = f.Int("se", envInt("se", def.SESamples), "Monte Carlo samples of the State Evolution prediction, 0 disables")
		cache   = f.String("cache", envString("cache", ""), "LevelDB directory caching finished trials, empty disables")
		out     = f.String("o", envString("o", "-"), "output file, - for stdout")
		verbose = f.Bool("v", envBool("v", false), "debug logging")
	)
	if err := f.Parse(args); err != nil {
		return exitUsageError
	}

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "gampsweep: logger:", err)
		return exitFailure
	}
	defer func() { _ = logger.Sync() }()

	cfg := def
	cfg.P, cfg.P1, cfg.Sigma = *p, *p1, *sigma
	cfg.MaxIter, cfg.Runs, cfg.Workers, cfg.Seed = *iters, *runs, *workers, *seed
	cfg.SESamples, cfg.Cache = *seN, *cache

	ds, err := parseFloats(*deltas)
	if err != nil {
		fmt.Fprintln(os.Stderr, "gampsweep: -deltas:", err)
		return exitUsageError
	}
	cfg.NList = make([]int, len(ds))
	for i, d := range ds {
		cfg.NList[i] = int(d * float64(cfg.P))
	}

	ev, err := parseFloats(*eps)
	if err != nil || len(ev) != 2 {
		fmt.Fprintln(os.Stderr, "gampsweep: -eps needs two comma-separated values")
		return exitUsageError
	}
	cfg.Prior = prior.NewPair([2]float64{ev[0], ev[1]}, *alpha)
	if err = cfg.Prior.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "gampsweep:", err)
		return exitUsageError
	}

	cfg.Algorithms = cfg.Algorithms[:0]
	for _, a := range strings.Split(*algos, ",") {
		if a = strings.TrimSpace(a); a != "" {
			cfg.Algorithms = append(cfg.Algorithms, sweep.Algorithm(a))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := sweep.Run(ctx, cfg, logger)
	if err != nil {
		logger.Error("sweep failed", zap.Error(err))
		return exitFailure
	}

	if *out == "-" || *out == "" {
		if err = rep.WriteJSON(os.Stdout); err != nil {
			logger.Error("write report", zap.Error(err))
			return exitFailure
		}
		return exitSuccess
	}
	if err = writeReport(*out, rep); err != nil {
		logger.Error("write report", zap.String("path", *out), zap.Error(err))
		return exitFailure
	}

	return exitSuccess
}

// writeReport writes rep to path; a failed close is reported like a failed write.
func writeReport(path string, rep sweep.Report) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = rep.WriteJSON(fh); err != nil {
		_ = fh.Close()
		return err
	}

	return fh.Close()
}

// newLogger returns a development logger when verbose, a production one otherwise.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}

	return zap.NewProduction()
}

// parseFloats splits a comma-separated list of floats.
func parseFloats(s string) ([]float64, error) {
	var out []float64
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty list %q", s)
	}

	return out, nil
}

func envString(name, def string) string {
	if v, ok := os.LookupEnv(envPrefix + strings.ToUpper(name)); ok {
		return v
	}

	return def
}

func envInt(name string, def int) int {
	if v, err := strconv.Atoi(envString(name, "")); err == nil {
		return v
	}

	return def
}

func envBool(name string, def bool) bool {
	if v, err := strconv.ParseBool(envString(name, "")); err == nil {
		return v
	}

	return def
}

func envFloat(name string, def float64) float64 {
	if v, err := strconv.ParseFloat(envString(name, ""), 64); err == nil {
		return v
	}

	return def
}
