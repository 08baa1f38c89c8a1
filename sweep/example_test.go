package sweep_test

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/katalvlaran/mixgamp/sweep"
)

// ExampleRun compares GAMP with the spectral estimator on a small grid and
// prints the JSON report.
func ExampleRun() {
	cfg := sweep.DefaultConfig()
	cfg.P = 100
	cfg.NList = []int{200, 400}
	cfg.Runs = 2
	cfg.Algorithms = []sweep.Algorithm{sweep.Spectral, sweep.GAMP}

	rep, err := sweep.Run(context.Background(), cfg, zap.NewExample())
	if err != nil {
		return
	}
	_ = rep.WriteJSON(os.Stdout)
}
