package gamp_test

import (
	"fmt"

	"github.com/katalvlaran/mixgamp/gamp"
	"github.com/katalvlaran/mixgamp/instance"
)

// ExampleRun recovers a two-signal mixture at sampling ratio δ = 4 from a
// random start and prints the final minimum squared correlation.
func ExampleRun() {
	inst, err := instance.Generate(instance.DefaultConfig(200, 50), 3)
	if err != nil {
		fmt.Println(err)
		return
	}

	res, err := gamp.Run(inst.Problem(), inst.GAMPOptions()...)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(res.Status.Terminal(), len(res.Estimates) == res.Iterations+1)
	fmt.Printf("%.2f\n", res.Correlations[len(res.Correlations)-1])
	// Output:
	// true true
	// 0.97
}
