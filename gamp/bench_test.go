package gamp_test

import (
	"testing"

	"github.com/katalvlaran/mixgamp/gamp"
)

// BenchmarkRun measures one full driver run on a 200×50 instance.
func BenchmarkRun(b *testing.B) {
	inst := newInstance(b, 7)
	prob, opts := inst.Problem(), inst.GAMPOptions()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := gamp.Run(prob, opts...); err != nil {
			b.Fatal(err)
		}
	}
}
