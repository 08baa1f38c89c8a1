package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/mixgamp/sweep"
)

func TestParseFloats(t *testing.T) {
	got, err := parseFloats(" 1, 1.5 ,2,")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1.5, 2}, got)

	_, err = parseFloats("1,x")
	assert.Error(t, err)
	_, err = parseFloats(" , ")
	assert.Error(t, err)
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("MIXGAMP_RUNS", "3")
	t.Setenv("MIXGAMP_SIGMA", "0.25")
	t.Setenv("MIXGAMP_P", "not-a-number")

	assert.Equal(t, 3, envInt("runs", 10))
	assert.Equal(t, 0.25, envFloat("sigma", 0.1))
	assert.Equal(t, 500, envInt("p", 500))
	assert.Equal(t, "x", envString("missing", "x"))
}

func TestEnvBool(t *testing.T) {
	for _, tc := range []struct {
		value string
		want  bool
	}{
		{"false", false},
		{"0", false},
		{"true", true},
		{"1", true},
		{"yes", false}, // unparsable ⇒ default
	} {
		t.Setenv("MIXGAMP_V", tc.value)
		assert.Equal(t, tc.want, envBool("v", false), "MIXGAMP_V=%s", tc.value)
	}
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, writeReport(path, sweep.Report{Deltas: []float64{2}}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"deltas"`)

	require.Error(t, writeReport(filepath.Join(t.TempDir(), "missing", "report.json"), sweep.Report{}))
}

func TestRun_WritesReport(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.json")
	code := run([]string{
		"-p", "10", "-deltas", "2", "-runs", "1", "-iters", "2",
		"-workers", "1", "-algos", "spectral,gamp", "-o", out,
	})
	require.Equal(t, exitSuccess, code)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"gamp"`)
	assert.Contains(t, string(data), `"spectral"`)
}

func TestRun_Cache(t *testing.T) {
	dir := t.TempDir()
	args := []string{
		"-p", "10", "-deltas", "2", "-runs", "2", "-iters", "2", "-workers", "1",
		"-algos", "spectral", "-cache", filepath.Join(dir, "trials"),
	}
	first := filepath.Join(dir, "first.json")
	second := filepath.Join(dir, "second.json")
	require.Equal(t, exitSuccess, run(append(args, "-o", first)))
	require.Equal(t, exitSuccess, run(append(args, "-o", second)))

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Contains(t, string(a), `"cache"`)
	assert.Contains(t, string(b), `"spectral"`)
}

func TestRun_UsageErrors(t *testing.T) {
	assert.Equal(t, exitUsageError, run([]string{"-eps", "0.1"}))
	assert.Equal(t, exitUsageError, run([]string{"-deltas", "a"}))
	assert.Equal(t, exitUsageError, run([]string{"-eps", "0.1,2"}))
	assert.Equal(t, exitUsageError, run([]string{"-nosuchflag"}))
}
