package sweep_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/katalvlaran/mixgamp/sweep"
)

// StoreSuite exercises the LevelDB trial cache through sweep.Run.
type StoreSuite struct {
	suite.Suite
	cfg sweep.Config
}

// SetupTest gives every test a fresh cache directory and a cheap configuration.
func (s *StoreSuite) SetupTest() {
	s.cfg = smallConfig()
	s.cfg.Algorithms = []sweep.Algorithm{sweep.Spectral, sweep.GAMP}
	s.cfg.SESamples = 50
	s.cfg.Cache = filepath.Join(s.T().TempDir(), "trials")
}

// count opens the cache and returns the number of trials under the config fingerprint.
func (s *StoreSuite) count(cfg sweep.Config) int {
	st, err := sweep.OpenStore(cfg.Cache)
	require.NoError(s.T(), err)
	defer func() { require.NoError(s.T(), st.Close()) }()
	n, err := st.Count(cfg.Fingerprint())
	require.NoError(s.T(), err)

	return n
}

// TestResume verifies that a rerun reads every trial back and reproduces the report.
func (s *StoreSuite) TestResume() {
	first, err := sweep.Run(context.Background(), s.cfg, nil)
	require.NoError(s.T(), err)
	require.Equal(s.T(), len(s.cfg.NList)*s.cfg.Runs, s.count(s.cfg))

	core, logs := observer.New(zapcore.DebugLevel)
	second, err := sweep.Run(context.Background(), s.cfg, zap.New(core))
	require.NoError(s.T(), err)
	require.Equal(s.T(), len(s.cfg.NList)*s.cfg.Runs, logs.FilterMessage("trial cached").Len())
	require.Zero(s.T(), logs.FilterMessage("trial done").Len())

	require.Equal(s.T(), first.Algorithms, second.Algorithms)
	require.Equal(s.T(), first.GAMPStatus, second.GAMPStatus)
	require.Equal(s.T(), first.SEPredicted, second.SEPredicted)
}

// TestExtendRuns verifies that raising Runs only computes the new trials.
func (s *StoreSuite) TestExtendRuns() {
	_, err := sweep.Run(context.Background(), s.cfg, nil)
	require.NoError(s.T(), err)

	more := s.cfg
	more.Runs = s.cfg.Runs + 1
	core, logs := observer.New(zapcore.DebugLevel)
	_, err = sweep.Run(context.Background(), more, zap.New(core))
	require.NoError(s.T(), err)
	require.Equal(s.T(), len(s.cfg.NList)*s.cfg.Runs, logs.FilterMessage("trial cached").Len())
	require.Equal(s.T(), len(s.cfg.NList), logs.FilterMessage("trial done").Len())
	require.Equal(s.T(), len(more.NList)*more.Runs, s.count(more))
}

// TestSeparateFingerprints verifies that a model change does not reuse trials.
func (s *StoreSuite) TestSeparateFingerprints() {
	_, err := sweep.Run(context.Background(), s.cfg, nil)
	require.NoError(s.T(), err)

	other := s.cfg
	other.Seed = s.cfg.Seed + 1
	require.Zero(s.T(), s.count(other))
}

// TestOpenStore_NotADirectory verifies that an unusable path is reported as ErrStore.
func (s *StoreSuite) TestOpenStore_NotADirectory() {
	path := filepath.Join(s.T().TempDir(), "file")
	require.NoError(s.T(), os.WriteFile(path, []byte("x"), 0o600))

	_, err := sweep.OpenStore(path)
	require.ErrorIs(s.T(), err, sweep.ErrStore)

	cfg := s.cfg
	cfg.Cache = path
	_, err = sweep.Run(context.Background(), cfg, nil)
	require.ErrorIs(s.T(), err, sweep.ErrStore)
}

// TestFingerprint checks which fields identify a trial.
func (s *StoreSuite) TestFingerprint() {
	base := s.cfg.Fingerprint()
	require.Len(s.T(), base, 16)

	sched := s.cfg
	sched.Workers, sched.Runs, sched.NList, sched.Cache = 7, 99, []int{1000}, ""
	require.Equal(s.T(), base, sched.Fingerprint())

	model := s.cfg
	model.P1 = 0.5
	require.NotEqual(s.T(), base, model.Fingerprint())
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}
