package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.NotNil(t, cfg.InitSeed, "Validate should resolve a wall-clock seed")
}

func TestValidateRejectsBadPondDepth(t *testing.T) {
	cfg := Default()
	cfg.PondDepth = 17
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsBadDirections(t *testing.T) {
	cfg := Default()
	cfg.Directions = 5
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsBadCombineSense(t *testing.T) {
	cfg := Default()
	cfg.CombineSense = 2
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsExecStartOutOfRange(t *testing.T) {
	cfg := Default()
	cfg.ExecStartInst = cfg.PondDepth
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsZeroReportFrequency(t *testing.T) {
	cfg := Default()
	cfg.ReportFrequency = 0
	require.Error(t, cfg.Validate(), "REPORT_FREQUENCY=0 would divide by zero in ShouldReport")
}

func TestValidateRejectsZeroRefreshFrequency(t *testing.T) {
	cfg := Default()
	cfg.RefreshFrequency = 0
	require.Error(t, cfg.Validate(), "REFRESH_FREQUENCY=0 would divide by zero in ShouldRefresh")
}

func TestValidateRejectsZeroFailedKillPenalty(t *testing.T) {
	cfg := Default()
	cfg.FailedKillPenalty = 0
	require.Error(t, cfg.Validate(), "FAILED_KILL_PENALTY=0 would divide by zero in opKill")
}

func TestValidatePreservesExplicitSeed(t *testing.T) {
	cfg := Default()
	seed := int64(12345)
	cfg.InitSeed = &seed
	require.NoError(t, cfg.Validate())
	require.Equal(t, int64(12345), *cfg.InitSeed)
}
