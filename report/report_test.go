package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chixon/nanopond-ch/pond"
)

func TestWriteProducesExpectedFieldCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	w, err := Open(path)
	require.NoError(t, err)

	snap := pond.Snapshot{Clock: 5, TotalActiveCells: 2, TotalLivingCells: 1, TotalViableReplicators: 1}
	stats := pond.NewStats()
	stats.CellExecs = 10
	stats.InstExec[pond.OpFwd] = 5

	require.NoError(t, w.Write(snap, stats))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	// 6 energy + 1 marker + 4 population + 1 marker + 8 memory + 1 marker +
	// 3 interaction + 1 marker + 32 instruction frequencies + 1 metabolism.
	require.Len(t, records[0], 6+1+4+1+8+1+3+1+32+1)
}

func TestRatioZeroDenominator(t *testing.T) {
	require.Equal(t, 0.0, ratio(5, 0))
	require.Equal(t, 2.5, ratio(5, 2))
}

func TestOpenReturnsErrorOnBadPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing-dir", "report.csv"))
	require.Error(t, err)
}
