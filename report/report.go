// Package report writes the pipe-separated, comma-delimited statistics CSV
// line emitted once per REPORT_FREQUENCY ticks. It consumes a
// pond.Snapshot and the pond.Stats counters gathered over the reporting
// period; it does not read the cell store directly, keeping the
// CSV-writing concern entirely outside the simulation core per §1/§6.
package report

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/golang/glog"

	"github.com/chixon/nanopond-ch/pond"
)

// Writer appends one statistics line per Write call to an underlying CSV
// file, opened once and kept for the lifetime of the run.
type Writer struct {
	f *os.File
	w *csv.Writer
}

// Open creates (or truncates) path and returns a Writer over it. A failure
// to open is returned to the caller rather than being fatal: per §7, I/O
// errors here are diagnostics, not simulation-ending conditions.
func Open(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("report: open %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	w.Comma = ','
	return &Writer{f: f, w: w}, nil
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	w.w.Flush()
	return w.f.Close()
}

// Write emits one statistics line for snap/stats. Field order matches §6
// exactly: energy section, population section, memory-access section,
// viable-interaction section, then the 32 instruction frequencies and the
// average metabolism, with "|" section markers between groups.
func (w *Writer) Write(snap pond.Snapshot, stats *pond.Stats) error {
	avgLivingEnergy := ratio(float64(snap.TotalLivingEnergy), float64(snap.TotalLivingCells))
	avgViableEnergy := ratio(float64(snap.TotalViableEnergy), float64(snap.TotalViableReplicators))

	record := []string{
		fmt.Sprintf("%d", snap.Clock),
		fmt.Sprintf("%d", snap.TotalEnergy),
		fmt.Sprintf("%d", snap.MaxCellEnergy),
		fmt.Sprintf("%d", snap.MaxLivingCellEnergy),
		fmt.Sprintf("%.4f", avgLivingEnergy),
		fmt.Sprintf("%.4f", avgViableEnergy),
		"|",
		fmt.Sprintf("%d", snap.TotalActiveCells),
		fmt.Sprintf("%d", snap.TotalLivingCells),
		fmt.Sprintf("%d", snap.TotalViableReplicators),
		fmt.Sprintf("%d", snap.MaxGeneration),
		"|",
		fmt.Sprintf("%d", stats.MemSpecialReads),
		fmt.Sprintf("%d", stats.MemPrivateReads),
		fmt.Sprintf("%d", stats.MemOutputReads),
		fmt.Sprintf("%d", stats.MemInputReads),
		fmt.Sprintf("%d", stats.MemSpecialWrites),
		fmt.Sprintf("%d", stats.MemPrivateWrites),
		fmt.Sprintf("%d", stats.MemOutputWrites),
		fmt.Sprintf("%d", stats.MemInputWrites),
		"|",
		fmt.Sprintf("%d", stats.ViableReplaced),
		fmt.Sprintf("%d", stats.ViableKilled),
		fmt.Sprintf("%d", stats.ViableShared),
		"|",
	}
	for _, count := range stats.InstExec {
		record = append(record, fmt.Sprintf("%.4f", ratio(float64(count), float64(stats.CellExecs))))
	}
	record = append(record, fmt.Sprintf("%.4f", ratio(float64(sumInstExec(stats)), float64(stats.CellExecs))))

	if err := w.w.Write(record); err != nil {
		glog.Warningf("report: failed to write CSV record at clock=%d: %v", snap.Clock, err)
		return err
	}
	w.w.Flush()
	return w.w.Error()
}

// ratio returns 0.0 when the denominator is 0, matching §6's rule that
// averages default to zero rather than NaN/Inf.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// sumInstExec is the average-metabolism numerator: total instructions
// executed across the reporting period.
func sumInstExec(stats *pond.Stats) uint64 {
	var total uint64
	for _, c := range stats.InstExec {
		total += c
	}
	return total
}
