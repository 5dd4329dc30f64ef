// Package dump writes the periodic genome dump CSV: one file per
// DUMP_FREQUENCY ticks, named "<clock>.dump.csv", containing only the
// cells whose generation marks them as viable replicators.
package dump

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"

	"github.com/chixon/nanopond-ch/pond"
)

// instChars maps an opcode/5-bit value (0..31) to its dump character.
const instChars = "0123456789abcdefghijklmnopqrstuv"

// Record is the minimal per-cell view the dump writer needs; building it
// from a pond.Cell keeps this package decoupled from the Store's internal
// layout, matching §1's "genome dump writer (consumes per-cell records)".
type Record struct {
	ID         uint64
	ParentID   uint64
	Lineage    uint64
	Generation uint64
	Logo       byte
	Facing     byte
	Genome     []byte
}

// RecordFromCell builds a Record from a live cell snapshot.
func RecordFromCell(c *pond.Cell) Record {
	genome := make([]byte, len(c.Genome))
	copy(genome, c.Genome)
	return Record{
		ID:         c.ID,
		ParentID:   c.ParentID,
		Lineage:    c.Lineage,
		Generation: c.Generation,
		Logo:       c.Logo,
		Facing:     c.Facing,
		Genome:     genome,
	}
}

// CollectViable sweeps store and returns a Record for every cell with
// generation > 2.
func CollectViable(store *pond.Store) []Record {
	var out []Record
	store.Each(func(x, y int, c *pond.Cell) {
		if c.IsViableReplicator() {
			out = append(out, RecordFromCell(c))
		}
	})
	return out
}

// Write creates "<clock>.dump.csv" under dir and writes one line per
// record. A failure to open the file is logged and returned, not fatal,
// per §7's I/O error handling rule.
func Write(dir string, clock uint64, records []Record) error {
	path := filepath.Join(dir, fmt.Sprintf("%d.dump.csv", clock))
	f, err := os.Create(path)
	if err != nil {
		glog.Warningf("dump: failed to open %s: %v", path, err)
		return err
	}
	defer f.Close()

	for _, r := range records {
		if _, err := fmt.Fprintln(f, FormatRecord(r)); err != nil {
			glog.Warningf("dump: failed to write record id=%d to %s: %v", r.ID, path, err)
			return err
		}
	}
	return nil
}

// FormatRecord renders r in the same comma-delimited form used by the
// periodic dump file, for the visualization surface's single-cell
// diagnostic inspect event.
func FormatRecord(r Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d,%d,%d,%d,%c,%c,", r.ID, r.ParentID, r.Lineage, r.Generation,
		instChars[r.Logo&0x1f], instChars[r.Facing&0x1f])
	b.WriteString(formatGenome(r.Genome))
	return b.String()
}

// formatGenome renders a genome as characters from instChars, abbreviating
// runs of STOP: the first STOP in a run prints its character, the second
// through fourth print '.', and the fifth and subsequent are omitted
// entirely until a non-STOP opcode resumes the run.
func formatGenome(genome []byte) string {
	var b strings.Builder
	run := 0
	for _, op := range genome {
		if op == pond.StopOpcode {
			run++
			switch {
			case run == 1:
				b.WriteByte(instChars[op])
			case run <= 4:
				b.WriteByte('.')
			default:
				// omitted
			}
			continue
		}
		run = 0
		b.WriteByte(instChars[op&0x1f])
	}
	return b.String()
}
