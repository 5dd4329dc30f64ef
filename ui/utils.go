package ui

import (
	"github.com/golang/glog"

	"github.com/chixon/nanopond-ch/dump"
	"github.com/chixon/nanopond-ch/pond"
)

// Inspect implements the left-click UI event: if (x, y) lands on a viable
// replicator, its genome is logged to the diagnostic stream in the same
// format as a periodic dump record.
func Inspect(store *pond.Store, x, y int) {
	if x < 0 || x >= store.Width() || y < 0 || y >= store.Height() {
		return
	}
	c := store.At(x, y)
	if !c.IsViableReplicator() {
		return
	}
	glog.Infof("inspect (%d,%d): %s", x, y, dump.FormatRecord(dump.RecordFromCell(c)))
}
