package pond

// Stats accumulates per-report counters (§4.7) across VM activations
// between two report boundaries, and can be swept against a Store to
// produce a point-in-time Snapshot.
type Stats struct {
	InstExec      [32]uint64 // instruction-execution counts, indexed by opcode
	CellExecs     uint64     // number of cell activations

	ViableReplaced uint64
	ViableKilled   uint64
	ViableShared   uint64

	MemSpecialReads  uint64
	MemPrivateReads  uint64
	MemOutputReads   uint64
	MemInputReads    uint64
	MemSpecialWrites uint64
	MemPrivateWrites uint64
	MemOutputWrites  uint64
	MemInputWrites   uint64

	lastViableReplicators uint64
	everReported          bool
}

// NewStats returns a zeroed per-report counter block.
func NewStats() *Stats { return &Stats{} }

// Reset clears every per-report counter, as done at each report boundary.
func (s *Stats) Reset() {
	s.InstExec = [32]uint64{}
	s.CellExecs = 0
	s.ViableReplaced = 0
	s.ViableKilled = 0
	s.ViableShared = 0
	s.MemSpecialReads = 0
	s.MemPrivateReads = 0
	s.MemOutputReads = 0
	s.MemInputReads = 0
	s.MemSpecialWrites = 0
	s.MemPrivateWrites = 0
	s.MemOutputWrites = 0
	s.MemInputWrites = 0
}

// Snapshot is the set of fields computed by a full grid sweep at a report
// boundary.
type Snapshot struct {
	Clock uint64

	TotalActiveCells      uint64
	TotalLivingCells       uint64
	TotalViableReplicators uint64
	MaxGeneration          uint64

	TotalEnergy          uint64
	MaxCellEnergy        uint64
	MaxLivingCellEnergy  uint64
	TotalLivingEnergy    uint64
	TotalViableEnergy    uint64

	// ViableReplicatorEdge is true exactly when the number of viable
	// replicators transitioned to or from zero since the previous report.
	ViableReplicatorEdge bool
}

// Sweep walks the entire grid and computes a Snapshot, then updates the
// edge-detection state used for ViableReplicatorEdge.
func (s *Stats) Sweep(clock uint64, store *Store) Snapshot {
	var snap Snapshot
	snap.Clock = clock
	store.Each(func(x, y int, c *Cell) {
		if !c.IsActive() {
			return
		}
		snap.TotalActiveCells++
		snap.TotalEnergy += c.Energy
		if c.Energy > snap.MaxCellEnergy {
			snap.MaxCellEnergy = c.Energy
		}
		if c.Generation > snap.MaxGeneration {
			snap.MaxGeneration = c.Generation
		}
		if c.IsLiving() {
			snap.TotalLivingCells++
			snap.TotalLivingEnergy += c.Energy
			if c.Energy > snap.MaxLivingCellEnergy {
				snap.MaxLivingCellEnergy = c.Energy
			}
		}
		if c.IsViableReplicator() {
			snap.TotalViableReplicators++
			snap.TotalViableEnergy += c.Energy
		}
	})

	wasZero := s.everReported && s.lastViableReplicators == 0
	isZero := snap.TotalViableReplicators == 0
	snap.ViableReplicatorEdge = s.everReported && wasZero != isZero
	s.lastViableReplicators = snap.TotalViableReplicators
	s.everReported = true

	return snap
}
