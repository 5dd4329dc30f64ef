package pond

// Bit masks applied to the fixed-width fields of a cell and its VM.
const (
	LogoMask   = 0x1f // 5 bits
	InstMask   = 0x1f // 5 bits
	RegMask    = 0xff // 8 bits
	MemMask    = 0x1f // 5 bits
	StopOpcode = 0    // opcode #0, STOP
)

// Cell is a fixed record occupying one grid position. The Store owns every
// Cell for the lifetime of the run; nothing outside the engine ever
// allocates or frees one.
type Cell struct {
	ID         uint64
	ParentID   uint64
	Lineage    uint64
	Generation uint64
	Energy     uint64
	Logo       byte
	Facing     byte
	Genome     []byte   // len == PondDepth, each entry < 32
	RAM        [16]byte // [0:8) private, [8:16) public
}

// IsViableReplicator reports whether the cell counts as a viable
// replicator for display, dump, and statistics purposes (generation > 2).
func (c *Cell) IsViableReplicator() bool { return c.Generation > 2 }

// IsLiving reports whether the cell counts as "living" (generation > 1).
func (c *Cell) IsLiving() bool { return c.Generation > 1 }

// IsActive reports whether the cell currently holds any energy.
func (c *Cell) IsActive() bool { return c.Energy > 0 }

// reset reinitializes a cell's identity fields to those of a freshly
// seeded or killed cell: no parent, zero generation, fresh lineage.
func (c *Cell) reset(newID uint64) {
	c.ID = newID
	c.ParentID = 0
	c.Lineage = newID
	c.Generation = 0
	c.Logo = 0
	c.Facing = 0
}

// clearGenome fills the genome with STOP opcodes.
func (c *Cell) clearGenome() {
	for i := range c.Genome {
		c.Genome[i] = StopOpcode
	}
}
