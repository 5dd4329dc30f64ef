package pond

// Store is the dense, flat 2D array of Cells backing the pond. Every cell
// is allocated once at startup; no allocation churn happens during a run.
// Neighbor references are computed by toroidal arithmetic (see topology),
// never stored, which sidesteps any ownership-graph problem and keeps
// neighbor access constant time.
type Store struct {
	width, height int
	depth         int
	cells         []Cell
}

// NewStore allocates a width x height grid of cells, each with a genome of
// the given depth filled with STOP and zero energy.
func NewStore(width, height, depth int) *Store {
	s := &Store{
		width:  width,
		height: height,
		depth:  depth,
		cells:  make([]Cell, width*height),
	}
	for i := range s.cells {
		s.cells[i].Genome = make([]byte, depth)
	}
	return s
}

// Width returns the grid width.
func (s *Store) Width() int { return s.width }

// Height returns the grid height.
func (s *Store) Height() int { return s.height }

// Depth returns the configured genome length (POND_DEPTH).
func (s *Store) Depth() int { return s.depth }

// At returns a mutable pointer to the cell at (x, y). Coordinates must
// already be wrapped into range; Store does no wrapping of its own.
func (s *Store) At(x, y int) *Cell {
	return &s.cells[y*s.width+x]
}

// Each calls fn once for every cell in the grid, in row-major order.
func (s *Store) Each(fn func(x, y int, c *Cell)) {
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			fn(x, y, &s.cells[y*s.width+x])
		}
	}
}
