// Package topology maps a grid position and a direction index to a
// neighboring grid position, wrapping toroidally on both axes. Three
// variants are supported, selected by the configured DIRECTIONS value:
// 4-connected, 8-connected, and 6-connected (hexagonal, offset-coordinate).
package topology

import "fmt"

// Mapper computes neighbor coordinates for a fixed grid size.
type Mapper interface {
	// Neighbor returns the wrapped coordinate reached from (x, y) by
	// facing dir.
	Neighbor(x, y int, dir byte) (int, int)
	// FacingMask returns the bitmask a facing value is reduced to before
	// being interpreted as a direction index.
	FacingMask() byte
}

// hexDirmap biases certain opcode values toward certain hex directions
// when an opcode value is reinterpreted as a facing. This is a literal
// specification constant, not independently derived.
var hexDirmap = [32]byte{
	0, 1, 2, 3, 4, 5, 0, 1, 2, 3, 3, 4, 5, 0, 1, 2,
	3, 4, 5, 0, 1, 2, 2, 3, 4, 5, 0, 1, 2, 3, 4, 5,
}

type fourConnected struct{ width, height int }

func (f fourConnected) FacingMask() byte { return 0b11 }

func (f fourConnected) Neighbor(x, y int, dir byte) (int, int) {
	switch dir & 0b11 {
	case 0: // N
		return x, wrap(y-1, f.height)
	case 1: // E
		return wrap(x+1, f.width), y
	case 2: // S
		return x, wrap(y+1, f.height)
	default: // W
		return wrap(x-1, f.width), y
	}
}

type eightConnected struct{ width, height int }

func (e eightConnected) FacingMask() byte { return 0b111 }

func (e eightConnected) Neighbor(x, y int, dir byte) (int, int) {
	switch dir & 0b111 {
	case 0: // N
		return x, wrap(y-1, e.height)
	case 1: // NE
		return wrap(x+1, e.width), wrap(y-1, e.height)
	case 2: // E
		return wrap(x+1, e.width), y
	case 3: // SE
		return wrap(x+1, e.width), wrap(y+1, e.height)
	case 4: // S
		return x, wrap(y+1, e.height)
	case 5: // SW
		return wrap(x-1, e.width), wrap(y+1, e.height)
	case 6: // W
		return wrap(x-1, e.width), y
	default: // NW
		return wrap(x-1, e.width), wrap(y-1, e.height)
	}
}

type hexConnected struct{ width, height int }

// FacingMask is the full 5-bit opcode range, not a 3-bit direction count:
// hexDirmap biases the full table of opcode values toward the 6 physical
// directions, and a narrower mask would permanently dead-code entries 8-31
// of that table.
func (h hexConnected) FacingMask() byte { return 0x1f }

// odd-row offsets: (+1,-1),(+1,0),(+1,+1),(0,+1),(-1,0),(0,-1)
var hexOddOffsets = [6][2]int{{1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 0}, {0, -1}}

// even-row offsets: (0,-1),(+1,0),(0,+1),(-1,+1),(-1,0),(-1,-1)
var hexEvenOffsets = [6][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}}

func (h hexConnected) Neighbor(x, y int, dir byte) (int, int) {
	d := hexDirmap[dir&0x1f]
	var off [2]int
	if y&1 != 0 {
		off = hexOddOffsets[d]
	} else {
		off = hexEvenOffsets[d]
	}
	return wrap(x+off[0], h.width), wrap(y+off[1], h.height)
}

// Wrap reduces v into [0, size) toroidally, wrapping negative values back
// around rather than truncating toward zero.
func Wrap(v, size int) int { return wrap(v, size) }

func wrap(v, size int) int {
	v %= size
	if v < 0 {
		v += size
	}
	return v
}

// New builds the Mapper for the configured number of directions (4, 6, or 8).
func New(directions, width, height int) (Mapper, error) {
	switch directions {
	case 4:
		return fourConnected{width, height}, nil
	case 6:
		return hexConnected{width, height}, nil
	case 8:
		return eightConnected{width, height}, nil
	default:
		return nil, fmt.Errorf("topology: unsupported DIRECTIONS=%d (want 4, 6, or 8)", directions)
	}
}
