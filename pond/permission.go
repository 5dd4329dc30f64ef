package pond

import (
	"math/bits"

	"github.com/chixon/nanopond-ch/pond/rng"
)

// Sense distinguishes the two families of cross-cell interaction. Negative
// interactions (kill, reproduce-overwrite) use SenseNegative; cooperative
// interactions (share, neighbor-public RAM write) use SensePositive.
type Sense int

const (
	SenseNegative Sense = 0
	SensePositive Sense = 1
)

// accessAllowed implements the stochastic Hamming-distance permission
// check: a target cell's logo is compared against an accessor's guess, and
// a freshly seeded cell (ParentID == 0) always permits access regardless
// of the dice roll.
func accessAllowed(r *rng.MT19937, target *Cell, guess byte, sense Sense) bool {
	if target.ParentID == 0 {
		return true
	}
	h := bits.OnesCount8((target.Logo ^ guess) & LogoMask)
	roll := int(r.Uint32() & 0xf)
	if sense == SenseNegative {
		return roll <= h
	}
	return roll >= h
}
