package actor

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/cespare/xxhash/v2"
)

// hopIndices is the number of precomputed hop slots per input byte
// (spec.md §4.7: "hop[256][8]").
const hopIndices = 8

// collapseMask keeps only the bits at position 3 and 7 of each byte
// (0x88 repeated across all eight bytes) — the pattern the collapse
// operation masks its result against.
const collapseMask uint64 = 0x8888888888888888

// hopTable is loaded once at package init: for every possible bits
// value (0..255) and every hop index (0..7), a 64-bit mask. Indices
// {0,1,2,5,6} are single-bit tests against bits, index 3 is
// popcount(bits), index 4 is bits XOR 0x88, index 7 is a fast hash of
// bits — exactly the encoding spec.md §4.7 describes.
var hopTable [256][hopIndices]uint64

func init() {
	for b := 0; b < 256; b++ {
		bits := uint8(b)
		bs := bitset.From([]uint64{uint64(bits)})
		for k := 0; k < hopIndices; k++ {
			hopTable[b][k] = hopSlot(bits, bs, k)
		}
	}
}

func hopSlot(bits uint8, bs *bitset.BitSet, k int) uint64 {
	switch k {
	case 3:
		return uint64(bs.Count()) << (8 * k)
	case 4:
		return uint64(bits^0x88) << (8 * k)
	case 7:
		return xxhash.Sum64([]byte{bits})
	default:
		if !bs.Test(uint(k)) {
			return 0
		}
		return uint64(bits) << (8 * k)
	}
}
