package scheduler

import (
	"encoding/binary"

	"github.com/semcore/semcore/intern"
	"github.com/semcore/semcore/mailbox"
	"github.com/semcore/semcore/triple"
)

// stringRefSize is the encoded width of one intern.StringRef in a
// message payload: Hash, Length, DatatypeHash (uint32 each) plus
// TypeFlags (one byte).
const stringRefSize = 4 + 4 + 1 + 4

// encodeTriple packs t into a fixed-size payload so it fits the
// mailbox.Message's pointer-free, arena-allocated layout (C3/C9). The
// encoding is an internal wire format between scheduler replicas, not
// a spec-facing one.
func encodeTriple(t triple.Triple, buf *[mailbox.MaxPayloadBytes]byte) uint16 {
	var off int
	off += putStringRef(buf[off:], t.Subject)
	off += putStringRef(buf[off:], t.Predicate)
	off += putStringRef(buf[off:], t.Object)
	buf[off] = byte(t.ObjectKind)
	off++
	buf[off] = t.Confidence
	off++
	return uint16(off)
}

func decodeTriple(buf []byte) triple.Triple {
	var t triple.Triple
	var off int
	t.Subject, off = getStringRef(buf, off)
	t.Predicate, off = getStringRef(buf, off)
	t.Object, off = getStringRef(buf, off)
	t.ObjectKind = triple.ObjectKind(buf[off])
	off++
	t.Confidence = buf[off]
	return t
}

func putStringRef(buf []byte, r intern.StringRef) int {
	binary.LittleEndian.PutUint32(buf[0:4], r.Hash)
	binary.LittleEndian.PutUint32(buf[4:8], r.Length)
	buf[8] = byte(r.TypeFlags)
	binary.LittleEndian.PutUint32(buf[9:13], r.DatatypeHash)
	return stringRefSize
}

func getStringRef(buf []byte, off int) (intern.StringRef, int) {
	r := intern.StringRef{
		Hash:         binary.LittleEndian.Uint32(buf[off : off+4]),
		Length:       binary.LittleEndian.Uint32(buf[off+4 : off+8]),
		TypeFlags:    intern.TypeFlag(buf[off+8]),
		DatatypeHash: binary.LittleEndian.Uint32(buf[off+9 : off+13]),
	}
	return r, off + stringRefSize
}

// actorIDFor derives the target actor (and, by extension, mailbox and
// managed-actor) identity from a triple's subject, so every message
// about the same subject converges on the same actor.
func actorIDFor(t triple.Triple) uint64 {
	return uint64(t.Subject.Hash)
}
