package mailbox

import "github.com/cespare/xxhash/v2"

// MaxPayloadBytes bounds a message's inline payload (spec.md §3,
// "payload ≤128B") — fixed-size so Message stays pointer-free and can
// be arena-allocated as a contiguous slice (C3).
const MaxPayloadBytes = 128

// Kind tags what a message represents on the wire between actors.
type Kind uint8

const (
	KindTell Kind = iota
	KindAsk
	KindReply
	KindSupervisionFailure
)

// Message is the fixed-layout record carried by every ring. It holds
// no pointers or slices — only fixed-size scalar and array fields —
// so a block of Messages can be allocated directly out of the arena
// (C3) without hiding live references from the garbage collector.
type Message struct {
	MessageID     uint64
	CorrelationID uint64
	Source        uint64
	Target        uint64
	Kind          Kind
	Priority      uint8
	Attempts      uint8
	MaxAttempts   uint8
	TimestampNs   uint64
	TTLNs         uint64
	PayloadSize   uint16
	Payload       [MaxPayloadBytes]byte
	Checksum      uint32
}

// stampChecksum computes and stores m.Checksum over the live payload
// bytes, per spec.md §4.8 ("Stamp message checksum before store").
func stampChecksum(m *Message) {
	m.Checksum = uint32(xxhash.Sum64(m.Payload[:m.PayloadSize]))
}

// VerifyChecksum reports whether m's stored checksum still matches
// its payload — used by a dequeuer that wants to detect corruption
// before acting on a message.
func VerifyChecksum(m *Message) bool {
	return m.Checksum == uint32(xxhash.Sum64(m.Payload[:m.PayloadSize]))
}
