// Package mailbox implements the L2 mailbox/router (C9): four
// priority-ordered SPSC rings per mailbox, a dead-letter ring for
// messages that exhaust their retry budget, and backpressure
// signaling derived from aggregate ring occupancy (spec.md §4.8).
package mailbox

import (
	"sync/atomic"

	"github.com/semcore/semcore/arena"
	"github.com/semcore/semcore/errs"
)

// PriorityLevels is the fixed number of priority rings per mailbox
// (spec.md §3: "4 priority rings").
const PriorityLevels = 4

// Mailbox holds one actor-addressable set of priority rings plus a
// shared dead-letter ring for messages that exceed max_attempts.
type Mailbox struct {
	ID         uint64
	rings      [PriorityLevels]*ring
	deadLetter *ring

	backpressureThreshold int
	paused                atomic.Bool
}

// New builds a Mailbox with one ring per priority level, sized from
// ringCapacities (config.MailboxRingCapacities, 4 entries, each a
// power of two), a dead-letter ring of deadLetterCapacity, and a
// backpressure threshold computed from backpressureFraction.
func New(a *arena.Arena, ringCapacities [PriorityLevels]int, deadLetterCapacity int, backpressureFraction float64) (*Mailbox, error) {
	m := &Mailbox{}
	total := 0
	for i, ringCap := range ringCapacities {
		r, ok := newRing(a, ringCap)
		if !ok {
			return nil, errs.ErrCapacity
		}
		m.rings[i] = r
		total += r.capacity()
	}
	dl, ok := newRing(a, deadLetterCapacity)
	if !ok {
		return nil, errs.ErrCapacity
	}
	m.deadLetter = dl
	m.backpressureThreshold = int(float64(total) * backpressureFraction)
	return m, nil
}

// Enqueue selects the ring by priority&3 and writes msg into it. On
// repeated failure (msg.Attempts reaching msg.MaxAttempts) the
// message is instead routed to the dead-letter ring and
// errs.ErrQueueFull is still returned so the caller knows delivery
// did not happen on this attempt.
func (m *Mailbox) Enqueue(msg Message) error {
	r := m.rings[msg.Priority&3]
	err := r.enqueue(msg)
	if err == nil {
		return nil
	}
	msg.Attempts++
	if msg.Attempts >= msg.MaxAttempts {
		_ = m.deadLetter.enqueue(msg)
	}
	return err
}

// Dequeue scans priority 0→3 and returns the first available message
// from the highest-priority non-empty ring.
func (m *Mailbox) Dequeue() (Message, bool) {
	for _, r := range m.rings {
		if msg, ok := r.dequeue(); ok {
			return msg, true
		}
	}
	return Message{}, false
}

// DeadLetters returns the next message from the dead-letter ring, if
// any, for out-of-band inspection or replay.
func (m *Mailbox) DeadLetters() (Message, bool) {
	return m.deadLetter.dequeue()
}

// Backpressured reports whether aggregate queue occupancy across all
// priority rings has crossed the configured backpressure threshold.
// This is advisory only, per spec.md §4.8 — it signals upstream
// producers to pause but is never enforced inside Enqueue itself.
func (m *Mailbox) Backpressured() bool {
	used := 0
	for _, r := range m.rings {
		used += r.used()
	}
	return used >= m.backpressureThreshold
}

// Stats reports the enqueued/dequeued/dropped counters for the ring
// at the given priority level, for telemetry and tests. enqueued
// counts every attempt (successful or dropped), so
// enqueued - dequeued - dropped gives the ring's current depth.
func (m *Mailbox) Stats(priority uint8) (enqueued, dequeued, dropped uint64) {
	r := m.rings[priority&3]
	return r.enqueued.Load(), r.dequeued.Load(), r.dropped.Load()
}
