package mailbox

import (
	"github.com/semcore/semcore/arena"
	"github.com/semcore/semcore/errs"
)

// Router owns a fixed set of mailboxes and maps an actor's target id
// to one of them, per spec.md §4.8 ("Select mailbox by
// actor_to_mailbox[target % N]").
type Router struct {
	mailboxes []*Mailbox
}

// NewRouter builds n mailboxes, each identically shaped.
func NewRouter(a *arena.Arena, n int, ringCapacities [PriorityLevels]int, deadLetterCapacity int, backpressureFraction float64) (*Router, error) {
	r := &Router{mailboxes: make([]*Mailbox, n)}
	for i := 0; i < n; i++ {
		mb, err := New(a, ringCapacities, deadLetterCapacity, backpressureFraction)
		if err != nil {
			return nil, err
		}
		mb.ID = uint64(i)
		r.mailboxes[i] = mb
	}
	return r, nil
}

// MailboxFor returns the mailbox a message addressed to target routes
// through.
func (r *Router) MailboxFor(target uint64) *Mailbox {
	return r.mailboxes[target%uint64(len(r.mailboxes))]
}

// Send routes msg to the mailbox owning msg.Target and enqueues it.
func (r *Router) Send(msg Message) error {
	if len(r.mailboxes) == 0 {
		return errs.ErrInvalidArgument
	}
	return r.MailboxFor(msg.Target).Enqueue(msg)
}

// Mailbox returns the mailbox at index id, for direct dequeue by a
// scheduler replica that owns it.
func (r *Router) Mailbox(id uint64) (*Mailbox, bool) {
	if id >= uint64(len(r.mailboxes)) {
		return nil, false
	}
	return r.mailboxes[id], true
}
