package actor

import (
	"sync"

	"github.com/semcore/semcore/errs"
	"github.com/semcore/semcore/tick"
)

// Substrate is the actor matrix: an indexed table of actors plus the
// budget and instrumentation every collapse is measured against. Per
// spec.md §9's design note, the actor-supervisor relationship is
// expressed as two indexed tables rather than a cyclic structure —
// this table holds supervisor_id per actor; the supervisor package
// (C10) holds the reverse managed_actor_ids table.
type Substrate struct {
	mu           sync.Mutex
	actors       map[uint64]*Actor
	maxActors    int
	instr        *tick.Instrumentation
	budgetCycles uint64
}

// NewSubstrate builds an actor matrix bounded to maxActors entries.
// budgetCycles is the configured L1 budget (config.L1BudgetCycles);
// instr may be nil to disable tick accounting.
func NewSubstrate(maxActors int, instr *tick.Instrumentation, budgetCycles uint64) *Substrate {
	return &Substrate{
		actors:       make(map[uint64]*Actor, maxActors),
		maxActors:    maxActors,
		instr:        instr,
		budgetCycles: budgetCycles,
	}
}

// Register creates a new actor under id with the given supervisor.
// Returns errs.ErrDuplicate if id is already registered,
// errs.ErrCapacity if the table is full.
func (s *Substrate) Register(id, supervisorID uint64) (*Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.actors[id]; exists {
		return nil, errs.ErrDuplicate
	}
	if len(s.actors) >= s.maxActors {
		return nil, errs.ErrCapacity
	}
	a := &Actor{ID: id, SupervisorID: supervisorID}
	s.actors[id] = a
	return a, nil
}

// Get returns the actor registered under id, if any.
func (s *Substrate) Get(id uint64) (*Actor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.actors[id]
	return a, ok
}

// Remove drops an actor from the table entirely (used on
// Terminated, never on Restarting — restart uses Actor.Reset).
func (s *Substrate) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.actors, id)
}

// Collapse runs the collapse operation on the actor registered under
// id. Returns errs.ErrNotFound if id is unknown, or whatever Collapse
// itself returns (errs.ErrBudgetExceeded on an overrun — recorded,
// never a cancellation).
func (s *Substrate) Collapse(id uint64) error {
	s.mu.Lock()
	a, ok := s.actors[id]
	s.mu.Unlock()
	if !ok {
		return errs.ErrNotFound
	}
	return Collapse(a, s.instr, s.budgetCycles)
}

// Len reports the number of registered actors.
func (s *Substrate) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.actors)
}
