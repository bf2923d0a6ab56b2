package errs

import (
	"sync"

	"go.uber.org/multierr"
)

// Collector accumulates errors from a single logical operation (one
// report, one supervision decision) and renders them as a single
// error. Safe for concurrent use; mirrors the teacher's hand-rolled
// accumulator but delegates formatting to multierr so nested
// aggregation (a OneForAll restart collecting per-actor failures)
// composes without manual string building.
type Collector struct {
	mu   sync.Mutex
	errs []error
}

// Add appends err to the collection. A nil err is a no-op.
func (c *Collector) Add(err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
}

// Errored reports whether any error has been added.
func (c *Collector) Errored() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.errs) > 0
}

// Len returns the number of collected errors.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.errs)
}

// Err returns the collected errors combined via multierr, or nil if
// none were added.
func (c *Collector) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var combined error
	for _, e := range c.errs {
		combined = multierr.Append(combined, e)
	}
	return combined
}
