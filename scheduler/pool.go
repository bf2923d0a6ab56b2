package scheduler

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/semcore/semcore/triple"
)

// Pool runs a fixed set of scheduler replicas — one per core, per
// spec.md §4.10's "the engine may be replicated per core; no cross-
// scheduler shared mutable state is permitted except through
// mailboxes" — bounding how many run their cycle or maintenance pass
// concurrently.
type Pool struct {
	replicas []*Scheduler

	cycleSem *semaphore.Weighted
	maintSem *semaphore.Weighted
}

// NewPool builds a Pool over replicas. maxConcurrentCycles bounds how
// many replicas may be inside RunCycle at once; maxConcurrentMaint
// bounds concurrent Maintain passes, kept separate so a maintenance
// sweep never starves the hot path of its concurrency budget. Either
// limit ≤0 means "unbounded" (len(replicas)).
func NewPool(replicas []*Scheduler, maxConcurrentCycles, maxConcurrentMaint int) *Pool {
	if maxConcurrentCycles <= 0 {
		maxConcurrentCycles = len(replicas)
	}
	if maxConcurrentMaint <= 0 {
		maxConcurrentMaint = len(replicas)
	}
	return &Pool{
		replicas: replicas,
		cycleSem: semaphore.NewWeighted(int64(maxConcurrentCycles)),
		maintSem: semaphore.NewWeighted(int64(maxConcurrentMaint)),
	}
}

// RunCycle drives every replica's RunCycle against its corresponding
// graph concurrently, bounded by the pool's cycle semaphore. len(graphs)
// must equal len(replicas). The first replica error cancels ctx for the
// rest via errgroup, but per-triple failures never produce an error here
// — only a genuinely unrecoverable condition (e.g. a cancelled context)
// does.
func (p *Pool) RunCycle(ctx context.Context, graphs []*triple.Graph, now uint64) ([]CycleReport, error) {
	reports := make([]CycleReport, len(p.replicas))
	g, gctx := errgroup.WithContext(ctx)
	for i, replica := range p.replicas {
		i, replica := i, replica
		g.Go(func() error {
			if err := p.cycleSem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer p.cycleSem.Release(1)

			report, err := replica.RunCycle(graphs[i], now)
			reports[i] = report
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return reports, err
	}
	return reports, nil
}

// RunMaintenance runs every replica's Maintain pass concurrently,
// bounded by the pool's maintenance semaphore so a full sweep across
// many replicas never competes unbounded with RunCycle for CPU.
func (p *Pool) RunMaintenance(ctx context.Context, pruneThreshold float64) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, replica := range p.replicas {
		replica := replica
		g.Go(func() error {
			if err := p.maintSem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer p.maintSem.Release(1)
			replica.Maintain(pruneThreshold)
			return nil
		})
	}
	return g.Wait()
}

// Replicas returns the pool's schedulers, in order.
func (p *Pool) Replicas() []*Scheduler {
	return p.replicas
}
