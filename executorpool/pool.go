// Package executorpool composes a fixed set of core-pinned executor.AffineExecutor
// instances into a pool, providing both direct core targeting and
// round-robin placement, plus Scope for grouping related spawns under one
// shutdown/cancellation.
package executorpool

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/joeycumines/corehost/executor"
)

// Pool is a fixed-size collection of single-threaded, core-pinned
// executors, numbered 0..Size()-1 matching core ID.
type Pool struct {
	executors []*executor.AffineExecutor
	next      atomic.Uint64
}

// New starts cores affine executors, one per core ID in [0, cores).
func New(cores int, log executor.Logger) *Pool {
	p := &Pool{executors: make([]*executor.AffineExecutor, cores)}
	for i := 0; i < cores; i++ {
		p.executors[i] = executor.New(i, log)
	}
	return p
}

// Size reports how many executors the pool holds.
func (p *Pool) Size() int { return len(p.executors) }

// Executor returns the underlying executor for a core ID, or nil if out of
// range.
func (p *Pool) Executor(coreID int) *executor.AffineExecutor {
	if coreID < 0 || coreID >= len(p.executors) {
		return nil
	}
	return p.executors[coreID]
}

// SpawnOnCore runs fn on the specified core's executor.
func SpawnOnCore[T any](ctx context.Context, p *Pool, coreID int, fn func() (T, error)) (*CoreFuture[T], error) {
	e := p.Executor(coreID)
	if e == nil {
		return nil, fmt.Errorf("executorpool: core %d out of range [0,%d)", coreID, len(p.executors))
	}
	f, err := executor.Spawn(ctx, e, fn)
	if err != nil {
		return nil, err
	}
	return &CoreFuture[T]{CoreID: coreID, future: f}, nil
}

// SpawnOnAny places fn on the next executor in round-robin order.
func SpawnOnAny[T any](ctx context.Context, p *Pool, fn func() (T, error)) (*CoreFuture[T], error) {
	idx := int(p.next.Add(1)-1) % len(p.executors)
	return SpawnOnCore(ctx, p, idx, fn)
}

// Close stops every executor in the pool, waiting for in-flight tasks to
// finish. It attempts every executor and returns the first error seen.
func (p *Pool) Close(ctx context.Context) error {
	var firstErr error
	for _, e := range p.executors {
		if err := e.Stop(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
