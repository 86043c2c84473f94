// Package executor implements a single-threaded, optionally core-pinned
// cooperative task runner. Each AffineExecutor owns exactly one OS thread
// and runs at most one submitted task at a time, to completion, before
// accepting the next - there is no cross-task preemption within an
// executor, matching the reference's smol::LocalExecutor-per-thread design.
package executor

import (
	"context"
	"runtime"

	"github.com/joeycumines/corehost/bichannel"
)

// taskQueueDepth bounds how many pending Submit calls may queue before
// Submit itself blocks (or fails, given a cancelled context).
const taskQueueDepth = 64

// AffineExecutor runs submitted funcs one at a time on a single, optionally
// core-pinned, OS thread.
type AffineExecutor struct {
	coreID  int
	pinned  bool
	tasks   chan func()
	handle  bichannel.TaskShutdownHandle
	stopped chan struct{}
}

// Logger is the minimal surface AffineExecutor needs to report non-fatal
// affinity failures. It deliberately avoids logiface's generic Event type
// parameter so this package doesn't need to know which backend (izerolog or
// otherwise) the host wired up; hostloop provides an adapter over
// logiface.Logger[*izerolog.Event].
type Logger interface {
	Warnf(format string, args ...any)
}

// New starts an executor pinned to the given core ID. On platforms without
// affinity support, or if the underlying syscall fails, pinning is skipped
// and logged via log (which may be nil to discard).
func New(coreID int, log Logger) *AffineExecutor {
	handle, task := bichannel.NewTaskWithShutdown()
	e := &AffineExecutor{
		coreID:  coreID,
		tasks:   make(chan func(), taskQueueDepth),
		handle:  handle,
		stopped: make(chan struct{}),
	}
	go e.run(task, log)
	return e
}

func (e *AffineExecutor) run(task *bichannel.TaskWithShutdown, log Logger) {
	// close(e.stopped) runs before task.Close's acknowledgement, so Submit
	// already sees the executor as stopped when Stop returns.
	defer task.Close()
	defer close(e.stopped)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := setAffinity(e.coreID); err != nil {
		e.pinned = false
		if log != nil {
			log.Warnf("executor: core %d affinity not set: %v", e.coreID, err)
		}
	} else {
		e.pinned = true
	}

	for {
		select {
		case <-task.Done():
			return
		case fn, ok := <-e.tasks:
			if !ok {
				return
			}
			runTask(fn, log)
		}
	}
}

// runTask runs fn with a recover guard, so a panicking task fails that
// one task instead of taking down the executor's thread - matching the
// reference's catch-unwind-at-task-boundary behavior. Tasks submitted
// via Spawn additionally surface the panic through their Future's error;
// this is the backstop for fn submitted directly via Submit.
func runTask(fn func(), log Logger) {
	defer func() {
		if r := recover(); r != nil && log != nil {
			log.Warnf("executor: task panicked: %v", r)
		}
	}()
	fn()
}

// Submit enqueues fn to run on the executor's thread, blocking until either
// it is accepted or ctx is cancelled. fn runs to completion before the next
// queued task starts.
func (e *AffineExecutor) Submit(ctx context.Context, fn func()) error {
	select {
	case <-e.stopped:
		return ErrClosed
	default:
	}
	select {
	case e.tasks <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-e.stopped:
		return ErrClosed
	}
}

// CoreID returns the core this executor was constructed with.
func (e *AffineExecutor) CoreID() int { return e.coreID }

// Pinned reports whether affinity was actually applied (false on
// unsupported platforms or if the syscall failed).
func (e *AffineExecutor) Pinned() bool { return e.pinned }

// Stop requests the executor's run loop exit after its current task (if
// any) finishes, and waits for acknowledgement.
func (e *AffineExecutor) Stop(ctx context.Context) error {
	return e.handle.Shutdown(ctx)
}
