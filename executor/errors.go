package executor

import "errors"

var (
	// ErrClosed is returned by Submit once the executor has been stopped.
	ErrClosed = errors.New("executor: closed")

	// ErrAffinityUnsupported is logged (not returned - affinity failure is
	// non-fatal) when the host platform has no CPU pinning support.
	ErrAffinityUnsupported = errors.New("executor: CPU affinity unsupported on this platform")

	// ErrPanic wraps a recovered task panic surfaced through a Future's
	// error, so a panicking task fails its caller instead of tearing down
	// the executor's thread.
	ErrPanic = errors.New("executor: task panicked")
)
