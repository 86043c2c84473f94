package bichannel

import "context"

// TaskShutdownHandle requests graceful shutdown of a task paired via
// NewTaskWithShutdown, and awaits its acknowledgement.
type TaskShutdownHandle struct {
	kill Hookshot[struct{}, struct{}]
}

// TaskWithShutdown is held by the long-lived task side. ShouldExit performs
// a non-blocking peek for a shutdown request. The task MUST defer a call to
// Close - the Go analogue of the original's Drop impl - so that a handle
// awaiting Shutdown never hangs if the task exits (or panics) without
// observing the request via ShouldExit.
type TaskWithShutdown struct {
	ack Hookshot[struct{}, struct{}]
}

// NewTaskWithShutdown constructs a paired handle/task-side value.
func NewTaskWithShutdown() (TaskShutdownHandle, *TaskWithShutdown) {
	killSend, killRecv := NewHookshot[struct{}, struct{}]()
	return TaskShutdownHandle{kill: killSend}, &TaskWithShutdown{ack: killRecv}
}

// ShouldExit reports whether the paired handle has requested shutdown. It
// never blocks.
func (t *TaskWithShutdown) ShouldExit() bool {
	_, ok := t.ack.TryRecv()
	return ok
}

// Done exposes the shutdown-request channel for use in a select alongside
// other work, so a task can react to shutdown without polling ShouldExit in
// a busy loop.
func (t *TaskWithShutdown) Done() <-chan struct{} {
	return t.ack.RecvChan()
}

// Close acknowledges shutdown unconditionally. Call it via defer in the
// task's goroutine immediately after NewTaskWithShutdown, so that any exit
// path - graceful, panicking, or otherwise - unblocks a concurrent
// Shutdown/ShutdownBlocking call.
func (t *TaskWithShutdown) Close() {
	// Best effort: if the handle already sent the request, this is a
	// reply; if it never will, this is a no-op send to a buffer of one
	// that nobody will read, which is fine - Hookshot's send buffer is
	// sized 1, so this never blocks.
	_ = t.ack.SendBlocking(struct{}{})
}

// Shutdown requests the paired task exit and blocks until it (or its
// deferred Close) acknowledges.
func (h TaskShutdownHandle) Shutdown(ctx context.Context) error {
	if err := h.kill.SendBlocking(struct{}{}); err != nil {
		return err
	}
	_, err := h.kill.Recv(ctx)
	return err
}
