package bichannel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBichannel_SendRecv(t *testing.T) {
	left, right := Bounded[string, string](10)

	ctx := context.Background()
	go func() {
		_ = left.Send(ctx, "hello, world!")
	}()

	msg, err := right.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello, world!", msg)

	require.NoError(t, right.Send(ctx, "oh, hello."))
	reply, err := left.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, "oh, hello.", reply)
}

func TestBichannel_CloseSurfacesErrClosed(t *testing.T) {
	left, right := Bounded[int, int](1)
	left.Close()

	_, err := right.Recv(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestBichannel_SendContextCancelled(t *testing.T) {
	left, _ := Bounded[int, int](0)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := left.Send(ctx, 1)
	require.Error(t, err)
	var sendErr *SendError[int]
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, 1, sendErr.Value)
}

func TestTaskWithShutdown_GracefulExit(t *testing.T) {
	handle, task := NewTaskWithShutdown()
	done := make(chan struct{})

	go func() {
		defer task.Close()
		defer close(done)
		for !task.ShouldExit() {
			time.Sleep(time.Millisecond)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, handle.Shutdown(ctx))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not exit")
	}
}

func TestTaskWithShutdown_AbortedTaskDoesNotHangHandle(t *testing.T) {
	handle, task := NewTaskWithShutdown()

	// Simulate a task that exits early (e.g. due to a panic recovered
	// elsewhere) without ever observing ShouldExit - the deferred Close
	// must still unblock Shutdown.
	func() {
		defer task.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, handle.Shutdown(ctx))
}
