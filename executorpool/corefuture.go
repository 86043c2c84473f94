package executorpool

import (
	"context"

	"github.com/joeycumines/corehost/executor"
)

// CoreFuture tags a Future's result with the core it ran on, letting callers
// confirm placement without threading the core ID through fn themselves.
type CoreFuture[T any] struct {
	CoreID int
	future *executor.Future[T]
}

// Wait blocks until the underlying task completes or ctx is cancelled.
func (f *CoreFuture[T]) Wait(ctx context.Context) (T, error) {
	return f.future.Wait(ctx)
}
