package async

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
)

// Result is the single value delivered by Go
type Result[T any] struct {
	Value T
	Err   error
}

// Go runs fn in a new goroutine and delivers its outcome on a channel of
// capacity one. Exactly one Result is sent; the channel is never closed
// without a value, so receivers can tell "finished" from "abandoned" by
// selecting on their own context.
//
// Unlike Dispatch, fn receives ctx itself, so cancelling the caller also
// cancels the task. A panic in fn is recovered and delivered as an error.
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) <-chan Result[T] {
	ch := make(chan Result[T], 1)

	go func() {
		var v T
		err := protect(ctx, func() error {
			var err error
			v, err = fn(ctx)
			return err
		})
		ch <- Result[T]{Value: v, Err: err}
	}()

	return ch
}

// Await blocks until ch delivers or ctx is done
func Await[T any](ctx context.Context, ch <-chan Result[T]) (T, error) {
	select {
	case r := <-ch:
		return r.Value, r.Err
	case <-ctx.Done():
		var zero T
		return zero, goerr.Wrap(ctx.Err(), "cancelled while waiting for async task")
	}
}
