package async

import (
	"context"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Dispatch runs handler in a new goroutine that outlives ctx. Only the
// ctxlog logger is carried over; cancelling ctx does not reach handler.
// Errors and panics are logged, nothing is returned to the caller.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bg := Detach(ctx)

	go func() {
		if err := protect(bg, func() error { return handler(bg) }); err != nil {
			ctxlog.From(bg).Error("background task failed", "error", err)
		}
	}()
}

// Detach returns a background context holding ctx's logger
func Detach(ctx context.Context) context.Context {
	return ctxlog.With(context.Background(), ctxlog.From(ctx))
}

// protect calls fn, turning a panic into a logged error
func protect(ctx context.Context, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			ctxlog.From(ctx).Error("panic in async task",
				"recover", r,
				"stack", string(debug.Stack()))
			err = goerr.New("panic in async task", goerr.V("recover", r))
		}
	}()

	return fn()
}
