package assets

import (
	"context"
	"sync"
)

// Future is the result of an asynchronous load. It resolves exactly once;
// later Resolve calls are ignored.
type Future[T any] struct {
	ready chan struct{}
	once  sync.Once
	value T
	err   error
}

func NewFuture[T any]() *Future[T] {
	return &Future[T]{ready: make(chan struct{})}
}

// Go runs fn on a new goroutine and returns a future for its result.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := NewFuture[T]()
	go func() {
		v, err := fn(ctx)
		f.Resolve(v, err)
	}()
	return f
}

// Resolved returns an already completed future.
func Resolved[T any](v T, err error) *Future[T] {
	f := NewFuture[T]()
	f.Resolve(v, err)
	return f
}

func (f *Future[T]) Resolve(v T, err error) {
	f.once.Do(func() {
		f.value = v
		f.err = err
		close(f.ready)
	})
}

// Ready is closed once the result is available.
func (f *Future[T]) Ready() <-chan struct{} {
	return f.ready
}

// Done reports whether the future has resolved, without blocking.
func (f *Future[T]) Done() bool {
	select {
	case <-f.ready:
		return true
	default:
		return false
	}
}

// Poll returns the result without blocking. done is false while pending.
func (f *Future[T]) Poll() (v T, done bool, err error) {
	if !f.Done() {
		return v, false, nil
	}
	return f.value, true, f.err
}

// Wait blocks until the future resolves or ctx is done.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.ready:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
