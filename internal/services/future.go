package services

import "context"

// Result is the tagged outcome of an asynchronous call: either Value or Err.
type Result[T any] struct {
	Value T
	Err   error
}

func (r Result[T]) OK() bool {
	return r.Err == nil
}

type Future[T any] struct {
	done   chan struct{}
	result Result[T]
}

// Go runs fn on its own goroutine. ctx is handed to fn unchanged.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		value, err := fn(ctx)
		f.result = Result[T]{Value: value, Err: err}
	}()
	return f
}

// Await blocks until the call resolves or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.result.Value, f.result.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Result returns the outcome. It must only be called after Done is closed.
func (f *Future[T]) Result() Result[T] {
	return f.result
}
