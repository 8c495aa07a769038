package ferrier

import (
	"context"
	"sync"

	"go.uber.org/atomic"
)

// AbortHandle owns the ability to abort one in-flight request. The
// transport arms the handle when it dispatches the request; every future
// derived from that request shares the same handle, so cancellation
// propagates through composition chains.
type AbortHandle struct {
	armed atomic.Bool
	abort func()
}

// NewAbortHandle returns an unarmed handle.
func NewAbortHandle() *AbortHandle {
	return &AbortHandle{}
}

// Arm stores the abort function. Called by the transport once the request
// is initiated; aborting after the request settled must be inert, which
// holds for context cancel functions.
func (h *AbortHandle) Arm(abort func()) {
	h.abort = abort
	h.armed.Store(true)
}

// Abort cancels the in-flight request. Aborting before the request was
// initiated is a precondition violation and panics.
func (h *AbortHandle) Abort() {
	if !h.armed.Load() {
		panic("ferrier: cancel called before the request was initiated")
	}

	h.abort()
}

// Future is an asynchronous result handle carrying a value or an error
// plus the abort handle of the request that produced it. Futures derived
// via Then, Catch, or Finally share the original handle.
type Future[T any] struct {
	abort     *AbortHandle
	done      chan struct{}
	cancelled atomic.Bool
	value     T
	err       error
}

// Promise is the producer side of a Future.
type Promise[T any] struct {
	future *Future[T]
	once   sync.Once
}

// NewFuture creates a pending future and its producer handle, bound to the
// given abort handle.
func NewFuture[T any](abort *AbortHandle) (*Future[T], *Promise[T]) {
	future := &Future[T]{
		abort: abort,
		done:  make(chan struct{}),
	}

	return future, &Promise[T]{future: future}
}

// Resolve settles the future with a value. Later settles are ignored.
func (p *Promise[T]) Resolve(value T) {
	p.once.Do(func() {
		p.future.value = value
		close(p.future.done)
	})
}

// Reject settles the future with an error. Rejecting with ErrCancelled
// marks the future cancelled, which turns every chained handler into a
// no-op.
func (p *Promise[T]) Reject(err error) {
	p.once.Do(func() {
		if IsCancelled(err) {
			p.future.cancelled.Store(true)
		}

		p.future.err = err
		close(p.future.done)
	})
}

// Cancel aborts the underlying request. Safe to call after the future has
// settled; panics if the request was never initiated.
func (f *Future[T]) Cancel() {
	f.abort.Abort()
}

// Done is closed once the future has settled.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Settled reports whether the future has resolved, rejected, or been
// cancelled.
func (f *Future[T]) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Cancelled reports whether the underlying request was aborted.
func (f *Future[T]) Cancelled() bool {
	return f.cancelled.Load()
}

// Result returns the settled value or error, or ErrPending when the future
// has not settled yet.
func (f *Future[T]) Result() (T, error) {
	if !f.Settled() {
		var zero T

		return zero, ErrPending
	}

	return f.value, f.err
}

// Wait blocks until the future settles or ctx expires.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T

		return zero, ctx.Err()
	}
}

// Then derives a future by applying fn to the resolved value. Rejections
// pass through untouched and cancelled futures propagate without invoking
// fn. The derived future forwards Cancel to the original request.
func Then[T, U any](future *Future[T], fn func(T) (U, error)) *Future[U] {
	child := &Future[U]{
		abort: future.abort,
		done:  make(chan struct{}),
	}

	go func() {
		<-future.done

		if future.cancelled.Load() {
			child.cancelled.Store(true)
			child.err = ErrCancelled
			close(child.done)

			return
		}

		if future.err != nil {
			child.err = future.err
		} else {
			child.value, child.err = fn(future.value)
		}

		close(child.done)
	}()

	return child
}

// Catch derives a future by applying fn to a rejection. Resolved values
// pass through untouched and cancelled futures propagate without invoking
// fn.
func Catch[T any](future *Future[T], fn func(error) (T, error)) *Future[T] {
	child := &Future[T]{
		abort: future.abort,
		done:  make(chan struct{}),
	}

	go func() {
		<-future.done

		if future.cancelled.Load() {
			child.cancelled.Store(true)
			child.err = ErrCancelled
			close(child.done)

			return
		}

		if future.err != nil {
			child.value, child.err = fn(future.err)
		} else {
			child.value = future.value
		}

		close(child.done)
	}()

	return child
}

// Finally derives a future that invokes fn once the parent settles with a
// value or an error, then passes the outcome through. Cancelled futures
// propagate without invoking fn.
func Finally[T any](future *Future[T], fn func()) *Future[T] {
	child := &Future[T]{
		abort: future.abort,
		done:  make(chan struct{}),
	}

	go func() {
		<-future.done

		if future.cancelled.Load() {
			child.cancelled.Store(true)
			child.err = ErrCancelled
			close(child.done)

			return
		}

		fn()

		child.value = future.value
		child.err = future.err
		close(child.done)
	}()

	return child
}
