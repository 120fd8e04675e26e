// Package pool implements a bounded connection pool for an external
// relational-database collaborator: a configurable
// min/max semaphore-gated set of resources, with a recycle-on-invalid
// policy and a PoolTimeout error when a wait exceeds its deadline.
package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Factory creates one new resource (e.g. the Adapter's CreateConnection).
type Factory[T any] func(ctx context.Context) (T, error)

// Validator reports whether a checked-out resource is still usable
// (e.g. the Adapter's IsValid). An invalid resource is discarded rather
// than returned to the pool.
type Validator[T any] func(T) bool

// Closer releases a discarded resource (e.g. the Adapter's CloseConnection).
type Closer[T any] func(T) error

// TimeoutError is PoolTimeout: Acquire's context was done before a resource
// became available.
type TimeoutError struct {
	Cause error
}

func (e *TimeoutError) Error() string { return fmt.Sprintf("pool: acquire timed out: %v", e.Cause) }
func (e *TimeoutError) Unwrap() error { return e.Cause }

// Pool hands out at most Max resources concurrently via a weighted
// semaphore, reusing returned idle resources. Min is stored but has no
// effect: the pool creates resources only on demand in Acquire and never
// tops the idle set back up to Min.
type Pool[T any] struct {
	factory   Factory[T]
	validator Validator[T]
	closer    Closer[T]

	min, max int64
	sem      *semaphore.Weighted

	mu    sync.Mutex
	idle  []T
	count int64 // resources currently created, checked out or idle
}

// New constructs a pool bounded by [min, max]. validator/closer may be nil,
// in which case every resource is always considered valid and discarding
// one is a no-op.
func New[T any](min, max int64, factory Factory[T], validator Validator[T], closer Closer[T]) *Pool[T] {
	if max <= 0 {
		max = 1
	}
	if min > max {
		min = max
	}
	return &Pool[T]{
		factory:   factory,
		validator: validator,
		closer:    closer,
		min:       min,
		max:       max,
		sem:       semaphore.NewWeighted(max),
	}
}

// Acquire checks out a resource, blocking until one is available or ctx is
// done. It reuses an idle
// resource when one passes validation, discarding invalid ones and creating
// fresh resources up to Max as needed.
func (p *Pool[T]) Acquire(ctx context.Context) (T, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		var zero T
		return zero, &TimeoutError{Cause: err}
	}

	for {
		p.mu.Lock()
		if n := len(p.idle); n > 0 {
			r := p.idle[n-1]
			p.idle = p.idle[:n-1]
			p.mu.Unlock()
			if p.validator == nil || p.validator(r) {
				return r, nil
			}
			p.discard(r)
			continue
		}
		p.mu.Unlock()
		break
	}

	r, err := p.factory(ctx)
	if err != nil {
		p.sem.Release(1)
		var zero T
		return zero, err
	}
	p.mu.Lock()
	p.count++
	p.mu.Unlock()
	return r, nil
}

// Release returns r to the idle set for reuse, or discards it if it no
// longer validates.
func (p *Pool[T]) Release(r T) {
	if p.validator != nil && !p.validator(r) {
		p.discard(r)
		p.sem.Release(1)
		return
	}
	p.mu.Lock()
	p.idle = append(p.idle, r)
	p.mu.Unlock()
	p.sem.Release(1)
}

// Discard drops r from the pool entirely rather than returning it to idle
// — used by a caller that already knows the resource is broken (e.g. after
// a connection error mid-transaction).
func (p *Pool[T]) Discard(r T) {
	p.discard(r)
	p.sem.Release(1)
}

func (p *Pool[T]) discard(r T) {
	p.mu.Lock()
	p.count--
	p.mu.Unlock()
	if p.closer != nil {
		_ = p.closer(r)
	}
}

// ErrClosed is the error value for a closed pool. No method of Pool returns
// it: Acquire and Release keep working after Close.
var ErrClosed = errors.New("pool: closed")

// Close discards every idle resource. Checked-out resources are not
// tracked, and the pool stays usable afterwards.
func (p *Pool[T]) Close() error {
	p.mu.Lock()
	idle := p.idle
	p.idle = nil
	p.mu.Unlock()

	var firstErr error
	for _, r := range idle {
		if p.closer != nil {
			if err := p.closer(r); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
