package pool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resource struct {
	id      int64
	valid   bool
	closed  bool
}

func newCountingFactory() (Factory[*resource], *int64) {
	var n int64
	return func(context.Context) (*resource, error) {
		id := atomic.AddInt64(&n, 1)
		return &resource{id: id, valid: true}, nil
	}, &n
}

func TestAcquireCreatesUpToMax(t *testing.T) {
	factory, created := newCountingFactory()
	p := New(0, 2, factory, nil, nil)

	r1, err := p.Acquire(context.Background())
	require.NoError(t, err)
	r2, err := p.Acquire(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, r1.id, r2.id)
	assert.Equal(t, int64(2), *created)
}

func TestAcquireBlocksPastMaxUntilTimeout(t *testing.T) {
	factory, _ := newCountingFactory()
	p := New(0, 1, factory, nil, nil)

	_, err := p.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = p.Acquire(ctx)
	require.Error(t, err)
	var target *TimeoutError
	require.ErrorAs(t, err, &target)
}

func TestReleaseReusesResource(t *testing.T) {
	factory, created := newCountingFactory()
	p := New(0, 1, factory, nil, nil)

	r1, err := p.Acquire(context.Background())
	require.NoError(t, err)
	p.Release(r1)

	r2, err := p.Acquire(context.Background())
	require.NoError(t, err)
	assert.Same(t, r1, r2)
	assert.Equal(t, int64(1), *created)
}

func TestReleaseDiscardsInvalidResource(t *testing.T) {
	factory, created := newCountingFactory()
	var closedCount int64
	closer := func(r *resource) error {
		r.closed = true
		atomic.AddInt64(&closedCount, 1)
		return nil
	}
	validator := func(r *resource) bool { return r.valid }

	p := New(0, 1, factory, validator, closer)
	r1, err := p.Acquire(context.Background())
	require.NoError(t, err)
	r1.valid = false
	p.Release(r1)

	r2, err := p.Acquire(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, r1, r2)
	assert.Equal(t, int64(2), *created)
	assert.Equal(t, int64(1), atomic.LoadInt64(&closedCount))
}

func TestAcquireRecyclesInvalidIdleResource(t *testing.T) {
	factory, created := newCountingFactory()
	validator := func(r *resource) bool { return r.valid }
	p := New(0, 2, factory, validator, nil)

	r1, err := p.Acquire(context.Background())
	require.NoError(t, err)
	p.Release(r1)
	r1.valid = false

	r2, err := p.Acquire(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, r1, r2)
	assert.Equal(t, int64(2), *created)
}

func TestDiscardDropsResourceWithoutReuse(t *testing.T) {
	factory, created := newCountingFactory()
	var closedCount int64
	closer := func(r *resource) error {
		atomic.AddInt64(&closedCount, 1)
		return nil
	}
	p := New(0, 1, factory, nil, closer)

	r1, err := p.Acquire(context.Background())
	require.NoError(t, err)
	p.Discard(r1)

	r2, err := p.Acquire(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, r1, r2)
	assert.Equal(t, int64(2), *created)
	assert.Equal(t, int64(1), atomic.LoadInt64(&closedCount))
}

func TestFactoryErrorReleasesSlot(t *testing.T) {
	wantErr := errors.New("connect failed")
	calls := 0
	factory := func(context.Context) (*resource, error) {
		calls++
		if calls == 1 {
			return nil, wantErr
		}
		return &resource{id: int64(calls), valid: true}, nil
	}
	p := New(0, 1, factory, nil, nil)

	_, err := p.Acquire(context.Background())
	require.ErrorIs(t, err, wantErr)

	r, err := p.Acquire(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestCloseClosesIdleResources(t *testing.T) {
	factory, _ := newCountingFactory()
	var closedCount int64
	closer := func(r *resource) error {
		atomic.AddInt64(&closedCount, 1)
		return nil
	}
	p := New(0, 2, factory, nil, closer)

	r1, err := p.Acquire(context.Background())
	require.NoError(t, err)
	p.Release(r1)

	require.NoError(t, p.Close())
	assert.Equal(t, int64(1), atomic.LoadInt64(&closedCount))
}

func TestNewClampsMinToMax(t *testing.T) {
	factory, _ := newCountingFactory()
	p := New(5, 2, factory, nil, nil)
	assert.Equal(t, int64(2), p.max)
	assert.Equal(t, int64(2), p.min)
}

func TestNewDefaultsMaxToOne(t *testing.T) {
	factory, _ := newCountingFactory()
	p := New(0, 0, factory, nil, nil)
	assert.Equal(t, int64(1), p.max)
}
