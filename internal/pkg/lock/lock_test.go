package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker_MutualExclusion(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "order-1", time.Minute)
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		release2, err := locker.Acquire(ctx, "order-1", time.Minute)
		if err == nil {
			release2()
		}
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire succeeded while lock was held")
	case <-time.After(50 * time.Millisecond):
	}

	release()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second acquire did not proceed after release")
	}
}

func TestMemoryLocker_IndependentKeys(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	release1, err := locker.Acquire(ctx, "order-1", time.Minute)
	require.NoError(t, err)
	defer release1()

	release2, err := locker.Acquire(ctx, "order-2", time.Minute)
	require.NoError(t, err)
	release2()
}

func TestMemoryLocker_AcquireHonoursContext(t *testing.T) {
	locker := NewMemoryLocker()

	release, err := locker.Acquire(context.Background(), "order-1", time.Minute)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = locker.Acquire(ctx, "order-1", time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryLocker_ReleaseIsIdempotent(t *testing.T) {
	locker := NewMemoryLocker()

	release, err := locker.Acquire(context.Background(), "order-1", time.Minute)
	require.NoError(t, err)
	release()
	release()

	release2, err := locker.Acquire(context.Background(), "order-1", time.Minute)
	require.NoError(t, err)
	release2()
}
