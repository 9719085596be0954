package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ReturnsResult(t *testing.T) {
	pool := NewPool(2)

	got, err := Run(context.Background(), pool, func() (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestRun_ReturnsError(t *testing.T) {
	pool := NewPool(1)
	boom := errors.New("boom")

	_, err := Run(context.Background(), pool, func() (string, error) {
		return "", boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestRun_BoundsConcurrency(t *testing.T) {
	pool := NewPool(2)
	var running, peak atomic.Int32

	done := make(chan struct{})
	for i := 0; i < 6; i++ {
		go func() {
			_, _ = Run(context.Background(), pool, func() (struct{}, error) {
				n := running.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				running.Add(-1)
				return struct{}{}, nil
			})
			done <- struct{}{}
		}()
	}
	for i := 0; i < 6; i++ {
		<-done
	}

	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRun_CancelledWhileRunningDoesNotInterrupt(t *testing.T) {
	pool := NewPool(1)
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		<-started
		cancel()
	}()

	_, err := Run(ctx, pool, func() (int, error) {
		close(started)
		time.Sleep(20 * time.Millisecond)
		close(finished)
		return 1, nil
	})
	assert.ErrorIs(t, err, context.Canceled)

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("job was interrupted")
	}

	// the slot is released once the job completes
	got, err := Run(context.Background(), pool, func() (int, error) { return 2, nil })
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestRun_CancelledBeforeSlotFrees(t *testing.T) {
	pool := NewPool(1)
	taken := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_, _ = Run(context.Background(), pool, func() (int, error) {
			close(taken)
			<-release
			return 0, nil
		})
	}()
	defer close(release)
	<-taken

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var ran atomic.Bool
	_, err := Run(ctx, pool, func() (int, error) {
		ran.Store(true)
		return 0, nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, ran.Load())
}

func TestNewPool_DefaultSize(t *testing.T) {
	assert.Greater(t, NewPool(0).Size(), 0)
}
