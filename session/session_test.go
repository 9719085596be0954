package session

import (
	"image"
	"sync"
	"testing"

	"github.com/mobile-next/qrscan/screen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession() *Session {
	frame := screen.FrameFromImage(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	return New(screen.Display{LogicalWidth: 4, LogicalHeight: 4, ScaleFactor: 1}, frame, []byte("png"))
}

func TestSlot_BeginTake(t *testing.T) {
	slot := NewSlot()
	s := newTestSession()

	previous, err := slot.Begin(s, false)
	require.NoError(t, err)
	assert.Nil(t, previous)
	assert.True(t, slot.Active())

	taken, err := slot.Take()
	require.NoError(t, err)
	assert.Same(t, s, taken)
	assert.False(t, slot.Active())

	_, err = slot.Take()
	assert.ErrorIs(t, err, ErrNoActiveSession, "a session is consumed exactly once")
}

func TestSlot_PreviewIsIdempotent(t *testing.T) {
	slot := NewSlot()
	s := newTestSession()
	_, err := slot.Begin(s, false)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		id, preview, err := slot.Preview()
		require.NoError(t, err)
		assert.Equal(t, s.ID, id)
		assert.Equal(t, []byte("png"), preview)
	}
	assert.True(t, slot.Active())
}

func TestSlot_ConcurrentPreviews(t *testing.T) {
	slot := NewSlot()
	s := newTestSession()
	_, err := slot.Begin(s, false)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 8*50)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id, _, err := slot.Preview()
				if err == nil && id != s.ID {
					err = assert.AnError
				}
				errs <- err
				_ = slot.Active()
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
}

func TestSlot_ActiveWaitsForWriter(t *testing.T) {
	slot := NewSlot()
	slot.mu.Lock()

	done := make(chan bool)
	go func() { done <- slot.Active() }()

	slot.current = newTestSession()
	slot.mu.Unlock()

	assert.True(t, <-done, "the reader observes the writer's state, not the lock")
}

func TestSlot_PreviewWithoutSession(t *testing.T) {
	_, _, err := NewSlot().Preview()
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestSlot_TakeAfterCancel(t *testing.T) {
	slot := NewSlot()
	_, err := slot.Begin(newTestSession(), false)
	require.NoError(t, err)

	require.NoError(t, slot.Cancel())

	_, err = slot.Take()
	assert.ErrorIs(t, err, ErrNoActiveSession)
	assert.ErrorIs(t, slot.Cancel(), ErrNoActiveSession)
}

func TestSlot_SecondBeginFails(t *testing.T) {
	slot := NewSlot()
	first := newTestSession()
	_, err := slot.Begin(first, false)
	require.NoError(t, err)

	_, err = slot.Begin(newTestSession(), false)
	assert.ErrorIs(t, err, ErrSessionActive)

	taken, err := slot.Take()
	require.NoError(t, err)
	assert.Same(t, first, taken, "the original session is untouched")
}

func TestSlot_BeginReplace(t *testing.T) {
	slot := NewSlot()
	first := newTestSession()
	second := newTestSession()
	_, err := slot.Begin(first, false)
	require.NoError(t, err)

	previous, err := slot.Begin(second, true)
	require.NoError(t, err)
	assert.Same(t, first, previous)

	taken, err := slot.Take()
	require.NoError(t, err)
	assert.Same(t, second, taken)
}

func TestSlot_LockContention(t *testing.T) {
	slot := NewSlot()
	slot.mu.Lock()
	defer slot.mu.Unlock()

	_, err := slot.Begin(newTestSession(), false)
	assert.ErrorIs(t, err, ErrLockContention)

	_, err = slot.Take()
	assert.ErrorIs(t, err, ErrLockContention)
}

func TestNew_AssignsUniqueIDs(t *testing.T) {
	a := newTestSession()
	b := newTestSession()
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}
