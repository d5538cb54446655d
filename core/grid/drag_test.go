package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDragSession_lifecycle(t *testing.T) {
	w1 := WorkerToken{ID: "W1"}
	ctrl, events := newTestController(t, 2, 2, []WorkerToken{w1}, nil)

	s, err := ctrl.NewDragSession(w1)
	require.NoError(t, err)
	assert.Equal(t, Idle, s.State())

	// moves before Begin are ignored
	s.Move(5, 5)
	dx, dy := s.Offset()
	assert.Zero(t, dx)
	assert.Zero(t, dy)

	require.NoError(t, s.Begin())
	assert.Equal(t, Dragging, s.State())

	// every move is tracked, no debouncing
	for i := 1; i <= 50; i++ {
		s.Move(float64(i), float64(2*i))
		dx, dy = s.Offset()
		require.Equal(t, float64(i), dx)
		require.Equal(t, float64(2*i), dy)
	}

	x, y := center(CellID{1, 0})
	res := s.Release(x, y)
	assert.True(t, res.Placed)
	assert.Equal(t, CellID{1, 0}, res.Cell)
	assert.Equal(t, Dropped, s.Outcome())
	assert.Equal(t, Idle, s.State())
	dx, dy = s.Offset()
	assert.Zero(t, dx, "offset must snap back")
	assert.Zero(t, dy, "offset must snap back")
	assert.Len(t, *events, 1)
}

func TestDragSession_releaseOutsideCancels(t *testing.T) {
	w1 := WorkerToken{ID: "W1"}
	ctrl, events := newTestController(t, 4, 7, []WorkerToken{w1}, nil)

	s, err := ctrl.NewDragSession(w1)
	require.NoError(t, err)
	require.NoError(t, s.Begin())
	s.Move(300, 300)

	res := s.Release(9999, 9999)
	assert.False(t, res.Placed)
	assert.Equal(t, Cancelled, s.Outcome())
	assert.Equal(t, Idle, s.State())
	dx, dy := s.Offset()
	assert.Zero(t, dx)
	assert.Zero(t, dy)
	assert.False(t, ctrl.IsAssigned("W1", KindWorker))
	assert.Empty(t, *events)

	// release while idle does nothing
	res = s.Release(50, 25)
	assert.False(t, res.Placed)
}

func TestDragSession_singleGesture(t *testing.T) {
	w1 := WorkerToken{ID: "W1"}
	s1 := ShiftToken{ID: "S1", Start: 8 * 60, End: 12 * 60}
	ctrl, _ := newTestController(t, 2, 2, []WorkerToken{w1}, []ShiftToken{s1})

	first, err := ctrl.NewDragSession(w1)
	require.NoError(t, err)
	second, err := ctrl.NewDragSession(s1)
	require.NoError(t, err)

	require.NoError(t, first.Begin())
	assert.Equal(t, ErrGestureInProgress, second.Begin())
	assert.Equal(t, Idle, second.State())

	first.Release(9999, 9999)
	require.NoError(t, second.Begin())
	x, y := center(CellID{0, 1})
	assert.True(t, second.Release(x, y).Placed)
	assert.Equal(t, "S1", ctrl.Cell(CellID{0, 1}).Shift.ID)
}

func TestDragState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "dragging", Dragging.String())
	assert.Equal(t, "dropped", Dropped.String())
	assert.Equal(t, "cancelled", Cancelled.String())
}
