package grid

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLayout = Layout{CellWidth: 100, CellHeight: 50, Gap: 10}

// center returns a point inside cell for testLayout.
func center(c CellID) (float64, float64) {
	return float64(c.Col)*110 + 50, float64(c.Row)*60 + 25
}

type event struct {
	op   string
	cell CellID
	kind Kind
	id   string
}

func newTestController(t *testing.T, rows, cols int, workers []WorkerToken, shifts []ShiftToken) (*Controller, *[]event) {
	t.Helper()
	events := new([]event)
	ctrl, err := NewController(Options{
		Shape:   Shape{Rows: rows, Cols: cols},
		Workers: workers,
		Shifts:  shifts,
		OnDrop: func(cell CellID, tok Token) {
			*events = append(*events, event{op: "drop", cell: cell, kind: tok.Kind(), id: tok.TokenID()})
		},
		OnRemove: func(cell CellID, kind Kind, tok Token) {
			*events = append(*events, event{op: "remove", cell: cell, kind: kind, id: tok.TokenID()})
		},
	})
	require.NoError(t, err)
	ctrl.Measure(UniformLayout(ctrl.Shape(), testLayout))
	return ctrl, events
}

func TestNewController(t *testing.T) {
	_, err := NewController(Options{Shape: Shape{Rows: 0, Cols: 1}})
	assert.Equal(t, ErrInvalidShape, err)

	_, err = NewController(Options{Shape: Shape{Rows: 1, Cols: 2}, Headers: []string{"Mon"}})
	assert.Equal(t, ErrHeadersMismatch, err)

	_, err = NewController(Options{
		Shape:   Shape{Rows: 1, Cols: 1},
		Workers: []WorkerToken{{ID: "W1"}, {ID: "W1"}},
	})
	assert.Equal(t, ErrDuplicateToken, errors.Cause(err))

	ctrl, err := NewController(Options{Shape: Shape{Rows: 1, Cols: 3}})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ctrl.Headers())
}

func TestController_placeAndClearScenario(t *testing.T) {
	w1 := WorkerToken{ID: "W1", DisplayName: "Ada"}
	w2 := WorkerToken{ID: "W2", DisplayName: "Bob"}
	ctrl, events := newTestController(t, 2, 2, []WorkerToken{w1, w2}, nil)

	c00, err := ctrl.Shape().Cell(0, 0)
	require.NoError(t, err)

	res := ctrl.Drop(50, 25, w1)
	require.True(t, res.Placed)
	assert.Equal(t, c00, res.Cell)

	view := ctrl.Cell(c00)
	require.NotNil(t, view.Worker)
	assert.Equal(t, w1, *view.Worker)
	assert.Equal(t, []WorkerToken{w2}, ctrl.UnassignedWorkers())

	tok, ok := ctrl.Tap(c00, KindWorker)
	require.True(t, ok)
	assert.Equal(t, w1, tok)
	assert.True(t, ctrl.Cell(c00).Empty())
	assert.Equal(t, []WorkerToken{w1, w2}, ctrl.UnassignedWorkers())

	assert.Equal(t, []event{
		{op: "drop", cell: c00, kind: KindWorker, id: "W1"},
		{op: "remove", cell: c00, kind: KindWorker, id: "W1"},
	}, *events)
}

func TestController_workerAndShiftShareCell(t *testing.T) {
	s1 := ShiftToken{ID: "S1", Start: 9 * 60, End: 17 * 60}
	w2 := WorkerToken{ID: "W2", DisplayName: "Bob"}
	ctrl, _ := newTestController(t, 2, 2, []WorkerToken{w2}, []ShiftToken{s1})

	c11 := CellID{1, 1}
	x, y := center(c11)
	require.True(t, ctrl.Drop(x, y, s1).Placed)
	require.True(t, ctrl.Drop(x, y, w2).Placed)

	rows := ctrl.Rows()
	require.Len(t, rows, 2)
	require.Len(t, rows[1], 2)
	v := rows[1][1]
	require.NotNil(t, v.Worker)
	require.NotNil(t, v.Shift)
	assert.Equal(t, "Bob", v.Worker.Label())
	assert.Equal(t, "9:00 AM - 5:00 PM", v.Shift.Label())
	assert.Empty(t, ctrl.UnassignedWorkers())
	assert.Empty(t, ctrl.UnassignedShifts())

	// a tap only clears the named kind
	_, ok := ctrl.Tap(c11, KindShift)
	require.True(t, ok)
	v = ctrl.Cell(c11)
	assert.Nil(t, v.Shift)
	assert.NotNil(t, v.Worker)
}

func TestController_dropOutsideGrid(t *testing.T) {
	w1 := WorkerToken{ID: "W1"}
	ctrl, events := newTestController(t, 4, 7, []WorkerToken{w1}, nil)

	assert.NotPanics(t, func() {
		res := ctrl.Drop(9999, 9999, w1)
		assert.False(t, res.Placed)
	})
	for _, row := range ctrl.Rows() {
		for _, v := range row {
			assert.True(t, v.Empty())
		}
	}
	assert.False(t, ctrl.IsAssigned("W1", KindWorker))
	assert.Empty(t, *events)
}

func TestController_dropMovesAndDisplaces(t *testing.T) {
	w1 := WorkerToken{ID: "W1"}
	w2 := WorkerToken{ID: "W2"}
	ctrl, _ := newTestController(t, 2, 2, []WorkerToken{w1, w2}, nil)

	x, y := center(CellID{0, 0})
	ctrl.Drop(x, y, w1)
	x, y = center(CellID{0, 1})
	ctrl.Drop(x, y, w1)
	assert.True(t, ctrl.Cell(CellID{0, 0}).Empty())
	assert.Equal(t, "W1", ctrl.Cell(CellID{0, 1}).Worker.ID)

	res := ctrl.Drop(x, y, w2)
	require.NotNil(t, res.Displaced)
	assert.Equal(t, "W1", res.Displaced.TokenID())
	assert.Equal(t, []WorkerToken{w1}, ctrl.UnassignedWorkers())
}

func TestController_unknownTokenAndRestore(t *testing.T) {
	w1 := WorkerToken{ID: "W1"}
	ctrl, events := newTestController(t, 2, 2, []WorkerToken{w1}, nil)

	res := ctrl.Drop(50, 25, WorkerToken{ID: "stranger"})
	assert.False(t, res.Placed)

	assert.False(t, ctrl.Restore(CellID{5, 5}, w1))
	assert.True(t, ctrl.Restore(CellID{1, 0}, w1))
	assert.True(t, ctrl.IsAssigned("W1", KindWorker))
	assert.Empty(t, *events, "restore must not notify")

	_, err := ctrl.NewDragSession(ShiftToken{ID: "nope"})
	assert.Equal(t, ErrUnknownToken, err)
}

func TestController_MeasureIgnoresForeignCells(t *testing.T) {
	ctrl, _ := newTestController(t, 1, 1, nil, nil)
	ctrl.Measure(map[CellID]Box{
		{0, 0}: {Width: 10, Height: 10},
		{3, 3}: {Left: 100, Top: 100, Width: 10, Height: 10},
	})
	assert.Equal(t, 1, ctrl.Resolver().Len())
}
