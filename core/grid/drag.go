package grid

import "github.com/pkg/errors"

// DragState is the state of a drag session: Idle -> Dragging -> (Dropped | Cancelled) -> Idle.
type DragState int

const (
	Idle DragState = iota
	Dragging
	Dropped
	Cancelled
)

func (s DragState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Dropped:
		return "dropped"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

var ErrGestureInProgress = errors.New("another drag gesture is in progress")

// DragSession tracks one pointer-driven move & drop of a token.
// The offset is visual feedback only: it never reaches the Store.
type DragSession struct {
	ctrl    *Controller
	token   Token
	state   DragState
	outcome DragState
	dx, dy  float64
}

func (s *DragSession) Token() Token     { return s.token }
func (s *DragSession) State() DragState { return s.state }

// Outcome is Dropped or Cancelled after a release, Idle before the first one.
func (s *DragSession) Outcome() DragState { return s.outcome }

// Offset is the current displacement of the token from its rest position.
func (s *DragSession) Offset() (dx, dy float64) { return s.dx, s.dy }

// Begin starts the gesture on pointer-down. Only one gesture may be active per controller.
func (s *DragSession) Begin() error {
	if s.state == Dragging {
		return nil
	}
	if s.ctrl.active != nil && s.ctrl.active != s {
		return ErrGestureInProgress
	}
	s.ctrl.active = s
	s.state = Dragging
	s.dx, s.dy = 0, 0
	return nil
}

// Move records the pointer displacement. Ignored unless dragging.
func (s *DragSession) Move(dx, dy float64) {
	if s.state != Dragging {
		return
	}
	s.dx, s.dy = dx, dy
}

// Release ends the gesture at the absolute pointer position (x, y) and hands the drop to the controller.
// Whatever the outcome, the offset snaps back to the origin & the session returns to Idle.
func (s *DragSession) Release(x, y float64) DropResult {
	if s.state != Dragging {
		return DropResult{}
	}
	res := s.ctrl.Drop(x, y, s.token)
	if res.Placed {
		s.state = Dropped
	} else {
		s.state = Cancelled
	}
	s.outcome = s.state

	s.dx, s.dy = 0, 0
	s.state = Idle
	if s.ctrl.active == s {
		s.ctrl.active = nil
	}
	return res
}
