package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/rota/core"
	"github.com/trezcool/rota/core/grid"
	"github.com/trezcool/rota/core/user"
)

// Board is the assignment grid of one business week: a row per shift slot, a column per day.
// Every change is persisted before it is acknowledged.
type Board struct {
	mu sync.Mutex

	svc        *service
	businessID string
	week       time.Time
	days       []time.Time
	ctrl       *grid.Controller
	sig        string
	// retired boards were replaced in the cache, or failed to save a change
	retired bool
}

func newBoard(svc *service, businessID string, week time.Time, workers []grid.WorkerToken, shifts []grid.ShiftToken) (*Board, error) {
	shape, err := grid.NewShape(svc.conf.Rows, DaysPerWeek)
	if err != nil {
		return nil, errors.Wrap(err, "board shape")
	}

	b := &Board{svc: svc, businessID: businessID, week: week}
	headers := make([]string, DaysPerWeek)
	for i := range headers {
		day := week.AddDate(0, 0, i)
		b.days = append(b.days, day)
		headers[i] = day.Format("Mon Jan 2")
	}

	b.ctrl, err = grid.NewController(grid.Options{
		Shape:   shape,
		Headers: headers,
		Workers: workers,
		Shifts:  shifts,
		OnDrop: func(cell grid.CellID, tok grid.Token) {
			svc.log.Debug("schedule: token dropped", map[string]interface{}{
				"business": businessID, "week": b.Week(), "cell": cell.String(), "kind": tok.Kind(), "token": tok.TokenID(),
			})
		},
		OnRemove: func(cell grid.CellID, kind grid.Kind, tok grid.Token) {
			svc.log.Debug("schedule: token removed", map[string]interface{}{
				"business": businessID, "week": b.Week(), "cell": cell.String(), "kind": kind, "token": tok.TokenID(),
			})
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "building board")
	}
	return b, nil
}

// Week returns the Monday of the board's week as "YYYY-MM-DD".
func (b *Board) Week() string { return b.week.Format(WeekLayout) }

// replay restores the persisted assignments. Rows referring to unknown tokens
// (deactivated employees, deleted templates) or to cells out of the board are skipped.
func (b *Board) replay(ctx context.Context) error {
	assignments, err := b.svc.repo.QueryAssignments(ctx, b.businessID, b.week)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	for _, a := range assignments {
		cell, err := b.ctrl.Shape().Cell(a.Row, a.Col)
		if err != nil {
			continue
		}
		if tok, ok := b.ctrl.Token(a.Kind, a.TokenID); ok {
			b.ctrl.Restore(cell, tok)
		}
	}
	return nil
}

func (b *Board) View() BoardView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.view()
}

func (b *Board) view() BoardView {
	days := make([]string, 0, len(b.days))
	for _, d := range b.days {
		days = append(days, d.Format(WeekLayout))
	}
	return BoardView{
		WeekStart:         b.Week(),
		Days:              days,
		Headers:           b.ctrl.Headers(),
		Placeholder:       grid.Placeholder,
		Rows:              b.ctrl.Rows(),
		UnassignedWorkers: b.ctrl.UnassignedWorkers(),
		UnassignedShifts:  b.ctrl.UnassignedShifts(),
	}
}

// current returns b, or the board that replaced it in the cache.
func (b *Board) current(ctx context.Context, actor user.User) (*Board, error) {
	return b.svc.OpenBoard(ctx, actor, b.week)
}

// Drop runs a whole drag gesture for the requested token, released at (X, Y).
// A release outside every cell is a silent no-op. Only admins may change a board.
// A retired board hands the request over to the current one.
func (b *Board) Drop(ctx context.Context, actor user.User, req DropRequest) (DropResponse, error) {
	if !actor.IsAdmin() || actor.BusinessID != b.businessID {
		return DropResponse{}, core.ErrPermissionDenied
	}
	for {
		resp, err := b.drop(ctx, actor, req)
		if err != errBoardRetired {
			return resp, err
		}
		if b, err = b.current(ctx, actor); err != nil {
			return DropResponse{}, err
		}
	}
}

func (b *Board) drop(ctx context.Context, actor user.User, req DropRequest) (DropResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.retired {
		return DropResponse{}, errBoardRetired
	}
	tok, ok := b.ctrl.Token(req.Kind, req.TokenID)
	if !ok {
		return DropResponse{}, core.NewValidationError(ErrUnknownToken, core.FieldError{Field: "token_id", Error: ErrUnknownToken.Error()})
	}
	boxes := req.boxes()
	if boxes == nil {
		boxes = grid.UniformLayout(b.ctrl.Shape(), b.svc.layout())
	}
	b.ctrl.Measure(boxes)

	sess, err := b.ctrl.NewDragSession(tok)
	if err != nil {
		return DropResponse{}, err
	}
	if err := sess.Begin(); err != nil {
		return DropResponse{}, err
	}
	res := sess.Release(req.X, req.Y)
	if !res.Placed {
		return DropResponse{Board: b.view()}, nil
	}

	a := Assignment{
		ID:         uuid.New().String(),
		BusinessID: b.businessID,
		WeekStart:  b.week,
		Row:        res.Cell.Row,
		Col:        res.Cell.Col,
		Kind:       tok.Kind(),
		TokenID:    tok.TokenID(),
		AssignedBy: actor.ID,
		CreatedAt:  time.Now().UTC(),
	}
	err = b.svc.tx.InTx(ctx, func(exec core.DBExecutor) error {
		_, err := b.svc.repo.SaveAssignment(ctx, a, exec)
		return err
	})
	if err != nil {
		b.retired = true
		return DropResponse{}, errors.Wrap(err, "saving assignment")
	}

	b.notifyDrop(ctx, res.Cell, tok)
	if res.Displaced != nil && res.Displaced.Kind() == grid.KindWorker {
		b.notify(ctx, res.Displaced.TokenID(), fmt.Sprintf("You are no longer scheduled on %s.", b.dayLabel(res.Cell)))
	}

	cell := res.Cell
	resp := DropResponse{Placed: true, Cell: &cell, Board: b.view()}
	if res.Displaced != nil {
		id := res.Displaced.TokenID()
		resp.Displaced = &id
	}
	return resp, nil
}

// Tap clears the kind assignment of cell. Tapping an empty layer is a no-op.
func (b *Board) Tap(ctx context.Context, actor user.User, req TapRequest) (BoardView, error) {
	if !actor.IsAdmin() || actor.BusinessID != b.businessID {
		return BoardView{}, core.ErrPermissionDenied
	}
	for {
		view, err := b.tap(ctx, req)
		if err != errBoardRetired {
			return view, err
		}
		if b, err = b.current(ctx, actor); err != nil {
			return BoardView{}, err
		}
	}
}

func (b *Board) tap(ctx context.Context, req TapRequest) (BoardView, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.retired {
		return BoardView{}, errBoardRetired
	}

	if !b.ctrl.Shape().Contains(req.Cell) {
		return BoardView{}, core.NewValidationError(ErrInvalidCell, core.FieldError{Field: "cell", Error: ErrInvalidCell.Error()})
	}
	tok, ok := b.ctrl.Tap(req.Cell, req.Kind)
	if !ok {
		return b.view(), nil
	}

	err := b.svc.tx.InTx(ctx, func(exec core.DBExecutor) error {
		return b.svc.repo.DeleteAssignment(ctx, b.businessID, b.week, req.Cell, req.Kind, exec)
	})
	if err != nil {
		b.retired = true
		return BoardView{}, errors.Wrap(err, "deleting assignment")
	}

	if tok.Kind() == grid.KindWorker {
		b.notify(ctx, tok.TokenID(), fmt.Sprintf("You are no longer scheduled on %s.", b.dayLabel(req.Cell)))
	}
	return b.view(), nil
}

func (b *Board) dayLabel(cell grid.CellID) string {
	return b.days[cell.Col].Format("Monday, January 2")
}

// notifyDrop tells the worker of cell about their new slot or new shift times.
func (b *Board) notifyDrop(ctx context.Context, cell grid.CellID, tok grid.Token) {
	view := b.ctrl.Cell(cell)
	if view.Worker == nil {
		return
	}
	var msg string
	switch tok.Kind() {
	case grid.KindWorker:
		msg = fmt.Sprintf("You have been scheduled on %s", b.dayLabel(cell))
		if view.Shift != nil {
			msg += ", " + view.Shift.Label()
		}
		msg += "."
	case grid.KindShift:
		msg = fmt.Sprintf("Your shift on %s is now %s.", b.dayLabel(cell), tok.Label())
	}
	b.notify(ctx, view.Worker.ID, msg)
}

// notify never fails the calling operation: the assignment is already saved.
func (b *Board) notify(ctx context.Context, userID, msg string) {
	usr, err := b.svc.userSvc.GetByID(ctx, userID)
	if err == nil {
		err = b.svc.noticeSvc.Notify(ctx, msg, usr)
	}
	if err != nil {
		b.svc.log.Warn("schedule: notifying worker", err, map[string]interface{}{"user": userID})
	}
}
