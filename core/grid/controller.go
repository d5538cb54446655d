package grid

import (
	"strconv"

	"github.com/pkg/errors"
)

// Placeholder is shown in cells without any assignment.
const Placeholder = "Drop here"

var (
	ErrHeadersMismatch = errors.New("number of headers must match the number of columns")
	ErrDuplicateToken  = errors.New("duplicate token id")
	ErrUnknownToken    = errors.New("unknown token")
)

type (
	// DropFunc is called after a token has been dropped on a cell.
	DropFunc func(cell CellID, tok Token)
	// RemoveFunc is called after a kind assignment has been cleared from a cell.
	RemoveFunc func(cell CellID, kind Kind, tok Token)

	Options struct {
		Shape    Shape
		Headers  []string // one per column; defaults to "1".."C"
		Workers  []WorkerToken
		Shifts   []ShiftToken
		OnDrop   DropFunc
		OnRemove RemoveFunc
	}

	DropResult struct {
		Cell      CellID
		Placed    bool
		Displaced Token // token pushed out of Cell, back into its pool
	}

	CellView struct {
		ID     CellID       `json:"id"`
		Worker *WorkerToken `json:"worker"`
		Shift  *ShiftToken  `json:"shift"`
	}
)

func (v CellView) Empty() bool { return v.Worker == nil && v.Shift == nil }

// Controller renders a grid, routes drops to the Store & taps to clears.
// It is single-threaded: embedders serving concurrent callers must serialise access.
type Controller struct {
	shape    Shape
	headers  []string
	store    *Store
	resolver *Resolver
	workers  []WorkerToken
	shifts   []ShiftToken
	workerBy map[string]WorkerToken
	shiftBy  map[string]ShiftToken
	onDrop   DropFunc
	onRemove RemoveFunc
	active   *DragSession
}

func NewController(opts Options) (*Controller, error) {
	if opts.Shape.Rows <= 0 || opts.Shape.Cols <= 0 {
		return nil, ErrInvalidShape
	}
	headers := opts.Headers
	if headers == nil {
		headers = make([]string, opts.Shape.Cols)
		for i := range headers {
			headers[i] = strconv.Itoa(i + 1)
		}
	} else if len(headers) != opts.Shape.Cols {
		return nil, ErrHeadersMismatch
	}

	c := &Controller{
		shape:    opts.Shape,
		headers:  headers,
		store:    NewStore(),
		resolver: NewResolver(),
		workers:  opts.Workers,
		shifts:   opts.Shifts,
		workerBy: make(map[string]WorkerToken, len(opts.Workers)),
		shiftBy:  make(map[string]ShiftToken, len(opts.Shifts)),
		onDrop:   opts.OnDrop,
		onRemove: opts.OnRemove,
	}
	for _, w := range opts.Workers {
		if _, dup := c.workerBy[w.ID]; dup {
			return nil, errors.Wrapf(ErrDuplicateToken, "worker %q", w.ID)
		}
		c.workerBy[w.ID] = w
	}
	for _, s := range opts.Shifts {
		if _, dup := c.shiftBy[s.ID]; dup {
			return nil, errors.Wrapf(ErrDuplicateToken, "shift %q", s.ID)
		}
		c.shiftBy[s.ID] = s
	}
	return c, nil
}

func (c *Controller) Shape() Shape        { return c.shape }
func (c *Controller) Headers() []string   { return c.headers }
func (c *Controller) Resolver() *Resolver { return c.resolver }

// Token finds a known token by kind & id.
func (c *Controller) Token(kind Kind, id string) (Token, bool) {
	switch kind {
	case KindWorker:
		if w, ok := c.workerBy[id]; ok {
			return w, true
		}
	case KindShift:
		if s, ok := c.shiftBy[id]; ok {
			return s, true
		}
	}
	return nil, false
}

// Measure replaces the registered cell boxes. Boxes of cells outside the grid are ignored.
func (c *Controller) Measure(boxes map[CellID]Box) {
	c.resolver.Reset()
	for cell, box := range boxes {
		if c.shape.Contains(cell) {
			c.resolver.Register(cell, box)
		}
	}
}

// NewDragSession returns an idle session for one of the controller's tokens.
func (c *Controller) NewDragSession(tok Token) (*DragSession, error) {
	tok, ok := c.resolve(tok)
	if !ok {
		return nil, ErrUnknownToken
	}
	return &DragSession{ctrl: c, token: tok}, nil
}

// Drop places tok on the cell under (x, y). A point outside every cell is discarded silently.
func (c *Controller) Drop(x, y float64, tok Token) DropResult {
	tok, known := c.resolve(tok)
	if !known {
		return DropResult{}
	}
	cell, ok := c.resolver.Locate(x, y)
	if !ok {
		return DropResult{}
	}
	res := c.place(cell, tok)
	if c.onDrop != nil {
		c.onDrop(cell, tok)
	}
	return res
}

// Restore places tok on cell without notifying OnDrop, eg: when replaying persisted assignments.
func (c *Controller) Restore(cell CellID, tok Token) bool {
	tok, known := c.resolve(tok)
	if !c.shape.Contains(cell) || !known {
		return false
	}
	c.place(cell, tok)
	return true
}

func (c *Controller) place(cell CellID, tok Token) DropResult {
	displaced, _ := c.store.Place(cell, tok)
	return DropResult{Cell: cell, Placed: true, Displaced: displaced}
}

// Tap clears the kind assignment of cell, freeing its token back to the pool.
// The kind is always explicit: a tap never clears both layers at once.
func (c *Controller) Tap(cell CellID, kind Kind) (Token, bool) {
	tok, ok := c.store.Clear(cell, kind)
	if ok && c.onRemove != nil {
		c.onRemove(cell, kind, tok)
	}
	return tok, ok
}

func (c *Controller) IsAssigned(tokenID string, kind Kind) bool {
	return c.store.IsAssigned(tokenID, kind)
}

func (c *Controller) Cell(cell CellID) CellView {
	v := CellView{ID: cell}
	if w, ok := c.store.Worker(cell); ok {
		v.Worker = &w
	}
	if s, ok := c.store.Shift(cell); ok {
		v.Shift = &s
	}
	return v
}

// Rows renders the grid row by row.
func (c *Controller) Rows() [][]CellView {
	rows := make([][]CellView, c.shape.Rows)
	for r := range rows {
		rows[r] = make([]CellView, c.shape.Cols)
		for col := range rows[r] {
			rows[r][col] = c.Cell(CellID{Row: r, Col: col})
		}
	}
	return rows
}

// UnassignedWorkers lists the worker pool in the order the workers were given.
func (c *Controller) UnassignedWorkers() []WorkerToken {
	pool := make([]WorkerToken, 0, len(c.workers))
	for _, w := range c.workers {
		if !c.store.IsAssigned(w.ID, KindWorker) {
			pool = append(pool, w)
		}
	}
	return pool
}

// UnassignedShifts lists the shift pool in the order the shifts were given.
func (c *Controller) UnassignedShifts() []ShiftToken {
	pool := make([]ShiftToken, 0, len(c.shifts))
	for _, s := range c.shifts {
		if !c.store.IsAssigned(s.ID, KindShift) {
			pool = append(pool, s)
		}
	}
	return pool
}

// resolve maps tok to the controller's own copy of the token.
func (c *Controller) resolve(tok Token) (Token, bool) {
	if tok == nil {
		return nil, false
	}
	return c.Token(tok.Kind(), tok.TokenID())
}
