package grid

// layer is one partial function cell -> token, kept in sync with its inverse token id -> cell.
type layer[T Token] struct {
	byCell  map[CellID]T
	byToken map[string]CellID
}

func newLayer[T Token]() *layer[T] {
	return &layer[T]{
		byCell:  make(map[CellID]T),
		byToken: make(map[string]CellID),
	}
}

// place puts tok at cell, removing it from any other cell first.
// The token previously occupying cell (if another one) is returned.
func (l *layer[T]) place(cell CellID, tok T) (displaced T, ok bool) {
	id := tok.TokenID()
	if prev, found := l.byToken[id]; found && prev != cell {
		delete(l.byCell, prev)
	}
	if occ, found := l.byCell[cell]; found && occ.TokenID() != id {
		delete(l.byToken, occ.TokenID())
		displaced, ok = occ, true
	}
	l.byCell[cell] = tok
	l.byToken[id] = cell
	return displaced, ok
}

func (l *layer[T]) clear(cell CellID) (tok T, ok bool) {
	tok, ok = l.byCell[cell]
	if ok {
		delete(l.byCell, cell)
		delete(l.byToken, tok.TokenID())
	}
	return tok, ok
}

// Store holds the worker & shift assignments of a grid. Both layers are independent:
// a cell may hold one worker and one shift at the same time.
// Store is not safe for concurrent use.
type Store struct {
	workers *layer[WorkerToken]
	shifts  *layer[ShiftToken]
}

func NewStore() *Store {
	return &Store{
		workers: newLayer[WorkerToken](),
		shifts:  newLayer[ShiftToken](),
	}
}

// Place assigns tok to cell on the token's kind layer.
// A token already placed elsewhere is moved; re-placing at the same cell is a no-op.
// The token that occupied cell before (if any) is displaced & returned.
// Only WorkerToken & ShiftToken (values or pointers) are placed; any other Token is ignored.
func (s *Store) Place(cell CellID, tok Token) (displaced Token, ok bool) {
	switch tok.Kind() {
	case KindWorker:
		if w, valid := asWorker(tok); valid {
			if d, found := s.workers.place(cell, w); found {
				return d, true
			}
		}
	case KindShift:
		if sh, valid := asShift(tok); valid {
			if d, found := s.shifts.place(cell, sh); found {
				return d, true
			}
		}
	}
	return nil, false
}

func asWorker(tok Token) (WorkerToken, bool) {
	switch t := tok.(type) {
	case WorkerToken:
		return t, true
	case *WorkerToken:
		return *t, true
	}
	return WorkerToken{}, false
}

func asShift(tok Token) (ShiftToken, bool) {
	switch t := tok.(type) {
	case ShiftToken:
		return t, true
	case *ShiftToken:
		return *t, true
	}
	return ShiftToken{}, false
}

// Clear removes the kind assignment at cell and returns the removed token; no-op when empty.
func (s *Store) Clear(cell CellID, kind Kind) (Token, bool) {
	switch kind {
	case KindWorker:
		if t, ok := s.workers.clear(cell); ok {
			return t, true
		}
	case KindShift:
		if t, ok := s.shifts.clear(cell); ok {
			return t, true
		}
	}
	return nil, false
}

func (s *Store) IsAssigned(tokenID string, kind Kind) bool {
	_, ok := s.CellOf(tokenID, kind)
	return ok
}

// CellOf returns where the token is placed.
func (s *Store) CellOf(tokenID string, kind Kind) (CellID, bool) {
	var c CellID
	var ok bool
	switch kind {
	case KindWorker:
		c, ok = s.workers.byToken[tokenID]
	case KindShift:
		c, ok = s.shifts.byToken[tokenID]
	}
	return c, ok
}

func (s *Store) Worker(cell CellID) (WorkerToken, bool) {
	t, ok := s.workers.byCell[cell]
	return t, ok
}

func (s *Store) Shift(cell CellID) (ShiftToken, bool) {
	t, ok := s.shifts.byCell[cell]
	return t, ok
}

func (s *Store) Lookup(cell CellID, kind Kind) (Token, bool) {
	switch kind {
	case KindWorker:
		if t, ok := s.workers.byCell[cell]; ok {
			return t, true
		}
	case KindShift:
		if t, ok := s.shifts.byCell[cell]; ok {
			return t, true
		}
	}
	return nil, false
}

// Len returns the number of cells holding a kind assignment.
func (s *Store) Len(kind Kind) int {
	switch kind {
	case KindWorker:
		return len(s.workers.byCell)
	case KindShift:
		return len(s.shifts.byCell)
	}
	return 0
}
