// Package grid implements the shift assignment grid: a rows x columns matrix of cells onto which
// worker and shift tokens are dropped by pointer position, and cleared by tapping.
package grid

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrInvalidShape = errors.New("grid must have at least one row and one column")
	ErrOutOfRange   = errors.New("cell out of range")
	ErrInvalidCell  = errors.New("invalid cell id")
)

// CellID identifies one grid position. Its text form is "<row>-<col>".
type CellID struct {
	Row int
	Col int
}

func (c CellID) String() string {
	return strconv.Itoa(c.Row) + "-" + strconv.Itoa(c.Col)
}

// ParseCellID parses the "<row>-<col>" form. It does not check the cell against any grid shape.
func ParseCellID(s string) (CellID, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(parts) != 2 {
		return CellID{}, ErrInvalidCell
	}
	row, err := strconv.Atoi(parts[0])
	if err != nil || row < 0 {
		return CellID{}, ErrInvalidCell
	}
	col, err := strconv.Atoi(parts[1])
	if err != nil || col < 0 {
		return CellID{}, ErrInvalidCell
	}
	return CellID{Row: row, Col: col}, nil
}

func (c CellID) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *CellID) UnmarshalText(text []byte) error {
	id, err := ParseCellID(string(text))
	if err != nil {
		return err
	}
	*c = id
	return nil
}

// Shape is the fixed row count & column count of a grid.
type Shape struct {
	Rows int
	Cols int
}

func NewShape(rows, cols int) (Shape, error) {
	if rows <= 0 || cols <= 0 {
		return Shape{}, ErrInvalidShape
	}
	return Shape{Rows: rows, Cols: cols}, nil
}

func (s Shape) Contains(c CellID) bool {
	return c.Row >= 0 && c.Row < s.Rows && c.Col >= 0 && c.Col < s.Cols
}

// Cell returns the CellID at (row, col), rejecting coordinates outside the grid.
func (s Shape) Cell(row, col int) (CellID, error) {
	c := CellID{Row: row, Col: col}
	if !s.Contains(c) {
		return CellID{}, errors.Wrapf(ErrOutOfRange, "%s in %dx%d grid", c, s.Rows, s.Cols)
	}
	return c, nil
}

// ParseCell parses s and checks it against the grid.
func (s Shape) ParseCell(str string) (CellID, error) {
	c, err := ParseCellID(str)
	if err != nil {
		return CellID{}, err
	}
	return s.Cell(c.Row, c.Col)
}

// Cells lists every cell in row-major order.
func (s Shape) Cells() []CellID {
	cells := make([]CellID, 0, s.Rows*s.Cols)
	for r := 0; r < s.Rows; r++ {
		for c := 0; c < s.Cols; c++ {
			cells = append(cells, CellID{Row: r, Col: c})
		}
	}
	return cells
}

func less(a, b CellID) bool {
	if a.Row != b.Row {
		return a.Row < b.Row
	}
	return a.Col < b.Col
}
