package grid

import "sort"

// Box is the last measured bounding box of a cell.
type Box struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether (x, y) lies strictly inside the box; edges do not match.
func (b Box) Contains(x, y float64) bool {
	return x > b.Left && x < b.Left+b.Width && y > b.Top && y < b.Top+b.Height
}

// Locate returns the cell whose box contains (x, y).
// Overlapping boxes resolve to the first match in row-major order, so a point never maps to two cells.
func Locate(x, y float64, boxes map[CellID]Box) (CellID, bool) {
	cells := make([]CellID, 0, len(boxes))
	for c := range boxes {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool { return less(cells[i], cells[j]) })
	for _, c := range cells {
		if boxes[c].Contains(x, y) {
			return c, true
		}
	}
	return CellID{}, false
}

// Resolver keeps the measured boxes of a grid's cells & maps drop points to cells.
type Resolver struct {
	order []CellID // row-major
	boxes map[CellID]Box
}

func NewResolver() *Resolver {
	return &Resolver{boxes: make(map[CellID]Box)}
}

// Register records (or replaces) the measured box of cell.
func (r *Resolver) Register(cell CellID, box Box) {
	if _, ok := r.boxes[cell]; !ok {
		i := sort.Search(len(r.order), func(i int) bool { return !less(r.order[i], cell) })
		r.order = append(r.order, CellID{})
		copy(r.order[i+1:], r.order[i:])
		r.order[i] = cell
	}
	r.boxes[cell] = box
}

// Reset drops every measurement, eg: before a new measurement pass.
func (r *Resolver) Reset() {
	r.order = r.order[:0]
	r.boxes = make(map[CellID]Box)
}

func (r *Resolver) Len() int { return len(r.order) }

func (r *Resolver) Box(cell CellID) (Box, bool) {
	b, ok := r.boxes[cell]
	return b, ok
}

func (r *Resolver) Locate(x, y float64) (CellID, bool) {
	for _, c := range r.order {
		if r.boxes[c].Contains(x, y) {
			return c, true
		}
	}
	return CellID{}, false
}

// Layout describes a regular grid rendering: same-sized cells separated by Gap.
type Layout struct {
	OriginX    float64
	OriginY    float64
	CellWidth  float64
	CellHeight float64
	Gap        float64
}

// UniformLayout computes the boxes of every cell of shape rendered with layout.
func UniformLayout(shape Shape, layout Layout) map[CellID]Box {
	boxes := make(map[CellID]Box, shape.Rows*shape.Cols)
	for _, c := range shape.Cells() {
		boxes[c] = Box{
			Left:   layout.OriginX + float64(c.Col)*(layout.CellWidth+layout.Gap),
			Top:    layout.OriginY + float64(c.Row)*(layout.CellHeight+layout.Gap),
			Width:  layout.CellWidth,
			Height: layout.CellHeight,
		}
	}
	return boxes
}
