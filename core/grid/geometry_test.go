package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBox_Contains(t *testing.T) {
	b := Box{Left: 10, Top: 20, Width: 100, Height: 50}

	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{name: "inside", x: 50, y: 40, want: true},
		{name: "left edge", x: 10, y: 40},
		{name: "right edge", x: 110, y: 40},
		{name: "top edge", x: 50, y: 20},
		{name: "bottom edge", x: 50, y: 70},
		{name: "outside", x: 0, y: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Contains(tt.x, tt.y))
		})
	}
}

func TestResolver_Locate(t *testing.T) {
	shape := Shape{Rows: 4, Cols: 7}
	r := NewResolver()
	for cell, box := range UniformLayout(shape, Layout{CellWidth: 100, CellHeight: 50, Gap: 10}) {
		r.Register(cell, box)
	}
	assert.Equal(t, 28, r.Len())

	tests := []struct {
		name   string
		x, y   float64
		want   CellID
		wantOk bool
	}{
		{name: "first cell", x: 50, y: 25, want: CellID{0, 0}, wantOk: true},
		{name: "second column", x: 160, y: 25, want: CellID{0, 1}, wantOk: true},
		{name: "last cell", x: 6*110 + 50, y: 3*60 + 25, want: CellID{3, 6}, wantOk: true},
		{name: "in gap", x: 105, y: 25},
		{name: "far outside", x: 9999, y: 9999},
		{name: "negative", x: -5, y: -5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Locate(tt.x, tt.y)
			assert.Equal(t, tt.wantOk, ok)
			if tt.wantOk {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestResolver_overlapResolvesToOneCell(t *testing.T) {
	r := NewResolver()
	// registered out of order on purpose
	r.Register(CellID{1, 0}, Box{Left: 0, Top: 0, Width: 100, Height: 100})
	r.Register(CellID{0, 1}, Box{Left: 0, Top: 0, Width: 100, Height: 100})
	r.Register(CellID{0, 0}, Box{Left: 50, Top: 50, Width: 100, Height: 100})

	for i := 0; i < 10; i++ {
		got, ok := r.Locate(75, 75)
		assert.True(t, ok)
		assert.Equal(t, CellID{0, 0}, got)
	}

	got, ok := Locate(10, 10, map[CellID]Box{
		{1, 0}: {Left: 0, Top: 0, Width: 100, Height: 100},
		{0, 1}: {Left: 0, Top: 0, Width: 100, Height: 100},
	})
	assert.True(t, ok)
	assert.Equal(t, CellID{0, 1}, got)
}

func TestResolver_ResetAndReplace(t *testing.T) {
	r := NewResolver()
	r.Register(CellID{0, 0}, Box{Width: 10, Height: 10})
	r.Register(CellID{0, 0}, Box{Left: 100, Top: 100, Width: 10, Height: 10})
	assert.Equal(t, 1, r.Len())

	_, ok := r.Locate(5, 5)
	assert.False(t, ok)
	got, ok := r.Locate(105, 105)
	assert.True(t, ok)
	assert.Equal(t, CellID{0, 0}, got)

	r.Reset()
	assert.Equal(t, 0, r.Len())
	_, ok = r.Locate(105, 105)
	assert.False(t, ok)
}
