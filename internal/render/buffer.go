package render

import (
	"fmt"

	"github.com/coreman2200/funtimes-ledstrip/internal/layout"
	"github.com/coreman2200/funtimes-ledstrip/model"
)

// Buffer is the virtual pixel grid effects draw into, stored row by row.
// Strips are a single row.
type Buffer struct {
	rows, cols int
	px         []model.ColorVal
}

// NewBuffer allocates an all-off rows x cols grid.
func NewBuffer(rows, cols int) (*Buffer, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: buffer %dx%d has no area", layout.ErrInvalidLayout, rows, cols)
	}
	return &Buffer{rows: rows, cols: cols, px: make([]model.ColorVal, rows*cols)}, nil
}

// FromStrip copies a flat strip into a one row buffer.
func FromStrip(px []model.ColorVal) (*Buffer, error) {
	b, err := NewBuffer(1, len(px))
	if err != nil {
		return nil, err
	}
	copy(b.px, px)
	return b, nil
}

// FromGrid copies a rectangular grid. Ragged rows are rejected.
func FromGrid(grid [][]model.ColorVal) (*Buffer, error) {
	if len(grid) == 0 {
		return nil, fmt.Errorf("%w: empty grid", layout.ErrInvalidLayout)
	}
	b, err := NewBuffer(len(grid), len(grid[0]))
	if err != nil {
		return nil, err
	}
	for r, row := range grid {
		if len(row) != b.cols {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", layout.ErrInvalidLayout, r, len(row), b.cols)
		}
		copy(b.px[r*b.cols:], row)
	}
	return b, nil
}

func (b *Buffer) Rows() int { return b.rows }
func (b *Buffer) Cols() int { return b.cols }
func (b *Buffer) Len() int  { return len(b.px) }

// At and Set address cells in row-major virtual order.
func (b *Buffer) At(i int) model.ColorVal     { return b.px[i] }
func (b *Buffer) Set(i int, c model.ColorVal) { b.px[i] = c }

func (b *Buffer) AtRC(r, c int) model.ColorVal     { return b.px[r*b.cols+c] }
func (b *Buffer) SetRC(r, c int, v model.ColorVal) { b.px[r*b.cols+c] = v }

// InRange reports whether i is a valid cell index.
func (b *Buffer) InRange(i int) bool { return i >= 0 && i < len(b.px) }

func (b *Buffer) Fill(c model.ColorVal) {
	for i := range b.px {
		b.px[i] = c
	}
}

// Pixels exposes the backing slice. Writes go straight to the buffer.
func (b *Buffer) Pixels() []model.ColorVal { return b.px }

// CopyFrom overwrites b with o's cells; shapes must match.
func (b *Buffer) CopyFrom(o *Buffer) error {
	if o.rows != b.rows || o.cols != b.cols {
		return fmt.Errorf("%w: copy %dx%d into %dx%d", layout.ErrInvalidLayout, o.rows, o.cols, b.rows, b.cols)
	}
	copy(b.px, o.px)
	return nil
}

func (b *Buffer) Clone() *Buffer {
	out := &Buffer{rows: b.rows, cols: b.cols, px: make([]model.ColorVal, len(b.px))}
	copy(out.px, b.px)
	return out
}

// Grid returns a copy of the buffer as rows.
func (b *Buffer) Grid() [][]model.ColorVal {
	out := make([][]model.ColorVal, b.rows)
	for r := range out {
		out[r] = append([]model.ColorVal(nil), b.px[r*b.cols:(r+1)*b.cols]...)
	}
	return out
}
