// Package render owns the virtual buffer and folds it into physical order
// for an LED driver.
package render

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/coreman2200/funtimes-ledstrip/internal/layout"
	"github.com/coreman2200/funtimes-ledstrip/internal/led"
	"github.com/coreman2200/funtimes-ledstrip/model"
)

// ErrUninitializedBuffer is returned by Project, Flush and Reset before a
// buffer has been set.
var ErrUninitializedBuffer = errors.New("uninitialized buffer")

// Engine maps a virtual Buffer onto the physical LEDs described by a
// layout, runs the post stage and writes the result to the driver.
type Engine struct {
	base   *layout.Layout // physical wiring
	active *layout.Layout // table for the current buffer shape
	buf    *Buffer
	Drv    led.Driver

	post  PostPipeline
	out   []model.ColorVal // projected
	stage []model.ColorVal // post-processed copy

	// metrics (last durations in ms)
	Last struct {
		ProjectMS float64
		PostMS    float64
		TotalMS   float64
	}
}

// NewEngine wires l to drv. drv may be nil for headless use, in which case
// Flush fails with an output sink error.
func NewEngine(l *layout.Layout, drv led.Driver) (*Engine, error) {
	if l == nil {
		return nil, fmt.Errorf("%w: nil layout", layout.ErrInvalidLayout)
	}
	n := l.Count()
	return &Engine{
		base:  l,
		Drv:   drv,
		post:  DefaultPost(),
		out:   make([]model.ColorVal, n),
		stage: make([]model.ColorVal, n),
	}, nil
}

// Physical is the number of LEDs the layout addresses.
func (e *Engine) Physical() int { return e.base.Count() }

func (e *Engine) Layout() *layout.Layout { return e.base }

// Buffer is the current virtual buffer, nil until one is set.
func (e *Engine) Buffer() *Buffer { return e.buf }

// Table is the active index mapping, nil until a buffer is set.
func (e *Engine) Table() []int {
	if e.active == nil {
		return nil
	}
	return e.active.Table()
}

// SetLayout swaps the physical wiring and rebuilds the mapping for the
// current buffer.
func (e *Engine) SetLayout(l *layout.Layout) error {
	if l == nil {
		return fmt.Errorf("%w: nil layout", layout.ErrInvalidLayout)
	}
	e.base = l
	e.out = make([]model.ColorVal, l.Count())
	e.stage = make([]model.ColorVal, l.Count())
	if e.buf == nil {
		return nil
	}
	return e.Use(e.buf)
}

// Use installs b as the virtual buffer and recomputes the mapping table
// from its shape.
func (e *Engine) Use(b *Buffer) error {
	if b == nil {
		return ErrUninitializedBuffer
	}
	active, err := e.base.Reshape(b.Rows(), b.Cols())
	if err != nil {
		return err
	}
	e.buf, e.active = b, active
	return nil
}

// SetBuffer replaces the virtual buffer with a copy of grid.
func (e *Engine) SetBuffer(grid [][]model.ColorVal) error {
	b, err := FromGrid(grid)
	if err != nil {
		return err
	}
	return e.Use(b)
}

// SetStrip replaces the virtual buffer with a one row copy of px.
func (e *Engine) SetStrip(px []model.ColorVal) error {
	b, err := FromStrip(px)
	if err != nil {
		return err
	}
	return e.Use(b)
}

// Reset crops or pads the buffer with Off back to the physical shape and
// restores the physical mapping. Cells keep their (row, col) when both
// shapes are grids; strips copy in flat order.
func (e *Engine) Reset() error {
	if e.buf == nil {
		return ErrUninitializedBuffer
	}
	rows, cols := e.base.Rows(), e.base.Cols()
	if e.buf.Rows() == rows && e.buf.Cols() == cols {
		e.active = e.base
		return nil
	}
	nb, err := NewBuffer(rows, cols)
	if err != nil {
		return err
	}
	if e.buf.Rows() == 1 || rows == 1 {
		copy(nb.px, e.buf.px)
	} else {
		for r := 0; r < rows && r < e.buf.Rows(); r++ {
			for c := 0; c < cols && c < e.buf.Cols(); c++ {
				nb.SetRC(r, c, e.buf.AtRC(r, c))
			}
		}
	}
	e.buf, e.active = nb, e.base
	return nil
}

func (e *Engine) project() error {
	if e.buf == nil {
		return ErrUninitializedBuffer
	}
	for i := range e.out {
		e.out[i] = model.Off
	}
	n := len(e.out)
	for v, p := range e.active.Table() {
		if p < 0 || p >= n {
			continue
		}
		e.out[p] = e.buf.px[v]
	}
	return nil
}

// Project returns the virtual buffer in physical order. Cells mapped past
// the physical count are dropped; unaddressed LEDs are Off.
func (e *Engine) Project() ([]model.ColorVal, error) {
	if err := e.project(); err != nil {
		return nil, err
	}
	return append([]model.ColorVal(nil), e.out...), nil
}

// Flush projects, post-processes a copy and hands it to the driver. Driver
// failures come back as *led.SinkError and are not retried.
func (e *Engine) Flush() error {
	start := time.Now()
	if err := e.project(); err != nil {
		return err
	}
	e.Last.ProjectMS = float64(time.Since(start).Microseconds()) / 1000.0

	postStart := time.Now()
	copy(e.stage, e.out)
	e.post.Apply(e.stage)
	e.Last.PostMS = float64(time.Since(postStart).Microseconds()) / 1000.0

	if e.Drv == nil {
		return &led.SinkError{Driver: "none", Op: "show", Err: errors.New("no driver attached")}
	}
	n := len(e.stage)
	if d := e.Drv.NumPixels(); d < n {
		n = d
	}
	for i := 0; i < n; i++ {
		if err := e.Drv.SetPixel(i, e.stage[i]); err != nil {
			return led.Wrap("driver", "set", err)
		}
	}
	if err := e.Drv.Show(); err != nil {
		return led.Wrap("driver", "show", err)
	}
	e.Last.TotalMS = float64(time.Since(start).Microseconds()) / 1000.0
	return nil
}

// Frame is a copy of the last post-processed frame handed to the driver.
func (e *Engine) Frame() []model.ColorVal {
	return append([]model.ColorVal(nil), e.stage...)
}

func (e *Engine) Post() PostPipeline     { return e.post }
func (e *Engine) SetPost(p PostPipeline) { e.post = p }

// SetBrightness clamps b to [0,1].
func (e *Engine) SetBrightness(b float64) {
	e.post.Brightness = math.Max(0, math.Min(1, b))
}

func (e *Engine) SetGamma(g float64) { e.post.Gamma = g }
func (e *Engine) SetPower(p Power)   { e.post.Power = p }
