// Package led holds the output sinks a projected frame is written to.
package led

import (
	"errors"
	"fmt"

	"github.com/coreman2200/funtimes-ledstrip/model"
)

// ErrOutputSink is matched by every error a Driver returns.
var ErrOutputSink = errors.New("output sink")

// ErrClosed is returned by drivers used after Close.
var ErrClosed = errors.New("driver closed")

// Driver abstracts an LED output sink. SetPixel stages a color; Show pushes
// the staged frame to hardware.
type Driver interface {
	SetPixel(index int, c model.ColorVal) error
	Show() error
	// NumPixels is the number of physical LEDs the sink addresses.
	NumPixels() int
	// Close releases resources.
	Close() error
}

// SinkError reports a failed driver operation.
type SinkError struct {
	Driver string
	Op     string
	Err    error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrOutputSink, e.Driver, e.Op, e.Err)
}

func (e *SinkError) Unwrap() []error { return []error{ErrOutputSink, e.Err} }

// Wrap returns err as a *SinkError, keeping one that already is.
func Wrap(driver, op string, err error) error {
	if err == nil {
		return nil
	}
	var se *SinkError
	if errors.As(err, &se) {
		return err
	}
	return &SinkError{Driver: driver, Op: op, Err: err}
}

// frame is the staging area shared by the drivers.
type frame struct {
	name   string
	pixels []model.ColorVal
}

func newFrame(name string, n int) frame {
	return frame{name: name, pixels: make([]model.ColorVal, n)}
}

func (f *frame) set(i int, c model.ColorVal) error {
	if i < 0 || i >= len(f.pixels) {
		return &SinkError{Driver: f.name, Op: "set", Err: fmt.Errorf("index %d out of range [0,%d)", i, len(f.pixels))}
	}
	f.pixels[i] = c
	return nil
}

// rgb writes the staged frame as canonical R,G,B bytes into dst.
func (f *frame) rgb(dst []byte) []byte {
	dst = dst[:0]
	for _, c := range f.pixels {
		ch := c.RGB()
		dst = append(dst, ch[0], ch[1], ch[2])
	}
	return dst
}

func (f *frame) clear() {
	for i := range f.pixels {
		f.pixels[i] = model.Off
	}
}
