package led

import (
	"sync"

	"github.com/coreman2200/funtimes-ledstrip/model"
)

// Guard makes Close idempotent for any Driver and normalises errors to
// *SinkError. It is safe for concurrent use.
type Guard struct {
	name string
	d    Driver

	mu     sync.Mutex
	closed bool
}

func NewGuard(name string, d Driver) *Guard {
	if g, ok := d.(*Guard); ok {
		return g
	}
	return &Guard{name: name, d: d}
}

// Unwrap returns the guarded driver.
func (g *Guard) Unwrap() Driver { return g.d }

func (g *Guard) SetPixel(i int, c model.ColorVal) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return &SinkError{Driver: g.name, Op: "set", Err: ErrClosed}
	}
	return Wrap(g.name, "set", g.d.SetPixel(i, c))
}

func (g *Guard) Show() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return &SinkError{Driver: g.name, Op: "show", Err: ErrClosed}
	}
	return Wrap(g.name, "show", g.d.Show())
}

func (g *Guard) NumPixels() int { return g.d.NumPixels() }

// Close releases the driver once; later calls return nil.
func (g *Guard) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil
	}
	g.closed = true
	return Wrap(g.name, "close", g.d.Close())
}

func (g *Guard) Closed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}
