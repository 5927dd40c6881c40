package led

import (
	"sync"

	"github.com/coreman2200/funtimes-ledstrip/model"
	"periph.io/x/devices/v3/screen1d"
)

// Screen renders the strip as a line of ANSI colored cells on stdout, for
// running without hardware.
type Screen struct {
	mu     sync.Mutex
	f      frame
	dev    *screen1d.Dev
	buf    []byte
	closed bool
}

func NewScreen(count int) *Screen {
	return &Screen{
		f:   newFrame("screen", count),
		dev: screen1d.New(&screen1d.Opts{X: count}),
		buf: make([]byte, 0, count*3),
	}
}

func (s *Screen) SetPixel(i int, c model.ColorVal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.set(i, c)
}

func (s *Screen) Show() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &SinkError{Driver: "screen", Op: "show", Err: ErrClosed}
	}
	s.buf = s.f.rgb(s.buf)
	if _, err := s.dev.Write(s.buf); err != nil {
		return &SinkError{Driver: "screen", Op: "show", Err: err}
	}
	return nil
}

func (s *Screen) NumPixels() int { return len(s.f.pixels) }

func (s *Screen) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.dev.Halt(); err != nil {
		return &SinkError{Driver: "screen", Op: "close", Err: err}
	}
	return nil
}
