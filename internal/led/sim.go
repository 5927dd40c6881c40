package led

import (
	"fmt"
	"sync"

	"github.com/coreman2200/funtimes-ledstrip/model"
)

// Sim is an in-memory Driver. It keeps the last shown frame and can be told
// to fail for exercising error paths.
type Sim struct {
	mu     sync.Mutex
	f      frame
	last   []model.ColorVal
	shows  int
	closes int

	// ShowErr, when set, is returned (wrapped) by every Show.
	ShowErr error
}

func NewSim(n int) *Sim {
	return &Sim{f: newFrame("sim", n), last: make([]model.ColorVal, n)}
}

func (s *Sim) SetPixel(i int, c model.ColorVal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closes > 0 {
		return &SinkError{Driver: "sim", Op: "set", Err: ErrClosed}
	}
	return s.f.set(i, c)
}

func (s *Sim) Show() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closes > 0 {
		return &SinkError{Driver: "sim", Op: "show", Err: ErrClosed}
	}
	if s.ShowErr != nil {
		return &SinkError{Driver: "sim", Op: "show", Err: s.ShowErr}
	}
	copy(s.last, s.f.pixels)
	s.shows++
	return nil
}

func (s *Sim) NumPixels() int { return len(s.last) }

// Close blanks the strip. Calling it again is a no-op.
func (s *Sim) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closes == 0 {
		s.f.clear()
		copy(s.last, s.f.pixels)
	}
	s.closes++
	return nil
}

// Frame is a copy of the last shown frame.
func (s *Sim) Frame() []model.ColorVal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ColorVal(nil), s.last...)
}

// Shows is the number of successful Show calls.
func (s *Sim) Shows() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shows
}

func (s *Sim) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes > 0
}

// Summary describes the last frame in one line.
func (s *Sim) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum [3]int
	lit := 0
	for _, c := range s.last {
		ch := c.RGB()
		sum[0] += int(ch[0])
		sum[1] += int(ch[1])
		sum[2] += int(ch[2])
		if !c.IsOff() {
			lit++
		}
	}
	n := len(s.last)
	if n == 0 {
		return "frame empty"
	}
	return fmt.Sprintf("frame %d: %d/%d lit, avg RGB=(%d,%d,%d)", s.shows, lit, n, sum[0]/n, sum[1]/n, sum[2]/n)
}
