package function

import (
	"github.com/coreman2200/funtimes-ledstrip/model"
)

// Spark is a moving dot. It paints every cell it passes over so moves
// longer than one cell leave no gaps, and switches to the next sequence
// color after each hit.
type Spark struct {
	Base
	motion Motion
}

func NewSpark(name string, delay, index, step, dir int, seq []model.ColorVal) *Spark {
	s := &Spark{Base: newBase(name, KindMover, delay, seq)}
	step, dir = normalize(step, dir)
	s.motion = Motion{Index: index, Step: step, Direction: dir, Origin: index}
	return s
}

func (s *Spark) Motion() *Motion { return &s.motion }

func (s *Spark) Step(c *Context) error {
	n := c.Buf.Len()
	s.motion.Index = Wrap(s.motion.Index, n)
	for _, i := range s.motion.move(n) {
		c.Buf.Set(i, s.Color)
	}
	return nil
}

func (s *Spark) OnCollision(c *Context, cell int) {
	if s.motion.Explode > 0 {
		Burst(c.Buf, cell, s.motion.Explode, s.Color)
	}
	s.advanceColor()
}
