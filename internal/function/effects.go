package function

import (
	"fmt"
	"math/rand"

	"github.com/coreman2200/funtimes-ledstrip/model"
)

// Fade pulls every cell toward Target by Amount per ready tick. Effects
// registered after it draw on top of the fading trail.
type Fade struct {
	Base
	Target model.ColorVal
	Amount int
}

func NewFade(name string, delay int, target model.ColorVal, amount int) *Fade {
	return &Fade{Base: newBase(name, KindFade, delay, []model.ColorVal{target}), Target: target, Amount: amount}
}

func (f *Fade) Step(c *Context) error {
	px := c.Buf.Pixels()
	for i, v := range px {
		px[i] = FadeToward(v, f.Target, f.Amount)
	}
	return nil
}

// Generators by name, as used by Pattern and in config files.
var Generators = []string{"off", "solid", "transition", "repeat", "reflect", "stretch", "random", "pseudo", "rainbow"}

func generate(name string, n int, seq []model.ColorVal, fold int, wrap bool, r *rand.Rand) ([]model.ColorVal, error) {
	switch name {
	case "off":
		return model.PixelArrayOff(n), nil
	case "solid", "":
		return model.SolidColorArray(n, seq...), nil
	case "transition":
		return model.ColorTransitionArray(n, seq, wrap), nil
	case "repeat":
		return model.RepeatingColorSequenceArray(n, seq), nil
	case "reflect":
		return model.ReflectArray(n, seq, fold), nil
	case "stretch":
		return model.ColorStretchArray(n, seq), nil
	case "random":
		return model.RandomColorArray(n, r), nil
	case "pseudo":
		return model.PseudoRandomArray(n, seq, r), nil
	case "rainbow":
		return model.RainbowArray(n), nil
	}
	return nil, fmt.Errorf("unknown pattern %q", name)
}

// Pattern paints a generated pattern over the whole buffer. With Shift set
// the pattern rolls by Shift cells on every ready tick.
type Pattern struct {
	Base
	Generator string
	Fold      int
	Wrap      bool
	Shift     int

	offset int
	cache  []model.ColorVal
}

func NewPattern(name, generator string, delay int, seq []model.ColorVal) *Pattern {
	return &Pattern{Base: newBase(name, KindPattern, delay, seq), Generator: generator}
}

func (p *Pattern) Step(c *Context) error {
	n := c.Buf.Len()
	if len(p.cache) != n || p.Generator == "random" || p.Generator == "pseudo" {
		out, err := generate(p.Generator, n, p.Seq.Colors(), p.Fold, p.Wrap, c.Rand)
		if err != nil {
			return err
		}
		p.cache = out
	}
	px := c.Buf.Pixels()
	for i := range px {
		px[i] = p.cache[Wrap(i-p.offset, n)]
	}
	p.offset = Wrap(p.offset+p.Shift, n)
	return nil
}

// Marquee rotates the buffer contents by Stride cells in Direction.
type Marquee struct {
	Base
	Stride    int
	Direction int

	tmp []model.ColorVal
}

func NewMarquee(name string, delay, step, dir int) *Marquee {
	return &Marquee{Base: newBase(name, KindMarquee, delay, nil), Stride: step, Direction: dir}
}

func (m *Marquee) Step(c *Context) error {
	px := c.Buf.Pixels()
	n := len(px)
	step, dir := normalize(m.Stride, m.Direction)
	m.tmp = append(m.tmp[:0], px...)
	for i := range px {
		px[Wrap(i+step*dir, n)] = m.tmp[i]
	}
	return nil
}

// Twinkle lights a random cell with the next sequence color with
// probability Chance per ready tick.
type Twinkle struct {
	Base
	Chance float64
}

func NewTwinkle(name string, delay int, chance float64, seq []model.ColorVal) *Twinkle {
	return &Twinkle{Base: newBase(name, KindTwinkle, delay, seq), Chance: chance}
}

func (t *Twinkle) Step(c *Context) error {
	if c.Rand.Float64() >= t.Chance {
		return nil
	}
	t.advanceColor()
	c.Buf.Set(RandomIndex(c.Rand, c.Buf.Len()), t.Color)
	return nil
}

// Sweep modes.
const (
	SweepIndex = "index"
	SweepRGB   = "rgb"
)

// Sweep is a wiring check: in index mode one virtual cell is lit at a time
// in order; in rgb mode the whole frame cycles red, green, blue.
type Sweep struct {
	Base
	Mode string
	pos  int
}

func NewSweep(name, mode string, delay int, color model.ColorVal) *Sweep {
	s := &Sweep{Base: newBase(name, KindSweep, delay, []model.ColorVal{color}), Mode: mode}
	if mode == SweepRGB {
		s.Seq = NewCursor([]model.ColorVal{model.Red, model.Green, model.Blue})
		s.Color = s.Seq.Current()
	}
	return s
}

func (s *Sweep) Step(c *Context) error {
	switch s.Mode {
	case SweepRGB:
		c.Buf.Fill(s.Color)
		s.advanceColor()
	case SweepIndex, "":
		n := c.Buf.Len()
		c.Buf.Set(Wrap(s.pos-1, n), model.Off)
		c.Buf.Set(Wrap(s.pos, n), s.Color)
		s.pos = Wrap(s.pos+1, n)
	default:
		return fmt.Errorf("unknown sweep mode %q", s.Mode)
	}
	return nil
}
