package function

import (
	"github.com/coreman2200/funtimes-ledstrip/model"
)

type DropState int

const (
	DropOff DropState = iota
	DropSplash
)

func (s DropState) String() string {
	if s == DropSplash {
		return "splash"
	}
	return "off"
}

// Raindrop waits in DropOff until a splash starts (probability Chance per
// ready tick), then grows a symmetric splash by Stride cells per tick, each
// ring dimmer than the last, up to a random width in [1, MaxWidth]. When
// the splash is complete it picks a new origin and goes back to DropOff.
type Raindrop struct {
	Base
	Chance   float64
	MaxWidth int
	Stride   int

	State  DropState
	Origin int
	Radius int
	Width  int
	// fade is the intensity lost per ring
	fade float64
}

func NewRaindrop(name string, delay int, chance float64, maxWidth, stride int, seq []model.ColorVal) *Raindrop {
	if maxWidth < 1 {
		maxWidth = 1
	}
	if stride < 1 {
		stride = 1
	}
	return &Raindrop{Base: newBase(name, KindRaindrop, delay, seq), Chance: chance, MaxWidth: maxWidth, Stride: stride}
}

func (d *Raindrop) Step(c *Context) error {
	n := c.Buf.Len()
	switch d.State {
	case DropOff:
		if c.Rand.Float64() >= d.Chance {
			return nil
		}
		d.State = DropSplash
		d.Origin = Wrap(d.Origin, n)
		d.Radius = 0
		d.Width = 1 + c.Rand.Intn(d.MaxWidth)
		d.fade = 1 / float64(d.Width+1)
		c.Buf.Set(d.Origin, d.Color)
	case DropSplash:
		from := d.Radius + 1
		d.Radius += d.Stride
		if d.Radius > d.Width {
			d.Radius = d.Width
		}
		for k := from; k <= d.Radius; k++ {
			v := d.Color.Scale(1 - float64(k)*d.fade)
			c.Buf.Set(Wrap(d.Origin-k, n), v)
			c.Buf.Set(Wrap(d.Origin+k, n), v)
		}
		if d.Radius >= d.Width {
			d.Origin = RandomIndex(c.Rand, n)
			d.State = DropOff
			d.advanceColor()
		}
	}
	return nil
}
