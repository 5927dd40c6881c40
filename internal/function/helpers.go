package function

import (
	"math/rand"

	"github.com/coreman2200/funtimes-ledstrip/internal/render"
	"github.com/coreman2200/funtimes-ledstrip/model"
)

// Cursor reads an ordered color sequence, wrapping at its end.
// Pos is always in [0, Len).
type Cursor struct {
	seq []model.ColorVal
	pos int
}

// NewCursor copies seq; an empty one falls back to the seasonal default.
func NewCursor(seq []model.ColorVal) Cursor {
	if len(seq) == 0 {
		seq = model.DefaultColors()
	}
	return Cursor{seq: append([]model.ColorVal(nil), seq...)}
}

func (c *Cursor) Len() int { return len(c.seq) }
func (c *Cursor) Pos() int { return c.pos }

func (c *Cursor) Current() model.ColorVal { return c.seq[c.pos] }

// Peek is the color Next would return.
func (c *Cursor) Peek() model.ColorVal { return c.seq[(c.pos+1)%len(c.seq)] }

// Next advances and returns the new current color.
func (c *Cursor) Next() model.ColorVal {
	c.pos = (c.pos + 1) % len(c.seq)
	return c.seq[c.pos]
}

// Colors is a copy of the sequence.
func (c *Cursor) Colors() []model.ColorVal { return append([]model.ColorVal(nil), c.seq...) }

func fadeChannel(v, t uint8, step int) uint8 {
	d := int(t) - int(v)
	switch {
	case d > step:
		return v + uint8(step)
	case d < -step:
		return v - uint8(step)
	default:
		return t
	}
}

// FadeToward moves each channel of c at most step toward target, snapping
// to it once closer than step. A non-positive step leaves c unchanged.
func FadeToward(c, target model.ColorVal, step int) model.ColorVal {
	if step <= 0 || c.Equal(target) {
		return c
	}
	if step > 255 {
		step = 255
	}
	a, b := c.RGB(), target.RGB()
	return c.WithRGB(fadeChannel(a[0], b[0], step), fadeChannel(a[1], b[1], step), fadeChannel(a[2], b[2], step))
}

// Wrap folds i into [0, n).
func Wrap(i, n int) int {
	if n <= 0 {
		return 0
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

func normalize(step, dir int) (int, int) {
	if dir < 0 {
		dir = -1
	} else {
		dir = 1
	}
	if step < 0 {
		step, dir = -step, -dir
	}
	return step, dir
}

// Advance moves index by step cells in dir on a ring of n cells. span holds
// the origin followed by every cell passed over, step+1 entries in all.
func Advance(index, step, dir, n int) (next int, span []int) {
	if n <= 0 {
		return 0, nil
	}
	step, dir = normalize(step, dir)
	span = make([]int, step+1)
	cur := Wrap(index, n)
	span[0] = cur
	for k := 1; k <= step; k++ {
		cur = Wrap(cur+dir, n)
		span[k] = cur
	}
	return cur, span
}

func RandomIndex(r *rand.Rand, n int) int {
	if n <= 0 {
		return 0
	}
	return r.Intn(n)
}

func RandomDirection(r *rand.Rand) int {
	return r.Intn(2)*2 - 1
}

// Burst paints c at center and fading copies out to radius on both sides.
func Burst(buf *render.Buffer, center, radius int, c model.ColorVal) {
	n := buf.Len()
	if n == 0 {
		return
	}
	for k := radius; k >= 0; k-- {
		v := c.Scale(1 - float64(k)/float64(radius+1))
		buf.Set(Wrap(center-k, n), v)
		buf.Set(Wrap(center+k, n), v)
	}
}
