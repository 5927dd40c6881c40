package function

import (
	"math/rand"
	"testing"

	"github.com/coreman2200/funtimes-ledstrip/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelayThrottle(t *testing.T) {
	d := Delay{Max: 2}
	var got []bool
	for i := 0; i < 6; i++ {
		got = append(got, d.Advance())
		assert.GreaterOrEqual(t, d.Counter, 0)
		assert.LessOrEqual(t, d.Counter, d.Max)
	}
	assert.Equal(t, []bool{false, true, false, true, false, true}, got)

	every := Delay{}
	for i := 0; i < 3; i++ {
		assert.True(t, every.Advance())
	}
}

func TestFadeConvergesWithoutOvershoot(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for trial := 0; trial < 200; trial++ {
		from := model.RandomColorArray(1, r)[0]
		to := model.RandomColorArray(1, r)[0]
		step := 1 + r.Intn(80)
		bound := (255 + step - 1) / step

		c := from
		calls := 0
		for !c.Equal(to) {
			prev := c.RGB()
			c = FadeToward(c, to, step)
			calls++
			cur, tgt := c.RGB(), to.RGB()
			for ch := 0; ch < 3; ch++ {
				// never passes through the target
				if prev[ch] <= tgt[ch] {
					assert.LessOrEqual(t, cur[ch], tgt[ch])
					assert.GreaterOrEqual(t, cur[ch], prev[ch])
				} else {
					assert.GreaterOrEqual(t, cur[ch], tgt[ch])
					assert.LessOrEqual(t, cur[ch], prev[ch])
				}
			}
			require.LessOrEqual(t, calls, bound, "%s -> %s step %d", from, to, step)
		}
		assert.True(t, FadeToward(c, to, step).Equal(to))
	}
}

func TestFadeKeepsOrderAndIgnoresBadStep(t *testing.T) {
	c := model.White.WithOrder(model.GRB)
	out := FadeToward(c, model.Off, 300)
	assert.True(t, out.IsOff())
	assert.Equal(t, model.GRB, out.Order())
	assert.True(t, FadeToward(model.Red, model.Blue, 0).Equal(model.Red))
}

func TestAdvanceWraparound(t *testing.T) {
	const n = 10
	for i := -12; i <= 12; i++ {
		for s := 0; s <= 13; s++ {
			for _, d := range []int{-1, 1} {
				next, span := Advance(i, s, d, n)
				require.Len(t, span, s+1)
				assert.Equal(t, Wrap(i, n), span[0])
				assert.Equal(t, next, span[len(span)-1])
				for _, x := range span {
					assert.True(t, x >= 0 && x < n)
				}
				for k := 1; k < len(span); k++ {
					assert.Equal(t, Wrap(span[k-1]+d, n), span[k])
				}
			}
		}
	}
}

func TestAdvanceNegativeStepReverses(t *testing.T) {
	next, span := Advance(0, -2, 1, 5)
	assert.Equal(t, 3, next)
	assert.Equal(t, []int{0, 4, 3}, span)

	_, span = Advance(3, 1, 1, 0)
	assert.Nil(t, span)
}

func TestCursorWraps(t *testing.T) {
	c := NewCursor([]model.ColorVal{model.Red, model.Green, model.Blue})
	assert.True(t, c.Current().Equal(model.Red))
	assert.True(t, c.Peek().Equal(model.Green))
	assert.True(t, c.Next().Equal(model.Green))
	assert.True(t, c.Next().Equal(model.Blue))
	assert.True(t, c.Next().Equal(model.Red))
	assert.Equal(t, 0, c.Pos())

	def := NewCursor(nil)
	assert.Greater(t, def.Len(), 0)
}

func TestRandomHelpers(t *testing.T) {
	r := rand.New(rand.NewSource(9))
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		x := RandomIndex(r, 7)
		assert.True(t, x >= 0 && x < 7)
		d := RandomDirection(r)
		seen[d] = true
		assert.True(t, d == 1 || d == -1)
	}
	assert.Len(t, seen, 2)
	assert.Equal(t, 0, RandomIndex(r, 0))
}
