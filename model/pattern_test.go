package model_test

import (
	"math/rand"
	"testing"

	. "github.com/coreman2200/funtimes-ledstrip/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generators() map[string]func(int) []ColorVal {
	seq := []ColorVal{Red, Green, Blue}
	r := rand.New(rand.NewSource(7))
	return map[string]func(int) []ColorVal{
		"off":         PixelArrayOff,
		"solid":       func(l int) []ColorVal { return SolidColorArray(l, Red) },
		"solidDflt":   func(l int) []ColorVal { return SolidColorArray(l) },
		"transition":  func(l int) []ColorVal { return ColorTransitionArray(l, seq, false) },
		"transWrap":   func(l int) []ColorVal { return ColorTransitionArray(l, seq, true) },
		"repeat":      func(l int) []ColorVal { return RepeatingColorSequenceArray(l, seq) },
		"reflect":     func(l int) []ColorVal { return ReflectArray(l, seq, 4) },
		"stretch":     func(l int) []ColorVal { return ColorStretchArray(l, seq) },
		"random":      func(l int) []ColorVal { return RandomColorArray(l, r) },
		"pseudo":      func(l int) []ColorVal { return PseudoRandomArray(l, seq, r) },
		"rainbow":     RainbowArray,
		"transSingle": func(l int) []ColorVal { return ColorTransitionArray(l, []ColorVal{Red}, true) },
	}
}

func TestGeneratorLengths(t *testing.T) {
	for name, g := range generators() {
		t.Run(name, func(t *testing.T) {
			for l := 0; l <= 37; l++ {
				out := g(l)
				require.NotNil(t, out)
				assert.Len(t, out, l, "length %d", l)
			}
			assert.Empty(t, g(-3))
		})
	}
}

func TestSolidColorArray(t *testing.T) {
	out := SolidColorArray(5, Red)
	require.Len(t, out, 5)
	for _, c := range out {
		assert.Equal(t, Red.Packed(), c.Packed())
	}
	assert.Empty(t, PixelArrayOff(0))
}

func TestTransitionClosesOnFirstColor(t *testing.T) {
	seq := []ColorVal{Red, Green, Blue}
	out := ColorTransitionArray(12, seq, true)
	require.Len(t, out, 12)
	assert.True(t, out[0].Equal(Red))
	assert.True(t, out[4].Equal(Green))
	assert.True(t, out[8].Equal(Blue))
	// last segment heads back toward red: red channel rising, blue falling
	assert.Greater(t, out[11].GetR(), out[9].GetR())
	assert.Less(t, out[11].GetB(), out[9].GetB())
}

func TestTransitionOpenEndsOnLastColor(t *testing.T) {
	seq := []ColorVal{Red, Blue}
	out := ColorTransitionArray(6, seq, false)
	require.Len(t, out, 6)
	assert.True(t, out[0].Equal(Red))
	assert.True(t, out[5].Equal(Blue))
	for i := 1; i < len(out); i++ {
		assert.LessOrEqual(t, out[i].GetR(), out[i-1].GetR())
	}
}

func TestTransitionShortArrayStartsOnFirstColor(t *testing.T) {
	out := ColorTransitionArray(2, []ColorVal{Red, Green, Blue}, true)
	assert.True(t, out[0].Equal(Red))
	assert.True(t, out[1].Equal(Green))
}

func TestRepeatingTruncates(t *testing.T) {
	out := RepeatingColorSequenceArray(5, []ColorVal{Red, Green})
	want := []ColorVal{Red, Green, Red, Green, Red}
	for i := range want {
		assert.True(t, out[i].Equal(want[i]), "index %d", i)
	}
}

func TestReflectArrayPingPong(t *testing.T) {
	out := ReflectArray(8, []ColorVal{Red, Green}, 4)
	want := []ColorVal{Red, Green, Red, Green, Green, Red, Green, Red}
	require.Len(t, out, 8)
	for i := range want {
		assert.True(t, out[i].Equal(want[i]), "index %d: %s", i, out[i])
	}
}

func TestReflectArrayPadsHead(t *testing.T) {
	out := ReflectArray(8, []ColorVal{Red, Green, Blue}, 4)
	want := []ColorVal{Off, Red, Green, Blue, Blue, Green, Red, Off}
	for i := range want {
		assert.True(t, out[i].Equal(want[i]), "index %d: %s", i, out[i])
	}
}

func TestColorStretch(t *testing.T) {
	out := ColorStretchArray(7, []ColorVal{Red, Green, Blue})
	want := []ColorVal{Red, Red, Red, Green, Green, Green, Blue}
	for i := range want {
		assert.True(t, out[i].Equal(want[i]), "index %d", i)
	}
}

func TestRandomNeverWhite(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for _, c := range RandomColorArray(500, r) {
		ch := c.RGB()
		assert.True(t, ch[0] == 0 || ch[1] == 0 || ch[2] == 0, "%s has no zero channel", c)
	}
}

func TestPseudoRandomUsesPalette(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for _, c := range PseudoRandomArray(50, []ColorVal{Red, Blue}, r) {
		assert.True(t, c.Equal(Red) || c.Equal(Blue))
	}
}

func TestRainbowStartsRed(t *testing.T) {
	out := RainbowArray(6)
	assert.True(t, out[0].Equal(Red))
	assert.True(t, out[2].Equal(Green))
	assert.True(t, out[4].Equal(Blue))
}

func TestHueArrayWrapsDegrees(t *testing.T) {
	out := HueArray(3, 240, 600)
	require.Len(t, out, 3)
	assert.True(t, out[0].Equal(Blue))
	assert.True(t, out[1].Equal(Red))
}

func TestParseColor(t *testing.T) {
	for in, want := range map[string]ColorVal{"red": Red, " Blue ": Blue, "#00FF00": Green, "0xffffff": White} {
		got, err := ParseColor(in)
		require.NoError(t, err, in)
		assert.True(t, got.Equal(want), in)
	}
	for _, bad := range []string{"", "#12345", "chartreuse", "#GG0000"} {
		_, err := ParseColor(bad)
		assert.ErrorIs(t, err, ErrInvalidColor, bad)
	}
}
