package model

import (
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
)

// Generators below return exactly length elements; length <= 0 gives an
// empty (non-nil) slice. A nil or empty sequence falls back to DefaultColors.

func orDefault(seq []ColorVal) []ColorVal {
	if len(seq) == 0 {
		return DefaultColors()
	}
	return seq
}

func intn(r *rand.Rand, n int) int {
	if r == nil {
		return rand.Intn(n)
	}
	return r.Intn(n)
}

func empty(length int) ([]ColorVal, bool) {
	if length <= 0 {
		return []ColorVal{}, true
	}
	return nil, false
}

// PixelArrayOff is length pixels of Off.
func PixelArrayOff(length int) []ColorVal {
	if out, ok := empty(length); ok {
		return out
	}
	return make([]ColorVal, length)
}

// SolidColorArray fills length pixels with c, or the first seasonal color.
func SolidColorArray(length int, c ...ColorVal) []ColorVal {
	if out, ok := empty(length); ok {
		return out
	}
	fill := orDefault(c)[0]
	out := make([]ColorVal, length)
	for i := range out {
		out[i] = fill
	}
	return out
}

// ColorTransitionArray blends through seq. With wrap the last segment heads
// back toward seq[0]; without it the array ends on the last color.
func ColorTransitionArray(length int, seq []ColorVal, wrap bool) []ColorVal {
	if out, ok := empty(length); ok {
		return out
	}
	seq = orDefault(seq)
	n := len(seq)
	if n == 1 || length == 1 {
		return SolidColorArray(length, seq[0])
	}

	segments := n - 1
	total := length - 1
	if wrap {
		segments = n
		total = length
	}

	sizes := make([]int, segments)
	if total < segments {
		for k := 0; k < total; k++ {
			sizes[k] = 1
		}
	} else {
		base := total / segments
		rem := total % segments
		for k := range sizes {
			sizes[k] = base
		}
		// the tail absorbs the remainder
		if segments >= 2 {
			sizes[segments-1] += rem - rem/2
			sizes[segments-2] += rem / 2
		} else {
			sizes[0] += rem
		}
	}

	out := make([]ColorVal, 0, length)
	for k, m := range sizes {
		from, to := seq[k], seq[(k+1)%n]
		for j := 0; j < m; j++ {
			out = append(out, from.Blend(to, float64(j)/float64(m)))
		}
	}
	if !wrap {
		out = append(out, seq[n-1])
	}
	return out
}

// RepeatingColorSequenceArray tiles seq, truncating the final tile.
func RepeatingColorSequenceArray(length int, seq []ColorVal) []ColorVal {
	if out, ok := empty(length); ok {
		return out
	}
	seq = orDefault(seq)
	out := make([]ColorVal, length)
	for i := range out {
		out[i] = seq[i%len(seq)]
	}
	return out
}

// ReflectArray ping-pongs seq across fold sized segments: forward, reversed,
// forward... A fold of 0 uses len(seq). A sequence shorter than the fold is
// tiled to it after padding its head with Off so the tiles divide evenly.
func ReflectArray(length int, seq []ColorVal, fold int) []ColorVal {
	if out, ok := empty(length); ok {
		return out
	}
	seq = orDefault(seq)
	if fold <= 0 {
		fold = len(seq)
	}

	var segment []ColorVal
	if len(seq) >= fold {
		segment = append([]ColorVal{}, seq[:fold]...)
	} else {
		pad := fold % len(seq)
		segment = make([]ColorVal, 0, fold)
		segment = append(segment, PixelArrayOff(pad)...)
		segment = append(segment, RepeatingColorSequenceArray(fold-pad, seq)...)
	}

	out := make([]ColorVal, length)
	for i := range out {
		k := i / fold
		j := i % fold
		if k%2 == 1 {
			j = fold - 1 - j
		}
		out[i] = segment[j]
	}
	return out
}

// ColorStretchArray repeats each color ceil(length/len(seq)) times.
func ColorStretchArray(length int, seq []ColorVal) []ColorVal {
	if out, ok := empty(length); ok {
		return out
	}
	seq = orDefault(seq)
	per := (length + len(seq) - 1) / len(seq)
	out := make([]ColorVal, 0, per*len(seq))
	for _, c := range seq {
		for i := 0; i < per; i++ {
			out = append(out, c)
		}
	}
	return out[:length]
}

// RandomColorArray picks independent random channels per pixel. One channel
// is always zeroed so the result is never white.
func RandomColorArray(length int, r *rand.Rand) []ColorVal {
	if out, ok := empty(length); ok {
		return out
	}
	out := make([]ColorVal, length)
	for i := range out {
		ch := [3]uint8{uint8(intn(r, 256)), uint8(intn(r, 256)), uint8(intn(r, 256))}
		ch[intn(r, 3)] = 0
		out[i] = rgb(ch[0], ch[1], ch[2])
	}
	return out
}

// PseudoRandomArray picks each pixel independently from palette.
func PseudoRandomArray(length int, palette []ColorVal, r *rand.Rand) []ColorVal {
	if out, ok := empty(length); ok {
		return out
	}
	palette = orDefault(palette)
	out := make([]ColorVal, length)
	for i := range out {
		out[i] = palette[intn(r, len(palette))]
	}
	return out
}

// RainbowArray spreads the full hue circle over length pixels.
func RainbowArray(length int) []ColorVal {
	return HueArray(length, 0, 360)
}

// HueArray sweeps hue from start toward end degrees at full saturation.
func HueArray(length int, start, end float64) []ColorVal {
	if out, ok := empty(length); ok {
		return out
	}
	out := make([]ColorVal, length)
	span := end - start
	for i := range out {
		h := math.Mod(start+span*float64(i)/float64(length), 360)
		if h < 0 {
			h += 360
		}
		out[i] = FromColorful(colorful.Hsv(h, 1, 1))
	}
	return out
}
