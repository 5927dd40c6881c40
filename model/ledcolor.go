package model

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidColor is returned for out of range channels, packed values outside
// 0..0xFFFFFF and unsupported color source types.
var ErrInvalidColor = errors.New("invalid color")

const (
	RED_OFFSET   uint8 = 0x10
	GREEN_OFFSET uint8 = 0x08
	BLUE_OFFSET  uint8 = 0x0
)

const MaxPacked = 0xFFFFFF

// ChannelOrder is the order in which a strip expects the three channels on the wire.
// The zero value is RGB.
type ChannelOrder uint8

const (
	RGB ChannelOrder = iota
	RBG
	GRB
	GBR
	BRG
	BGR
)

// positions of R, G and B within the physical triple, per order
var channelSlots = map[ChannelOrder][3]int{
	RGB: {0, 1, 2},
	RBG: {0, 2, 1},
	GRB: {1, 0, 2},
	GBR: {2, 0, 1},
	BRG: {1, 2, 0},
	BGR: {2, 1, 0},
}

var orderNames = map[string]ChannelOrder{
	"RGB": RGB, "RBG": RBG, "GRB": GRB, "GBR": GBR, "BRG": BRG, "BGR": BGR,
}

// ParseOrder accepts names like "GRB" (case-insensitive).
func ParseOrder(s string) (ChannelOrder, error) {
	o, ok := orderNames[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return RGB, fmt.Errorf("unknown channel order %q", s)
	}
	return o, nil
}

func (o ChannelOrder) String() string {
	for k, v := range orderNames {
		if v == o {
			return k
		}
	}
	return fmt.Sprintf("ChannelOrder(%d)", uint8(o))
}

// ColorVal is an immutable 24 bit color. val always holds the canonical
// 0xRRGGBB packing; order only affects the physical views.
type ColorVal struct {
	val   uint32
	order ChannelOrder
}

func getcolor(c uint32, off uint8) uint8 {
	var mask uint32 = 0xFF << off
	return uint8((c & mask) >> off)
}

func pack(r, g, b uint8) uint32 {
	return uint32(r)<<RED_OFFSET | uint32(g)<<GREEN_OFFSET | uint32(b)<<BLUE_OFFSET
}

func rgb(r, g, b uint8) ColorVal {
	return ColorVal{val: pack(r, g, b)}
}

// NewColor builds a color from a canonical 0xRRGGBB value.
func NewColor(packed int) (ColorVal, error) {
	if packed < 0 || packed > MaxPacked {
		return ColorVal{}, fmt.Errorf("%w: packed value %#x outside 0..0xFFFFFF", ErrInvalidColor, packed)
	}
	return ColorVal{val: uint32(packed)}, nil
}

// MustColor is NewColor for literals; it panics on an invalid value.
func MustColor(packed int) ColorVal {
	c, err := NewColor(packed)
	if err != nil {
		panic(err)
	}
	return c
}

// FromRGB builds a color from canonical channel values.
func FromRGB(r, g, b int) (ColorVal, error) {
	for _, ch := range [3]int{r, g, b} {
		if ch < 0 || ch > 255 {
			return ColorVal{}, fmt.Errorf("%w: channel %d outside 0..255", ErrInvalidColor, ch)
		}
	}
	return rgb(uint8(r), uint8(g), uint8(b)), nil
}

// FromArray builds a color from a 3 element canonical (R, G, B) slice.
func FromArray(a []int) (ColorVal, error) {
	if len(a) != 3 {
		return ColorVal{}, fmt.Errorf("%w: need 3 channels, got %d", ErrInvalidColor, len(a))
	}
	return FromRGB(a[0], a[1], a[2])
}

// FromPhysical decodes a value packed in the given physical channel order.
func FromPhysical(packed int, order ChannelOrder) (ColorVal, error) {
	if packed < 0 || packed > MaxPacked {
		return ColorVal{}, fmt.Errorf("%w: packed value %#x outside 0..0xFFFFFF", ErrInvalidColor, packed)
	}
	slots, ok := channelSlots[order]
	if !ok {
		return ColorVal{}, fmt.Errorf("%w: unknown channel order %d", ErrInvalidColor, order)
	}
	p := uint32(packed)
	wire := [3]uint8{getcolor(p, 16), getcolor(p, 8), getcolor(p, 0)}
	c := rgb(wire[slots[0]], wire[slots[1]], wire[slots[2]])
	c.order = order
	return c, nil
}

// ColorFrom converts the supported color sources: packed integers, channel
// arrays and slices, image/color values and other ColorVals.
func ColorFrom(v any) (ColorVal, error) {
	switch t := v.(type) {
	case ColorVal:
		return t, nil
	case *ColorVal:
		if t == nil {
			return ColorVal{}, fmt.Errorf("%w: nil color", ErrInvalidColor)
		}
		return *t, nil
	case int:
		return NewColor(t)
	case int64:
		return NewColor(int(t))
	case uint32:
		return NewColor(int(t))
	case [3]int:
		return FromRGB(t[0], t[1], t[2])
	case [3]uint8:
		return rgb(t[0], t[1], t[2]), nil
	case []int:
		return FromArray(t)
	case []uint8:
		if len(t) != 3 {
			return ColorVal{}, fmt.Errorf("%w: need 3 channels, got %d", ErrInvalidColor, len(t))
		}
		return rgb(t[0], t[1], t[2]), nil
	case color.Color:
		n := color.NRGBAModel.Convert(t).(color.NRGBA)
		return rgb(n.R, n.G, n.B), nil
	default:
		return ColorVal{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidColor, v)
	}
}

// Color returns the canonical packed value.
func (c ColorVal) Color() uint32 {
	return c.val
}

// Packed is Color as an int, the form the output sinks take.
func (c ColorVal) Packed() int {
	return int(c.val)
}

func (c ColorVal) GetR() uint8 {
	return getcolor(c.val, RED_OFFSET)
}
func (c ColorVal) GetG() uint8 {
	return getcolor(c.val, GREEN_OFFSET)
}
func (c ColorVal) GetB() uint8 {
	return getcolor(c.val, BLUE_OFFSET)
}

func (c ColorVal) Order() ChannelOrder {
	return c.order
}

// WithOrder returns the same color tagged with another physical order.
func (c ColorVal) WithOrder(o ChannelOrder) ColorVal {
	c.order = o
	return c
}

// RGB is the canonical (display) channel array.
func (c ColorVal) RGB() [3]uint8 {
	return [3]uint8{c.GetR(), c.GetG(), c.GetB()}
}

// Array is the channel array in physical order.
func (c ColorVal) Array() [3]uint8 {
	slots := channelSlots[c.order]
	canon := c.RGB()
	var out [3]uint8
	for ch, slot := range slots {
		out[slot] = canon[ch]
	}
	return out
}

// Physical packs the channels in physical order.
func (c ColorVal) Physical() uint32 {
	a := c.Array()
	return uint32(a[0])<<16 | uint32(a[1])<<8 | uint32(a[2])
}

func (c ColorVal) Hex() string {
	return fmt.Sprintf("#%06X", c.val)
}

func (c ColorVal) String() string {
	return c.Hex()
}

// WithRGB returns a color with new canonical channels and c's order.
func (c ColorVal) WithRGB(r, g, b uint8) ColorVal {
	return ColorVal{val: pack(r, g, b), order: c.order}
}

// Invert returns 255-c per channel.
func (c ColorVal) Invert() ColorVal {
	return ColorVal{val: ^c.val & MaxPacked, order: c.order}
}

// Equal compares canonical channels only.
func (c ColorVal) Equal(o ColorVal) bool {
	return c.val == o.val
}

func (c ColorVal) IsOff() bool {
	return c.val == 0
}

// Scale multiplies every channel by s, clamped to [0,1].
func (c ColorVal) Scale(s float64) ColorVal {
	if s >= 1 {
		return c
	}
	if s <= 0 {
		return ColorVal{order: c.order}
	}
	out := rgb(uint8(float64(c.GetR())*s), uint8(float64(c.GetG())*s), uint8(float64(c.GetB())*s))
	out.order = c.order
	return out
}

// Blend interpolates linearly in RGB toward o; t=0 is c, t=1 is o.
func (c ColorVal) Blend(o ColorVal, t float64) ColorVal {
	if t <= 0 {
		return c
	}
	if t >= 1 {
		return o.WithOrder(c.order)
	}
	out := FromColorful(c.Colorful().BlendRgb(o.Colorful(), t))
	out.order = c.order
	return out
}

// ToNRGBA is the opaque image/color view used by display.Drawer sinks.
func (c ColorVal) ToNRGBA() color.NRGBA {
	return color.NRGBA{R: c.GetR(), G: c.GetG(), B: c.GetB(), A: 255}
}

func (c ColorVal) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.GetR()) / 255.0,
		G: float64(c.GetG()) / 255.0,
		B: float64(c.GetB()) / 255.0,
	}
}

// FromColorful clamps a go-colorful value into a ColorVal.
func FromColorful(cc colorful.Color) ColorVal {
	r, g, b := cc.Clamped().RGB255()
	return rgb(r, g, b)
}
