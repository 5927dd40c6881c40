package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	Off         = rgb(0, 0, 0)
	White       = rgb(255, 255, 255)
	Red         = rgb(255, 0, 0)
	Green       = rgb(0, 255, 0)
	Blue        = rgb(0, 0, 255)
	Yellow      = rgb(255, 255, 0)
	Cyan        = rgb(0, 255, 255)
	Magenta     = rgb(255, 0, 255)
	Orange      = rgb(255, 96, 0)
	Purple      = rgb(128, 0, 255)
	Pink        = rgb(255, 64, 128)
	WarmWhite   = rgb(255, 170, 96)
	Brown       = rgb(128, 48, 0)
	Gold        = rgb(255, 160, 0)
	ForestGreen = rgb(16, 128, 16)
	SkyBlue     = rgb(64, 160, 255)
)

// Named maps lowercase names to palette colors, for config files.
var Named = map[string]ColorVal{
	"off": Off, "black": Off, "white": White, "red": Red, "green": Green, "blue": Blue,
	"yellow": Yellow, "cyan": Cyan, "magenta": Magenta, "orange": Orange, "purple": Purple,
	"pink": Pink, "warmwhite": WarmWhite, "brown": Brown, "gold": Gold,
	"forestgreen": ForestGreen, "skyblue": SkyBlue,
}

var seasonal = map[time.Month][]ColorVal{
	time.January:   {White, SkyBlue, Blue},
	time.February:  {Red, Pink, White},
	time.March:     {Green, ForestGreen, White},
	time.April:     {Pink, Yellow, SkyBlue},
	time.May:       {Green, Yellow, Pink},
	time.June:      {SkyBlue, Yellow, White},
	time.July:      {Red, White, Blue},
	time.August:    {Orange, Yellow, SkyBlue},
	time.September: {Gold, Orange, Brown},
	time.October:   {Orange, Purple, Green},
	time.November:  {Orange, Brown, Gold},
	time.December:  {Red, Green, White},
}

// DefaultSequence is the seasonal fallback palette for the given month.
func DefaultSequence(m time.Month) []ColorVal {
	seq, ok := seasonal[m]
	if !ok {
		seq = seasonal[time.December]
	}
	out := make([]ColorVal, len(seq))
	copy(out, seq)
	return out
}

// DefaultColors is DefaultSequence for the current month.
func DefaultColors() []ColorVal {
	return DefaultSequence(time.Now().Month())
}

// ParseColor accepts a palette name, "#RRGGBB" or "0xRRGGBB".
func ParseColor(s string) (ColorVal, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if c, ok := Named[key]; ok {
		return c, nil
	}
	hex := strings.TrimPrefix(strings.TrimPrefix(key, "#"), "0x")
	if len(hex) != 6 {
		return ColorVal{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return ColorVal{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return NewColor(int(v))
}
