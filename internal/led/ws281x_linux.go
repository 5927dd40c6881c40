//go:build linux && ws281x

package led

import (
	"fmt"
	"strings"
	"sync"

	"github.com/coreman2200/funtimes-ledstrip/model"
	ws2811 "github.com/rpi-ws281x/rpi-ws281x-go"
)

var stripTypes = map[string]int{
	"RGB": ws2811.WS2811StripRGB,
	"RBG": ws2811.WS2811StripRBG,
	"GRB": ws2811.WS2811StripGRB,
	"GBR": ws2811.WS2811StripGBR,
	"BRG": ws2811.WS2811StripBRG,
	"BGR": ws2811.WS2811StripBGR,
}

// WS281xSupported reports whether this build links the C driver.
const WS281xSupported = true

type WS281x struct {
	mu     sync.Mutex
	f      frame
	dev    *ws2811.WS2811
	ch     int
	closed bool
}

// NewWS281x initialises the DMA driver. It needs root on the Pi.
func NewWS281x(cfg WS281xConfig) (*WS281x, error) {
	if cfg.Count <= 0 {
		return nil, &SinkError{Driver: "ws281x", Op: "open", Err: fmt.Errorf("invalid LED count %d", cfg.Count)}
	}
	st, ok := stripTypes[strings.ToUpper(cfg.StripType)]
	if !ok {
		return nil, &SinkError{Driver: "ws281x", Op: "open", Err: fmt.Errorf("unknown strip type %q", cfg.StripType)}
	}

	opt := ws2811.DefaultOptions
	if cfg.Channel < 0 || cfg.Channel >= len(opt.Channels) {
		return nil, &SinkError{Driver: "ws281x", Op: "open", Err: fmt.Errorf("channel %d not available", cfg.Channel)}
	}
	if cfg.Frequency > 0 {
		opt.Frequency = cfg.Frequency
	}
	if cfg.DMA > 0 {
		opt.DmaNum = cfg.DMA
	}
	ch := &opt.Channels[cfg.Channel]
	ch.GpioPin = cfg.Pin
	ch.LedCount = cfg.Count
	ch.Invert = cfg.Invert
	ch.Brightness = cfg.Brightness
	ch.StripeType = st

	dev, err := ws2811.MakeWS2811(&opt)
	if err != nil {
		return nil, &SinkError{Driver: "ws281x", Op: "open", Err: err}
	}
	if err := dev.Init(); err != nil {
		return nil, &SinkError{Driver: "ws281x", Op: "init", Err: err}
	}
	return &WS281x{f: newFrame("ws281x", cfg.Count), dev: dev, ch: cfg.Channel}, nil
}

func (d *WS281x) SetPixel(i int, c model.ColorVal) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.f.set(i, c)
}

// Show copies canonical 0xRRGGBB words into the DMA buffer; the strip type
// takes care of the wire order.
func (d *WS281x) Show() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return &SinkError{Driver: "ws281x", Op: "show", Err: ErrClosed}
	}
	leds := d.dev.Leds(d.ch)
	for i, c := range d.f.pixels {
		if i < len(leds) {
			leds[i] = c.Color()
		}
	}
	if err := d.dev.Render(); err != nil {
		return &SinkError{Driver: "ws281x", Op: "render", Err: err}
	}
	if err := d.dev.Wait(); err != nil {
		return &SinkError{Driver: "ws281x", Op: "wait", Err: err}
	}
	return nil
}

func (d *WS281x) NumPixels() int { return len(d.f.pixels) }

// Close blanks the strip before releasing the DMA channel.
func (d *WS281x) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	leds := d.dev.Leds(d.ch)
	for i := range leds {
		leds[i] = 0
	}
	err := d.dev.Render()
	d.dev.Fini()
	if err != nil {
		return &SinkError{Driver: "ws281x", Op: "close", Err: err}
	}
	return nil
}
