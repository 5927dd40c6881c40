//go:build !(linux && ws281x)

package led

import (
	"errors"

	"github.com/coreman2200/funtimes-ledstrip/model"
)

const WS281xSupported = false

var errNoWS281x = errors.New("ws281x driver not built; rebuild on linux with -tags ws281x")

type WS281x struct{}

func NewWS281x(cfg WS281xConfig) (*WS281x, error) {
	return nil, &SinkError{Driver: "ws281x", Op: "open", Err: errNoWS281x}
}

func (d *WS281x) SetPixel(int, model.ColorVal) error {
	return &SinkError{Driver: "ws281x", Op: "set", Err: errNoWS281x}
}
func (d *WS281x) Show() error    { return &SinkError{Driver: "ws281x", Op: "show", Err: errNoWS281x} }
func (d *WS281x) NumPixels() int { return 0 }
func (d *WS281x) Close() error   { return nil }
