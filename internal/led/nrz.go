package led

import (
	"fmt"
	"io"
	"sync"

	"github.com/coreman2200/funtimes-ledstrip/model"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
)

// DefaultNRZFreq suits WS2812 timing with three SPI bits per NRZ bit.
const DefaultNRZFreq = 2500 * physic.KiloHertz

// NRZ drives a WS281x strip through an SPI port.
type NRZ struct {
	mu     sync.Mutex
	f      frame
	dev    *nrzled.Dev
	port   io.Closer
	buf    []byte
	order  model.ChannelOrder
	closed bool
}

// OpenNRZ opens the named SPI port ("" picks the first one registered).
// host.Init must have been called.
func OpenNRZ(name string, count int, freq physic.Frequency, order model.ChannelOrder) (*NRZ, error) {
	p, err := spireg.Open(name)
	if err != nil {
		return nil, &SinkError{Driver: "nrz", Op: "open", Err: err}
	}
	d, err := NewNRZ(p, count, freq, order)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	d.port = p
	return d, nil
}

// NewNRZ wraps an already opened port. The caller keeps ownership of p.
// order is the strip's channel order on the wire.
func NewNRZ(p spi.Port, count int, freq physic.Frequency, order model.ChannelOrder) (*NRZ, error) {
	if count <= 0 {
		return nil, &SinkError{Driver: "nrz", Op: "open", Err: fmt.Errorf("invalid LED count %d", count)}
	}
	if freq == 0 {
		freq = DefaultNRZFreq
	}
	dev, err := nrzled.NewSPI(p, &nrzled.Opts{NumPixels: count, Channels: 3, Freq: freq})
	if err != nil {
		return nil, &SinkError{Driver: "nrz", Op: "open", Err: err}
	}
	return &NRZ{f: newFrame("nrz", count), dev: dev, buf: make([]byte, 0, count*3), order: order}, nil
}

func (d *NRZ) SetPixel(i int, c model.ColorVal) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.f.set(i, c)
}

// Show sends the frame in the strip's channel order. nrzled always puts its
// second input byte first on the wire (GRB), so the first two physical
// channels are handed over swapped.
func (d *NRZ) Show() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return &SinkError{Driver: "nrz", Op: "show", Err: ErrClosed}
	}
	d.buf = d.buf[:0]
	for _, c := range d.f.pixels {
		w := c.WithOrder(d.order).Array()
		d.buf = append(d.buf, w[1], w[0], w[2])
	}
	if _, err := d.dev.Write(d.buf); err != nil {
		return &SinkError{Driver: "nrz", Op: "show", Err: err}
	}
	return nil
}

func (d *NRZ) NumPixels() int { return len(d.f.pixels) }

func (d *NRZ) String() string { return d.dev.String() }

// Close turns the LEDs off and releases the port if OpenNRZ opened it.
func (d *NRZ) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	err := d.dev.Halt()
	if d.port != nil {
		if cerr := d.port.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return &SinkError{Driver: "nrz", Op: "close", Err: err}
	}
	return nil
}
