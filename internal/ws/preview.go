// Package ws serves a read-only preview of the frames written to the LEDs.
package ws

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	diag "github.com/coreman2200/funtimes-ledstrip/internal/diagnostics"
	"github.com/coreman2200/funtimes-ledstrip/internal/led"
	"github.com/coreman2200/funtimes-ledstrip/model"
)

const writeWait = 200 * time.Millisecond

// Status is the controller state reported by /health.
type Status struct {
	FPS        int
	Brightness float64
	Functions  int
	Preset     string
}

// Preview is a led.Driver that forwards to the real sink and broadcasts
// every shown frame to websocket clients.
type Preview struct {
	mu   sync.RWMutex
	wmu  sync.Mutex // serializes websocket writes
	next led.Driver
	name string

	staged    []model.ColorVal
	rgb       []byte
	frameID   uint64
	startTime time.Time

	clients     map[*websocket.Conn]bool
	diagClients map[*websocket.Conn]bool

	// StatusFn fills the controller part of /health when set.
	StatusFn func() Status
}

// NewPreview tees next. With a nil next the preview is the only sink and
// addresses n LEDs.
func NewPreview(next led.Driver, name string, n int) *Preview {
	if next != nil {
		n = next.NumPixels()
	}
	return &Preview{
		next:        next,
		name:        name,
		staged:      make([]model.ColorVal, n),
		rgb:         make([]byte, n*3),
		startTime:   time.Now(),
		clients:     map[*websocket.Conn]bool{},
		diagClients: map[*websocket.Conn]bool{},
	}
}

func (p *Preview) SetPixel(i int, c model.ColorVal) error {
	p.mu.Lock()
	if i < 0 || i >= len(p.staged) {
		p.mu.Unlock()
		return &led.SinkError{Driver: "preview", Op: "set", Err: fmt.Errorf("index %d out of range [0,%d)", i, len(p.staged))}
	}
	p.staged[i] = c
	p.mu.Unlock()
	if p.next != nil {
		return p.next.SetPixel(i, c)
	}
	return nil
}

// Show pushes to the real sink first; a failed frame is not broadcast.
func (p *Preview) Show() error {
	if p.next != nil {
		if err := p.next.Show(); err != nil {
			return err
		}
	}
	p.mu.Lock()
	for i, c := range p.staged {
		ch := c.RGB()
		p.rgb[i*3+0], p.rgb[i*3+1], p.rgb[i*3+2] = ch[0], ch[1], ch[2]
	}
	p.frameID++
	buf := append([]byte{}, p.rgb...)
	p.mu.Unlock()

	p.broadcastFrame(buf)
	return nil
}

func (p *Preview) NumPixels() int { return len(p.staged) }

// Close drops every client and closes the real sink.
func (p *Preview) Close() error {
	p.mu.Lock()
	for c := range p.clients {
		c.Close()
		delete(p.clients, c)
	}
	for c := range p.diagClients {
		c.Close()
		delete(p.diagClients, c)
	}
	p.mu.Unlock()
	if p.next != nil {
		return p.next.Close()
	}
	return nil
}

// FrameID is the number of frames shown so far.
func (p *Preview) FrameID() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.frameID
}

// Handler routes /frames, /diag and /health.
func (p *Preview) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/frames", p.HandleFramesWS)
	mux.HandleFunc("/diag", p.HandleDiagWS)
	mux.HandleFunc("/health", p.HandleHealth)
	return mux
}

func (p *Preview) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, ok := p.accept(w, r, p.clients)
	if !ok {
		return
	}
	p.sendTopology(conn)
}

func (p *Preview) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	conn, ok := p.accept(w, r, p.diagClients)
	if !ok {
		return
	}
	p.sendTopology(conn)
}

// accept upgrades the request, registers the connection in set and drains
// it until the peer goes away. Incoming messages are ignored.
func (p *Preview) accept(w http.ResponseWriter, r *http.Request, set map[*websocket.Conn]bool) (*websocket.Conn, bool) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return nil, false
	}
	p.mu.Lock()
	set[conn] = true
	p.mu.Unlock()

	go func() {
		defer func() {
			p.mu.Lock()
			delete(set, conn)
			p.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return conn, true
}

func (p *Preview) HandleHealth(w http.ResponseWriter, r *http.Request) {
	var st Status
	if p.StatusFn != nil {
		st = p.StatusFn()
	}
	p.mu.RLock()
	resp := map[string]any{
		"frame_id":   p.frameID,
		"uptime_s":   time.Since(p.startTime).Seconds(),
		"count":      len(p.staged),
		"driver":     p.name,
		"fps":        st.FPS,
		"brightness": st.Brightness,
		"functions":  st.Functions,
		"preset":     st.Preset,
	}
	p.mu.RUnlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (p *Preview) sendTopology(conn *websocket.Conn) {
	p.mu.RLock()
	top := map[string]any{"count": len(p.staged), "driver": p.name}
	p.mu.RUnlock()
	b, _ := json.Marshal(top)
	p.write(conn, b)
}

type frameMsg struct {
	T       int64  `json:"t"`
	FrameID uint64 `json:"frame_id"`
	RGB     []byte `json:"rgb"`
}

func (p *Preview) broadcastFrame(rgb []byte) {
	p.mu.RLock()
	b, _ := json.Marshal(frameMsg{T: time.Now().UnixNano(), FrameID: p.frameID, RGB: rgb})
	conns := make([]*websocket.Conn, 0, len(p.clients))
	for c := range p.clients {
		conns = append(conns, c)
	}
	p.mu.RUnlock()
	for _, c := range conns {
		if err := p.write(c, b); err != nil {
			log.Debug().Err(err).Msg("write frame")
		}
	}
}

// PushDiag sends d to every /diag client.
func (p *Preview) PushDiag(d diag.Diagnostic) {
	b, _ := json.Marshal(d)
	p.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(p.diagClients))
	for c := range p.diagClients {
		conns = append(conns, c)
	}
	p.mu.RUnlock()
	for _, c := range conns {
		_ = p.write(c, b)
	}
}

func (p *Preview) write(c *websocket.Conn, b []byte) error {
	p.wmu.Lock()
	defer p.wmu.Unlock()
	c.SetWriteDeadline(time.Now().Add(writeWait))
	return c.WriteMessage(websocket.TextMessage, b)
}
