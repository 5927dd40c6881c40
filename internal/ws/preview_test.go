package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	diag "github.com/coreman2200/funtimes-ledstrip/internal/diagnostics"
	"github.com/coreman2200/funtimes-ledstrip/internal/led"
	"github.com/coreman2200/funtimes-ledstrip/model"
)

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// topology arrives once the connection is registered
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var top map[string]any
	require.NoError(t, conn.ReadJSON(&top))
	return conn
}

func TestPreviewTeesAndBroadcasts(t *testing.T) {
	sim := led.NewSim(3)
	p := NewPreview(sim, "sim", 0)
	srv := httptest.NewServer(p.Handler())
	defer srv.Close()
	conn := dial(t, srv, "/frames")

	require.NoError(t, p.SetPixel(0, model.Red))
	require.NoError(t, p.SetPixel(2, model.Blue.WithOrder(model.GRB)))
	require.NoError(t, p.Show())

	assert.True(t, sim.Frame()[0].Equal(model.Red))
	assert.Equal(t, 1, sim.Shows())

	var msg frameMsg
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, uint64(1), msg.FrameID)
	assert.Equal(t, []byte{255, 0, 0, 0, 0, 0, 0, 0, 255}, msg.RGB)
}

func TestPreviewFailedShowIsNotBroadcast(t *testing.T) {
	sim := led.NewSim(2)
	sim.ShowErr = errors.New("bus fault")
	p := NewPreview(sim, "sim", 0)

	err := p.Show()
	assert.ErrorIs(t, err, led.ErrOutputSink)
	assert.Equal(t, uint64(0), p.FrameID())

	assert.ErrorIs(t, p.SetPixel(5, model.Red), led.ErrOutputSink)
}

func TestHealth(t *testing.T) {
	p := NewPreview(nil, "preview", 4)
	p.StatusFn = func() Status { return Status{FPS: 30, Functions: 2, Brightness: 0.5, Preset: "rain"} }
	require.NoError(t, p.Show())

	rec := httptest.NewRecorder()
	p.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.EqualValues(t, 1, got["frame_id"])
	assert.EqualValues(t, 4, got["count"])
	assert.EqualValues(t, 30, got["fps"])
	assert.EqualValues(t, 2, got["functions"])
	assert.Equal(t, "rain", got["preset"])
}

func TestDiagPush(t *testing.T) {
	p := NewPreview(nil, "preview", 1)
	srv := httptest.NewServer(p.Handler())
	defer srv.Close()
	conn := dial(t, srv, "/diag")

	p.PushDiag(diag.Diagnostic{Severity: diag.Warn, Code: "FUNC.FAULT", Summary: "x"})
	var d diag.Diagnostic
	require.NoError(t, conn.ReadJSON(&d))
	assert.Equal(t, "FUNC.FAULT", d.Code)
}

func TestCloseClosesSink(t *testing.T) {
	sim := led.NewSim(1)
	p := NewPreview(sim, "sim", 0)
	require.NoError(t, p.Close())
	assert.True(t, sim.Closed())
}
