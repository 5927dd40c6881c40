package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coreman2200/funtimes-ledstrip/internal/function"
	"github.com/coreman2200/funtimes-ledstrip/internal/layout"
	"github.com/coreman2200/funtimes-ledstrip/internal/sequence"
	"github.com/coreman2200/funtimes-ledstrip/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Validate())
	assert.Equal(t, DriverSim, c.Driver)
	assert.Equal(t, model.GRB, c.Order())
	assert.Contains(t, c.Presets, c.StartPreset)
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strip.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
driver: screen
led_count: 16
fps: 50
layout:
  rows: 4
  columns: 4
  serpentine: true
`), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverScreen, c.Driver)
	assert.Equal(t, 16, c.LEDCount)
	assert.Equal(t, 50, c.FPS)
	// untouched keys keep their defaults
	assert.Equal(t, "GRB", c.ColorOrder)
	assert.Equal(t, 0.5, c.Brightness)
	assert.Equal(t, 4, c.LayoutConfig().Rows)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "strip.yaml")
	c := DefaultConfig()
	c.Driver = DriverSPI
	c.SPI.Port = "/dev/spidev0.0"
	c.Program = &sequence.Program{Loop: true, Clips: []sequence.Clip{
		{Name: "a", Preset: "rain", DurationS: 5},
		{Name: "b", Preset: "sparks", DurationS: 5},
	}}
	require.NoError(t, Save(path, c))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c.Driver, got.Driver)
	assert.Equal(t, c.SPI, got.SPI)
	require.NotNil(t, got.Program)
	assert.Len(t, got.Program.Clips, 2)
	assert.Equal(t, len(c.Presets), len(got.Presets))
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(c *Config){
		"driver":        func(c *Config) { c.Driver = "dmx" },
		"fps":           func(c *Config) { c.FPS = 0 },
		"brightness":    func(c *Config) { c.Brightness = 1.5 },
		"gamma":         func(c *Config) { c.Gamma = 0 },
		"order":         func(c *Config) { c.ColorOrder = "RGBW" },
		"policy":        func(c *Config) { c.FaultPolicy = "retry" },
		"layout":        func(c *Config) { c.Layout = layout.Config{Rows: 2, Columns: 0, PanelLayout: [][]int{{0, 0}}} },
		"too many leds": func(c *Config) { c.Layout = layout.Config{Rows: 10, Columns: 10} },
		"start preset":  func(c *Config) { c.StartPreset = "disco" },
		"bad preset":    func(c *Config) { c.Presets["broken"] = []function.Spec{{Kind: "laser"}} },
		"program":       func(c *Config) { c.Program = &sequence.Program{} },
		"program preset": func(c *Config) {
			c.Program = &sequence.Program{Clips: []sequence.Clip{{Preset: "disco", DurationS: 1}}}
		},
		"soft start": func(c *Config) { c.SoftStartMS = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := DefaultConfig()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strip.yaml")
	require.NoError(t, os.WriteFile(path, []byte("driver: dmx\n"), 0644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "invalid configuration")

	require.NoError(t, os.WriteFile(path, []byte("fps: [\n"), 0644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "failed to parse")
}

func TestWS281xUsesPWMSection(t *testing.T) {
	c := DefaultConfig()
	c.PWM.GPIO = 12
	c.ColorOrder = "RGB"
	w := c.WS281x(60)
	assert.Equal(t, 12, w.Pin)
	assert.Equal(t, 60, w.Count)
	assert.Equal(t, "RGB", w.StripType)
	assert.Equal(t, 255, w.Brightness)
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strip.yaml")
	require.NoError(t, Save(path, DefaultConfig()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var fps atomic.Int64
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, nil, func(c *Config) { fps.Store(int64(c.FPS)) })
	}()

	// the watcher needs to be registered before the write lands
	require.Eventually(t, func() bool {
		c := DefaultConfig()
		c.FPS = 42
		_ = Save(path, c)
		return fps.Load() == 42
	}, 5*time.Second, 300*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestLoadIntoKeepsBase(t *testing.T) {
	base := DefaultConfig()
	base.FPS = 90
	base.Driver = DriverScreen

	path := filepath.Join(t.TempDir(), "strip.yaml")
	require.NoError(t, LoadInto(path, base))
	assert.Equal(t, 90, base.FPS)

	require.NoError(t, os.WriteFile(path, []byte("driver: sim\n"), 0644))
	require.NoError(t, LoadInto(path, base))
	assert.Equal(t, DriverSim, base.Driver)
	assert.Equal(t, 90, base.FPS)
}

func TestWatchReloadsOverBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strip.yaml")
	require.NoError(t, os.WriteFile(path, []byte("brightness: 0.3\n"), 0644))

	base := DefaultConfig()
	base.FPS = 60
	base.LEDCount = 120
	base.StartPreset = "rain"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 16)
	go func() {
		_ = Watch(ctx, path, base, func(c *Config) { got <- c })
	}()

	var c *Config
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("brightness: 0.8\n"), 0644)
		select {
		case c = <-got:
			return true
		default:
			return false
		}
	}, 5*time.Second, 300*time.Millisecond)

	assert.InDelta(t, 0.8, c.Brightness, 1e-9)
	assert.Equal(t, 60, c.FPS)
	assert.Equal(t, 120, c.LEDCount)
	assert.Equal(t, "rain", c.StartPreset)

	// the base itself is never written to
	assert.InDelta(t, 0.5, base.Brightness, 1e-9)
}

func TestCloneIsDeep(t *testing.T) {
	c := DefaultConfig()
	c.FPS = 75
	cp, err := c.Clone()
	require.NoError(t, err)
	assert.Equal(t, 75, cp.FPS)
	assert.Equal(t, c.Presets, cp.Presets)

	delete(cp.Presets, "rain")
	cp.Presets["sparks"][0].Amount = 99
	assert.Contains(t, c.Presets, "rain")
	assert.Equal(t, 24, c.Presets["sparks"][0].Amount)
}
