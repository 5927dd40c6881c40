// Package config loads and saves the daemon's YAML configuration.
package config

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/coreman2200/funtimes-ledstrip/internal/function"
	"github.com/coreman2200/funtimes-ledstrip/internal/layout"
	"github.com/coreman2200/funtimes-ledstrip/internal/led"
	"github.com/coreman2200/funtimes-ledstrip/internal/render"
	"github.com/coreman2200/funtimes-ledstrip/internal/sequence"
	"github.com/coreman2200/funtimes-ledstrip/model"
	"gopkg.in/yaml.v3"
)

// Drivers accepted in Config.Driver.
const (
	DriverSim    = "sim"
	DriverScreen = "screen"
	DriverSPI    = "spi"
	DriverWS281x = "ws281x"
)

type SPI struct {
	Port    string `yaml:"port"`     // spireg name, "" for the first port
	SpeedHz int64  `yaml:"speed_hz"` // NRZ clock, 2500000 for WS2812
}

// PWM configures the rpi_ws281x driver.
type PWM struct {
	GPIO      int  `yaml:"gpio"`
	DMA       int  `yaml:"dma"`
	Frequency int  `yaml:"frequency"`
	Channel   int  `yaml:"channel"`
	Invert    bool `yaml:"invert"`
}

type Preview struct {
	Addr string `yaml:"addr"` // "" disables the preview server
}

type Config struct {
	Driver      string  `yaml:"driver"` // "sim" | "screen" | "spi" | "ws281x"
	LEDCount    int     `yaml:"led_count"`
	ColorOrder  string  `yaml:"color_order"`
	Brightness  float64 `yaml:"brightness"`
	Gamma       float64 `yaml:"gamma"`
	FPS         int     `yaml:"fps"`
	Seed        int64   `yaml:"seed"`
	FaultPolicy string  `yaml:"fault_policy"` // "skip" | "abort"
	SoftStartMS int     `yaml:"soft_start_ms"`

	// Layout of the virtual grid; zero rows and columns mean a plain strip
	// of LEDCount LEDs.
	Layout layout.Config `yaml:"layout"`
	Power  render.Power  `yaml:"power"`
	SPI    SPI           `yaml:"spi,omitempty"`
	PWM    PWM           `yaml:"pwm,omitempty"`

	Preview Preview `yaml:"preview"`

	Presets     map[string][]function.Spec `yaml:"presets"`
	StartPreset string                     `yaml:"start_preset"`
	Program     *sequence.Program          `yaml:"program,omitempty"`
}

func intp(v int) *int { return &v }

func DefaultConfig() *Config {
	return &Config{
		Driver:      DriverSim,
		LEDCount:    60,
		ColorOrder:  "GRB",
		Brightness:  0.5,
		Gamma:       1,
		FPS:         30,
		Seed:        1,
		FaultPolicy: "skip",
		Power: render.Power{
			WhiteCap:  3,
			ChannelMA: 20,
			Knee:      0.9,
		},
		SPI: SPI{SpeedHz: 2500000},
		PWM: PWM{GPIO: 18, DMA: 10, Frequency: 800000},
		Presets: map[string][]function.Spec{
			"sparks": {
				{Kind: function.KindFade, Amount: 24},
				{Kind: function.KindMover, Name: "red", Start: intp(0), Direction: 1, Colors: []string{"red", "orange"}, Explode: 2},
				{Kind: function.KindMover, Name: "blue", Start: intp(30), Direction: -1, Delay: 1, Colors: []string{"blue", "cyan"}, Explode: 2},
			},
			"rain": {
				{Kind: function.KindFade, Amount: 12},
				{Kind: function.KindRaindrop, Chance: 0.08, Size: 6, Colors: []string{"skyblue", "blue", "white"}},
				{Kind: function.KindRaindrop, Chance: 0.05, Size: 4, Delay: 1, Colors: []string{"cyan", "purple"}},
			},
			"rainbow": {
				{Kind: function.KindPattern, Pattern: "rainbow", Shift: 1},
			},
			"twinkle": {
				{Kind: function.KindFade, Amount: 6},
				{Kind: function.KindTwinkle, Chance: 0.4},
			},
			"test": {
				{Kind: function.KindSweep, Mode: function.SweepIndex, Colors: []string{"white"}},
			},
		},
		StartPreset: "sparks",
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	c := DefaultConfig()
	if err := LoadInto(path, c); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadInto reads path over c, so keys absent from the file keep the values
// already in c. A missing file leaves c untouched.
func LoadInto(path string, c *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Save writes c to path, creating the directory.
func Save(path string, c *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Clone deep-copies c through its YAML form, so presets and the program are
// not shared with the original.
func (c *Config) Clone() (*Config, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	out := &Config{}
	if err := yaml.Unmarshal(b, out); err != nil {
		return nil, fmt.Errorf("failed to copy config: %w", err)
	}
	return out, nil
}

// LayoutConfig is the configured grid, or a strip of LEDCount.
func (c *Config) LayoutConfig() layout.Config {
	l := c.Layout
	if l.Rows == 0 && l.Columns == 0 && len(l.PanelLayout) == 0 {
		strip := layout.Strip(c.LEDCount)
		if l.Traversal != "" {
			strip.Traversal = l.Traversal
		}
		return strip
	}
	return l
}

// Order is the parsed ColorOrder.
func (c *Config) Order() model.ChannelOrder {
	o, err := model.ParseOrder(c.ColorOrder)
	if err != nil {
		return model.GRB
	}
	return o
}

// WS281x is the rpi_ws281x driver configuration. Brightness stays at full
// scale; the render post stage applies Config.Brightness.
func (c *Config) WS281x(count int) led.WS281xConfig {
	w := led.DefaultWS281x(count)
	w.Pin = c.PWM.GPIO
	w.DMA = c.PWM.DMA
	w.Frequency = c.PWM.Frequency
	w.Channel = c.PWM.Channel
	w.Invert = c.PWM.Invert
	w.StripType = c.ColorOrder
	return w
}

func (c *Config) Validate() error {
	validDrivers := map[string]bool{DriverSim: true, DriverScreen: true, DriverSPI: true, DriverWS281x: true}
	if !validDrivers[c.Driver] {
		return fmt.Errorf("invalid driver: %s", c.Driver)
	}
	if c.FPS <= 0 || c.FPS > 1000 {
		return fmt.Errorf("fps must be in 1..1000, got %d", c.FPS)
	}
	if c.Brightness < 0 || c.Brightness > 1 {
		return fmt.Errorf("brightness must be in [0,1], got %g", c.Brightness)
	}
	if c.SoftStartMS < 0 {
		return fmt.Errorf("soft_start_ms must not be negative")
	}
	if c.Gamma <= 0 {
		return fmt.Errorf("gamma must be positive")
	}
	if _, err := model.ParseOrder(c.ColorOrder); err != nil {
		return err
	}
	if _, err := function.ParsePolicy(c.FaultPolicy); err != nil {
		return err
	}

	l, err := layout.New(c.LayoutConfig())
	if err != nil {
		return err
	}
	if c.LEDCount > 0 && l.Count() > c.LEDCount {
		return fmt.Errorf("layout addresses %d LEDs but led_count is %d", l.Count(), c.LEDCount)
	}

	r := rand.New(rand.NewSource(c.Seed))
	for name, specs := range c.Presets {
		if _, err := function.BuildAll(specs, l.Len(), r); err != nil {
			return fmt.Errorf("preset %s: %w", name, err)
		}
	}
	if c.StartPreset != "" {
		if _, ok := c.Presets[c.StartPreset]; !ok {
			return fmt.Errorf("start_preset %q is not defined", c.StartPreset)
		}
	}
	if c.Program != nil {
		if err := c.Program.Validate(); err != nil {
			return fmt.Errorf("program: %w", err)
		}
		for _, p := range c.Program.Presets() {
			if _, ok := c.Presets[p]; !ok {
				return fmt.Errorf("program uses undefined preset %q", p)
			}
		}
	}
	return nil
}
