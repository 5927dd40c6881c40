// Package app wires the render engine, the function engine and the show
// sequencer into the controller the commands drive.
package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-ledstrip/internal/config"
	"github.com/coreman2200/funtimes-ledstrip/internal/diagnostics"
	"github.com/coreman2200/funtimes-ledstrip/internal/function"
	"github.com/coreman2200/funtimes-ledstrip/internal/layout"
	"github.com/coreman2200/funtimes-ledstrip/internal/led"
	"github.com/coreman2200/funtimes-ledstrip/internal/render"
	"github.com/coreman2200/funtimes-ledstrip/internal/sequence"
	"github.com/coreman2200/funtimes-ledstrip/model"
)

// ErrUnknownPreset is returned when a preset name is not configured.
var ErrUnknownPreset = errors.New("unknown preset")

type Options struct {
	Layout  *layout.Layout
	Driver  led.Driver
	Seed    int64
	Policy  function.Policy
	FPS     int
	Presets map[string][]function.Spec
	// SoftStart ramps brightness up from zero when Run begins.
	SoftStart time.Duration
	// Journal receives fault diagnostics; optional.
	Journal *diagnostics.Journal
	// Logger defaults to the global logger.
	Logger *zerolog.Logger
}

// Controller is the application-facing engine. All methods are safe for
// concurrent use; the engines underneath are only touched under its lock.
type Controller struct {
	mu sync.Mutex

	Render *render.Engine
	Funcs  *function.Engine
	Seq    *sequence.Player

	drv     *led.Guard
	journal *diagnostics.Journal
	log     zerolog.Logger

	presets    map[string][]function.Spec
	preset     string
	fps        int
	brightness float64
	softStart  time.Duration
	started    time.Time

	closeOnce sync.Once
	closeErr  error
}

func New(opts Options) (*Controller, error) {
	if opts.Driver == nil {
		return nil, &led.SinkError{Driver: "none", Op: "open", Err: errors.New("no driver")}
	}
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	drv := led.NewGuard("driver", opts.Driver)
	eng, err := render.NewEngine(opts.Layout, drv)
	if err != nil {
		return nil, err
	}
	buf, err := render.NewBuffer(opts.Layout.Rows(), opts.Layout.Cols())
	if err != nil {
		return nil, err
	}
	if err := eng.Use(buf); err != nil {
		return nil, err
	}

	c := &Controller{
		Render:     eng,
		Funcs:      function.NewEngine(opts.Seed),
		drv:        drv,
		journal:    opts.Journal,
		log:        logger.With().Str("component", "controller").Logger(),
		presets:    opts.Presets,
		fps:        opts.FPS,
		brightness: eng.Post().Brightness,
		softStart:  opts.SoftStart,
	}
	if c.fps <= 0 {
		c.fps = 30
	}
	c.Funcs.Policy = opts.Policy
	c.Funcs.SetLogger(logger)
	c.Funcs.OnFault = func(fe *function.FunctionError) {
		c.report(diagnostics.FunctionFault(fe, c.Funcs.Policy == function.SkipAndContinue))
	}
	c.Seq = sequence.NewPlayer(sequence.Hooks{
		SetPreset: func(name string) {
			if err := c.loadPreset(name); err != nil {
				c.log.Warn().Err(err).Str("preset", name).Msg("sequence preset")
			}
		},
		SetParam: c.setParam,
	})
	return c, nil
}

// FromConfig builds a controller for cfg on top of drv.
func FromConfig(cfg *config.Config, drv led.Driver) (*Controller, error) {
	l, err := layout.New(cfg.LayoutConfig())
	if err != nil {
		return nil, err
	}
	policy, err := function.ParsePolicy(cfg.FaultPolicy)
	if err != nil {
		return nil, err
	}
	c, err := New(Options{
		Layout:    l,
		Driver:    drv,
		Seed:      cfg.Seed,
		Policy:    policy,
		FPS:       cfg.FPS,
		Presets:   cfg.Presets,
		SoftStart: time.Duration(cfg.SoftStartMS) * time.Millisecond,
		Journal:   diagnostics.NewJournal(0),
	})
	if err != nil {
		return nil, err
	}
	c.Render.SetGamma(cfg.Gamma)
	c.Render.SetPower(cfg.Power)
	c.SetBrightness(cfg.Brightness)
	if cfg.StartPreset != "" {
		if err := c.LoadPreset(cfg.StartPreset); err != nil {
			return nil, err
		}
	}
	if cfg.Program != nil {
		if err := c.LoadProgram(*cfg.Program); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Controller) Journal() *diagnostics.Journal { return c.journal }

func (c *Controller) report(d diagnostics.Diagnostic) {
	if c.journal != nil {
		c.journal.Push(d)
	}
}

// RegisterFunction appends f to the tick order.
func (c *Controller) RegisterFunction(f function.Function) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Funcs.Add(f)
}

// Tick runs every function once, then the collision pass.
func (c *Controller) Tick(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Funcs.Tick(ctx, c.Render.Buffer())
}

// Project returns the virtual buffer in physical order.
func (c *Controller) Project() ([]model.ColorVal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Render.Project()
}

// Flush writes the projected frame to the driver.
func (c *Controller) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flush()
}

func (c *Controller) flush() error {
	err := c.Render.Flush()
	var se *led.SinkError
	if errors.As(err, &se) {
		c.report(diagnostics.SinkFault(se))
	}
	return err
}

// Step advances the sequencer by dt, ticks the functions and flushes. A
// tick aborted by a function fault is still flushed.
func (c *Controller) Step(ctx context.Context, dt time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Seq.Tick(dt.Seconds())
	c.applySoftStart()

	tickErr := c.Funcs.Tick(ctx, c.Render.Buffer())
	if tickErr != nil && !errors.Is(tickErr, function.ErrAnimationFunction) {
		return tickErr
	}
	if err := c.flush(); err != nil {
		return err
	}
	c.log.Debug().Float64("total_ms", c.Render.Last.TotalMS).Uint64("tick", c.Funcs.Ticks()).Msg("frame")
	return tickErr
}

func (c *Controller) applySoftStart() {
	if c.softStart <= 0 || c.started.IsZero() {
		return
	}
	ramp := float64(time.Since(c.started)) / float64(c.softStart)
	if ramp >= 1 {
		c.Render.SetBrightness(c.brightness)
		return
	}
	c.Render.SetBrightness(c.brightness * ramp)
}

// LoadPreset replaces the registered functions with the named preset and
// clears the buffer.
func (c *Controller) LoadPreset(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadPreset(name)
}

func (c *Controller) loadPreset(name string) error {
	specs, ok := c.presets[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	buf := c.Render.Buffer()
	funcs, err := function.BuildAll(specs, buf.Len(), c.Funcs.Rand())
	if err != nil {
		return fmt.Errorf("preset %s: %w", name, err)
	}
	c.Funcs.Clear()
	for _, f := range funcs {
		if err := c.Funcs.Add(f); err != nil {
			return err
		}
	}
	buf.Fill(model.Off)
	c.preset = name
	c.log.Info().Str("preset", name).Int("functions", len(funcs)).Msg("preset loaded")
	return nil
}

// Presets lists the configured preset names in order.
func (c *Controller) Presets() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.presets))
	for name := range c.presets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (c *Controller) Preset() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preset
}

// LoadProgram starts playing prog. Every preset it names must exist.
func (c *Controller) LoadProgram(prog sequence.Program) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range prog.Presets() {
		if _, ok := c.presets[p]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownPreset, p)
		}
	}
	if err := c.Seq.Load(prog); err != nil {
		return err
	}
	c.Seq.Start()
	return nil
}

// setParam is the sequencer hook; it runs under c.mu.
func (c *Controller) setParam(name string, v float64) {
	switch name {
	case "brightness":
		c.brightness = v
		c.Render.SetBrightness(v)
	case "gamma":
		c.Render.SetGamma(v)
	case "fps":
		if v >= 1 {
			c.fps = int(v)
		}
	default:
		c.log.Debug().Str("param", name).Msg("unknown sequence param")
	}
}

func (c *Controller) SetBrightness(b float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setParam("brightness", b)
	c.brightness = c.Render.Post().Brightness
}

func (c *Controller) Brightness() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.brightness
}

// SetFPS takes effect on the next frame of Run.
func (c *Controller) SetFPS(fps int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setParam("fps", float64(fps))
}

func (c *Controller) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *Controller) Functions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Funcs.Len()
}

// Apply takes the live-tunable parts of a reloaded configuration.
func (c *Controller) Apply(cfg *config.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setParam("brightness", cfg.Brightness)
	c.brightness = c.Render.Post().Brightness
	c.setParam("fps", float64(cfg.FPS))
	c.Render.SetGamma(cfg.Gamma)
	c.Render.SetPower(cfg.Power)
	if policy, err := function.ParsePolicy(cfg.FaultPolicy); err == nil {
		c.Funcs.Policy = policy
	}
	c.presets = cfg.Presets
	if cfg.StartPreset != "" && cfg.StartPreset != c.preset {
		return c.loadPreset(cfg.StartPreset)
	}
	return nil
}

// Run steps at the configured FPS until ctx is done. Function faults are
// logged and the loop goes on; a sink fault stops it.
func (c *Controller) Run(ctx context.Context) error {
	c.mu.Lock()
	c.started = time.Now()
	fps := c.fps
	c.mu.Unlock()

	dt := time.Second / time.Duration(fps)
	ticker := time.NewTicker(dt)
	defer ticker.Stop()
	c.log.Info().Int("fps", fps).Msg("run loop started")

	frames := 0
	for {
		select {
		case <-ctx.Done():
			c.log.Info().Int("frames", frames).Msg("run loop stopped")
			return nil
		case <-ticker.C:
		}

		err := c.Step(ctx, dt)
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil
		case errors.Is(err, function.ErrAnimationFunction):
			c.log.Error().Err(err).Msg("tick aborted")
		default:
			c.log.Error().Err(err).Msg("output failed")
			return err
		}
		frames++

		if now := c.FPS(); now != fps {
			fps = now
			dt = time.Second / time.Duration(fps)
			ticker.Reset(dt)
			c.log.Info().Int("fps", fps).Msg("frame rate changed")
		}
	}
}

// Close blanks the LEDs and releases the driver. Only the first call does
// anything; later calls return the first result.
func (c *Controller) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.Funcs.Clear()
		c.Seq.Stop()
		n := c.drv.NumPixels()
		for i := 0; i < n; i++ {
			if err := c.drv.SetPixel(i, model.Off); err != nil {
				break
			}
		}
		if err := c.drv.Show(); err != nil {
			c.log.Warn().Err(err).Msg("blank on close")
		}
		c.closeErr = c.drv.Close()
		c.log.Info().Msg("driver released")
	})
	return c.closeErr
}
