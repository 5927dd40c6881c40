package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-ledstrip/internal/app"
	"github.com/coreman2200/funtimes-ledstrip/internal/config"
	"github.com/coreman2200/funtimes-ledstrip/internal/layout"
	"github.com/coreman2200/funtimes-ledstrip/internal/led"
	"github.com/coreman2200/funtimes-ledstrip/internal/ws"
)

func main() {
	// ---- Flags (config.yaml overrides what it sets) ----
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		driver     = flag.String("driver", "sim", "driver: sim | screen | spi | ws281x")
		count      = flag.Int("leds", 60, "number of LEDs on the strip")
		fps        = flag.Int("fps", 30, "target frames per second")
		brightness = flag.Float64("brightness", 0.5, "global brightness 0..1")
		colorOrder = flag.String("color", "GRB", "LED color order (e.g. GRB, RGB)")
		gpio       = flag.Int("gpio", 18, "PWM data pin (BCM number) for rpi_ws281x")
		spiPort    = flag.String("spi", "", "SPI port name for the spi driver, empty for the first")
		addr       = flag.String("addr", "", "preview HTTP listen address, e.g. :8080")
		preset     = flag.String("preset", "", "preset to start with")
		simOnly    = flag.Bool("sim-only", false, "force simulation (no hardware output)")
		watch      = flag.Bool("watch", true, "reload config.yaml when it changes")
		debug      = flag.Bool("debug", false, "log every frame")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// ---- Effective config: defaults, then flags, then config.yaml ----
	cfg := config.DefaultConfig()
	cfg.Driver = *driver
	cfg.LEDCount = *count
	cfg.FPS = *fps
	cfg.Brightness = *brightness
	cfg.ColorOrder = *colorOrder
	cfg.PWM.GPIO = *gpio
	cfg.SPI.Port = *spiPort
	cfg.Preview.Addr = *addr
	// reloads start over from the flag-built config, not the defaults
	base, err := cfg.Clone()
	if err != nil {
		log.Fatal().Err(err).Msg("config copy failed")
	}
	if err := config.LoadInto(*configPath, cfg); err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("config load failed")
	}
	// -preset and -sim-only win over config.yaml, on every load
	overrides := func(c *config.Config) {
		if *preset != "" {
			c.StartPreset = *preset
		}
		if *simOnly {
			c.Driver = config.DriverSim
		}
	}
	overrides(cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	l, err := layout.New(cfg.LayoutConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("layout")
	}
	n := l.Count()
	if cfg.LEDCount > n {
		n = cfg.LEDCount
	}

	// ---- Driver ----
	drv, selected := openDriver(cfg, n)
	var preview *ws.Preview
	if cfg.Preview.Addr != "" {
		preview = ws.NewPreview(drv, selected, n)
		drv = preview
	}

	ctrl, err := app.FromConfig(cfg, drv)
	if err != nil {
		_ = drv.Close()
		log.Fatal().Err(err).Msg("controller")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- Signals: cancel, release, then re-raise ----
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	var (
		sigMu  sync.Mutex
		caught os.Signal
	)
	go func() {
		select {
		case s := <-sigCh:
			sigMu.Lock()
			caught = s
			sigMu.Unlock()
			log.Info().Str("signal", s.String()).Msg("shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	// ---- Preview server ----
	var srv *http.Server
	if preview != nil {
		preview.StatusFn = func() ws.Status {
			return ws.Status{FPS: ctrl.FPS(), Brightness: ctrl.Brightness(), Functions: ctrl.Functions(), Preset: ctrl.Preset()}
		}
		ctrl.Journal().Subscribe(preview.PushDiag)
		srv = &http.Server{
			Addr:         cfg.Preview.Addr,
			Handler:      withCORS(preview.Handler()),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			log.Info().Str("addr", srv.Addr).Str("driver", selected).Msg("preview server starting")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("preview server stopped")
			}
		}()
	}

	// ---- Config hot reload ----
	if *watch {
		go func() {
			err := config.Watch(ctx, *configPath, base, func(next *config.Config) {
				overrides(next)
				if err := next.Validate(); err != nil {
					log.Warn().Err(err).Msg("ignoring config change")
					return
				}
				if err := ctrl.Apply(next); err != nil {
					log.Warn().Err(err).Msg("apply config")
				}
			})
			if err != nil {
				log.Warn().Err(err).Msg("config watch disabled")
			}
		}()
	}

	log.Info().
		Str("driver", selected).
		Int("leds", n).
		Int("fps", cfg.FPS).
		Str("preset", ctrl.Preset()).
		Msg("ledstrip running")
	runErr := ctrl.Run(ctx)

	// ---- Shutdown ----
	cancel()
	if srv != nil {
		_ = srv.Close()
	}
	if err := ctrl.Close(); err != nil {
		log.Warn().Err(err).Msg("release driver")
	}
	signal.Stop(sigCh)

	sigMu.Lock()
	s := caught
	sigMu.Unlock()
	if s != nil {
		reraise(s)
	}
	if runErr != nil {
		log.Fatal().Err(runErr).Msg("ledstrip stopped")
	}
}

// openDriver opens the configured sink, falling back to the in-memory one
// when the hardware is unavailable.
func openDriver(cfg *config.Config, n int) (led.Driver, string) {
	switch cfg.Driver {
	case config.DriverSim:
		return led.NewSim(n), config.DriverSim

	case config.DriverScreen:
		return led.NewScreen(n), config.DriverScreen

	case config.DriverSPI:
		if _, err := host.Init(); err != nil {
			log.Warn().Err(err).Msg("periph host init failed; falling back to SIM")
			return led.NewSim(n), config.DriverSim
		}
		freq := physic.Frequency(cfg.SPI.SpeedHz) * physic.Hertz
		drv, err := led.OpenNRZ(cfg.SPI.Port, n, freq, cfg.Order())
		if err != nil {
			log.Warn().Err(err).
				Str("driver", "spi").
				Str("port", cfg.SPI.Port).
				Int64("speed_hz", cfg.SPI.SpeedHz).
				Msg("SPI init failed; falling back to SIM")
			return led.NewSim(n), config.DriverSim
		}
		log.Info().Str("port", drv.String()).Msg("spi driver open")
		return drv, config.DriverSPI

	case config.DriverWS281x:
		if !led.WS281xSupported {
			log.Warn().Msg("driver=ws281x requested, but it is not compiled in this build; using SIM instead")
			return led.NewSim(n), config.DriverSim
		}
		drv, err := led.NewWS281x(cfg.WS281x(n))
		if err != nil {
			log.Warn().Err(err).Int("gpio", cfg.PWM.GPIO).Msg("ws281x init failed; falling back to SIM")
			return led.NewSim(n), config.DriverSim
		}
		return drv, config.DriverWS281x
	}
	log.Warn().Str("driver", cfg.Driver).Msg("unknown driver; using SIM")
	return led.NewSim(n), config.DriverSim
}

// reraise delivers s again with the default disposition so the exit status
// reflects the signal.
func reraise(s os.Signal) {
	sig, ok := s.(syscall.Signal)
	if !ok {
		os.Exit(1)
	}
	signal.Reset(sig)
	_ = syscall.Kill(os.Getpid(), sig)
	time.Sleep(100 * time.Millisecond)
	os.Exit(128 + int(sig))
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
