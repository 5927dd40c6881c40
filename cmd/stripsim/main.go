// Command stripsim runs presets against the in-memory driver and prints a
// summary of the frames, for trying configurations without hardware.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-ledstrip/internal/app"
	"github.com/coreman2200/funtimes-ledstrip/internal/config"
	"github.com/coreman2200/funtimes-ledstrip/internal/layout"
	"github.com/coreman2200/funtimes-ledstrip/internal/led"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config.yaml; defaults when empty")
		preset     = flag.String("preset", "", "preset to run (default: start_preset)")
		frames     = flag.Int("frames", 120, "frames to simulate")
		every      = flag.Int("every", 10, "print a summary every N frames")
		seed       = flag.Int64("seed", 0, "random seed, 0 keeps the configured one")
		realtime   = flag.Bool("realtime", false, "pace frames at the configured fps")
		list       = flag.Bool("list", false, "list presets and exit")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	cfg := config.DefaultConfig()
	if *configPath != "" {
		if err := config.LoadInto(*configPath, cfg); err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("config load failed")
		}
	}
	cfg.Program = nil
	if *preset != "" {
		cfg.StartPreset = *preset
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	l, err := layout.New(cfg.LayoutConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("layout")
	}
	sim := led.NewSim(l.Count())
	ctrl, err := app.FromConfig(cfg, sim)
	if err != nil {
		log.Fatal().Err(err).Msg("controller")
	}
	defer ctrl.Close()

	if *list {
		for _, name := range ctrl.Presets() {
			fmt.Println(name)
		}
		return
	}

	fmt.Printf("preset %s: %d functions on %dx%d (%d LEDs)\n", ctrl.Preset(), ctrl.Functions(), l.Rows(), l.Cols(), l.Count())
	dt := time.Second / time.Duration(cfg.FPS)
	ctx := context.Background()
	for i := 1; i <= *frames; i++ {
		if err := ctrl.Step(ctx, dt); err != nil {
			fmt.Printf("frame %d: %v\n", i, err)
		}
		if *every > 0 && i%*every == 0 {
			fmt.Println(sim.Summary())
		}
		if *realtime {
			time.Sleep(dt)
		}
	}
	for _, d := range ctrl.Journal().Recent() {
		fmt.Printf("%s %s: %s\n", d.Severity, d.Code, d.Detail)
	}
}
