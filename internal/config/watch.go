package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// debounce collapses the burst of events editors produce on save.
const debounce = 150 * time.Millisecond

// Watch calls fn with the reloaded configuration whenever path changes,
// until ctx is done. Each reload reads the file over a fresh copy of base,
// so values set outside the file survive keys the file leaves out. A nil
// base means the defaults. Invalid files are logged and skipped.
func Watch(ctx context.Context, path string, base *Config, fn func(*Config)) error {
	if base == nil {
		base = DefaultConfig()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	// editors replace the file, so watch the directory
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	target := filepath.Clean(path)
	logger := log.With().Str("component", "config").Str("path", target).Logger()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("watch error")
		case <-fire:
			fire = nil
			c, err := base.Clone()
			if err == nil {
				err = LoadInto(target, c)
			}
			if err != nil {
				logger.Warn().Err(err).Msg("ignoring config change")
				continue
			}
			logger.Info().Msg("config reloaded")
			fn(c)
		}
	}
}
