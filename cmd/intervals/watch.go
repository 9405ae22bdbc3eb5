package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchFile calls reload after changes to the file at path, once the file has
// been quiet for delay. Reload errors are logged and watching continues. It
// runs until ctx is done.
func watchFile(ctx context.Context, path string, delay time.Duration, reload func() error) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()
	// Watch the directory, since editors often replace the file rather than
	// writing to it.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}
	slog.Info("watching bindings", "path", path, "debounce_ms", delay.Milliseconds())

	fire := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			slog.Info("stopped watching bindings", "path", path)
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			slog.Debug("bindings file event", "path", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.AfterFunc(delay, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(delay)
			}

		case <-fire:
			slog.Info("reloading bindings", "path", path)
			if err := reload(); err != nil {
				slog.Error("reload failed", "error", err)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			slog.Error("watcher error", "error", err)
		}
	}
}
