package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "b.yaml")
	if err := os.WriteFile(path, []byte("x: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	reloaded := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, 10*time.Millisecond, func() error {
			select {
			case reloaded <- struct{}{}:
			default:
			}
			return nil
		})
	}()

	// The watcher may not be ready immediately, so keep writing until it
	// notices.
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
loop:
	for {
		select {
		case <-reloaded:
			break loop
		case <-tick.C:
			if err := os.WriteFile(path, []byte("x: 2\n"), 0o644); err != nil {
				t.Fatal(err)
			}
		case <-ctx.Done():
			t.Fatal("timed out waiting for reload")
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Errorf("watchFile returned %v", err)
	}
}

func TestWatchFileIgnoresOthers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "b.yaml")
	if err := os.WriteFile(path, []byte("x: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	reloads := 0
	go func() {
		for i := 0; i < 5; i++ {
			os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("y: 1\n"), 0o644)
			time.Sleep(20 * time.Millisecond)
		}
	}()
	err := watchFile(ctx, path, 10*time.Millisecond, func() error {
		reloads++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if reloads != 0 {
		t.Errorf("reloaded %d times for changes to another file", reloads)
	}
}
