package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchReloadsConfigFile(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "clicksign.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: info\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	loader := NewLoader("", path)
	changeCh := make(chan Config, 4)
	errCh := make(chan error, 4)
	watcher, err := loader.Watch(ctx, func(cfg Config) {
		changeCh <- cfg
	}, func(err error) {
		errCh <- err
	})
	if err != nil {
		t.Fatalf("watcher failed: %v", err)
	}
	defer watcher.Stop()

	if err := os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o600); err != nil {
		t.Fatalf("failed to update config: %v", err)
	}

	select {
	case cfg := <-changeCh:
		if cfg.Logging.Level != "debug" {
			t.Fatalf("expected debug level after reload, got %q", cfg.Logging.Level)
		}
	case err := <-errCh:
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for reload event")
	}
}

func TestWatchReportsInvalidReload(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "clicksign.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: info\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	loader := NewLoader("", path)
	changeCh := make(chan Config, 4)
	errCh := make(chan error, 4)
	watcher, err := loader.Watch(ctx, func(cfg Config) {
		changeCh <- cfg
	}, func(err error) {
		errCh <- err
	})
	if err != nil {
		t.Fatalf("watcher failed: %v", err)
	}
	defer watcher.Stop()

	if err := os.WriteFile(path, []byte("logging:\n  level: chatty\n"), 0o600); err != nil {
		t.Fatalf("failed to update config: %v", err)
	}

	select {
	case cfg := <-changeCh:
		t.Fatalf("unexpected reload with invalid config: %+v", cfg.Logging)
	case err := <-errCh:
		if err == nil {
			t.Fatal("expected validation error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for reload error")
	}
}

func TestWatchIgnoresSiblingFiles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	path := filepath.Join(dir, "clicksign.yaml")
	if err := os.WriteFile(path, []byte("user: acme\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	changeCh := make(chan Config, 4)
	watcher, err := NewLoader("", path).Watch(ctx, func(cfg Config) { changeCh <- cfg }, nil)
	if err != nil {
		t.Fatalf("watcher failed: %v", err)
	}
	defer watcher.Stop()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o600); err != nil {
		t.Fatalf("failed to write sibling: %v", err)
	}

	select {
	case <-changeCh:
		t.Fatal("sibling file change triggered a reload")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatchRequiresFileAndCallback(t *testing.T) {
	if _, err := NewLoader("").Watch(context.Background(), func(Config) {}, nil); err == nil {
		t.Fatal("expected error without config files")
	}
	if _, err := NewLoader("", "clicksign.yaml").Watch(context.Background(), nil, nil); err == nil {
		t.Fatal("expected error without change callback")
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clicksign.yaml")
	if err := os.WriteFile(path, []byte("user: acme\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	watcher, err := NewLoader("", path).Watch(context.Background(), func(Config) {}, nil)
	if err != nil {
		t.Fatalf("watcher failed: %v", err)
	}
	watcher.Stop()
	watcher.Stop()

	var nilWatcher *Watcher
	nilWatcher.Stop()
}
