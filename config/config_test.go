package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MailboxCapacity != 1000 {
		t.Errorf("MailboxCapacity = %d, want 1000", cfg.MailboxCapacity)
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("Retry.MaxAttempts = %d, want 3", cfg.Retry.MaxAttempts)
	}
}

func TestLoadOverlaysYAMLOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "olympus.yaml")
	yaml := "mailbox_capacity: 50\nretry:\n  max_attempts: 7\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MailboxCapacity != 50 {
		t.Errorf("MailboxCapacity = %d, want 50", cfg.MailboxCapacity)
	}
	if cfg.Retry.MaxAttempts != 7 {
		t.Errorf("Retry.MaxAttempts = %d, want 7", cfg.Retry.MaxAttempts)
	}
	if cfg.HeartbeatIntervalMS != 10000 {
		t.Errorf("unrelated default HeartbeatIntervalMS changed: %d", cfg.HeartbeatIntervalMS)
	}
}

func TestWatcherReloadsOnFileWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "olympus.yaml")
	if err := os.WriteFile(path, []byte("mailbox_capacity: 10\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatal(err)
	}
	if w.Current().MailboxCapacity != 10 {
		t.Fatalf("initial MailboxCapacity = %d, want 10", w.Current().MailboxCapacity)
	}

	changed := make(chan *RuntimeConfig, 1)
	w.OnChange(func(old, next *RuntimeConfig) { changed <- next })

	go func() {
		os.WriteFile(path, []byte("mailbox_capacity: 20\n"), 0o644)
	}()

	ctx, cancel := newTestContext()
	defer cancel()
	go w.Run(ctx)

	select {
	case next := <-changed:
		if next.MailboxCapacity != 20 {
			t.Errorf("reloaded MailboxCapacity = %d, want 20", next.MailboxCapacity)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for reload")
	}
}
