// Package config loads RuntimeConfig from YAML (gopkg.in/yaml.v3, as used
// by najoast-sngo/config and amp-labs-amp-common) with defaults matching
// §6, plus optional hot-reload via github.com/fsnotify/fsnotify (also
// used by najoast-sngo/config/watcher.go).
package config

import "time"

// RuntimeConfig is the full set of enumerated configuration options in
// §6 of the distilled spec.
type RuntimeConfig struct {
	MailboxCapacity      int `yaml:"mailbox_capacity"`
	MaxRestarts          int `yaml:"max_restarts"`
	RestartWindowSeconds int `yaml:"restart_window_seconds"`
	HeartbeatIntervalMS  int `yaml:"heartbeat_interval_ms"`
	LivenessWindowMS     int `yaml:"liveness_window_ms"`

	Retry       RetryConfig       `yaml:"retry"`
	Index       IndexConfig       `yaml:"index"`
	Persistence PersistenceConfig `yaml:"persistence"`

	DatabasePath string `yaml:"database_path"`
	IndexPath    string `yaml:"index_path"`
	HTTPAddr     string `yaml:"http_addr"`
}

type RetryConfig struct {
	MaxAttempts       int      `yaml:"max_attempts"`
	InitialDelayMS    int      `yaml:"initial_delay_ms"`
	MaxDelayMS        int      `yaml:"max_delay_ms"`
	BackoffMultiplier float64  `yaml:"backoff_multiplier"`
	RetryableErrors   []string `yaml:"retryable_errors"`
}

type IndexConfig struct {
	WriterHeapBytes int `yaml:"writer_heap_bytes"`
}

type PersistenceConfig struct {
	MaxBufferSize      int `yaml:"max_buffer_size"`
	MaxAttemptsPerItem int `yaml:"max_attempts_per_item"`
}

// Default returns the §6 defaults.
func Default() *RuntimeConfig {
	return &RuntimeConfig{
		MailboxCapacity:      1000,
		MaxRestarts:          3,
		RestartWindowSeconds: 30,
		HeartbeatIntervalMS:  10000,
		LivenessWindowMS:     60000,
		Retry: RetryConfig{
			MaxAttempts:       3,
			InitialDelayMS:    100,
			MaxDelayMS:        5000,
			BackoffMultiplier: 2.0,
			RetryableErrors:   []string{"Timeout", "MailboxFull", "ConnectionLost", "PersistenceError"},
		},
		Index: IndexConfig{
			WriterHeapBytes: 50_000_000,
		},
		Persistence: PersistenceConfig{
			MaxBufferSize:      10000,
			MaxAttemptsPerItem: 10,
		},
		DatabasePath: "olympus.db",
		IndexPath:    "",
		HTTPAddr:     ":8080",
	}
}

func (c *RuntimeConfig) HeartbeatInterval() time.Duration {
	return time.Duration(c.HeartbeatIntervalMS) * time.Millisecond
}

func (c *RuntimeConfig) LivenessWindow() time.Duration {
	return time.Duration(c.LivenessWindowMS) * time.Millisecond
}

func (c *RuntimeConfig) RestartWindow() time.Duration {
	return time.Duration(c.RestartWindowSeconds) * time.Second
}

// Clone returns a deep-enough copy for safe hand-off across the
// hot-reload callback boundary (§9: never borrow shared state across a
// channel send — Watcher copies out before invoking callbacks).
func (c *RuntimeConfig) Clone() *RuntimeConfig {
	cp := *c
	cp.Retry.RetryableErrors = append([]string(nil), c.Retry.RetryableErrors...)
	return &cp
}
