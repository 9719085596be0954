// Package config loads qrscan settings from an ini file.
//
//	[server]
//	listen = localhost:12100
//	cors = false
//
//	[capture]
//	hide_delay_ms = 30
//	display = 0
//
//	[scanner]
//	workers = 4
//	cache_size = 16
//
//	[events]
//	retries = 3
//	retry_backoff_ms = 100
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/ini.v1"
)

const (
	DefaultListen       = "localhost:12100"
	DefaultHideDelay    = 30 * time.Millisecond
	DefaultWorkers      = 4
	DefaultCacheSize    = 16
	DefaultRetries      = 3
	DefaultRetryBackoff = 100 * time.Millisecond
)

type Config struct {
	Server  ServerConfig
	Capture CaptureConfig
	Scanner ScannerConfig
	Events  EventsConfig
}

type ServerConfig struct {
	Listen string
	CORS   bool
}

type CaptureConfig struct {
	// HideDelay is how long BeginSelection waits after asking the UI to hide
	// before it captures the screen.
	HideDelay time.Duration

	// Display is the enumeration position captured for selection sessions.
	Display int
}

type ScannerConfig struct {
	Workers   int
	CacheSize int
}

type EventsConfig struct {
	Retries      int
	RetryBackoff time.Duration
}

func Default() Config {
	return Config{
		Server:  ServerConfig{Listen: DefaultListen},
		Capture: CaptureConfig{HideDelay: DefaultHideDelay},
		Scanner: ScannerConfig{Workers: DefaultWorkers, CacheSize: DefaultCacheSize},
		Events:  EventsConfig{Retries: DefaultRetries, RetryBackoff: DefaultRetryBackoff},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/qrscan/config.ini or the platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "qrscan", "config.ini"), nil
}

// Load reads the ini file at path on top of the defaults. A missing file is
// not an error and yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	server := file.Section("server")
	cfg.Server.Listen = server.Key("listen").MustString(cfg.Server.Listen)
	cfg.Server.CORS = server.Key("cors").MustBool(cfg.Server.CORS)

	capture := file.Section("capture")
	cfg.Capture.HideDelay = time.Duration(capture.Key("hide_delay_ms").MustInt(int(cfg.Capture.HideDelay/time.Millisecond))) * time.Millisecond
	cfg.Capture.Display = capture.Key("display").MustInt(cfg.Capture.Display)

	scanner := file.Section("scanner")
	cfg.Scanner.Workers = scanner.Key("workers").MustInt(cfg.Scanner.Workers)
	cfg.Scanner.CacheSize = scanner.Key("cache_size").MustInt(cfg.Scanner.CacheSize)

	events := file.Section("events")
	cfg.Events.Retries = events.Key("retries").MustInt(cfg.Events.Retries)
	cfg.Events.RetryBackoff = time.Duration(events.Key("retry_backoff_ms").MustInt(int(cfg.Events.RetryBackoff/time.Millisecond))) * time.Millisecond

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen must not be empty")
	}
	if c.Capture.HideDelay < 0 {
		return fmt.Errorf("capture.hide_delay_ms must not be negative")
	}
	if c.Capture.Display < 0 {
		return fmt.Errorf("capture.display must not be negative")
	}
	if c.Scanner.Workers < 1 {
		return fmt.Errorf("scanner.workers must be at least 1")
	}
	if c.Scanner.CacheSize < 0 {
		return fmt.Errorf("scanner.cache_size must not be negative")
	}
	if c.Events.Retries < 1 {
		return fmt.Errorf("events.retries must be at least 1")
	}
	return nil
}
