// Package config provides configuration management for the prompt
// rendering core. Settings are loaded from (highest to lowest priority):
// 1. Environment variables (LUSH_*)
// 2. Config file ($XDG_CONFIG_HOME/lush/lush.yaml, or ~/.config/lush/lush.yaml)
// 3. Defaults
//
// This is a trimmed descendant of the teacher's defaults-then-file-then-env
// precedence chain: RPI/Forge/Flywheel/Search settings have no analogue in
// a shell prompt renderer, so only the fields this module actually reads
// survive.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings holds the module's tunable runtime parameters.
type Settings struct {
	// PanicWindow is the rolling time window within which repeated Ctrl-G
	// presses count toward an automatic hard reset.
	PanicWindow time.Duration `yaml:"panic_window"`

	// PanicPressCount is the number of Ctrl-G presses within PanicWindow
	// that triggers a hard reset.
	PanicPressCount int `yaml:"panic_press_count"`

	// ErrorThreshold is the number of persistent render failures that
	// triggers a hard reset.
	ErrorThreshold int `yaml:"error_threshold"`

	// DefaultSubprocessTimeout bounds any subprocess spawned on the
	// prompt's behalf (git status, etc.) that does not specify its own.
	DefaultSubprocessTimeout time.Duration `yaml:"default_subprocess_timeout"`

	// AsyncQueueDepth bounds the async worker's pending-request queue.
	AsyncQueueDepth int `yaml:"async_queue_depth"`
}

// Default returns the module's default settings.
func Default() Settings {
	return Settings{
		PanicWindow:              2 * time.Second,
		PanicPressCount:          3,
		ErrorThreshold:           5,
		DefaultSubprocessTimeout: 200 * time.Millisecond,
		AsyncQueueDepth:          256,
	}
}

// Load resolves settings using the full precedence chain: defaults, then
// the config file (if present), then environment variable overrides.
func Load() (Settings, error) {
	cfg := Default()

	fileCfg, err := loadFromPath(configPath())
	if err != nil {
		return Settings{}, err
	}
	if fileCfg != nil {
		cfg = merge(cfg, *fileCfg)
	}

	return applyEnv(cfg), nil
}

// configPath returns the config file path, honoring $XDG_CONFIG_HOME and
// falling back to ~/.config.
func configPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "lush", "lush.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "lush", "lush.yaml")
}

// fileSettings mirrors Settings but with every field optional, so
// loadFromPath can distinguish "absent from file" from "zero value".
type fileSettings struct {
	PanicWindow              *string `yaml:"panic_window"`
	PanicPressCount          *int    `yaml:"panic_press_count"`
	ErrorThreshold           *int    `yaml:"error_threshold"`
	DefaultSubprocessTimeout *string `yaml:"default_subprocess_timeout"`
	AsyncQueueDepth          *int    `yaml:"async_queue_depth"`
}

func loadFromPath(path string) (*Settings, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var fs fileSettings
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return nil, err
	}

	out := Settings{}
	if fs.PanicWindow != nil {
		d, err := time.ParseDuration(*fs.PanicWindow)
		if err != nil {
			return nil, err
		}
		out.PanicWindow = d
	}
	if fs.PanicPressCount != nil {
		out.PanicPressCount = *fs.PanicPressCount
	}
	if fs.ErrorThreshold != nil {
		out.ErrorThreshold = *fs.ErrorThreshold
	}
	if fs.DefaultSubprocessTimeout != nil {
		d, err := time.ParseDuration(*fs.DefaultSubprocessTimeout)
		if err != nil {
			return nil, err
		}
		out.DefaultSubprocessTimeout = d
	}
	if fs.AsyncQueueDepth != nil {
		out.AsyncQueueDepth = *fs.AsyncQueueDepth
	}

	return &out, nil
}

// merge overlays non-zero fields of src onto dst.
func merge(dst, src Settings) Settings {
	if src.PanicWindow != 0 {
		dst.PanicWindow = src.PanicWindow
	}
	if src.PanicPressCount != 0 {
		dst.PanicPressCount = src.PanicPressCount
	}
	if src.ErrorThreshold != 0 {
		dst.ErrorThreshold = src.ErrorThreshold
	}
	if src.DefaultSubprocessTimeout != 0 {
		dst.DefaultSubprocessTimeout = src.DefaultSubprocessTimeout
	}
	if src.AsyncQueueDepth != 0 {
		dst.AsyncQueueDepth = src.AsyncQueueDepth
	}
	return dst
}

// applyEnv applies LUSH_* environment variable overrides atop cfg.
func applyEnv(cfg Settings) Settings {
	if v := os.Getenv("LUSH_PANIC_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.PanicWindow = d
		}
	}
	if v := os.Getenv("LUSH_PANIC_PRESS_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PanicPressCount = n
		}
	}
	if v := os.Getenv("LUSH_ERROR_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ErrorThreshold = n
		}
	}
	if v := os.Getenv("LUSH_SUBPROCESS_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.DefaultSubprocessTimeout = d
		}
	}
	if v := os.Getenv("LUSH_ASYNC_QUEUE_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.AsyncQueueDepth = n
		}
	}
	return cfg
}
