// Package config loads quill settings from an optional TOML file followed by
// QUILL_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration decodes TOML strings such as "10m" or "250ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type Config struct {
	// Path is the file the config was read from, empty when only defaults apply.
	Path    string        `toml:"-"`
	Session SessionConfig `toml:"session"`
	Capture CaptureConfig `toml:"capture"`
	Prompts PromptsConfig `toml:"prompts"`
	Log     LogConfig     `toml:"log"`
}

type SessionConfig struct {
	Duration   Duration `toml:"duration"`
	Tick       Duration `toml:"tick"`
	SoftTarget int      `toml:"soft_target"`
	HardCap    int      `toml:"hard_cap"`
}

type CaptureConfig struct {
	Enabled bool   `toml:"enabled"`
	Device  string `toml:"device"`
}

type PromptsConfig struct {
	// Dir holds markdown prompt notes. A missing directory just means the
	// built-in prompts are all there is.
	Dir   string `toml:"dir"`
	Watch bool   `toml:"watch"`
}

type LogConfig struct {
	Level string `toml:"level"`
	// File receives JSON logs; "stderr" and "stdout" are accepted too.
	File string `toml:"file"`
}

func Default() Config {
	return Config{
		Session: SessionConfig{
			Duration:   Duration{10 * time.Minute},
			Tick:       Duration{250 * time.Millisecond},
			SoftTarget: 300,
			HardCap:    350,
		},
		Capture: CaptureConfig{Enabled: true, Device: "/dev/video0"},
		Prompts: PromptsConfig{Dir: defaultPromptsDir(), Watch: true},
		Log:     LogConfig{Level: "info", File: defaultLogFile()},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/quill/config.toml or its platform equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "quill", "config.toml")
}

func defaultPromptsDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "quill", "prompts")
}

func defaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "stderr"
	}
	return filepath.Join(dir, "quill", "quill.log")
}

// Load reads path (a missing file is fine when optional is true), applies
// environment overrides and validates the result.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if !(optional && errors.Is(err, os.ErrNotExist)) {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		} else {
			cfg.Path = path
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from QUILL_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	durations := map[string]*Duration{
		"QUILL_DURATION": &c.Session.Duration,
		"QUILL_TICK":     &c.Session.Tick,
	}
	for key, dst := range durations {
		if v, ok := lookup(key); ok && v != "" {
			if err := dst.UnmarshalText([]byte(v)); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
		}
	}
	ints := map[string]*int{
		"QUILL_SOFT_TARGET": &c.Session.SoftTarget,
		"QUILL_HARD_CAP":    &c.Session.HardCap,
	}
	for key, dst := range ints {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}
	if v, ok := lookup("QUILL_CAPTURE_ENABLED"); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("QUILL_CAPTURE_ENABLED: %w", err)
		}
		c.Capture.Enabled = enabled
	}
	if v, ok := lookup("QUILL_CAPTURE_DEVICE"); ok && v != "" {
		c.Capture.Device = v
	}
	if v, ok := lookup("QUILL_PROMPTS_DIR"); ok && v != "" {
		c.Prompts.Dir = v
	}
	if v, ok := lookup("QUILL_LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup("QUILL_LOG_FILE"); ok && v != "" {
		c.Log.File = v
	}
	return nil
}

func (c Config) Validate() error {
	s := c.Session
	if s.Duration.Duration < time.Second {
		return fmt.Errorf("session duration must be at least 1s, got %s", s.Duration.Duration)
	}
	if s.Tick.Duration <= 0 || s.Tick.Duration >= s.Duration.Duration {
		return fmt.Errorf("tick must be positive and shorter than the session, got %s", s.Tick.Duration)
	}
	if s.SoftTarget <= 0 {
		return fmt.Errorf("soft target must be positive, got %d", s.SoftTarget)
	}
	if s.HardCap <= s.SoftTarget {
		return fmt.Errorf("hard cap (%d) must exceed soft target (%d)", s.HardCap, s.SoftTarget)
	}
	if c.Capture.Enabled && strings.TrimSpace(c.Capture.Device) == "" {
		return fmt.Errorf("capture device is required when capture is enabled")
	}
	return nil
}
