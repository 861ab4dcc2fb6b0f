// Package config loads transactor settings from TOML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

var ErrInvalid = errors.New("invalid config")

const (
	defaultSessionTimeout = time.Second
	defaultBufferCapacity = 30
	defaultMailboxSize    = 1000
)

type Config struct {
	SessionTimeout time.Duration
	BufferCapacity int
	MailboxSize    int
	Log            LogConfig
}

type LogConfig struct {
	Level     string `toml:"level"`
	NoColor   bool   `toml:"no_color"`
	Timestamp bool   `toml:"timestamp"`
}

// file mirrors the TOML layout. Pointers distinguish an absent key from an
// explicit zero, which is a legal buffer capacity.
type file struct {
	SessionTimeout string     `toml:"session_timeout"`
	BufferCapacity *int       `toml:"buffer_capacity"`
	MailboxSize    *int       `toml:"mailbox_size"`
	Log            *LogConfig `toml:"log"`
}

func Default() Config {
	return Config{
		SessionTimeout: defaultSessionTimeout,
		BufferCapacity: defaultBufferCapacity,
		MailboxSize:    defaultMailboxSize,
		Log:            LogConfig{Level: "info", Timestamp: true},
	}
}

func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Parse(data []byte) (Config, error) {
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return Config{}, fmt.Errorf("config parse failed: %w", err)
	}

	cfg := Default()
	if s := strings.TrimSpace(f.SessionTimeout); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return Config{}, fmt.Errorf("%w: session_timeout %q: %v", ErrInvalid, s, err)
		}
		cfg.SessionTimeout = d
	}
	if f.BufferCapacity != nil {
		cfg.BufferCapacity = *f.BufferCapacity
	}
	if f.MailboxSize != nil {
		cfg.MailboxSize = *f.MailboxSize
	}
	if f.Log != nil {
		cfg.Log = *f.Log
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if cfg.SessionTimeout <= 0 {
		return fmt.Errorf("%w: session_timeout must be positive", ErrInvalid)
	}
	if cfg.BufferCapacity < 0 {
		return fmt.Errorf("%w: buffer_capacity must not be negative", ErrInvalid)
	}
	if cfg.MailboxSize < 1 {
		return fmt.Errorf("%w: mailbox_size must be at least 1", ErrInvalid)
	}
	return nil
}
