// Package config loads quizplay settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Site SiteConfig
	Log  LogConfig

	// DBPath is the journal database file. Empty selects the XDG default.
	DBPath string

	// FocusDelay is the wait before scrolling a requested question into view.
	FocusDelay time.Duration
}

// SiteConfig configures the remote quiz service.
type SiteConfig struct {
	URL   string
	Token string

	// Timeout bounds a single request. Default: 30s.
	Timeout time.Duration

	// RetryMax is the number of extra tries for read-only calls. Default: 2.
	RetryMax int
}

// LogConfig configures the zerolog sink.
type LogConfig struct {
	Level  string // trace, debug, info, warn, error
	Format string // "json" or "pretty"

	// File receives logs while the TUI owns the terminal.
	File string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Site: SiteConfig{
			Timeout:  30 * time.Second,
			RetryMax: 2,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			File:   defaultLogFile(),
		},
		FocusDelay: 2 * time.Second,
	}
}

// Load reads a .env file if present, then the environment.
func Load() Config {
	_ = godotenv.Load() // .env is optional
	return FromEnv()
}

// FromEnv builds a Config from environment variables, falling back to
// defaults for unset values.
func FromEnv() Config {
	cfg := DefaultConfig()

	cfg.Site.URL = getEnv("QUIZPLAY_SITE_URL", cfg.Site.URL)
	cfg.Site.Token = getEnv("QUIZPLAY_TOKEN", cfg.Site.Token)
	cfg.Site.Timeout = getEnvDuration("QUIZPLAY_TIMEOUT", cfg.Site.Timeout)
	cfg.Site.RetryMax = getEnvInt("QUIZPLAY_RETRY_MAX", cfg.Site.RetryMax)

	cfg.Log.Level = getEnv("QUIZPLAY_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("QUIZPLAY_LOG_FORMAT", cfg.Log.Format)
	cfg.Log.File = getEnv("QUIZPLAY_LOG_FILE", cfg.Log.File)

	cfg.DBPath = getEnv("QUIZPLAY_DB", cfg.DBPath)
	cfg.FocusDelay = getEnvDuration("QUIZPLAY_FOCUS_DELAY", cfg.FocusDelay)

	return cfg
}

// Validate checks settings needed to reach a live site. Demo mode skips it.
func (c Config) Validate() error {
	if c.Site.URL == "" {
		return fmt.Errorf("QUIZPLAY_SITE_URL is required (or use --demo)")
	}
	u, err := url.Parse(c.Site.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("QUIZPLAY_SITE_URL %q is not an absolute URL", c.Site.URL)
	}
	if c.Site.Token == "" {
		return fmt.Errorf("QUIZPLAY_TOKEN is required for %s", u.Host)
	}
	if c.Site.Timeout <= 0 {
		return fmt.Errorf("QUIZPLAY_TIMEOUT must be positive")
	}
	if c.Site.RetryMax < 0 {
		return fmt.Errorf("QUIZPLAY_RETRY_MAX must not be negative")
	}
	return nil
}

func defaultLogFile() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "quizplay", "quizplay.log")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "quizplay.log"
	}
	return filepath.Join(home, ".local", "state", "quizplay", "quizplay.log")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// getEnvDuration accepts Go durations ("45s") or plain seconds ("45").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
