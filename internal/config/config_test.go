package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"QUIZPLAY_SITE_URL", "QUIZPLAY_TOKEN", "QUIZPLAY_TIMEOUT", "QUIZPLAY_RETRY_MAX", "QUIZPLAY_FOCUS_DELAY"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()
	assert.Equal(t, 30*time.Second, cfg.Site.Timeout)
	assert.Equal(t, 2, cfg.Site.RetryMax)
	assert.Equal(t, 2*time.Second, cfg.FocusDelay)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("QUIZPLAY_SITE_URL", "https://moodle.example.edu")
	t.Setenv("QUIZPLAY_TOKEN", "abc")
	t.Setenv("QUIZPLAY_TIMEOUT", "45")
	t.Setenv("QUIZPLAY_RETRY_MAX", "5")
	t.Setenv("QUIZPLAY_FOCUS_DELAY", "500ms")
	t.Setenv("QUIZPLAY_LOG_FORMAT", "pretty")
	t.Setenv("QUIZPLAY_DB", "/tmp/q.db")

	cfg := FromEnv()
	assert.Equal(t, "https://moodle.example.edu", cfg.Site.URL)
	assert.Equal(t, "abc", cfg.Site.Token)
	assert.Equal(t, 45*time.Second, cfg.Site.Timeout)
	assert.Equal(t, 5, cfg.Site.RetryMax)
	assert.Equal(t, 500*time.Millisecond, cfg.FocusDelay)
	assert.Equal(t, "pretty", cfg.Log.Format)
	assert.Equal(t, "/tmp/q.db", cfg.DBPath)
	require.NoError(t, cfg.Validate())
}

func TestFromEnv_BadNumbersFallBack(t *testing.T) {
	t.Setenv("QUIZPLAY_RETRY_MAX", "many")
	t.Setenv("QUIZPLAY_TIMEOUT", "soon")
	cfg := FromEnv()
	assert.Equal(t, 2, cfg.Site.RetryMax)
	assert.Equal(t, 30*time.Second, cfg.Site.Timeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing url", func(c *Config) {}, "QUIZPLAY_SITE_URL is required"},
		{"relative url", func(c *Config) { c.Site.URL = "moodle"; c.Site.Token = "t" }, "not an absolute URL"},
		{"missing token", func(c *Config) { c.Site.URL = "https://m.example" }, "QUIZPLAY_TOKEN is required"},
		{"bad timeout", func(c *Config) { c.Site.URL = "https://m.example"; c.Site.Token = "t"; c.Site.Timeout = 0 }, "QUIZPLAY_TIMEOUT"},
		{"ok", func(c *Config) { c.Site.URL = "https://m.example"; c.Site.Token = "t" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
