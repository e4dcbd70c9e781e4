package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Backend: BackendConfig{BaseURL: "http://localhost:8080/api", Timeout: 30 * time.Second},
		Poll: PollConfig{
			Interval:        2 * time.Second,
			Jitter:          30 * time.Millisecond,
			HistoryInterval: 5 * time.Second,
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "no jitter", mutate: func(c *Config) { c.Poll.Jitter = 0 }},
		{name: "failure limit", mutate: func(c *Config) { c.Poll.MaxConsecutiveFailures = 5 }},
		{
			name:    "relative base url",
			mutate:  func(c *Config) { c.Backend.BaseURL = "localhost:8080/api" },
			wantErr: "FORMFLOW_API_BASE_URL",
		},
		{
			name:    "unparsable base url",
			mutate:  func(c *Config) { c.Backend.BaseURL = "http://[::1" },
			wantErr: "FORMFLOW_API_BASE_URL",
		},
		{
			name:    "zero poll interval",
			mutate:  func(c *Config) { c.Poll.Interval = 0 },
			wantErr: "FORMFLOW_POLL_INTERVAL",
		},
		{
			name:    "jitter equal to interval",
			mutate:  func(c *Config) { c.Poll.Jitter = c.Poll.Interval },
			wantErr: "FORMFLOW_POLL_JITTER",
		},
		{
			name:    "jitter above interval",
			mutate:  func(c *Config) { c.Poll.Jitter = 3 * time.Second },
			wantErr: "FORMFLOW_POLL_JITTER",
		},
		{
			name:    "negative jitter",
			mutate:  func(c *Config) { c.Poll.Jitter = -time.Millisecond },
			wantErr: "FORMFLOW_POLL_JITTER",
		},
		{
			name:    "zero history interval",
			mutate:  func(c *Config) { c.Poll.HistoryInterval = 0 },
			wantErr: "FORMFLOW_HISTORY_INTERVAL",
		},
		{
			name:    "negative failure limit",
			mutate:  func(c *Config) { c.Poll.MaxConsecutiveFailures = -1 },
			wantErr: "FORMFLOW_POLL_MAX_FAILURES",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
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

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api", cfg.Backend.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Poll.Interval)
	assert.Equal(t, 0, cfg.Poll.MaxConsecutiveFailures)
}

func TestLoad_RejectsJitterAboveInterval(t *testing.T) {
	t.Setenv("FORMFLOW_POLL_INTERVAL", "100ms")
	t.Setenv("FORMFLOW_POLL_JITTER", "200ms")

	_, err := Load()
	assert.Error(t, err)
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, LogConfig{Level: "INFO"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, LogConfig{Level: "warning"}.SlogLevel())
	assert.Equal(t, slog.LevelError, LogConfig{Level: "error"}.SlogLevel())
	assert.Equal(t, slog.LevelDebug, LogConfig{Level: "verbose"}.SlogLevel())
}
