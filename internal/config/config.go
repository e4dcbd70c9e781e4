package config

import (
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the deploy-time settings. Fixed limits live in the constants above.
type Config struct {
	Backend BackendConfig
	Poll    PollConfig
	Server  ServerConfig
	Redis   RedisConfig
	Log     LogConfig
}

type BackendConfig struct {
	BaseURL string        `envconfig:"FORMFLOW_API_BASE_URL" default:"http://localhost:8080/api"`
	Timeout time.Duration `envconfig:"FORMFLOW_API_TIMEOUT" default:"30s"`
}

type PollConfig struct {
	Interval        time.Duration `envconfig:"FORMFLOW_POLL_INTERVAL" default:"2s"`
	Jitter          time.Duration `envconfig:"FORMFLOW_POLL_JITTER" default:"30ms"`
	HistoryInterval time.Duration `envconfig:"FORMFLOW_HISTORY_INTERVAL" default:"5s"`
	// 0 keeps polling forever, which is what the backend contract expects today.
	MaxConsecutiveFailures int  `envconfig:"FORMFLOW_POLL_MAX_FAILURES" default:"0"`
	FailOnClientError      bool `envconfig:"FORMFLOW_POLL_FAIL_ON_4XX" default:"false"`
}

type ServerConfig struct {
	ListenAddr string `envconfig:"FORMFLOW_LISTEN_ADDR" default:":3000"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	// when false the service runs on in-memory stores only
	Enabled bool `envconfig:"REDIS_ENABLED" default:"true"`
}

type LogConfig struct {
	Level string `envconfig:"FORMFLOW_LOG_LEVEL" default:"debug"`
	JSON  bool   `envconfig:"FORMFLOW_LOG_JSON" default:"false"`
}

func Load() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("FORMFLOW_API_BASE_URL must be an absolute url")
	}
	if c.Poll.Interval <= 0 {
		return errors.New("FORMFLOW_POLL_INTERVAL must be positive")
	}
	if c.Poll.Jitter < 0 || c.Poll.Jitter >= c.Poll.Interval {
		return errors.New("FORMFLOW_POLL_JITTER must be at least zero and below FORMFLOW_POLL_INTERVAL")
	}
	if c.Poll.HistoryInterval <= 0 {
		return errors.New("FORMFLOW_HISTORY_INTERVAL must be positive")
	}
	if c.Poll.MaxConsecutiveFailures < 0 {
		return errors.New("FORMFLOW_POLL_MAX_FAILURES cannot be negative")
	}
	return nil
}

func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
