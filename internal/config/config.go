package config

import (
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"
)

// Config is the root configuration for a tracker instance.
type Config struct {
	Exchange ExchangeConfig `yaml:"exchange"`
	Refresh  RefreshConfig  `yaml:"refresh"`
	Server   ServerConfig   `yaml:"server"`
	Stream   StreamConfig   `yaml:"stream"`
	Log      LogConfig      `yaml:"log"`
}

// ExchangeConfig holds CoinDCX API settings.
type ExchangeConfig struct {
	RestURL    string         `yaml:"rest_url"`    // Market details + ticker host
	PublicURL  string         `yaml:"public_url"`  // Order book host
	Timeout    time.Duration  `yaml:"timeout"`
	MaxRetries *int           `yaml:"max_retries"` // nil means the default; 0 disables retries
	RetryDelay *time.Duration `yaml:"retry_delay"` // nil means the default

	// Client-side throttle; 0 disables it.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Retries returns the configured retry count, or the default when unset.
func (e ExchangeConfig) Retries() int {
	if e.MaxRetries == nil {
		return DefaultMaxRetries
	}
	return *e.MaxRetries
}

// RetryInterval returns the configured retry delay, or the default when unset.
func (e ExchangeConfig) RetryInterval() time.Duration {
	if e.RetryDelay == nil {
		return DefaultRetryDelay
	}
	return *e.RetryDelay
}

// RefreshConfig holds refresh engine settings.
type RefreshConfig struct {
	Interval         time.Duration `yaml:"interval"`
	OrderbookTimeout time.Duration `yaml:"orderbook_timeout"`
	ExcludeMarkets   []string      `yaml:"exclude_markets"` // nil means the default list
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Mode            string        `yaml:"mode"` // gin mode: debug, release, test
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// StreamConfig holds websocket push stream settings.
type StreamConfig struct {
	Enabled        *bool         `yaml:"enabled"` // nil means enabled
	BufferSize     int           `yaml:"buffer_size"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	PingInterval   time.Duration `yaml:"ping_interval"`
	PongTimeout    time.Duration `yaml:"pong_timeout"`
	MaxSubscribers int           `yaml:"max_subscribers"`
}

// IsEnabled reports whether /stream should be served.
func (s StreamConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// SlogLevel maps Level onto a slog.Level. Unknown values map to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
