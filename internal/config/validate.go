package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if err := validateURL("exchange.rest_url", c.Exchange.RestURL); err != nil {
		return err
	}
	if err := validateURL("exchange.public_url", c.Exchange.PublicURL); err != nil {
		return err
	}
	if c.Exchange.Timeout <= 0 {
		return errors.New("exchange.timeout must be > 0")
	}
	if c.Exchange.Retries() < 0 {
		return errors.New("exchange.max_retries must be >= 0")
	}
	if c.Exchange.RetryInterval() < 0 {
		return errors.New("exchange.retry_delay must be >= 0")
	}
	if c.Exchange.RequestsPerSecond < 0 {
		return errors.New("exchange.requests_per_second must be >= 0")
	}
	if c.Exchange.RequestsPerSecond > 0 && c.Exchange.Burst < 1 {
		return errors.New("exchange.burst must be >= 1")
	}

	if c.Refresh.Interval <= 0 {
		return errors.New("refresh.interval must be > 0")
	}
	if c.Refresh.OrderbookTimeout <= 0 {
		return errors.New("refresh.orderbook_timeout must be > 0")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be one of debug, release, test, got %q", c.Server.Mode)
	}

	if c.Stream.BufferSize < 1 {
		return errors.New("stream.buffer_size must be >= 1")
	}
	if c.Stream.MaxSubscribers < 0 {
		return errors.New("stream.max_subscribers must be >= 0")
	}
	if c.Stream.PongTimeout <= c.Stream.PingInterval {
		return fmt.Errorf("stream.pong_timeout (%s) must exceed ping_interval (%s)", c.Stream.PongTimeout, c.Stream.PingInterval)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	return nil
}

func validateURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http or https URL, got %q", field, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s has no host", field)
	}
	return nil
}
