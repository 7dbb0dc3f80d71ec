package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultRestURL          = "https://api.coindcx.com"
	DefaultPublicURL        = "https://public.coindcx.com"
	DefaultAPITimeout       = 10 * time.Second
	DefaultMaxRetries       = 3
	DefaultRetryDelay       = 1 * time.Second
	DefaultBurst            = 1
	DefaultRefreshInterval  = 5 * time.Second
	DefaultOrderbookTimeout = 10 * time.Second
	DefaultHost             = "localhost"
	DefaultPort             = 8080
	DefaultServerMode       = "release"
	DefaultReadTimeout      = 10 * time.Second
	DefaultWriteTimeout     = 30 * time.Second
	DefaultShutdownTimeout  = 10 * time.Second
	DefaultStreamBufferSize = 16
	DefaultStreamWrite      = 5 * time.Second
	DefaultPingInterval     = 30 * time.Second
	DefaultPongTimeout      = 60 * time.Second
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
)

// DefaultExcludeMarkets are tickers dropped from every refresh. BTCINR_insta
// is an insta-settlement variant whose ticker duplicates BTCINR.
var DefaultExcludeMarkets = []string{"BTCINR_insta"}

func (c *Config) applyDefaults() {
	// Exchange defaults
	if c.Exchange.RestURL == "" {
		c.Exchange.RestURL = DefaultRestURL
	}
	if c.Exchange.PublicURL == "" {
		c.Exchange.PublicURL = DefaultPublicURL
	}
	if c.Exchange.Timeout == 0 {
		c.Exchange.Timeout = DefaultAPITimeout
	}
	if c.Exchange.MaxRetries == nil {
		retries := DefaultMaxRetries
		c.Exchange.MaxRetries = &retries
	}
	if c.Exchange.RetryDelay == nil {
		delay := DefaultRetryDelay
		c.Exchange.RetryDelay = &delay
	}
	if c.Exchange.RequestsPerSecond > 0 && c.Exchange.Burst == 0 {
		c.Exchange.Burst = DefaultBurst
	}

	// Refresh defaults
	if c.Refresh.Interval == 0 {
		c.Refresh.Interval = DefaultRefreshInterval
	}
	if c.Refresh.OrderbookTimeout == 0 {
		c.Refresh.OrderbookTimeout = DefaultOrderbookTimeout
	}
	if c.Refresh.ExcludeMarkets == nil {
		c.Refresh.ExcludeMarkets = append([]string(nil), DefaultExcludeMarkets...)
	}

	// Server defaults
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.Mode == "" {
		c.Server.Mode = DefaultServerMode
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Stream defaults
	if c.Stream.BufferSize == 0 {
		c.Stream.BufferSize = DefaultStreamBufferSize
	}
	if c.Stream.WriteTimeout == 0 {
		c.Stream.WriteTimeout = DefaultStreamWrite
	}
	if c.Stream.PingInterval == 0 {
		c.Stream.PingInterval = DefaultPingInterval
	}
	if c.Stream.PongTimeout == 0 {
		c.Stream.PongTimeout = DefaultPongTimeout
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}
