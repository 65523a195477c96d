package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultRestURL          = "https://api.elections.kalshi.com/trade-api/v2"
	DefaultWSURL            = "wss://api.elections.kalshi.com/trade-api/ws/v2"
	DefaultAPITimeout       = 30 * time.Second
	DefaultMaxRetries       = 3
	DefaultRetryBackoff     = 1 * time.Second
	DefaultDBPort           = 5432
	DefaultDBSSLMode        = "prefer"
	DefaultMaxConns         = 10
	DefaultMinConns         = 2
	DefaultPollInterval     = 5 * time.Second
	DefaultPollPageSize     = 100
	DefaultPollTimeout      = 10 * time.Second
	DefaultConnectAttempts  = 5
	DefaultConnectBaseDelay = 2 * time.Second
	DefaultConnectMaxDelay  = 30 * time.Second
	DefaultReconnectWait    = 5 * time.Second
	DefaultWriteTimeout     = 5 * time.Second
	DefaultPingTimeout      = 60 * time.Second
	DefaultMessageBuffer    = 1000
	DefaultSweepSchedule    = "0 */5 * * * *" // every 5 minutes
	DefaultMaxPerCycle      = 100
	DefaultHealthPort       = 8080
)

func (c *IngestorConfig) applyDefaults() {
	// API defaults
	if c.API.RestURL == "" {
		c.API.RestURL = DefaultRestURL
	}
	if c.API.WSURL == "" {
		c.API.WSURL = DefaultWSURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}
	if c.API.RetryBackoff == 0 {
		c.API.RetryBackoff = DefaultRetryBackoff
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Poller defaults
	if c.Poller.Interval == 0 {
		c.Poller.Interval = DefaultPollInterval
	}
	if c.Poller.PageSize == 0 {
		c.Poller.PageSize = DefaultPollPageSize
	}
	if c.Poller.Timeout == 0 {
		c.Poller.Timeout = DefaultPollTimeout
	}

	// Listener defaults
	if c.Listener.ConnectAttempts == 0 {
		c.Listener.ConnectAttempts = DefaultConnectAttempts
	}
	if c.Listener.ConnectBaseDelay == 0 {
		c.Listener.ConnectBaseDelay = DefaultConnectBaseDelay
	}
	if c.Listener.ConnectMaxDelay == 0 {
		c.Listener.ConnectMaxDelay = DefaultConnectMaxDelay
	}
	if c.Listener.ReconnectWait == 0 {
		c.Listener.ReconnectWait = DefaultReconnectWait
	}
	if c.Listener.WriteTimeout == 0 {
		c.Listener.WriteTimeout = DefaultWriteTimeout
	}
	if c.Listener.PingTimeout == 0 {
		c.Listener.PingTimeout = DefaultPingTimeout
	}
	if c.Listener.MessageBufferSize == 0 {
		c.Listener.MessageBufferSize = DefaultMessageBuffer
	}

	// Gap fill defaults
	if c.GapFill.SweepSchedule == "" {
		c.GapFill.SweepSchedule = DefaultSweepSchedule
	}
	if c.GapFill.MaxPerCycle == 0 {
		c.GapFill.MaxPerCycle = DefaultMaxPerCycle
	}

	// Health defaults
	if c.Health.Port == 0 {
		c.Health.Port = DefaultHealthPort
	}
}
