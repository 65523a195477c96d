package config

import "time"

// IngestorConfig is the root configuration for an ingestor instance.
type IngestorConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	API      APIConfig      `yaml:"api"`
	Database DBConfig       `yaml:"database"`
	Poller   PollerConfig   `yaml:"poller"`
	Listener ListenerConfig `yaml:"listener"`
	GapFill  GapFillConfig  `yaml:"gapfill"`
	Health   HealthConfig   `yaml:"health"`
}

// InstanceConfig identifies this ingestor.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// APIConfig holds Kalshi API settings.
type APIConfig struct {
	RestURL      string        `yaml:"rest_url"`
	WSURL        string        `yaml:"ws_url"`
	APIKey       string        `yaml:"api_key"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// DBConfig holds the PostgreSQL connection for snapshot storage.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// PollerConfig holds REST polling loop settings.
type PollerConfig struct {
	Interval time.Duration `yaml:"interval"`
	PageSize int           `yaml:"page_size"`
	Timeout  time.Duration `yaml:"timeout"`
}

// ListenerConfig holds push listener settings.
type ListenerConfig struct {
	ConnectAttempts   int           `yaml:"connect_attempts"`
	ConnectBaseDelay  time.Duration `yaml:"connect_base_delay"`
	ConnectMaxDelay   time.Duration `yaml:"connect_max_delay"`
	ReconnectWait     time.Duration `yaml:"reconnect_wait"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	PingTimeout       time.Duration `yaml:"ping_timeout"`
	MessageBufferSize int           `yaml:"message_buffer_size"`
}

// GapFillConfig holds gap detection and backfill sweep settings.
//
// Sequence numbers are treated as one monotonic timeline per ticker for the
// lifetime of the ticker, across reconnects. A feed-side counter reset shows
// up as duplicate appends (ignored) or one wide gap report, and MaxPerCycle
// bounds the work a wide report can cause.
type GapFillConfig struct {
	SweepSchedule string `yaml:"sweep_schedule"` // cron spec with seconds field
	MaxPerCycle   int    `yaml:"max_per_cycle"`
}

// HealthConfig holds the health endpoint settings.
type HealthConfig struct {
	Port int `yaml:"port"`
}
