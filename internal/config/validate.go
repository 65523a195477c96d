package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *IngestorConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if err := c.Database.validate("database"); err != nil {
		return err
	}

	if c.Poller.PageSize < 1 {
		return errors.New("poller.page_size must be >= 1")
	}
	if c.Poller.Interval <= 0 {
		return errors.New("poller.interval must be positive")
	}

	if c.Listener.ConnectAttempts < 1 {
		return errors.New("listener.connect_attempts must be >= 1")
	}
	if c.Listener.ConnectBaseDelay > c.Listener.ConnectMaxDelay {
		return fmt.Errorf("listener.connect_base_delay (%v) cannot exceed connect_max_delay (%v)",
			c.Listener.ConnectBaseDelay, c.Listener.ConnectMaxDelay)
	}
	if c.Listener.MessageBufferSize < 1 {
		return errors.New("listener.message_buffer_size must be >= 1")
	}

	if c.GapFill.MaxPerCycle < 1 {
		return errors.New("gapfill.max_per_cycle must be >= 1")
	}

	if c.Health.Port < 1 || c.Health.Port > 65535 {
		return fmt.Errorf("health.port must be between 1 and 65535, got %d", c.Health.Port)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
