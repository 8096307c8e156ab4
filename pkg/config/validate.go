package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"strings"

	"github.com/smartcfg/smartcfg-go/pkg/credential"
	"github.com/smartcfg/smartcfg-go/pkg/uplink"
)

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.Device.Name == "" {
		return invalid("device.name is required")
	}

	if err := c.validateIntake(); err != nil {
		return err
	}
	if err := c.validateJoin(); err != nil {
		return err
	}
	if err := c.validateUplink(); err != nil {
		return err
	}

	if c.Station.Addr != "" {
		if _, err := netip.ParseAddr(c.Station.Addr); err != nil {
			return invalid("station.addr: %v", err)
		}
	}

	if c.Provision.IdleTimeout <= 0 {
		return invalid("provision.idle_timeout must be positive")
	}
	if c.Provision.CheckInterval <= 0 {
		return invalid("provision.check_interval must be positive")
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level: %v", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return invalid("log.format %q (supported: text, json)", c.Log.Format)
	}

	if c.Metrics.Listen != "" {
		if _, _, err := net.SplitHostPort(c.Metrics.Listen); err != nil {
			return invalid("metrics.listen: %v", err)
		}
	}

	return nil
}

func (c *Config) validateIntake() error {
	if _, err := credential.ParseIntegrityMode(c.Intake.Integrity); err != nil {
		return invalid("intake.integrity: %v", err)
	}
	if len(c.Intake.Key) == 0 {
		return invalid("intake.key must not be empty")
	}
	for i, v := range c.Intake.Key {
		if v < 0 || v > 255 {
			return invalid("intake.key[%d] = %d is not a byte", i, v)
		}
	}
	if c.Intake.Listen != "" {
		if _, _, err := net.SplitHostPort(c.Intake.Listen); err != nil {
			return invalid("intake.listen: %v", err)
		}
	}
	if c.Intake.ClientIdleTimeout < 0 {
		return invalid("intake.client_idle_timeout must not be negative")
	}
	return nil
}

func (c *Config) validateJoin() error {
	if c.Join.Timeout <= 0 {
		return invalid("join.timeout must be positive")
	}
	if c.Join.PollInterval <= 0 {
		return invalid("join.poll_interval must be positive")
	}
	if c.Join.PollInterval > c.Join.Timeout {
		return invalid("join.poll_interval %v exceeds join.timeout %v", c.Join.PollInterval, c.Join.Timeout)
	}
	if c.Join.MaxReprompts < 0 {
		return invalid("join.max_reprompts must not be negative")
	}
	return nil
}

func (c *Config) validateUplink() error {
	if c.Uplink.Server == "" {
		return invalid("uplink.server is required")
	}
	if c.Uplink.Port <= 0 || c.Uplink.Port > 65535 {
		return invalid("uplink.port %d out of range", c.Uplink.Port)
	}
	if c.Uplink.Topic == "" {
		return invalid("uplink.topic is required")
	}
	if c.Uplink.RetryInterval <= 0 {
		return invalid("uplink.retry_interval must be positive")
	}
	if c.Uplink.MaxAttempts < 0 {
		return invalid("uplink.max_attempts must not be negative")
	}
	if _, err := uplink.ParseFormat(c.Uplink.Format); err != nil {
		return invalid("uplink.format: %v", err)
	}
	if c.Uplink.QoS < 0 || c.Uplink.QoS > 2 {
		return invalid("uplink.qos %d out of range", c.Uplink.QoS)
	}
	return nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown level %q", s)
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
