// Package config loads the device configuration from YAML.
//
// Load starts from Default and overlays the file, so a file only needs the
// keys it changes. Unknown keys are rejected.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete device configuration.
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	Intake    IntakeConfig    `yaml:"intake"`
	Join      JoinConfig      `yaml:"join"`
	Station   StationConfig   `yaml:"station"`
	Uplink    UplinkConfig    `yaml:"uplink"`
	Provision ProvisionConfig `yaml:"provision"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// DeviceConfig identifies the device.
type DeviceConfig struct {
	Name string `yaml:"name"`
	ID   string `yaml:"id"`
}

// IntakeConfig configures the short-range intake.
type IntakeConfig struct {
	// Listen is the LAN intake address. Empty disables the TCP server.
	Listen string `yaml:"listen"`

	// Integrity is "trailer" or "legacy".
	Integrity string `yaml:"integrity"`

	// Key is the obfuscation key.
	Key []int `yaml:"key"`

	// Advertise announces the intake over mDNS.
	Advertise bool `yaml:"advertise"`

	// Interface restricts mDNS to one interface. Empty means all.
	Interface string `yaml:"interface"`

	// ClientIdleTimeout drops a silent client. Zero disables.
	ClientIdleTimeout time.Duration `yaml:"client_idle_timeout"`
}

// JoinConfig configures the network join orchestrator.
type JoinConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	PollInterval time.Duration `yaml:"poll_interval"`

	// MaxReprompts bounds the re-prompt loop. Zero means unbounded.
	MaxReprompts int `yaml:"max_reprompts"`
}

// StationConfig configures the simulated station.
type StationConfig struct {
	JoinDelay time.Duration `yaml:"join_delay"`

	// Networks restricts joins to these name/secret pairs. Empty accepts any.
	Networks map[string]string `yaml:"networks"`

	// Addr is the address assigned on association.
	Addr string `yaml:"addr"`
}

// UplinkConfig configures the broker reporter.
type UplinkConfig struct {
	Server         string        `yaml:"server"`
	Port           int           `yaml:"port"`
	Topic          string        `yaml:"topic"`
	ClientIDPrefix string        `yaml:"client_id_prefix"`
	RetryInterval  time.Duration `yaml:"retry_interval"`

	// MaxAttempts bounds connection attempts. Zero means unbounded.
	MaxAttempts int `yaml:"max_attempts"`

	// Format is "text" or "json".
	Format   string `yaml:"format"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	QoS      int    `yaml:"qos"`
}

// ProvisionConfig configures the provisioning controller.
type ProvisionConfig struct {
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	CheckInterval time.Duration `yaml:"check_interval"`
}

// LogConfig configures operational logging and the protocol trace.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`

	// File enables rotated file logging in addition to stderr.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`

	// Trace enables the CBOR protocol trace at this path.
	Trace string `yaml:"trace"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Listen is the HTTP address. Empty disables the endpoint.
	Listen string `yaml:"listen"`
	Path   string `yaml:"path"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			Name: "SmartConfig",
		},
		Intake: IntakeConfig{
			Listen:    ":5050",
			Integrity: "trailer",
			Key:       []int{0x01, 0x02, 0x03},
			Advertise: true,
		},
		Join: JoinConfig{
			Timeout:      15 * time.Second,
			PollInterval: time.Second,
		},
		Station: StationConfig{
			JoinDelay: 500 * time.Millisecond,
			Addr:      "192.168.1.50",
		},
		Uplink: UplinkConfig{
			Server:         "localhost",
			Port:           1883,
			Topic:          "smartconfig",
			ClientIDPrefix: "SmartConfigClient-",
			RetryInterval:  5 * time.Second,
			Format:         "text",
		},
		Provision: ProvisionConfig{
			IdleTimeout:   5 * time.Minute,
			CheckInterval: time.Second,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Metrics: MetricsConfig{
			Path: "/metrics",
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// KeyBytes returns the obfuscation key as bytes. Call after Validate.
func (c *Config) KeyBytes() []byte {
	key := make([]byte, len(c.Intake.Key))
	for i, v := range c.Intake.Key {
		key[i] = byte(v)
	}
	return key
}
