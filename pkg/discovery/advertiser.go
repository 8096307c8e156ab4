package discovery

import (
	"context"
	"log/slog"
	"time"
)

// Advertiser provides mDNS service advertising capabilities.
type Advertiser interface {
	// AdvertiseIntake starts advertising the intake service. An existing
	// advertisement is replaced.
	AdvertiseIntake(ctx context.Context, info *IntakeInfo) error

	// StopIntake stops advertising the intake service.
	StopIntake() error
}

// AdvertiserConfig configures advertiser behavior.
type AdvertiserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// TTL is the DNS record TTL.
	// Default: 120 seconds.
	TTL time.Duration

	// Logger receives registration messages. Nil disables logging.
	Logger *slog.Logger
}

// DefaultAdvertiserConfig returns the default advertiser configuration.
func DefaultAdvertiserConfig() AdvertiserConfig {
	return AdvertiserConfig{
		Interface: "",
		TTL:       DefaultTTL,
	}
}
