package discovery

import (
	"context"
	"time"
)

// Browser provides mDNS service browsing capabilities.
type Browser interface {
	// BrowseIntake searches for devices accepting credentials.
	// The channel is closed when the context is cancelled.
	BrowseIntake(ctx context.Context) (<-chan *IntakeService, error)

	// FindByDeviceID searches for a specific device.
	// Returns when found or when the context is cancelled or the browse
	// timeout expires.
	FindByDeviceID(ctx context.Context, deviceID string) (*IntakeService, error)

	// Stop stops all active browsing operations.
	Stop()
}

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// BrowseTimeout is the default timeout for browse operations.
	// Default: 10 seconds.
	BrowseTimeout time.Duration

	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		BrowseTimeout: BrowseTimeout,
		Interface:     "",
	}
}

// ServiceEntry is a resolved DNS-SD entry, independent of the mDNS library.
type ServiceEntry struct {
	Instance string
	Service  string
	Domain   string
	Host     string
	Port     uint16
	Text     []string
	Addrs    []string
}

// ToIntakeService converts a ServiceEntry to IntakeService.
func (e *ServiceEntry) ToIntakeService() (*IntakeService, error) {
	info, err := DecodeIntakeTXT(StringsToTXTRecords(e.Text))
	if err != nil {
		return nil, err
	}

	return &IntakeService{
		InstanceName:  e.Instance,
		Host:          e.Host,
		Port:          e.Port,
		Addresses:     append([]string(nil), e.Addrs...),
		DeviceName:    info.DeviceName,
		DeviceID:      info.DeviceID,
		IntegrityMode: info.IntegrityMode,
		Version:       info.Version,
	}, nil
}
