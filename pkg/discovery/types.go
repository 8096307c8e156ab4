package discovery

import (
	"errors"
	"time"
)

// Service type constants for mDNS.
const (
	// ServiceTypeIntake is the service type for devices accepting credentials.
	ServiceTypeIntake = "_smartcfg._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is the default intake port.
	DefaultPort = 5050
)

// TXT record key constants.
const (
	TXTKeyDeviceName    = "DN"  // Device name
	TXTKeyDeviceID      = "ID"  // Device id
	TXTKeyIntegrityMode = "IM"  // Integrity mode (trailer, legacy)
	TXTKeyVersion       = "VER" // Wire version (major.minor)
)

// Timing constants.
const (
	// BrowseTimeout is the default timeout for mDNS browsing.
	BrowseTimeout = 10 * time.Second

	// DefaultTTL is the default DNS record TTL.
	DefaultTTL = 120 * time.Second
)

// Limits.
const (
	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63

	// MaxTXTRecordSize is the maximum total TXT record size.
	MaxTXTRecordSize = 400
)

// Discovery errors.
var (
	ErrInvalidTXTRecord    = errors.New("invalid TXT record format")
	ErrMissingRequired     = errors.New("missing required field")
	ErrInstanceNameTooLong = errors.New("instance name exceeds 63 characters")
	ErrNotFound            = errors.New("service not found")
	ErrBrowseTimeout       = errors.New("browse timeout")
)

// IntakeInfo contains the information advertised by a device.
type IntakeInfo struct {
	// DeviceName is the human readable device name.
	DeviceName string

	// DeviceID distinguishes devices sharing a name.
	DeviceID string

	// IntegrityMode is the payload integrity mode the device expects.
	IntegrityMode string

	// Version is the wire version the device accepts.
	Version string

	// Port is the intake port. Zero means DefaultPort.
	Port uint16
}

// InstanceName returns the DNS-SD instance name, truncated to the label limit.
func (i *IntakeInfo) InstanceName() string {
	name := i.DeviceName
	if i.DeviceID != "" {
		name += "-" + i.DeviceID
	}
	if len(name) > MaxInstanceNameLen {
		name = name[:MaxInstanceNameLen]
	}
	return name
}

// IntakeService is a discovered intake service.
type IntakeService struct {
	InstanceName  string
	Host          string
	Port          uint16
	Addresses     []string
	DeviceName    string
	DeviceID      string
	IntegrityMode string
	Version       string
}
