package station

import (
	"errors"
	"net/netip"
)

// Station errors.
var (
	ErrEmptyName = errors.New("network name is empty")
	ErrClosed    = errors.New("station closed")
)

// Status is the association state of the station interface.
type Status uint8

const (
	// StatusIdle indicates no association has been requested.
	StatusIdle Status = iota

	// StatusConnecting indicates an association is in progress.
	StatusConnecting

	// StatusConnected indicates the station is associated and has an address.
	StatusConnected

	// StatusConnectFailed indicates the last association was refused.
	StatusConnectFailed

	// StatusDisconnected indicates a previous association was lost.
	StatusDisconnected
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "IDLE"
	case StatusConnecting:
		return "CONNECTING"
	case StatusConnected:
		return "CONNECTED"
	case StatusConnectFailed:
		return "CONNECT_FAILED"
	case StatusDisconnected:
		return "DISCONNECTED"
	default:
		return "UNKNOWN"
	}
}

// Station is the Wi-Fi station interface used by the join orchestrator.
type Station interface {
	// Join starts an association with the given network. It returns once the
	// attempt is started; completion is observed through Status.
	Join(name, secret string) error

	// Status returns the current association state.
	Status() Status

	// Addr returns the assigned address, or the zero Addr when not connected.
	Addr() netip.Addr
}
