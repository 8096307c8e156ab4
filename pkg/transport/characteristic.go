package transport

import (
	"context"
	"sync/atomic"

	"github.com/smartcfg/smartcfg-go/pkg/log"
)

// CharacteristicConfig configures an in-memory characteristic.
type CharacteristicConfig struct {
	// EventBuffer is the capacity of the event channel.
	// Default: DefaultEventBuffer.
	EventBuffer int

	// RequireAdvertising rejects Attach while not advertising.
	RequireAdvertising bool

	// Trace receives link events (optional).
	Trace log.Logger
}

// Characteristic is an in-memory Link. A single client attaches, writes
// payloads and detaches through method calls.
type Characteristic struct {
	config      CharacteristicConfig
	hub         *hub
	advertising atomic.Bool
}

// NewCharacteristic creates an in-memory characteristic.
func NewCharacteristic(config CharacteristicConfig) *Characteristic {
	return &Characteristic{
		config: config,
		hub:    newHub(config.EventBuffer, config.Trace),
	}
}

// Attach connects a client. Returns the session id.
func (c *Characteristic) Attach(remote string) (string, error) {
	if c.config.RequireAdvertising && !c.advertising.Load() {
		return "", ErrNotAdvertising
	}
	return c.hub.attach(remote)
}

// Detach disconnects the attached client.
func (c *Characteristic) Detach() error {
	return c.hub.detach("")
}

// Write replaces the characteristic value on behalf of the attached client.
func (c *Characteristic) Write(data []byte) error {
	return c.hub.write("", data)
}

// Attached reports whether a client is attached.
func (c *Characteristic) Attached() bool {
	_, ok := c.hub.attached()
	return ok
}

// Events returns the link event channel.
func (c *Characteristic) Events() <-chan Event {
	return c.hub.events
}

// LatestPayload returns a copy of the current value.
func (c *Characteristic) LatestPayload() []byte {
	return c.hub.latest()
}

// StartAdvertising marks the characteristic as discoverable.
func (c *Characteristic) StartAdvertising(ctx context.Context) error {
	if c.hub.isClosed() {
		return ErrLinkClosed
	}
	c.advertising.Store(true)
	return nil
}

// StopAdvertising clears the discoverable flag.
func (c *Characteristic) StopAdvertising() error {
	c.advertising.Store(false)
	return nil
}

// Advertising reports whether the characteristic is discoverable.
func (c *Characteristic) Advertising() bool {
	return c.advertising.Load()
}

// Close closes the event channel and drops any attached client. No
// DETACHED event is delivered for a client dropped this way.
func (c *Characteristic) Close() error {
	c.hub.close()
	_ = c.hub.detach("")
	c.advertising.Store(false)
	return nil
}

// Ensure Characteristic implements Link.
var _ Link = (*Characteristic)(nil)
