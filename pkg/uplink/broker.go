package uplink

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net"
	"strconv"
)

// ConnectOptions identifies one broker connection attempt.
type ConnectOptions struct {
	Server   string
	Port     int
	ClientID string
}

// Address returns host:port.
func (o ConnectOptions) Address() string {
	return net.JoinHostPort(o.Server, strconv.Itoa(o.Port))
}

// Broker is the publish/subscribe collaborator.
type Broker interface {
	// Connect makes one connection attempt.
	Connect(ctx context.Context, opts ConnectOptions) error

	// IsConnected reports whether the session is up.
	IsConnected() bool

	// Subscribe subscribes to topic.
	Subscribe(topic string) error

	// Publish sends payload to topic once.
	Publish(topic string, payload []byte) error

	// Disconnect closes the session.
	Disconnect()
}

// NewClientID returns prefix followed by a random 16-bit value in hex.
func NewClientID(prefix string) string {
	return fmt.Sprintf("%s%x", prefix, rand.IntN(0xffff))
}
