package transport

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/smartcfg/smartcfg-go/pkg/log"
)

// ClientConfig configures a LAN intake client.
type ClientConfig struct {
	// ConnectTimeout is the connection timeout (default: 10s).
	ConnectTimeout time.Duration

	// Trace receives sent frame sizes (optional).
	Trace log.Logger
}

// Client sends payloads to a LAN intake server.
type Client struct {
	config ClientConfig
}

// NewClient creates a new intake client.
func NewClient(config ClientConfig) *Client {
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = 10 * time.Second
	}
	return &Client{config: config}
}

// Connect establishes a connection to the specified address.
func (c *Client) Connect(ctx context.Context, address string) (*ClientConn, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ConnectTimeout)
		defer cancel()
	}

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	writer := NewFrameWriter(conn, MaxPayloadSize)
	if c.config.Trace != nil {
		writer.SetTrace(c.config.Trace, conn.LocalAddr().String())
	}

	return &ClientConn{
		conn:   conn,
		writer: writer,
	}, nil
}

// ClientConn is a connection from the companion to the device.
type ClientConn struct {
	conn   net.Conn
	writer *FrameWriter

	closeOnce sync.Once
	closed    bool
	mu        sync.Mutex
}

// LocalAddr returns the local network address.
func (c *ClientConn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// RemoteAddr returns the remote network address.
func (c *ClientConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Send writes one payload as a frame.
func (c *ClientConn) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrLinkClosed
	}
	return c.writer.WriteFrame(payload)
}

// Close closes the connection.
func (c *ClientConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		err = c.conn.Close()
	})
	return err
}
