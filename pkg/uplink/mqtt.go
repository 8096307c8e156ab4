package uplink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTT errors.
var (
	ErrNotConnected = errors.New("mqtt client not connected")
	ErrTokenTimeout = errors.New("mqtt operation timed out")
)

// MQTTOptions configures an MQTTBroker.
type MQTTOptions struct {
	Username string
	Password string

	// QoS for subscribe and publish. The confirmation is best effort, so the
	// default is 0.
	QoS byte

	// ConnectTimeout bounds a single connection attempt.
	ConnectTimeout time.Duration

	// OperationTimeout bounds subscribe and publish.
	OperationTimeout time.Duration

	// Logger for operational messages. Nil disables logging.
	Logger *slog.Logger
}

// MessageHandler receives messages for a subscription.
type MessageHandler func(topic string, payload []byte)

// MQTTBroker is a Broker over Eclipse Paho. Paho's own reconnect logic is
// disabled; the Reporter decides when to dial.
type MQTTBroker struct {
	mu     sync.Mutex
	opts   MQTTOptions
	client mqtt.Client

	newClient func(*mqtt.ClientOptions) mqtt.Client
}

// NewMQTTBroker creates an unconnected broker adapter.
func NewMQTTBroker(opts MQTTOptions) *MQTTBroker {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.OperationTimeout <= 0 {
		opts.OperationTimeout = 5 * time.Second
	}
	return &MQTTBroker{opts: opts, newClient: mqtt.NewClient}
}

// ClientOptions builds the Paho options for one attempt.
func (b *MQTTBroker) ClientOptions(co ConnectOptions) *mqtt.ClientOptions {
	o := mqtt.NewClientOptions().
		AddBroker("tcp://" + co.Address()).
		SetClientID(co.ClientID).
		SetCleanSession(true).
		SetAutoReconnect(false).
		SetConnectRetry(false).
		SetConnectTimeout(b.opts.ConnectTimeout).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			if b.opts.Logger != nil {
				b.opts.Logger.Warn("mqtt connection lost", slog.Any("error", err))
			}
		})
	if b.opts.Username != "" {
		o.SetUsername(b.opts.Username)
		o.SetPassword(b.opts.Password)
	}
	return o
}

// Connect makes one connection attempt with a fresh client. A failed or
// abandoned attempt is shut down so it cannot finish behind a later one.
func (b *MQTTBroker) Connect(ctx context.Context, co ConnectOptions) error {
	client := b.newClient(b.ClientOptions(co))
	if err := wait(ctx, client.Connect(), b.opts.ConnectTimeout); err != nil {
		client.Disconnect(0)
		return err
	}

	b.mu.Lock()
	old := b.client
	b.client = client
	b.mu.Unlock()

	if old != nil && old.IsConnected() {
		old.Disconnect(0)
	}
	return nil
}

// IsConnected reports whether the current client is connected.
func (b *MQTTBroker) IsConnected() bool {
	c := b.current()
	return c != nil && c.IsConnected()
}

// Subscribe subscribes to topic, discarding messages.
func (b *MQTTBroker) Subscribe(topic string) error {
	return b.SubscribeFunc(topic, nil)
}

// SubscribeFunc subscribes to topic and delivers messages to fn.
func (b *MQTTBroker) SubscribeFunc(topic string, fn MessageHandler) error {
	c := b.current()
	if c == nil || !c.IsConnected() {
		return ErrNotConnected
	}
	var cb mqtt.MessageHandler
	if fn != nil {
		cb = func(_ mqtt.Client, m mqtt.Message) {
			fn(m.Topic(), m.Payload())
		}
	}
	return wait(context.Background(), c.Subscribe(topic, b.opts.QoS, cb), b.opts.OperationTimeout)
}

// Publish sends payload to topic, not retained.
func (b *MQTTBroker) Publish(topic string, payload []byte) error {
	c := b.current()
	if c == nil || !c.IsConnected() {
		return ErrNotConnected
	}
	return wait(context.Background(), c.Publish(topic, b.opts.QoS, false, payload), b.opts.OperationTimeout)
}

// Disconnect closes the current client.
func (b *MQTTBroker) Disconnect() {
	b.mu.Lock()
	c := b.client
	b.client = nil
	b.mu.Unlock()

	if c != nil && c.IsConnected() {
		c.Disconnect(250)
	}
}

func (b *MQTTBroker) current() mqtt.Client {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.client
}

func wait(ctx context.Context, tok mqtt.Token, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-tok.Done():
		return tok.Error()
	case <-timer.C:
		return fmt.Errorf("%w after %v", ErrTokenTimeout, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ Broker = (*MQTTBroker)(nil)
