package uplink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"sync"
	"time"

	"github.com/smartcfg/smartcfg-go/pkg/connection"
	"github.com/smartcfg/smartcfg-go/pkg/credential"
	"github.com/smartcfg/smartcfg-go/pkg/log"
)

// Defaults.
const (
	DefaultPort           = 1883
	DefaultRetryInterval  = 5 * time.Second
	DefaultClientIDPrefix = "SmartConfigClient-"
)

// Uplink errors.
var (
	ErrBrokerUnavailable = errors.New("broker unavailable")
	ErrPublishFailed     = errors.New("publish failed")
	ErrNoServer          = errors.New("no broker server configured")
)

// Config configures a Reporter.
type Config struct {
	Server string
	Port   int
	Topic  string

	// ClientIDPrefix is followed by random hex in every attempt's client id.
	ClientIDPrefix string

	// RetryInterval is the fixed pause between connection attempts.
	RetryInterval time.Duration

	// MaxAttempts bounds attempts per Connect. Zero means unbounded.
	MaxAttempts int

	Format   Format
	DeviceID string

	// Logger for operational messages. Nil disables logging.
	Logger *slog.Logger

	// Trace receives uplink events. Nil disables tracing.
	Trace log.Logger
}

// DefaultConfig returns the standard uplink configuration without a server.
func DefaultConfig() Config {
	return Config{
		Port:           DefaultPort,
		Topic:          "smartconfig",
		ClientIDPrefix: DefaultClientIDPrefix,
		RetryInterval:  DefaultRetryInterval,
	}
}

// Reporter owns the uplink session.
type Reporter struct {
	mu sync.Mutex

	config  Config
	broker  Broker
	session *connection.Manager
	trace   log.Logger

	clientID string
	reports  int
	closing  bool

	onConnectAttempt func(attempt int, err error)
	onSessionEnd     func(lost bool)
}

// NewReporter creates a reporter. Zero fields of config take defaults.
func NewReporter(config Config, broker Broker) *Reporter {
	def := DefaultConfig()
	if config.Port == 0 {
		config.Port = def.Port
	}
	if config.Topic == "" {
		config.Topic = def.Topic
	}
	if config.ClientIDPrefix == "" {
		config.ClientIDPrefix = def.ClientIDPrefix
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = def.RetryInterval
	}

	r := &Reporter{
		config: config,
		broker: broker,
		trace:  log.OrNoop(config.Trace),
	}
	r.session = connection.NewManager(r.dial, connection.NewFixedBackoff(config.RetryInterval))
	r.session.SetMaxAttempts(config.MaxAttempts)
	r.session.OnRetry(func(attempt int, delay time.Duration, err error) {
		r.logWarn("broker connection failed, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("retry_in", delay),
			slog.Any("error", err))
	})
	r.session.OnDisconnected(r.sessionEnded)
	r.session.OnStateChange(func(old, new connection.State) {
		r.trace.Log(log.Event{
			Timestamp: time.Now(),
			DeviceID:  r.config.DeviceID,
			Direction: log.DirectionNone,
			Layer:     log.LayerUplink,
			Category:  log.CategoryState,
			StateChange: &log.StateChangeEvent{
				Entity:   log.StateEntityUplink,
				OldState: old.String(),
				NewState: new.String(),
			},
		})
	})
	return r
}

// OnConnectAttempt sets a callback invoked after every connection attempt.
func (r *Reporter) OnConnectAttempt(fn func(attempt int, err error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onConnectAttempt = fn
}

// OnSessionEnd sets a callback invoked when an established session ends.
// lost is false when the session ended through Close.
func (r *Reporter) OnSessionEnd(fn func(lost bool)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onSessionEnd = fn
}

// Config returns the effective configuration.
func (r *Reporter) Config() Config {
	return r.config
}

// State returns the session state.
func (r *Reporter) State() connection.State {
	return r.session.State()
}

// Connected reports whether the session is established.
func (r *Reporter) Connected() bool {
	return r.session.IsConnected()
}

// ClientID returns the client id of the last connection attempt.
func (r *Reporter) ClientID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clientID
}

// Reports returns how many confirmations were published.
func (r *Reporter) Reports() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reports
}

// Connect dials the broker until it answers. It returns nil immediately when
// the session is already up.
func (r *Reporter) Connect(ctx context.Context) error {
	if r.config.Server == "" {
		return ErrNoServer
	}
	if r.session.IsConnected() {
		if r.broker.IsConnected() {
			return nil
		}
		r.logWarn("broker session lost")
		r.session.NotifyConnectionLost()
	}

	err := r.session.Connect(ctx)
	if errors.Is(err, connection.ErrAlreadyConnected) {
		return nil
	}
	return err
}

func (r *Reporter) dial(ctx context.Context, attempt int) error {
	opts := ConnectOptions{
		Server:   r.config.Server,
		Port:     r.config.Port,
		ClientID: NewClientID(r.config.ClientIDPrefix),
	}

	r.mu.Lock()
	r.clientID = opts.ClientID
	cb := r.onConnectAttempt
	r.mu.Unlock()

	r.logInfo("connecting to broker", slog.String("server", opts.Address()), slog.String("client_id", opts.ClientID))

	err := r.broker.Connect(ctx, opts)
	r.traceUplink(log.DirectionOut, &log.UplinkEvent{
		Action:   log.UplinkConnect,
		Server:   opts.Address(),
		ClientID: opts.ClientID,
		Attempt:  attempt,
		Success:  err == nil,
	})
	if cb != nil {
		cb(attempt, err)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBrokerUnavailable, err)
	}

	r.logInfo("connected to broker", slog.String("client_id", opts.ClientID))
	return nil
}

// Report connects if needed, subscribes to the topic and publishes one
// confirmation for addr.
func (r *Reporter) Report(ctx context.Context, addr netip.Addr, cred credential.Credential) error {
	if err := r.Connect(ctx); err != nil {
		return err
	}

	topic := r.config.Topic
	subErr := r.broker.Subscribe(topic)
	if subErr != nil {
		r.logWarn("subscribe failed", slog.String("topic", topic), slog.Any("error", subErr))
	}
	r.traceUplink(log.DirectionOut, &log.UplinkEvent{Action: log.UplinkSubscribe, Topic: topic, Success: subErr == nil})

	msg, err := BuildMessage(r.config.Format, r.config.DeviceID, addr, cred, time.Now())
	if err != nil {
		return err
	}

	err = r.broker.Publish(topic, msg)
	r.traceUplink(log.DirectionOut, &log.UplinkEvent{
		Action:  log.UplinkPublish,
		Topic:   topic,
		Size:    len(msg),
		Success: err == nil,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	r.mu.Lock()
	r.reports++
	r.mu.Unlock()

	r.logInfo("confirmation published", slog.String("topic", topic), slog.String("addr", addr.String()))
	return nil
}

// Close tears the session down. It does nothing when no session is up.
func (r *Reporter) Close() {
	if !r.session.IsConnected() {
		return
	}
	r.mu.Lock()
	r.closing = true
	r.mu.Unlock()

	r.broker.Disconnect()
	r.session.Disconnect()
}

func (r *Reporter) sessionEnded() {
	r.mu.Lock()
	lost := !r.closing
	r.closing = false
	clientID := r.clientID
	cb := r.onSessionEnd
	r.mu.Unlock()

	r.traceUplink(log.DirectionOut, &log.UplinkEvent{
		Action:   log.UplinkDisconnect,
		ClientID: clientID,
		Success:  !lost,
	})
	if lost {
		r.logWarn("broker session lost", slog.String("client_id", clientID))
	} else {
		r.logInfo("broker session closed", slog.String("client_id", clientID))
	}
	if cb != nil {
		cb(lost)
	}
}

func (r *Reporter) traceUplink(dir log.Direction, ev *log.UplinkEvent) {
	r.trace.Log(log.Event{
		Timestamp: time.Now(),
		DeviceID:  r.config.DeviceID,
		Direction: dir,
		Layer:     log.LayerUplink,
		Category:  log.CategoryUplink,
		Uplink:    ev,
	})
}

func (r *Reporter) logInfo(msg string, args ...any) {
	if r.config.Logger != nil {
		r.config.Logger.Info(msg, args...)
	}
}

func (r *Reporter) logWarn(msg string, args ...any) {
	if r.config.Logger != nil {
		r.config.Logger.Warn(msg, args...)
	}
}
