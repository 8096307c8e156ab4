package provision

import (
	"context"
	"errors"
	"log/slog"
	"net/netip"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/smartcfg/smartcfg-go/pkg/credential"
	"github.com/smartcfg/smartcfg-go/pkg/join"
	"github.com/smartcfg/smartcfg-go/pkg/log"
	"github.com/smartcfg/smartcfg-go/pkg/metrics"
	"github.com/smartcfg/smartcfg-go/pkg/station"
	"github.com/smartcfg/smartcfg-go/pkg/transport"
)

// Default timing.
const (
	DefaultIdleTimeout   = 5 * time.Minute
	DefaultCheckInterval = 1 * time.Second
)

// Controller errors.
var (
	ErrAlreadyRunning = errors.New("controller already running")
)

// State is the provisioning state.
type State uint8

const (
	// StateDisconnected - no client attached, nothing provisioned yet.
	StateDisconnected State = iota

	// StateAwaitingPayload - a client is attached and may write credentials.
	StateAwaitingPayload

	// StateProvisioning - a credential was accepted; join and report run.
	StateProvisioning

	// StateIdle - provisioning finished; the uplink may be torn down.
	StateIdle
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateAwaitingPayload:
		return "AWAITING_PAYLOAD"
	case StateProvisioning:
		return "PROVISIONING"
	case StateIdle:
		return "IDLE"
	default:
		return "UNKNOWN"
	}
}

// Uplink reports a completed join.
type Uplink interface {
	Report(ctx context.Context, addr netip.Addr, cred credential.Credential) error
	Connected() bool
	Close()
}

// Config configures a Controller.
type Config struct {
	// IdleTimeout is the quiet period after which the uplink is closed.
	IdleTimeout time.Duration

	// CheckInterval is how often the idle rule is evaluated.
	CheckInterval time.Duration

	// Join configures the orchestrator built by the controller.
	Join join.Config

	// DeviceID tags trace events.
	DeviceID string

	// Logger for operational messages. Nil disables logging.
	Logger *slog.Logger

	// Trace receives controller and intake events. Nil disables tracing.
	Trace log.Logger

	// Metrics records pipeline counters. Nil disables metrics.
	Metrics *metrics.Metrics
}

// DefaultConfig returns the standard five minute idle teardown.
func DefaultConfig() Config {
	return Config{
		IdleTimeout:   DefaultIdleTimeout,
		CheckInterval: DefaultCheckInterval,
		Join:          join.DefaultConfig(),
	}
}

// Status is a snapshot of the controller.
type Status struct {
	State           State
	Present         bool
	Provisioned     bool
	Network         string
	Addr            netip.Addr
	Cycle           string
	JoinState       join.State
	UplinkConnected bool
	LastActivity    time.Time

	Accepted   int
	Rejected   int
	Provisions int
	Teardowns  int
}

// Controller is the provisioning state machine.
type Controller struct {
	mu sync.RWMutex

	config  Config
	link    transport.Link
	station station.Station
	intake  join.CredentialIntake
	orch    *join.Orchestrator
	uplink  Uplink
	trace   log.Logger

	running atomic.Bool

	state        State
	present      bool
	session      string
	provisioned  bool
	cred         credential.Credential
	network      string
	addr         netip.Addr
	cycle        string
	lastActivity time.Time

	accepted   int
	rejected   int
	provisions int
	teardowns  int

	onStateChange func(old, new State)
}

// New creates a controller. The join orchestrator reads re-prompt payloads
// from link through the controller. Zero timing fields take defaults.
func New(config Config, link transport.Link, st station.Station, intake join.CredentialIntake, up Uplink) *Controller {
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = DefaultIdleTimeout
	}
	if config.CheckInterval <= 0 {
		config.CheckInterval = DefaultCheckInterval
	}
	if config.Join.Logger == nil {
		config.Join.Logger = config.Logger
	}
	if config.Join.Trace == nil {
		config.Join.Trace = config.Trace
	}

	c := &Controller{
		config:       config,
		link:         link,
		station:      st,
		intake:       intake,
		uplink:       up,
		trace:        log.OrNoop(config.Trace),
		lastActivity: time.Now(),
	}
	c.orch = join.NewOrchestrator(config.Join, st, c, intake)
	c.orch.OnIntake(func(size int, err error) {
		c.recordPayload(size, "", err)
	})
	c.orch.OnAttempt(func(_ credential.Credential, outcome join.Outcome, elapsed time.Duration) {
		c.config.Metrics.ObserveJoinAttempt(strings.ToLower(outcome.String()), elapsed)
	})
	c.config.Metrics.SetState(uint8(StateDisconnected))
	return c
}

// OnStateChange sets a callback for state transitions.
func (c *Controller) OnStateChange(fn func(old, new State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStateChange = fn
}

// Orchestrator returns the join orchestrator driven by the controller.
func (c *Controller) Orchestrator() *join.Orchestrator {
	return c.orch
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Status returns a snapshot of the controller.
func (c *Controller) Status() Status {
	c.mu.RLock()
	st := Status{
		State:        c.state,
		Present:      c.present,
		Provisioned:  c.provisioned,
		Network:      c.network,
		Addr:         c.addr,
		Cycle:        c.cycle,
		LastActivity: c.lastActivity,
		Accepted:     c.accepted,
		Rejected:     c.rejected,
		Provisions:   c.provisions,
		Teardowns:    c.teardowns,
	}
	c.mu.RUnlock()

	st.JoinState = c.orch.State()
	st.UplinkConnected = c.uplink.Connected()
	return st
}

// Run advertises the link and processes its events until ctx is cancelled or
// the link is closed. Payload, join and broker failures never end Run.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer c.running.Store(false)

	if err := c.link.StartAdvertising(ctx); err != nil {
		c.logWarn("failed to start advertising", slog.Any("error", err))
	}
	defer func() {
		if err := c.link.StopAdvertising(); err != nil {
			c.logWarn("failed to stop advertising", slog.Any("error", err))
		}
	}()

	c.logInfo("provisioning controller started", slog.Duration("idle_timeout", c.config.IdleTimeout))

	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-c.link.Events():
			if !ok {
				c.logInfo("link closed, controller stopping")
				return nil
			}
			c.handleEvent(ctx, ev)
		case <-ticker.C:
			c.checkIdle()
		}
	}
}

// NextPayload blocks until a client writes a payload and returns it. Presence
// edges seen while waiting update the controller. It is called by the join
// orchestrator from within Run.
func (c *Controller) NextPayload(ctx context.Context) ([]byte, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case ev, ok := <-c.link.Events():
			if !ok {
				return nil, transport.ErrLinkClosed
			}
			if ev.Kind == transport.EventWrite {
				c.touch()
				return ev.Payload, nil
			}
			c.handlePresence(ev)
		}
	}
}

func (c *Controller) handleEvent(ctx context.Context, ev transport.Event) {
	if ev.Kind != transport.EventWrite {
		c.handlePresence(ev)
		return
	}

	c.touch()

	c.mu.RLock()
	present := c.present
	c.mu.RUnlock()
	if !present {
		c.logDebug("ignoring write without an attached client", slog.Int("size", ev.Size))
		return
	}

	raw := ev.Payload
	cred, err := c.intake.Accept(raw)
	c.recordPayload(len(raw), cred.Name, err)

	switch {
	case err == nil && c.joinedWith(cred):
		c.logInfo("credentials unchanged, already joined", slog.String("network", cred.Name))
	case err == nil:
		c.logInfo("received credentials", slog.String("network", cred.Name))
		c.provision(ctx, cred)
	case credential.IsIntegrityError(err):
		c.logWarn("payload failed integrity check, discarded", slog.Int("size", len(raw)), slog.Any("error", err))
	case credential.IsFormatError(err):
		c.logWarn("payload has no delimiter, discarded", slog.Int("size", len(raw)))
	default:
		c.logDebug("payload discarded", slog.Int("size", len(raw)), slog.Any("error", err))
	}
}

func (c *Controller) handlePresence(ev transport.Event) {
	c.touch()

	switch ev.Kind {
	case transport.EventAttached:
		c.mu.Lock()
		c.present = true
		c.session = ev.SessionID
		state := c.state
		c.mu.Unlock()
		c.config.Metrics.SetAttached(true)

		c.logInfo("client attached", slog.String("session", ev.SessionID), slog.String("remote", ev.RemoteAddr))
		if state == StateDisconnected || state == StateIdle {
			c.setState(StateAwaitingPayload, "client attached")
		}

	case transport.EventDetached:
		c.mu.Lock()
		c.present = false
		c.session = ""
		state := c.state
		provisioned := c.provisioned
		c.mu.Unlock()
		c.config.Metrics.SetAttached(false)

		// Credentials and the uplink session survive a detach.
		c.logInfo("client detached", slog.String("session", ev.SessionID))
		if state == StateAwaitingPayload {
			if provisioned {
				c.setState(StateIdle, "client detached")
			} else {
				c.setState(StateDisconnected, "client detached")
			}
		}
	}
}

// provision joins the station and reports the result. It returns when the
// cycle completes or ctx is cancelled.
func (c *Controller) provision(ctx context.Context, cred credential.Credential) {
	cycle := uuid.New().String()
	c.mu.Lock()
	c.cycle = cycle
	c.mu.Unlock()
	c.setState(StateProvisioning, "credentials accepted")

	res, err := c.orch.Join(ctx, cred)
	if err != nil {
		if ctx.Err() == nil {
			c.logWarn("join abandoned", slog.String("cycle", cycle), slog.Any("error", err))
		}
		c.settle("join abandoned")
		return
	}

	c.mu.Lock()
	c.provisioned = true
	c.cred = res.Credential
	c.network = res.Credential.Name
	c.addr = res.Addr
	c.mu.Unlock()

	err = c.uplink.Report(ctx, res.Addr, res.Credential)
	c.config.Metrics.ObserveReport(err)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.logWarn("confirmation not published", slog.String("cycle", cycle), slog.Any("error", err))
	}

	c.mu.Lock()
	c.provisions++
	c.lastActivity = time.Now()
	c.mu.Unlock()
	c.config.Metrics.ObserveProvisioned()

	c.logInfo("provisioning complete",
		slog.String("cycle", cycle),
		slog.String("network", res.Credential.Name),
		slog.String("addr", res.Addr.String()),
		slog.Int("attempts", res.Attempts),
		slog.Duration("elapsed", res.Elapsed))
	c.setState(StateIdle, "provisioned")
}

// joinedWith reports whether cred is the credential of the live association.
// A resend of it starts no new cycle.
func (c *Controller) joinedWith(cred credential.Credential) bool {
	c.mu.RLock()
	same := c.provisioned && c.cred == cred
	c.mu.RUnlock()
	return same && c.station.Status() == station.StatusConnected
}

// settle leaves PROVISIONING for the state implied by presence.
func (c *Controller) settle(reason string) {
	c.mu.RLock()
	present, provisioned := c.present, c.provisioned
	c.mu.RUnlock()

	switch {
	case present:
		c.setState(StateAwaitingPayload, reason)
	case provisioned:
		c.setState(StateIdle, reason)
	default:
		c.setState(StateDisconnected, reason)
	}
}

// checkIdle closes the uplink once nothing has happened for IdleTimeout.
func (c *Controller) checkIdle() {
	c.mu.RLock()
	quiet := time.Since(c.lastActivity)
	busy := c.present || c.state == StateProvisioning
	c.mu.RUnlock()

	if busy || quiet <= c.config.IdleTimeout || !c.uplink.Connected() {
		return
	}

	c.uplink.Close()

	c.mu.Lock()
	c.teardowns++
	c.mu.Unlock()
	c.config.Metrics.ObserveTeardown()

	c.trace.Log(log.Event{
		Timestamp: time.Now(),
		DeviceID:  c.config.DeviceID,
		Direction: log.DirectionNone,
		Layer:     log.LayerController,
		Category:  log.CategoryUplink,
		Uplink:    &log.UplinkEvent{Action: log.UplinkDisconnect, Success: true},
	})
	c.logInfo("uplink idle, session closed", slog.Duration("quiet", quiet.Round(time.Second)))
}

func (c *Controller) touch() {
	c.mu.Lock()
	c.lastActivity = time.Now()
	c.mu.Unlock()
}

func (c *Controller) recordPayload(size int, network string, err error) {
	result := payloadResult(err)

	c.mu.Lock()
	if err == nil {
		c.accepted++
	} else {
		c.rejected++
	}
	session := c.session
	c.mu.Unlock()

	c.config.Metrics.ObservePayload(strings.ToLower(result.String()))

	ev := &log.PayloadEvent{Size: size, Result: result}
	if err == nil {
		ev.Network = network
	}
	c.trace.Log(log.Event{
		Timestamp: time.Now(),
		DeviceID:  c.config.DeviceID,
		SessionID: session,
		Direction: log.DirectionIn,
		Layer:     log.LayerIntake,
		Category:  log.CategoryPayload,
		Payload:   ev,
	})
}

func payloadResult(err error) log.PayloadResult {
	switch {
	case err == nil:
		return log.PayloadAccepted
	case errors.Is(err, credential.ErrEmptyPayload):
		return log.PayloadEmpty
	case credential.IsIntegrityError(err):
		return log.PayloadIntegrityRejected
	default:
		return log.PayloadFormatRejected
	}
}

func (c *Controller) setState(s State, reason string) {
	c.mu.Lock()
	old := c.state
	if old == s {
		c.mu.Unlock()
		return
	}
	c.state = s
	cb := c.onStateChange
	c.mu.Unlock()

	c.config.Metrics.SetState(uint8(s))
	c.trace.Log(log.Event{
		Timestamp: time.Now(),
		DeviceID:  c.config.DeviceID,
		Direction: log.DirectionNone,
		Layer:     log.LayerController,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityProvision,
			OldState: old.String(),
			NewState: s.String(),
			Reason:   reason,
		},
	})
	c.logDebug("state changed", slog.String("from", old.String()), slog.String("to", s.String()))

	if cb != nil {
		cb(old, s)
	}
}

func (c *Controller) logDebug(msg string, args ...any) {
	if c.config.Logger != nil {
		c.config.Logger.Debug(msg, args...)
	}
}

func (c *Controller) logInfo(msg string, args ...any) {
	if c.config.Logger != nil {
		c.config.Logger.Info(msg, args...)
	}
}

func (c *Controller) logWarn(msg string, args ...any) {
	if c.config.Logger != nil {
		c.config.Logger.Warn(msg, args...)
	}
}
