package join

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"sync"
	"time"

	"github.com/smartcfg/smartcfg-go/pkg/credential"
	"github.com/smartcfg/smartcfg-go/pkg/log"
	"github.com/smartcfg/smartcfg-go/pkg/station"
)

// Default timing.
const (
	DefaultTimeout      = 15 * time.Second
	DefaultPollInterval = 1 * time.Second
)

// Join errors.
var (
	ErrJoinTimeout        = errors.New("join timed out")
	ErrRepromptsExhausted = errors.New("re-prompt attempts exhausted")
	ErrJoinInProgress     = errors.New("join already in progress")
)

// State is the orchestrator state.
type State uint8

const (
	StateIdle State = iota
	StateJoining
	StateJoined
	StateTimedOut
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateJoining:
		return "JOINING"
	case StateJoined:
		return "JOINED"
	case StateTimedOut:
		return "TIMED_OUT"
	default:
		return "UNKNOWN"
	}
}

// Outcome is the result of the current attempt.
type Outcome uint8

const (
	OutcomePending Outcome = iota
	OutcomeJoined
	OutcomeTimedOut
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "PENDING"
	case OutcomeJoined:
		return "JOINED"
	case OutcomeTimedOut:
		return "TIMED_OUT"
	default:
		return "UNKNOWN"
	}
}

// PayloadSource delivers payloads written after the previous call.
type PayloadSource interface {
	NextPayload(ctx context.Context) ([]byte, error)
}

// CredentialIntake turns a raw payload into a credential.
type CredentialIntake interface {
	Accept(raw []byte) (credential.Credential, error)
}

// Config configures an Orchestrator.
type Config struct {
	// Timeout bounds each association attempt.
	Timeout time.Duration

	// PollInterval is the station status poll period.
	PollInterval time.Duration

	// MaxReprompts limits re-prompt rounds per Join. Zero means unbounded.
	MaxReprompts int

	// Logger for operational messages. Nil disables logging.
	Logger *slog.Logger

	// Trace receives join events. Nil disables tracing.
	Trace log.Logger
}

// DefaultConfig returns the standard 15s budget polled every second.
func DefaultConfig() Config {
	return Config{
		Timeout:      DefaultTimeout,
		PollInterval: DefaultPollInterval,
	}
}

// Result describes a completed join.
type Result struct {
	Addr       netip.Addr
	Credential credential.Credential
	Attempts   int
	Elapsed    time.Duration
}

// Orchestrator joins the station to a network with bounded waits and
// re-prompting.
type Orchestrator struct {
	mu sync.RWMutex

	config  Config
	station station.Station
	source  PayloadSource
	intake  CredentialIntake
	trace   log.Logger

	state   State
	outcome Outcome

	onStateChange func(old, new State)
	onAttempt     func(cred credential.Credential, outcome Outcome, elapsed time.Duration)
	onIntake      func(size int, err error)
}

// NewOrchestrator creates an orchestrator. Zero timing fields take defaults.
func NewOrchestrator(config Config, st station.Station, source PayloadSource, intake CredentialIntake) *Orchestrator {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	return &Orchestrator{
		config:  config,
		station: st,
		source:  source,
		intake:  intake,
		trace:   log.OrNoop(config.Trace),
	}
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// Outcome returns the outcome of the current or last attempt.
func (o *Orchestrator) Outcome() Outcome {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.outcome
}

// OnStateChange sets a callback for state transitions.
func (o *Orchestrator) OnStateChange(fn func(old, new State)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onStateChange = fn
}

// OnAttempt sets a callback invoked when an attempt finishes.
func (o *Orchestrator) OnAttempt(fn func(cred credential.Credential, outcome Outcome, elapsed time.Duration)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onAttempt = fn
}

// OnIntake sets a callback invoked for each payload read while re-prompting.
func (o *Orchestrator) OnIntake(fn func(size int, err error)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onIntake = fn
}

// Join associates the station using cred, re-prompting for new credentials
// after every timeout.
func (o *Orchestrator) Join(ctx context.Context, cred credential.Credential) (Result, error) {
	o.mu.Lock()
	if o.state == StateJoining || o.state == StateTimedOut {
		o.mu.Unlock()
		return Result{}, ErrJoinInProgress
	}
	o.mu.Unlock()

	start := time.Now()
	res := Result{Credential: cred}
	reprompts := 0

	for {
		res.Attempts++
		outcome, err := o.attempt(ctx, res.Credential, res.Attempts)
		if err != nil {
			o.setState(StateIdle, "cancelled")
			return res, err
		}
		if outcome == OutcomeJoined {
			return o.joined(res, start), nil
		}

		o.logWarn("join timed out, waiting for new credentials",
			slog.String("network", res.Credential.Name),
			slog.Duration("timeout", o.config.Timeout),
			slog.Int("attempt", res.Attempts))

	waiting:
		for {
			if o.config.MaxReprompts > 0 && reprompts >= o.config.MaxReprompts {
				o.setState(StateIdle, "re-prompts exhausted")
				return res, fmt.Errorf("%w after %d rounds: %w", ErrRepromptsExhausted, reprompts, ErrJoinTimeout)
			}
			reprompts++

			next, late, err := o.reprompt(ctx)
			switch {
			case err != nil:
				o.setState(StateIdle, "cancelled")
				return res, err
			case late:
				o.logInfo("station associated after timeout", slog.String("network", res.Credential.Name))
				return o.joined(res, start), nil
			case next != nil:
				res.Credential = *next
				break waiting
			}
		}
	}
}

// attempt runs one bounded association attempt.
func (o *Orchestrator) attempt(ctx context.Context, cred credential.Credential, n int) (Outcome, error) {
	o.mu.Lock()
	o.outcome = OutcomePending
	o.mu.Unlock()
	o.setState(StateJoining, "")

	if err := o.station.Join(cred.Name, cred.Secret); err != nil {
		o.logWarn("station refused join request", slog.String("network", cred.Name), slog.Any("error", err))
	}

	start := time.Now()
	ticker := time.NewTicker(o.config.PollInterval)
	defer ticker.Stop()

	for {
		if o.station.Status() == station.StatusConnected {
			o.finishAttempt(cred, n, OutcomeJoined, time.Since(start))
			return OutcomeJoined, nil
		}
		if elapsed := time.Since(start); elapsed >= o.config.Timeout {
			o.finishAttempt(cred, n, OutcomeTimedOut, elapsed)
			o.setState(StateTimedOut, ErrJoinTimeout.Error())
			return OutcomeTimedOut, nil
		}

		select {
		case <-ctx.Done():
			return OutcomePending, ctx.Err()
		case <-ticker.C:
		}
	}
}

// reprompt reads payloads until one yields a credential or an integrity
// failure ends the round. The station is re-checked every poll interval while
// waiting; late reports that it associated before the round ended.
func (o *Orchestrator) reprompt(ctx context.Context) (next *credential.Credential, late bool, err error) {
	for {
		if o.station.Status() == station.StatusConnected {
			return nil, true, nil
		}

		pollCtx, cancel := context.WithTimeout(ctx, o.config.PollInterval)
		raw, err := o.source.NextPayload(pollCtx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return nil, false, ctx.Err()
			}
			if errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			return nil, false, err
		}

		cred, err := o.intake.Accept(raw)
		o.notifyIntake(len(raw), err)

		switch {
		case err == nil:
			o.logInfo("received new credentials", slog.String("network", cred.Name))
			return &cred, false, nil
		case credential.IsIntegrityError(err):
			o.logWarn("payload failed integrity check", slog.Int("size", len(raw)))

			timer := time.NewTimer(o.config.PollInterval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, false, ctx.Err()
			case <-timer.C:
			}
			return nil, o.station.Status() == station.StatusConnected, nil
		default:
			o.logDebug("ignoring payload", slog.Int("size", len(raw)), slog.Any("error", err))
		}
	}
}

func (o *Orchestrator) joined(res Result, start time.Time) Result {
	res.Addr = o.station.Addr()
	res.Elapsed = time.Since(start)

	o.mu.Lock()
	o.outcome = OutcomeJoined
	o.mu.Unlock()
	o.setState(StateJoined, "")

	o.logInfo("joined network",
		slog.String("network", res.Credential.Name),
		slog.String("addr", res.Addr.String()),
		slog.Int("attempts", res.Attempts))
	return res
}

func (o *Orchestrator) finishAttempt(cred credential.Credential, n int, outcome Outcome, elapsed time.Duration) {
	o.mu.Lock()
	o.outcome = outcome
	cb := o.onAttempt
	o.mu.Unlock()

	ev := &log.JoinEvent{
		Network: cred.Name,
		Attempt: n,
		Outcome: outcome.String(),
		Elapsed: elapsed,
	}
	if outcome == OutcomeJoined {
		ev.Addr = o.station.Addr().String()
	}
	o.trace.Log(log.Event{
		Timestamp: time.Now(),
		Direction: log.DirectionNone,
		Layer:     log.LayerStation,
		Category:  log.CategoryJoin,
		Join:      ev,
	})

	if cb != nil {
		cb(cred, outcome, elapsed)
	}
}

func (o *Orchestrator) notifyIntake(size int, err error) {
	o.mu.RLock()
	cb := o.onIntake
	o.mu.RUnlock()
	if cb != nil {
		cb(size, err)
	}
}

func (o *Orchestrator) setState(s State, reason string) {
	o.mu.Lock()
	old := o.state
	if old == s {
		o.mu.Unlock()
		return
	}
	o.state = s
	cb := o.onStateChange
	o.mu.Unlock()

	o.trace.Log(log.Event{
		Timestamp: time.Now(),
		Direction: log.DirectionNone,
		Layer:     log.LayerStation,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityJoin,
			OldState: old.String(),
			NewState: s.String(),
			Reason:   reason,
		},
	})

	if cb != nil {
		cb(old, s)
	}
}

func (o *Orchestrator) logDebug(msg string, args ...any) {
	if o.config.Logger != nil {
		o.config.Logger.Debug(msg, args...)
	}
}

func (o *Orchestrator) logInfo(msg string, args ...any) {
	if o.config.Logger != nil {
		o.config.Logger.Info(msg, args...)
	}
}

func (o *Orchestrator) logWarn(msg string, args ...any) {
	if o.config.Logger != nil {
		o.config.Logger.Warn(msg, args...)
	}
}
