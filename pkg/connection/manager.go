package connection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Connection errors.
var (
	ErrAttemptsExhausted = errors.New("connection attempts exhausted")
	ErrConnectInProgress = errors.New("connect already in progress")
	ErrAlreadyConnected  = errors.New("already connected")
	ErrNotConnected      = errors.New("not connected")
)

// State represents the session state.
type State uint8

const (
	// StateDisconnected indicates no session.
	StateDisconnected State = iota

	// StateConnecting indicates a connection attempt is running.
	StateConnecting

	// StateRetrying indicates the dial loop is waiting before the next attempt.
	StateRetrying

	// StateConnected indicates an established session.
	StateConnected
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateRetrying:
		return "RETRYING"
	case StateConnected:
		return "CONNECTED"
	default:
		return "UNKNOWN"
	}
}

// ConnectFunc makes one connection attempt. attempt starts at 1 for every
// dial loop.
type ConnectFunc func(ctx context.Context, attempt int) error

// Manager dials a session with retries and tracks its state.
type Manager struct {
	mu sync.RWMutex

	state       State
	backoff     *Backoff
	connectFn   ConnectFunc
	maxAttempts int

	onStateChange  func(oldState, newState State)
	onRetry        func(attempt int, delay time.Duration, err error)
	onDisconnected func()
}

// NewManager creates a session manager. A nil backoff uses the default
// exponential backoff.
func NewManager(connectFn ConnectFunc, backoff *Backoff) *Manager {
	if backoff == nil {
		backoff = NewBackoff()
	}
	return &Manager{
		state:     StateDisconnected,
		backoff:   backoff,
		connectFn: connectFn,
	}
}

// SetMaxAttempts limits attempts per dial loop. Zero means unbounded.
func (m *Manager) SetMaxAttempts(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxAttempts = n
}

// State returns the current session state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsConnected returns true if a session is established.
func (m *Manager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateConnected
}

// Connect runs the dial loop until an attempt succeeds, ctx is done or the
// attempt limit is reached. Attempt failures are reported through OnRetry and
// never end the loop on their own.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case StateConnected:
		m.mu.Unlock()
		return ErrAlreadyConnected
	case StateConnecting, StateRetrying:
		m.mu.Unlock()
		return ErrConnectInProgress
	}
	maxAttempts := m.maxAttempts
	m.mu.Unlock()

	defer m.backoff.Reset()

	for attempt := 1; ; attempt++ {
		m.setState(StateConnecting)

		err := m.connectFn(ctx, attempt)
		if err == nil {
			m.setState(StateConnected)
			return nil
		}
		if ctx.Err() != nil {
			m.setState(StateDisconnected)
			return ctx.Err()
		}
		if maxAttempts > 0 && attempt >= maxAttempts {
			m.setState(StateDisconnected)
			return fmt.Errorf("%w after %d attempts: %w", ErrAttemptsExhausted, attempt, err)
		}

		delay := m.backoff.Next()
		m.setState(StateRetrying)

		m.mu.RLock()
		onRetry := m.onRetry
		m.mu.RUnlock()
		if onRetry != nil {
			onRetry(attempt, delay, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			m.setState(StateDisconnected)
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Disconnect marks the session closed by the local side.
func (m *Manager) Disconnect() {
	m.dropSession()
}

// NotifyConnectionLost marks the session lost. No redial is started.
func (m *Manager) NotifyConnectionLost() {
	m.dropSession()
}

func (m *Manager) dropSession() {
	m.mu.Lock()
	if m.state != StateConnected {
		m.mu.Unlock()
		return
	}
	m.state = StateDisconnected
	onStateChange := m.onStateChange
	onDisconnected := m.onDisconnected
	m.mu.Unlock()

	if onStateChange != nil {
		onStateChange(StateConnected, StateDisconnected)
	}
	if onDisconnected != nil {
		onDisconnected()
	}
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	old := m.state
	if old == s {
		m.mu.Unlock()
		return
	}
	m.state = s
	cb := m.onStateChange
	m.mu.Unlock()

	if cb != nil {
		cb(old, s)
	}
}

// OnStateChange sets a callback for state changes.
func (m *Manager) OnStateChange(fn func(oldState, newState State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStateChange = fn
}

// OnRetry sets a callback invoked after each failed attempt with the delay
// before the next one.
func (m *Manager) OnRetry(fn func(attempt int, delay time.Duration, err error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRetry = fn
}

// OnDisconnected sets a callback for session loss or local close.
func (m *Manager) OnDisconnected(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onDisconnected = fn
}
