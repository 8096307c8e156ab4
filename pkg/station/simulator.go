package station

import (
	"log/slog"
	"net/netip"
	"sync"
	"time"
)

// SimulatorConfig configures a Simulator.
type SimulatorConfig struct {
	// JoinDelay is how long an association takes to complete.
	JoinDelay time.Duration

	// Networks restricts which credentials associate (name -> secret).
	// Nil accepts any credential with a non-empty name.
	Networks map[string]string

	// Addr is the address assigned on association.
	Addr netip.Addr

	// Logger receives association events. Nil disables logging.
	Logger *slog.Logger
}

// DefaultSimulatorConfig returns a configuration that accepts any network
// after 500ms and assigns 192.168.1.50.
func DefaultSimulatorConfig() SimulatorConfig {
	return SimulatorConfig{
		JoinDelay: 500 * time.Millisecond,
		Addr:      netip.AddrFrom4([4]byte{192, 168, 1, 50}),
	}
}

// Simulator is an in-memory Station.
type Simulator struct {
	mu sync.Mutex

	config   SimulatorConfig
	networks map[string]string
	status   Status
	current  string
	timer    *time.Timer
	joins    int
	closed   bool
}

// NewSimulator creates a simulated station.
func NewSimulator(config SimulatorConfig) *Simulator {
	s := &Simulator{config: config}
	if config.Networks != nil {
		s.networks = make(map[string]string, len(config.Networks))
		for k, v := range config.Networks {
			s.networks[k] = v
		}
	}
	return s
}

// Join starts a simulated association. A pending association is abandoned.
func (s *Simulator) Join(name, secret string) error {
	if name == "" {
		return ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.timer != nil {
		s.timer.Stop()
	}

	s.joins++
	s.status = StatusConnecting
	s.current = name
	attempt := s.joins

	s.log("association started", slog.String("network", name), slog.Int("attempt", attempt))

	s.timer = time.AfterFunc(s.config.JoinDelay, func() {
		s.complete(attempt, name, secret)
	})
	return nil
}

// complete finishes association attempt n unless a newer one superseded it.
func (s *Simulator) complete(n int, name, secret string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || n != s.joins {
		return
	}
	if s.accepts(name, secret) {
		s.status = StatusConnected
		s.log("associated", slog.String("network", name), slog.String("addr", s.config.Addr.String()))
		return
	}
	s.status = StatusConnectFailed
	s.log("association refused", slog.String("network", name))
}

// accepts must be called with mu held.
func (s *Simulator) accepts(name, secret string) bool {
	if s.networks == nil {
		return true
	}
	want, ok := s.networks[name]
	return ok && want == secret
}

// Status returns the current association state.
func (s *Simulator) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Addr returns the assigned address while connected.
func (s *Simulator) Addr() netip.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusConnected {
		return netip.Addr{}
	}
	return s.config.Addr
}

// Network returns the name of the network last joined.
func (s *Simulator) Network() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Joins returns how many associations were started.
func (s *Simulator) Joins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.joins
}

// AddNetwork allows a credential for associations that complete afterwards.
func (s *Simulator) AddNetwork(name, secret string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.networks == nil {
		s.networks = make(map[string]string)
	}
	s.networks[name] = secret
}

// Drop simulates losing the association.
func (s *Simulator) Drop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusConnected {
		s.status = StatusDisconnected
		s.log("association lost", slog.String("network", s.current))
	}
}

// Close stops any pending association.
func (s *Simulator) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Simulator) log(msg string, args ...any) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, args...)
	}
}
