package connection

import (
	"math/rand"
	"sync"
	"time"
)

// Default exponential backoff parameters.
const (
	// InitialBackoff is the initial delay.
	InitialBackoff = 1 * time.Second

	// MaxBackoff is the maximum delay.
	MaxBackoff = 60 * time.Second

	// BackoffMultiplier is the factor by which the delay increases.
	BackoffMultiplier = 2.0

	// JitterFactor is the maximum jitter as a fraction of base delay.
	JitterFactor = 0.25
)

// Backoff calculates delays between connection attempts.
type Backoff struct {
	mu sync.Mutex

	// Current delay (before jitter)
	current time.Duration

	initial    time.Duration
	max        time.Duration
	multiplier float64
	jitter     float64

	attempts int

	rng *rand.Rand
}

// NewBackoff creates an exponential backoff with default settings.
func NewBackoff() *Backoff {
	return NewBackoffWithConfig(BackoffConfig{
		Initial:    InitialBackoff,
		Max:        MaxBackoff,
		Multiplier: BackoffMultiplier,
		Jitter:     JitterFactor,
	})
}

// NewFixedBackoff creates a backoff that always returns interval.
func NewFixedBackoff(interval time.Duration) *Backoff {
	return NewBackoffWithConfig(BackoffConfig{
		Initial:    interval,
		Max:        interval,
		Multiplier: 1,
	})
}

// BackoffConfig allows customizing backoff parameters.
// A Multiplier of exactly 1 yields a fixed interval.
type BackoffConfig struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     float64
}

// NewBackoffWithConfig creates a backoff calculator with custom settings.
func NewBackoffWithConfig(cfg BackoffConfig) *Backoff {
	if cfg.Initial <= 0 {
		cfg.Initial = InitialBackoff
	}
	if cfg.Max < cfg.Initial {
		cfg.Max = cfg.Initial
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = BackoffMultiplier
	}
	if cfg.Jitter < 0 {
		cfg.Jitter = 0
	}

	return &Backoff{
		current:    cfg.Initial,
		initial:    cfg.Initial,
		max:        cfg.Max,
		multiplier: cfg.Multiplier,
		jitter:     cfg.Jitter,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next returns the next delay (with jitter) and advances the backoff.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	delay := b.addJitter(b.current)

	b.attempts++
	next := time.Duration(float64(b.current) * b.multiplier)
	if next > b.max {
		next = b.max
	}
	b.current = next

	return delay
}

// Reset restores the initial delay. Call this after a successful connection.
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = b.initial
	b.attempts = 0
}

// Attempts returns the number of delays handed out since last reset.
func (b *Backoff) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}

func (b *Backoff) addJitter(d time.Duration) time.Duration {
	if b.jitter <= 0 {
		return d
	}
	return d + time.Duration(float64(d)*b.jitter*b.rng.Float64())
}
