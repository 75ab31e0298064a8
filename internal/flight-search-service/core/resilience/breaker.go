// Package resilience holds the retry and circuit-breaking primitives used in
// front of the pricing service.
package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned by Acquire while the breaker rejects calls.
var ErrCircuitOpen = errors.New("circuit open")

type State string

const (
	StateClosed   State = "CLOSED"
	StateOpen     State = "OPEN"
	StateHalfOpen State = "HALF_OPEN"
)

type BreakerConfig struct {
	// FailureThreshold failed calls inside FailureWindow open the circuit.
	FailureThreshold int
	FailureWindow    time.Duration
	// ResetTimeout is how long the circuit stays open before a trial call.
	ResetTimeout time.Duration
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		FailureWindow:    60 * time.Second,
		ResetTimeout:     30 * time.Second,
	}
}

// Snapshot is a point-in-time copy of the breaker state. ConsecutiveFailures
// counts the failures still inside the failure window.
type Snapshot struct {
	Name                string    `json:"name"`
	State               State     `json:"state"`
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	LastFailureAt       time.Time `json:"lastFailureAt,omitzero"`
	OpenUntil           time.Time `json:"openUntil,omitzero"`
}

// CircuitBreaker tracks the health of one downstream. All state sits behind a
// single mutex so every transition is atomic with respect to other callers.
type CircuitBreaker struct {
	name string
	cfg  BreakerConfig
	now  func() time.Time

	mu    sync.Mutex
	state State
	// failures holds the failure times inside FailureWindow, oldest first.
	failures      []time.Time
	lastFailureAt time.Time
	openUntil     time.Time
	trialInFlight bool

	onStateChange func(name string, from, to State)
}

type BreakerOption func(*CircuitBreaker)

// WithBreakerClock replaces time.Now, for tests.
func WithBreakerClock(now func() time.Time) BreakerOption {
	return func(b *CircuitBreaker) { b.now = now }
}

// WithStateChangeHook is called under the breaker lock on every transition;
// it must not call back into the breaker.
func WithStateChangeHook(fn func(name string, from, to State)) BreakerOption {
	return func(b *CircuitBreaker) { b.onStateChange = fn }
}

func NewCircuitBreaker(name string, cfg BreakerConfig, opts ...BreakerOption) *CircuitBreaker {
	def := DefaultBreakerConfig()
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.FailureWindow <= 0 {
		cfg.FailureWindow = def.FailureWindow
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = def.ResetTimeout
	}

	b := &CircuitBreaker{
		name:  name,
		cfg:   cfg,
		now:   time.Now,
		state: StateClosed,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *CircuitBreaker) Name() string { return b.name }

// Acquire asks permission to call the downstream. trial is true when the
// caller holds the single half-open permit and must report back with it.
func (b *CircuitBreaker) Acquire() (trial bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return false, nil
	case StateOpen:
		if b.now().Before(b.openUntil) {
			return false, ErrCircuitOpen
		}
		b.transition(StateHalfOpen)
		b.trialInFlight = true
		return true, nil
	default:
		if b.trialInFlight {
			return false, ErrCircuitOpen
		}
		b.trialInFlight = true
		return true, nil
	}
}

// OnSuccess closes the circuit. A success reported by a call that started
// before the circuit opened is ignored while the circuit is not closed.
func (b *CircuitBreaker) OnSuccess(trial bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateClosed && !trial {
		return
	}
	b.trialInFlight = false
	b.failures = b.failures[:0]
	b.openUntil = time.Time{}
	b.transition(StateClosed)
}

// OnFailure counts a failed call. A failed trial reopens the circuit at once.
func (b *CircuitBreaker) OnFailure(trial bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if trial {
		b.trialInFlight = false
		b.record(now)
		b.open(now)
		return
	}
	if b.state != StateClosed {
		return
	}

	b.record(now)
	if len(b.failures) >= b.cfg.FailureThreshold {
		b.open(now)
	}
}

// record drops failures older than FailureWindow and appends now.
func (b *CircuitBreaker) record(now time.Time) {
	b.prune(now)
	b.failures = append(b.failures, now)
	b.lastFailureAt = now
}

func (b *CircuitBreaker) prune(now time.Time) {
	cutoff := now.Add(-b.cfg.FailureWindow)
	i := 0
	for i < len(b.failures) && b.failures[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		b.failures = append(b.failures[:0], b.failures[i:]...)
	}
}

func (b *CircuitBreaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.prune(b.now())
	return Snapshot{
		Name:                b.name,
		State:               b.state,
		ConsecutiveFailures: len(b.failures),
		LastFailureAt:       b.lastFailureAt,
		OpenUntil:           b.openUntil,
	}
}

// Reset forces the breaker back to CLOSED with a clean counter.
func (b *CircuitBreaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = nil
	b.lastFailureAt = time.Time{}
	b.openUntil = time.Time{}
	b.trialInFlight = false
	b.transition(StateClosed)
}

func (b *CircuitBreaker) open(now time.Time) {
	b.openUntil = now.Add(b.cfg.ResetTimeout)
	b.transition(StateOpen)
}

func (b *CircuitBreaker) transition(to State) {
	from := b.state
	b.state = to
	if from != to && b.onStateChange != nil {
		b.onStateChange(b.name, from, to)
	}
}
