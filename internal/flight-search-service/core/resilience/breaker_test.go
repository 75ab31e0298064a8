package resilience

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestBreaker(clock *fakeClock) *CircuitBreaker {
	return NewCircuitBreaker("pricing", BreakerConfig{
		FailureThreshold: 3,
		FailureWindow:    time.Minute,
		ResetTimeout:     30 * time.Second,
	}, WithBreakerClock(clock.Now))
}

func failN(t *testing.T, b *CircuitBreaker, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		trial, err := b.Acquire()
		if err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
		b.OnFailure(trial)
	}
}

func TestBreakerOpensAtThreshold(t *testing.T) {
	clock := newFakeClock()
	b := newTestBreaker(clock)

	failN(t, b, 2)
	if got := b.Snapshot().State; got != StateClosed {
		t.Fatalf("state after 2 failures = %s", got)
	}

	failN(t, b, 1)
	snap := b.Snapshot()
	if snap.State != StateOpen {
		t.Fatalf("state after 3 failures = %s", snap.State)
	}
	if !snap.OpenUntil.Equal(clock.Now().Add(30 * time.Second)) {
		t.Errorf("openUntil = %v", snap.OpenUntil)
	}

	if _, err := b.Acquire(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("acquire while open: %v", err)
	}
}

func TestBreakerSingleTrialAfterResetTimeout(t *testing.T) {
	clock := newFakeClock()
	b := newTestBreaker(clock)
	failN(t, b, 3)

	clock.Advance(29 * time.Second)
	if _, err := b.Acquire(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("acquire before timeout: %v", err)
	}

	clock.Advance(time.Second)
	trial, err := b.Acquire()
	if err != nil || !trial {
		t.Fatalf("first acquire after timeout: trial=%v err=%v", trial, err)
	}
	if got := b.Snapshot().State; got != StateHalfOpen {
		t.Fatalf("state = %s", got)
	}

	for i := 0; i < 5; i++ {
		if _, err := b.Acquire(); !errors.Is(err, ErrCircuitOpen) {
			t.Fatalf("concurrent acquire %d during trial: %v", i, err)
		}
	}

	b.OnSuccess(true)
	snap := b.Snapshot()
	if snap.State != StateClosed || snap.ConsecutiveFailures != 0 {
		t.Fatalf("after successful trial: %+v", snap)
	}
}

func TestBreakerFailedTrialReopens(t *testing.T) {
	clock := newFakeClock()
	b := newTestBreaker(clock)
	failN(t, b, 3)

	clock.Advance(30 * time.Second)
	trial, err := b.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	b.OnFailure(trial)

	snap := b.Snapshot()
	if snap.State != StateOpen {
		t.Fatalf("state = %s", snap.State)
	}
	if !snap.OpenUntil.Equal(clock.Now().Add(30 * time.Second)) {
		t.Errorf("openUntil = %v", snap.OpenUntil)
	}
}

func TestBreakerFailureWindowRestartsCount(t *testing.T) {
	clock := newFakeClock()
	b := newTestBreaker(clock)

	failN(t, b, 2)
	clock.Advance(2 * time.Minute)
	failN(t, b, 1)

	snap := b.Snapshot()
	if snap.State != StateClosed || snap.ConsecutiveFailures != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestBreakerFailureWindowRolls(t *testing.T) {
	tests := []struct {
		name      string
		spacing   time.Duration
		failures  int
		wantState State
		wantCount int
	}{
		{name: "spread past the window", spacing: 50 * time.Second, failures: 5, wantState: StateClosed, wantCount: 2},
		{name: "inside the window", spacing: 10 * time.Second, failures: 5, wantState: StateOpen, wantCount: 5},
		{name: "oldest exactly at the window edge", spacing: 15 * time.Second, failures: 5, wantState: StateOpen, wantCount: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			b := NewCircuitBreaker("pricing", BreakerConfig{
				FailureThreshold: 5,
				FailureWindow:    time.Minute,
				ResetTimeout:     30 * time.Second,
			}, WithBreakerClock(clock.Now))

			for i := 0; i < tt.failures; i++ {
				if i > 0 {
					clock.Advance(tt.spacing)
				}
				failN(t, b, 1)
			}

			snap := b.Snapshot()
			if snap.State != tt.wantState || snap.ConsecutiveFailures != tt.wantCount {
				t.Fatalf("snapshot = %+v, want state %s with %d failures", snap, tt.wantState, tt.wantCount)
			}
		})
	}
}

func TestBreakerSnapshotForgetsExpiredFailures(t *testing.T) {
	clock := newFakeClock()
	b := newTestBreaker(clock)

	failN(t, b, 2)
	clock.Advance(61 * time.Second)

	if got := b.Snapshot().ConsecutiveFailures; got != 0 {
		t.Fatalf("failures = %d, want 0", got)
	}
	failN(t, b, 2)
	if got := b.Snapshot().State; got != StateClosed {
		t.Fatalf("state = %s", got)
	}
}

func TestBreakerSuccessResetsCounter(t *testing.T) {
	b := newTestBreaker(newFakeClock())

	failN(t, b, 2)
	b.OnSuccess(false)
	failN(t, b, 2)

	if got := b.Snapshot().State; got != StateClosed {
		t.Fatalf("state = %s", got)
	}
}

func TestBreakerIgnoresStaleSuccessWhileOpen(t *testing.T) {
	b := newTestBreaker(newFakeClock())
	failN(t, b, 3)

	b.OnSuccess(false)
	if got := b.Snapshot().State; got != StateOpen {
		t.Fatalf("state = %s", got)
	}
}

func TestBreakerResetAndHook(t *testing.T) {
	var transitions []string
	clock := newFakeClock()
	b := NewCircuitBreaker("pricing", BreakerConfig{FailureThreshold: 1},
		WithBreakerClock(clock.Now),
		WithStateChangeHook(func(_ string, from, to State) {
			transitions = append(transitions, string(from)+">"+string(to))
		}))

	failN(t, b, 1)
	b.Reset()

	if got := b.Snapshot(); got.State != StateClosed || got.ConsecutiveFailures != 0 || !got.OpenUntil.IsZero() {
		t.Fatalf("after reset: %+v", got)
	}
	want := []string{"CLOSED>OPEN", "OPEN>CLOSED"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v", transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d = %s, want %s", i, transitions[i], want[i])
		}
	}
}

func TestBreakerConcurrentAcquire(t *testing.T) {
	clock := newFakeClock()
	b := newTestBreaker(clock)
	failN(t, b, 3)
	clock.Advance(time.Minute)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		trials int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if trial, err := b.Acquire(); err == nil && trial {
				mu.Lock()
				trials++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if trials != 1 {
		t.Fatalf("trial permits granted = %d, want 1", trials)
	}
}
