package llm

import (
	"testing"
	"time"
)

// fakeClock lets tests move time without sleeping.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(maxFailures int, cooldown time.Duration) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	cb := NewCircuitBreaker(maxFailures, cooldown)
	cb.now = clock.now
	return cb, clock
}

func TestCircuitBreaker_StartsClosedAndAllows(t *testing.T) {
	cb, _ := newTestBreaker(3, time.Second)
	if cb.State() != CircuitClosed {
		t.Errorf("expected closed, got %s", cb.State())
	}
	if !cb.Allow() {
		t.Error("closed circuit should allow requests")
	}
}

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	cb, _ := newTestBreaker(3, time.Second)
	for i := 0; i < 3; i++ {
		cb.RecordFailure()
	}
	if cb.State() != CircuitOpen {
		t.Errorf("expected open after 3 failures, got %s", cb.State())
	}
	if cb.Allow() {
		t.Error("open circuit should reject requests")
	}
}

func TestCircuitBreaker_HalfOpenAllowsSingleProbe(t *testing.T) {
	cb, clock := newTestBreaker(2, time.Second)
	cb.RecordFailure()
	cb.RecordFailure()

	clock.advance(1500 * time.Millisecond)
	if !cb.Allow() {
		t.Fatal("should allow a probe after cooldown")
	}
	if cb.State() != CircuitHalfOpen {
		t.Errorf("expected half-open, got %s", cb.State())
	}
	if cb.Allow() {
		t.Error("second concurrent probe should be rejected")
	}
}

func TestCircuitBreaker_ClosesAfterSuccessesInHalfOpen(t *testing.T) {
	cb, clock := newTestBreaker(2, time.Second)
	cb.RecordFailure()
	cb.RecordFailure()
	clock.advance(2 * time.Second)

	cb.Allow()
	cb.RecordSuccess()
	cb.Allow()
	cb.RecordSuccess()
	if cb.State() != CircuitClosed {
		t.Errorf("expected closed after successes in half-open, got %s", cb.State())
	}
}

func TestCircuitBreaker_ReOpensOnFailureInHalfOpen(t *testing.T) {
	cb, clock := newTestBreaker(2, time.Second)
	cb.RecordFailure()
	cb.RecordFailure()
	clock.advance(2 * time.Second)
	cb.Allow()

	cb.RecordFailure()
	if cb.State() != CircuitOpen {
		t.Errorf("expected open after failure in half-open, got %s", cb.State())
	}
	if cb.Allow() {
		t.Error("re-opened circuit should wait a full cooldown")
	}
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb, _ := newTestBreaker(3, time.Second)
	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	if cb.State() != CircuitClosed {
		t.Error("expected closed after success reset")
	}
}

func TestCircuitBreaker_ReportsTransitions(t *testing.T) {
	cb, clock := newTestBreaker(1, time.Second)
	var seen []string
	cb.OnStateChange(func(from, to CircuitState) {
		seen = append(seen, from.String()+"->"+to.String())
	})

	cb.RecordFailure()
	clock.advance(2 * time.Second)
	cb.Allow()
	cb.Reset()

	want := []string{"closed->open", "open->half-open", "half-open->closed"}
	if len(seen) != len(want) {
		t.Fatalf("transitions = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("transition %d = %s, want %s", i, seen[i], want[i])
		}
	}
}

func TestCircuitBreaker_DefaultValues(t *testing.T) {
	cb := NewCircuitBreaker(0, 0)
	if cb.maxFailures != 5 {
		t.Errorf("expected default maxFailures 5, got %d", cb.maxFailures)
	}
	if cb.cooldown != 30*time.Second {
		t.Errorf("expected default cooldown 30s, got %v", cb.cooldown)
	}
}
