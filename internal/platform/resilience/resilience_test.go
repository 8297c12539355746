package resilience

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestCircuitBreaker_OpensAfterFailureRun(t *testing.T) {
	b := NewCircuitBreaker(3, time.Minute, 1)

	for i := 0; i < 3; i++ {
		if err := b.Allow(); err != nil {
			t.Fatalf("closed breaker rejected request %d: %v", i, err)
		}
		b.RecordFailure()
	}

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if got := b.State(); got != CircuitStateOpen {
		t.Fatalf("state = %s, want open", got)
	}
}

func TestCircuitBreaker_SuccessResetsFailureRun(t *testing.T) {
	b := NewCircuitBreaker(3, time.Minute, 1)

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	b.RecordFailure()

	if err := b.Allow(); err != nil {
		t.Fatalf("breaker opened before threshold: %v", err)
	}
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	b := NewCircuitBreaker(1, 10*time.Millisecond, 2)
	now := time.Now()
	b.clock = func() time.Time { return now }

	b.RecordFailure()
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatal("breaker should be open")
	}

	now = now.Add(20 * time.Millisecond)

	// Two probes allowed, a third rejected while they are in flight.
	if err := b.Allow(); err != nil {
		t.Fatalf("first probe rejected: %v", err)
	}
	if err := b.Allow(); err != nil {
		t.Fatalf("second probe rejected: %v", err)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatal("probe budget not enforced")
	}

	b.RecordSuccess()
	b.RecordSuccess()

	if got := b.State(); got != CircuitStateClosed {
		t.Fatalf("state after successful probes = %s, want closed", got)
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	b := NewCircuitBreaker(1, 10*time.Millisecond, 1)
	now := time.Now()
	b.clock = func() time.Time { return now }

	b.RecordFailure()
	now = now.Add(20 * time.Millisecond)

	if err := b.Allow(); err != nil {
		t.Fatalf("probe rejected: %v", err)
	}
	b.RecordFailure()

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatal("failed probe must reopen the breaker")
	}
}

func TestSingleFlight_CollapsesConcurrentCalls(t *testing.T) {
	var g SingleFlight
	var executions atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]any, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err, _ := g.Do("k", func() (any, error) {
				executions.Add(1)
				<-release
				return "value", nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			results[i] = v
		}(i)
	}

	// Give the leader time to claim the key before releasing it.
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := executions.Load(); n != 1 {
		t.Fatalf("fn executed %d times, want 1", n)
	}
	for i, v := range results {
		if v != "value" {
			t.Fatalf("caller %d got %v", i, v)
		}
	}
}

func TestSingleFlight_KeyReusableAfterCompletion(t *testing.T) {
	var g SingleFlight
	var executions atomic.Int32

	for i := 0; i < 3; i++ {
		_, err, shared := g.Do("k", func() (any, error) {
			executions.Add(1)
			return nil, nil
		})
		if err != nil {
			t.Fatal(err)
		}
		if shared {
			t.Fatalf("sequential call %d should not be shared", i)
		}
	}

	if n := executions.Load(); n != 3 {
		t.Fatalf("fn executed %d times, want 3", n)
	}
}
