package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

func testBreakerConfig(name string) Config {
	return Config{
		Name:                name,
		MaxRequests:         1,
		ConsecutiveFailures: 3,
		Cooldown:            50 * time.Millisecond,
	}
}

func TestCircuitBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	cb := New(testBreakerConfig("trip-test"))
	testErr := errors.New("provider down")

	// First two failures keep the circuit closed
	for i := 0; i < 2; i++ {
		_, err := cb.Execute(func() (interface{}, error) {
			return nil, testErr
		})
		if !errors.Is(err, testErr) {
			t.Fatalf("attempt %d: expected provider error, got %v", i+1, err)
		}
		if cb.State() != gobreaker.StateClosed {
			t.Fatalf("attempt %d: expected closed state, got %v", i+1, cb.State())
		}
	}

	// Third consecutive failure trips the circuit
	_, _ = cb.Execute(func() (interface{}, error) {
		return nil, testErr
	})
	if cb.State() != gobreaker.StateOpen {
		t.Errorf("expected open state after 3 consecutive failures, got %v", cb.State())
	}
	if !cb.IsOpen() {
		t.Error("IsOpen should report true for an open circuit")
	}
}

func TestCircuitBreaker_OpenRejectsWithoutInvoking(t *testing.T) {
	cb := New(testBreakerConfig("reject-test"))
	testErr := errors.New("provider down")

	for i := 0; i < 3; i++ {
		_, _ = cb.Execute(func() (interface{}, error) {
			return nil, testErr
		})
	}

	invoked := false
	_, err := cb.Execute(func() (interface{}, error) {
		invoked = true
		return nil, nil
	})

	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected ErrOpenState, got %v", err)
	}
	if invoked {
		t.Error("function must not be invoked while the circuit is open")
	}
}

func TestCircuitBreaker_SuccessResetsFailureRun(t *testing.T) {
	cb := New(testBreakerConfig("reset-test"))
	testErr := errors.New("provider down")

	fail := func() (interface{}, error) { return nil, testErr }
	succeed := func() (interface{}, error) { return "ok", nil }

	// fail, fail, success, fail, fail - never 3 in a row
	_, _ = cb.Execute(fail)
	_, _ = cb.Execute(fail)
	_, _ = cb.Execute(succeed)
	_, _ = cb.Execute(fail)
	_, _ = cb.Execute(fail)

	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected closed state, interleaved success should reset the run, got %v", cb.State())
	}
}

func TestCircuitBreaker_CooldownAdmitsProbe(t *testing.T) {
	cb := New(testBreakerConfig("probe-test"))
	testErr := errors.New("provider down")

	for i := 0; i < 3; i++ {
		_, _ = cb.Execute(func() (interface{}, error) {
			return nil, testErr
		})
	}
	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("expected open state, got %v", cb.State())
	}

	// Wait out the cooldown, then the next call goes through as a probe
	time.Sleep(60 * time.Millisecond)

	result, err := cb.Execute(func() (interface{}, error) {
		return "recovered", nil
	})
	if err != nil {
		t.Fatalf("probe should be admitted after cooldown, got %v", err)
	}
	if result != "recovered" {
		t.Errorf("expected probe result, got %v", result)
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected closed state after successful probe, got %v", cb.State())
	}
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	cb := New(testBreakerConfig("reopen-test"))
	testErr := errors.New("provider down")

	for i := 0; i < 3; i++ {
		_, _ = cb.Execute(func() (interface{}, error) {
			return nil, testErr
		})
	}

	time.Sleep(60 * time.Millisecond)

	_, err := cb.Execute(func() (interface{}, error) {
		return nil, testErr
	})
	if !errors.Is(err, testErr) {
		t.Fatalf("expected probe to run and fail, got %v", err)
	}
	if cb.State() != gobreaker.StateOpen {
		t.Errorf("expected open state after failed probe, got %v", cb.State())
	}
}

func TestRegistry_SharesBreakerPerEndpoint(t *testing.T) {
	reg := NewRegistry()

	a := reg.Get(testBreakerConfig("shared"))
	b := reg.Get(testBreakerConfig("shared"))
	if a != b {
		t.Error("expected the same breaker instance for the same endpoint name")
	}

	other := reg.Get(testBreakerConfig("other"))
	if a == other {
		t.Error("expected distinct breakers for distinct endpoint names")
	}
}

func TestRegistry_EndpointIsolation(t *testing.T) {
	reg := NewRegistry()
	testErr := errors.New("provider down")

	weather := reg.Get(testBreakerConfig("weather-iso"))
	places := reg.Get(testBreakerConfig("places-iso"))

	for i := 0; i < 3; i++ {
		_, _ = weather.Execute(func() (interface{}, error) {
			return nil, testErr
		})
	}

	if weather.State() != gobreaker.StateOpen {
		t.Fatalf("expected weather breaker open, got %v", weather.State())
	}
	if places.State() != gobreaker.StateClosed {
		t.Errorf("places breaker must stay closed when only weather fails, got %v", places.State())
	}

	// The healthy endpoint still serves calls
	result, err := places.Execute(func() (interface{}, error) {
		return "ok", nil
	})
	if err != nil || result != "ok" {
		t.Errorf("expected healthy endpoint to serve, got %v, %v", result, err)
	}
}

func TestRegistry_States(t *testing.T) {
	reg := NewRegistry()
	testErr := errors.New("provider down")

	open := reg.Get(testBreakerConfig("states-open"))
	_ = reg.Get(testBreakerConfig("states-closed"))

	for i := 0; i < 3; i++ {
		_, _ = open.Execute(func() (interface{}, error) {
			return nil, testErr
		})
	}

	states := reg.States()
	if states["states-open"] != "open" {
		t.Errorf("expected states-open to report open, got %q", states["states-open"])
	}
	if states["states-closed"] != "closed" {
		t.Errorf("expected states-closed to report closed, got %q", states["states-closed"])
	}
}
