package client

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestCircuitBreakerOpensOnFailures(t *testing.T) {
	cfg := CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		Timeout:          50 * time.Millisecond,
	}
	cb := NewCircuitBreaker(cfg)

	for i := 0; i < 3; i++ {
		cb.RecordFailure(errors.New("backend down"))
	}
	if cb.State() != CircuitOpen {
		t.Fatalf("state = %v, want open", cb.State())
	}
	if err := cb.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("Allow = %v, want ErrCircuitOpen", err)
	}

	// After the timeout the breaker half-opens and lets a probe through.
	time.Sleep(60 * time.Millisecond)
	if err := cb.Allow(); err != nil {
		t.Fatalf("Allow after timeout = %v", err)
	}
	if cb.State() != CircuitHalfOpen {
		t.Fatalf("state = %v, want half-open", cb.State())
	}

	cb.RecordSuccess()
	cb.RecordSuccess()
	if cb.State() != CircuitClosed {
		t.Fatalf("state = %v, want closed after successes", cb.State())
	}
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cfg := CircuitBreakerConfig{FailureThreshold: 1, SuccessThreshold: 1, Timeout: 10 * time.Millisecond}
	cb := NewCircuitBreaker(cfg)

	cb.RecordFailure(errors.New("x"))
	time.Sleep(15 * time.Millisecond)
	_ = cb.Allow() // transitions to half-open
	cb.RecordFailure(errors.New("still down"))

	if cb.State() != CircuitOpen {
		t.Fatalf("state = %v, want open after half-open failure", cb.State())
	}
}

func TestResilientTransportRetriesRetryableStatus(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	retry := DefaultRetryConfig()
	retry.InitialBackoff = time.Millisecond
	rt := NewResilientTransport(http.DefaultTransport, retry, DefaultCircuitBreakerConfig())

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := rt.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("calls = %d, want 3", got)
	}
	m := rt.Metrics()
	if m["retried_requests"] != 2 {
		t.Fatalf("retried = %d, want 2", m["retried_requests"])
	}
}

func TestResilientTransportDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	retry := DefaultRetryConfig()
	retry.InitialBackoff = time.Millisecond
	rt := NewResilientTransport(http.DefaultTransport, retry, DefaultCircuitBreakerConfig())

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := rt.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}
	resp.Body.Close()
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("calls = %d, a 400 must not be retried", got)
	}
}
