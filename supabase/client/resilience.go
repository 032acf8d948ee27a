// Retry and circuit-breaker support around the Supabase HTTP transport.
// Retries cover transient network failures and retryable status codes;
// the breaker keeps a flapping backend from absorbing every request.
package client

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// RetryConfig configures retry behavior.
type RetryConfig struct {
	MaxRetries           int
	InitialBackoff       time.Duration
	MaxBackoff           time.Duration
	BackoffMultiplier    float64
	Jitter               float64 // 0.0 to 1.0
	RetryableStatusCodes []int
}

// DefaultRetryConfig returns sensible defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        3,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        10 * time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            0.1,
		RetryableStatusCodes: []int{
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
		},
	}
}

// =============================================================================
// Circuit Breaker
// =============================================================================

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures circuit breaker behavior.
type CircuitBreakerConfig struct {
	// FailureThreshold is the number of failures before opening.
	FailureThreshold int
	// SuccessThreshold is the number of half-open successes to close.
	SuccessThreshold int
	// Timeout is how long the circuit stays open before half-open.
	Timeout time.Duration
	// OnStateChange is called when the circuit state changes.
	OnStateChange func(from, to CircuitState)
}

// DefaultCircuitBreakerConfig returns sensible defaults.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Timeout:          30 * time.Second,
	}
}

// ErrCircuitOpen is returned when the circuit is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker implements the circuit breaker pattern.
type CircuitBreaker struct {
	mu sync.RWMutex

	config CircuitBreakerConfig
	state  CircuitState

	failures  int
	successes int
	lastError error
	openedAt  time.Time
}

// NewCircuitBreaker creates a new circuit breaker.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{config: config, state: CircuitClosed}
}

// Allow checks if a request should be allowed.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitOpen:
		if time.Since(cb.openedAt) > cb.config.Timeout {
			cb.transitionTo(CircuitHalfOpen)
			return nil
		}
		return ErrCircuitOpen
	default:
		return nil
	}
}

// RecordSuccess records a successful request.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		cb.failures = 0
	case CircuitHalfOpen:
		cb.successes++
		if cb.successes >= cb.config.SuccessThreshold {
			cb.transitionTo(CircuitClosed)
		}
	}
}

// RecordFailure records a failed request.
func (cb *CircuitBreaker) RecordFailure(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastError = err

	switch cb.state {
	case CircuitClosed:
		cb.failures++
		if cb.failures >= cb.config.FailureThreshold {
			cb.transitionTo(CircuitOpen)
		}
	case CircuitHalfOpen:
		cb.transitionTo(CircuitOpen)
	}
}

func (cb *CircuitBreaker) transitionTo(newState CircuitState) {
	oldState := cb.state
	cb.state = newState

	switch newState {
	case CircuitClosed:
		cb.failures = 0
		cb.successes = 0
	case CircuitOpen:
		cb.openedAt = time.Now()
		cb.successes = 0
	case CircuitHalfOpen:
		cb.successes = 0
	}

	if cb.config.OnStateChange != nil {
		go cb.config.OnStateChange(oldState, newState)
	}
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// LastError returns the last recorded error.
func (cb *CircuitBreaker) LastError() error {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.lastError
}

// =============================================================================
// Resilient Transport
// =============================================================================

// ResilientTransport wraps a RoundTripper with retry and circuit breaker.
type ResilientTransport struct {
	base    http.RoundTripper
	retry   RetryConfig
	breaker *CircuitBreaker

	totalRequests   int64
	successRequests int64
	failedRequests  int64
	retriedRequests int64
}

// NewResilientTransport creates a resilient RoundTripper.
func NewResilientTransport(base http.RoundTripper, retry RetryConfig, breaker CircuitBreakerConfig) *ResilientTransport {
	if base == nil {
		base = &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
		}
	}
	return &ResilientTransport{
		base:    base,
		retry:   retry,
		breaker: NewCircuitBreaker(breaker),
	}
}

// RoundTrip executes the request with retry and circuit breaker.
func (rt *ResilientTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	atomic.AddInt64(&rt.totalRequests, 1)

	if err := rt.breaker.Allow(); err != nil {
		atomic.AddInt64(&rt.failedRequests, 1)
		return nil, err
	}

	var lastErr error
	var resp *http.Response

	for attempt := 0; attempt <= rt.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			atomic.AddInt64(&rt.retriedRequests, 1)

			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(rt.backoff(attempt)):
			}
			req = req.Clone(req.Context())
		}

		resp, lastErr = rt.base.RoundTrip(req)

		if lastErr != nil {
			if rt.isRetryableError(lastErr) {
				continue
			}
			rt.breaker.RecordFailure(lastErr)
			atomic.AddInt64(&rt.failedRequests, 1)
			return nil, lastErr
		}

		if rt.isRetryableStatusCode(resp.StatusCode) {
			lastErr = &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
			resp.Body.Close()
			continue
		}

		rt.breaker.RecordSuccess()
		atomic.AddInt64(&rt.successRequests, 1)
		return resp, nil
	}

	rt.breaker.RecordFailure(lastErr)
	atomic.AddInt64(&rt.failedRequests, 1)
	return resp, lastErr
}

func (rt *ResilientTransport) backoff(attempt int) time.Duration {
	backoff := float64(rt.retry.InitialBackoff) * math.Pow(rt.retry.BackoffMultiplier, float64(attempt-1))
	if backoff > float64(rt.retry.MaxBackoff) {
		backoff = float64(rt.retry.MaxBackoff)
	}
	if rt.retry.Jitter > 0 {
		backoff += backoff * rt.retry.Jitter * (rand.Float64()*2 - 1)
	}
	return time.Duration(backoff)
}

func (rt *ResilientTransport) isRetryableError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

func (rt *ResilientTransport) isRetryableStatusCode(code int) bool {
	for _, retryable := range rt.retry.RetryableStatusCodes {
		if code == retryable {
			return true
		}
	}
	return false
}

// CircuitState returns the breaker state.
func (rt *ResilientTransport) CircuitState() CircuitState {
	return rt.breaker.State()
}

// Metrics returns transport counters.
func (rt *ResilientTransport) Metrics() map[string]int64 {
	return map[string]int64{
		"total_requests":   atomic.LoadInt64(&rt.totalRequests),
		"success_requests": atomic.LoadInt64(&rt.successRequests),
		"failed_requests":  atomic.LoadInt64(&rt.failedRequests),
		"retried_requests": atomic.LoadInt64(&rt.retriedRequests),
	}
}

// NewResilient creates a Supabase client whose HTTP transport retries
// transient failures behind a circuit breaker.
func NewResilient(cfg Config, retry RetryConfig, breaker CircuitBreakerConfig) (*Client, error) {
	transport := NewResilientTransport(nil, retry, breaker)
	cfg.HTTPClient = &http.Client{
		Transport: transport,
		Timeout:   30 * time.Second,
	}
	return New(cfg)
}
