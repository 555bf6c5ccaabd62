package respectify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// CircuitBreakerConfig holds circuit breaker settings.
type CircuitBreakerConfig struct {
	MaxRequests   uint32                                      // Max requests in half-open state
	Interval      time.Duration                               // Interval for closed state
	Timeout       time.Duration                               // Timeout for open state
	ReadyToTrip   func(counts gobreaker.Counts) bool          // Custom trip condition
	OnStateChange func(name string, from, to gobreaker.State) // State change callback
}

// errFailureStatus marks responses whose status should count as a breaker
// failure (auth rejections and server errors). It never escapes Post/Get;
// the response is handed back to the caller untouched.
var errFailureStatus = errors.New("failure status")

// CircuitBreakerTransport wraps a Transport with a circuit breaker. While
// the circuit is open, calls fail immediately with gobreaker.ErrOpenState
// without touching the network.
type CircuitBreakerTransport struct {
	inner Transport
	cb    *gobreaker.CircuitBreaker[*Response]
}

// NewCircuitBreakerTransport wraps a transport with circuit breaker
// protection.
func NewCircuitBreakerTransport(inner Transport, config *CircuitBreakerConfig) *CircuitBreakerTransport {
	if config == nil {
		config = &CircuitBreakerConfig{
			MaxRequests: 10,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.ConsecutiveFailures >= 5 ||
					(counts.Requests >= 10 && failureRatio > 0.6)
			},
		}
	}

	settings := gobreaker.Settings{
		Name:        "respectify-api",
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: config.ReadyToTrip,
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String())

			if to == gobreaker.StateOpen {
				defaultMetrics.RecordCircuitBreakerTrip(name)
			}
			defaultMetrics.RecordCircuitBreakerState(name, stateToInt(to))

			if config.OnStateChange != nil {
				config.OnStateChange(name, from, to)
			}
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			// Caller cancellation says nothing about server health.
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return true
			}
			return false
		},
	}

	return &CircuitBreakerTransport{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker[*Response](settings),
	}
}

// Post implements Transport.
func (t *CircuitBreakerTransport) Post(ctx context.Context, url string, headers map[string]string, body []byte) (*Response, error) {
	return t.execute(func() (*Response, error) {
		return t.inner.Post(ctx, url, headers, body)
	})
}

// Get implements Transport.
func (t *CircuitBreakerTransport) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return t.execute(func() (*Response, error) {
		return t.inner.Get(ctx, url, headers)
	})
}

func (t *CircuitBreakerTransport) execute(call func() (*Response, error)) (*Response, error) {
	resp, err := t.cb.Execute(func() (*Response, error) {
		resp, err := call()
		if err != nil {
			return nil, err
		}
		if shouldTripCircuit(resp.StatusCode) {
			return resp, errFailureStatus
		}
		return resp, nil
	})

	// A failure-status response still reaches the caller; only the
	// breaker's failure counting saw it as an error.
	if resp != nil && errors.Is(err, errFailureStatus) {
		return resp, nil
	}
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			slog.Debug("Circuit breaker rejected request", "error", err)
		}
		return nil, err
	}
	return resp, nil
}

// shouldTripCircuit reports whether a status code counts as a breaker
// failure. Auth rejections and server errors do; ordinary client errors
// such as 400 do not indicate an unhealthy upstream.
func shouldTripCircuit(status int) bool {
	return status == 401 || status == 403 || status >= 500
}

// State returns the current state of the circuit breaker.
func (t *CircuitBreakerTransport) State() gobreaker.State {
	return t.cb.State()
}

// Counts returns the current counts of the circuit breaker.
func (t *CircuitBreakerTransport) Counts() gobreaker.Counts {
	return t.cb.Counts()
}

// Health returns the health status of the circuit breaker.
func (t *CircuitBreakerTransport) Health() HealthStatus {
	state := t.cb.State()
	counts := t.cb.Counts()

	var healthy bool
	var status string

	switch state {
	case gobreaker.StateClosed:
		healthy = true
		status = "closed"
	case gobreaker.StateHalfOpen:
		healthy = true // Degraded but operational
		status = "half-open"
	case gobreaker.StateOpen:
		healthy = false
		status = "open"
	default:
		status = "unknown"
	}

	return HealthStatus{
		Healthy: healthy,
		Status:  status,
		Details: map[string]interface{}{
			"state":                 state.String(),
			"requests":              counts.Requests,
			"total_successes":       counts.TotalSuccesses,
			"total_failures":        counts.TotalFailures,
			"consecutive_failures":  counts.ConsecutiveFailures,
			"consecutive_successes": counts.ConsecutiveSuccesses,
		},
	}
}

func stateToInt(state gobreaker.State) int {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
