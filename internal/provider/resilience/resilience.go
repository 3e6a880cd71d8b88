// Package resilience wraps outbound provider calls with a circuit breaker
// and retry with exponential backoff, and tracks per-provider health for
// readiness reporting.
package resilience

import (
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned when the provider's circuit breaker rejects
// the call.
var ErrCircuitOpen = errors.New("resilience: circuit open")

// BreakerConfig configures the circuit breaker guarding a provider.
type BreakerConfig struct {
	// Name identifies the breaker in state-change callbacks.
	Name string

	// MaxRequests allowed through while half-open. Default 1.
	MaxRequests uint32

	// Interval for clearing counts while closed. Zero disables clearing.
	Interval time.Duration

	// Timeout in open state before probing half-open. Default 60s.
	Timeout time.Duration

	// ReadyToTrip overrides the default trip condition.
	ReadyToTrip func(counts gobreaker.Counts) bool

	// OnStateChange is invoked on breaker transitions.
	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultBreakerConfig trips after at least 5 requests with a failure rate
// of 50% or more, and probes again after 60 seconds.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:        name,
		MaxRequests: 1,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
	}
}

func newBreaker(cfg BreakerConfig) *gobreaker.CircuitBreaker[*http.Response] {
	return gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:          cfg.Name,
		MaxRequests:   cfg.MaxRequests,
		Interval:      cfg.Interval,
		Timeout:       cfg.Timeout,
		ReadyToTrip:   cfg.ReadyToTrip,
		OnStateChange: cfg.OnStateChange,
	})
}
