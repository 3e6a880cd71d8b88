package resilience

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// ClientConfig holds configuration for a resilient HTTP client.
type ClientConfig struct {
	// Name identifies the provider this client talks to.
	Name string

	// Timeout per HTTP attempt. Default 10s.
	Timeout time.Duration

	// MaxRetries after the first attempt. Default 3.
	MaxRetries uint64

	// InitialInterval of the retry backoff. Default 100ms.
	InitialInterval time.Duration

	// MaxInterval caps the retry backoff. Default 5s.
	MaxInterval time.Duration

	// Breaker overrides the breaker configuration. Nil uses
	// DefaultBreakerConfig(Name).
	Breaker *BreakerConfig

	// Registry, when set, receives the client's health signals and exposes
	// them through readiness reporting.
	Registry *Registry
}

// DefaultClientConfig returns the default client configuration for the
// named provider.
func DefaultClientConfig(name string) ClientConfig {
	return ClientConfig{
		Name:            name,
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

// Client is an HTTP client that retries transient failures with
// exponential backoff behind a per-provider circuit breaker.
type Client struct {
	name     string
	inner    *http.Client
	breaker  *gobreaker.CircuitBreaker[*http.Response]
	registry *Registry
	cfg      ClientConfig
}

// NewClient creates a resilient client and, when a registry is configured,
// registers it for health reporting.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 5 * time.Second
	}

	breakerCfg := DefaultBreakerConfig(cfg.Name)
	if cfg.Breaker != nil {
		breakerCfg = *cfg.Breaker
	}

	client := &Client{
		name:     cfg.Name,
		inner:    &http.Client{Timeout: cfg.Timeout},
		breaker:  newBreaker(breakerCfg),
		registry: cfg.Registry,
		cfg:      cfg,
	}
	if cfg.Registry != nil {
		cfg.Registry.register(client)
	}
	return client
}

// statusError marks a 5xx response as retryable and breaker-visible.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("upstream status %d", e.code)
}

// Do executes the request. Network errors and 5xx responses are retried
// with exponential backoff; an open circuit fails fast with ErrCircuitOpen.
// When retries are exhausted on a 5xx, the last response is returned so the
// caller can inspect the status.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.InitialInterval
	bo.MaxInterval = c.cfg.MaxInterval
	bo.MaxElapsedTime = 0

	var last *http.Response

	attempt := func() error {
		resp, err := c.breaker.Execute(func() (*http.Response, error) {
			r, err := c.inner.Do(req.Clone(ctx))
			if err != nil {
				return nil, err
			}
			if r.StatusCode >= 500 {
				return r, &statusError{code: r.StatusCode}
			}
			return r, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			if resp != nil {
				last = resp
			}
			return err
		}
		last = resp
		return nil
	}

	err := backoff.Retry(attempt, backoff.WithContext(backoff.WithMaxRetries(bo, c.cfg.MaxRetries), ctx))
	if err != nil {
		if last != nil {
			c.recordFailure(err)
			return last, nil
		}
		c.recordFailure(err)
		return nil, err
	}

	c.recordSuccess()
	return last, nil
}

// Name returns the provider name this client was built for.
func (c *Client) Name() string {
	return c.name
}

// State returns the breaker state.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// Counts returns the breaker counters.
func (c *Client) Counts() gobreaker.Counts {
	return c.breaker.Counts()
}

func (c *Client) recordSuccess() {
	if c.registry != nil {
		c.registry.recordSuccess(c.name)
	}
}

func (c *Client) recordFailure(err error) {
	if c.registry != nil {
		c.registry.recordFailure(c.name, err)
	}
}
