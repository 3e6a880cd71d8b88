package resilience

import (
	"sort"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Health is a point-in-time health snapshot of one provider.
type Health struct {
	Name          string           `json:"name"`
	CircuitState  string           `json:"circuit_state"`
	Requests      uint32           `json:"requests"`
	Failures      uint32           `json:"failures"`
	LastSuccessAt *time.Time       `json:"last_success_at,omitempty"`
	LastFailureAt *time.Time       `json:"last_failure_at,omitempty"`
	LastError     string           `json:"last_error,omitempty"`
	state         gobreaker.State
}

// Healthy reports whether the provider's circuit is closed.
func (h Health) Healthy() bool {
	return h.state == gobreaker.StateClosed
}

// Registry tracks resilient clients and their recent outcomes for
// readiness reporting.
type Registry struct {
	mu    sync.RWMutex
	slots map[string]*slot
}

type slot struct {
	client        *Client
	lastSuccessAt *time.Time
	lastFailureAt *time.Time
	lastError     string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{slots: make(map[string]*slot)}
}

func (r *Registry) register(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[c.Name()] = &slot{client: c}
}

func (r *Registry) recordSuccess(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.slots[name]; ok {
		now := time.Now()
		s.lastSuccessAt = &now
	}
}

func (r *Registry) recordFailure(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.slots[name]; ok {
		now := time.Now()
		s.lastFailureAt = &now
		if err != nil {
			s.lastError = err.Error()
		}
	}
}

func (r *Registry) health(name string, s *slot) Health {
	state := s.client.State()
	counts := s.client.Counts()
	return Health{
		Name:          name,
		CircuitState:  state.String(),
		Requests:      counts.Requests,
		Failures:      counts.TotalFailures,
		LastSuccessAt: s.lastSuccessAt,
		LastFailureAt: s.lastFailureAt,
		LastError:     s.lastError,
		state:         state,
	}
}

// Health returns the snapshot for one provider, or false when unknown.
func (r *Registry) Health(name string) (Health, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.slots[name]
	if !ok {
		return Health{}, false
	}
	return r.health(name, s), true
}

// AllHealth returns snapshots for every registered provider, sorted by
// name.
func (r *Registry) AllHealth() []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Health, 0, len(r.slots))
	for name, s := range r.slots {
		all = append(all, r.health(name, s))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}
