// Package session holds per-conversation state shared between tool calls.
//
// The route-relative POI search tool needs the route planned earlier in the
// same conversation. That state is scoped to a session id rather than the
// process, so concurrent conversations never observe each other's routes.
package session

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/waypoint-labs/waypoint/internal/amap"
)

const (
	// DefaultTTL is how long an idle session survives.
	DefaultTTL = 30 * time.Minute

	// DefaultCleanupInterval is how often expired sessions are purged.
	DefaultCleanupInterval = 10 * time.Minute
)

// State is the mutable state of one conversation. Tool calls within a turn
// run sequentially, but separate turns of the same session may race, so
// access goes through the mutex.
type State struct {
	mu    sync.RWMutex
	route *amap.RouteResult
}

// Route returns the most recently planned route, or nil when no route has
// been planned in this session.
func (s *State) Route() *amap.RouteResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.route
}

// SetRoute records the session's current route. A later route overwrites an
// earlier one.
func (s *State) SetRoute(route *amap.RouteResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.route = route
}

// StoreConfig holds configuration for the session store.
type StoreConfig struct {
	// TTL is the idle lifetime of a session (default 30 minutes).
	TTL time.Duration

	// CleanupInterval is the expired-session sweep period (default 10 minutes).
	CleanupInterval time.Duration
}

// Store is an in-memory, TTL-bounded session registry.
type Store struct {
	mu    sync.Mutex
	cache *gocache.Cache
	ttl   time.Duration
}

// NewStore creates a session store.
func NewStore(cfg StoreConfig) *Store {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	cleanup := cfg.CleanupInterval
	if cleanup == 0 {
		cleanup = DefaultCleanupInterval
	}
	return &Store{
		cache: gocache.New(ttl, cleanup),
		ttl:   ttl,
	}
}

// Get returns the state for a session id, creating it on first use. Every
// access refreshes the session's TTL.
func (s *Store) Get(id string) *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.cache.Get(id); ok {
		state := v.(*State)
		s.cache.Set(id, state, s.ttl)
		return state
	}
	state := &State{}
	s.cache.Set(id, state, s.ttl)
	return state
}

// Len reports the number of live sessions, counting not-yet-swept expired
// entries.
func (s *Store) Len() int {
	return s.cache.ItemCount()
}
