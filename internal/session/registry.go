package session

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrRegistryFull is returned by Registry.Add when the session cap is
// reached.
var ErrRegistryFull = errors.New("too many active sessions")

// Registry keeps the running sessions of a server by ID.
type Registry struct {
	mu          sync.Mutex
	entries     map[string]*entry
	maxSessions int
	nowFunc     func() time.Time
}

type entry struct {
	runner   *Runner
	lastSeen time.Time
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithMaxSessions caps the number of concurrent sessions. Zero means no cap.
func WithMaxSessions(n int) RegistryOption {
	return func(r *Registry) {
		r.maxSessions = n
	}
}

// WithRegistryNowFunc overrides the time function for testing.
func WithRegistryNowFunc(f func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.nowFunc = f
	}
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		entries: make(map[string]*entry),
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add registers a started runner and returns its new ID.
func (r *Registry) Add(run *Runner) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.maxSessions > 0 && len(r.entries) >= r.maxSessions {
		return "", ErrRegistryFull
	}

	id := uuid.NewString()
	r.entries[id] = &entry{runner: run, lastSeen: r.nowFunc()}
	return id, nil
}

// Get returns the runner for id and marks it as recently used.
func (r *Registry) Get(id string) (*Runner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.lastSeen = r.nowFunc()
	return e.runner, nil
}

// Remove unregisters id and returns its runner. The caller closes it.
func (r *Registry) Remove(id string) (*Runner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(r.entries, id)
	return e.runner, nil
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// IDs returns the registered IDs in sorted order.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// EvictIdle unregisters every session unused for longer than ttl and hands
// each one to evict, outside the registry lock. It returns the number of
// evicted sessions.
func (r *Registry) EvictIdle(ttl time.Duration, evict func(id string, run *Runner)) int {
	cutoff := r.nowFunc().Add(-ttl)

	r.mu.Lock()
	var stale []string
	runners := make(map[string]*Runner)
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			stale = append(stale, id)
			runners[id] = e.runner
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	sort.Strings(stale)
	for _, id := range stale {
		if evict != nil {
			evict(id, runners[id])
		}
	}
	return len(stale)
}

// CloseAll stops and unregisters every session.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	runners := make([]*Runner, 0, len(r.entries))
	for id, e := range r.entries {
		runners = append(runners, e.runner)
		delete(r.entries, id)
	}
	r.mu.Unlock()

	for _, run := range runners {
		run.Close()
	}
}
