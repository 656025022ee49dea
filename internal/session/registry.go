package session

import (
	"sync"
	"time"
)

// Registry keeps one Engine per conversation key. Calls for the same key are
// serialized; different keys run in parallel.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*slot

	newEngine func() *Engine
	now       func() time.Time
	onCreate  func(key string)
	onEvict   func(key string)
}

type slot struct {
	mu     sync.Mutex
	engine *Engine

	// guarded by Registry.mu
	lastUsed time.Time
	inflight int
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithOnCreate registers a callback run after a new session is created.
func WithOnCreate(fn func(key string)) RegistryOption {
	return func(r *Registry) { r.onCreate = fn }
}

// WithOnEvict registers a callback run after a session is evicted.
func WithOnEvict(fn func(key string)) RegistryOption {
	return func(r *Registry) { r.onEvict = fn }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

// NewRegistry creates an empty registry. factory builds the engine for a key
// seen for the first time.
func NewRegistry(factory func() *Engine, opts ...RegistryOption) *Registry {
	r := &Registry{
		sessions:  make(map[string]*slot),
		newEngine: factory,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithSession runs fn with the engine for key, creating it when needed, while
// holding that key's lock.
func (r *Registry) WithSession(key string, fn func(e *Engine) error) error {
	r.mu.Lock()
	s, ok := r.sessions[key]
	if !ok {
		s = &slot{engine: r.newEngine()}
		r.sessions[key] = s
	}
	s.lastUsed = r.now()
	s.inflight++
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		s.inflight--
		s.lastUsed = r.now()
		r.mu.Unlock()
	}()

	if !ok && r.onCreate != nil {
		r.onCreate(key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.engine)
}

// Peek returns the transcript for key without creating a session.
func (r *Registry) Peek(key string) ([]Entry, bool) {
	r.mu.Lock()
	s, ok := r.sessions[key]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Snapshot(), true
}

// Fresh returns the transcript a new session starts with, without storing
// a session.
func (r *Registry) Fresh() []Entry {
	return r.newEngine().Snapshot()
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Cleanup evicts sessions idle for longer than maxAge and returns how many
// were removed. Sessions busy in WithSession are left alone.
func (r *Registry) Cleanup(maxAge time.Duration) int {
	r.mu.Lock()
	now := r.now()
	var evicted []string
	for key, s := range r.sessions {
		if s.inflight > 0 || now.Sub(s.lastUsed) <= maxAge {
			continue
		}
		delete(r.sessions, key)
		evicted = append(evicted, key)
	}
	r.mu.Unlock()

	if r.onEvict != nil {
		for _, key := range evicted {
			r.onEvict(key)
		}
	}
	return len(evicted)
}
