// Package session owns the one collaborator internal/accumulator leaves to
// its caller: serializing concurrent access to a per-connection
// Accumulator, and looking sessions up by ID across goroutines. Grounded on
// internal/orchestrator/registry.go's Registry, generalized from a static
// read-only service whitelist to a mutable map with create/lookup/close.
package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/davidbmar/transcription-realtime-whisper/internal/accumulator"
)

// ErrNotFound is returned by Get and Close for an unknown session ID.
var ErrNotFound = errors.New("session: not found")

// Session pairs an Accumulator with the mutex that serializes calls into
// it: the accumulator itself performs no internal synchronization, so
// whatever owns it must.
type Session struct {
	ID string

	mu          sync.Mutex
	accumulator *accumulator.Accumulator
}

// Do runs fn with the session's lock held, guaranteeing at most one
// in-flight call into the underlying Accumulator at a time.
func (s *Session) Do(fn func(a *accumulator.Accumulator)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.accumulator)
}

// Registry is a concurrency-safe map from session ID to *Session.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Open creates a new Session backed by a fresh Accumulator and registers
// it under a newly generated session ID.
func (r *Registry) Open(cfg accumulator.Config) *Session {
	s := &Session{ID: uuid.NewString(), accumulator: accumulator.New(cfg)}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	return s
}

// Get looks up a session by ID.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Close removes a session from the registry. The underlying Accumulator
// holds no external resources, so there is nothing further to release.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

// Len returns the number of currently open sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Each calls fn for every currently open session. fn must not call back
// into the Registry — Each holds the read lock for its duration.
func (r *Registry) Each(fn func(*Session)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		fn(s)
	}
}
