package session

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DefaultID names the session used when a caller supplies none.
const DefaultID = "default"

type entry struct {
	mu      sync.Mutex
	session *Session
}

// Registry maps session ids to sessions and serializes work per session.
// Different sessions proceed in parallel.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// NormalizeID maps a blank id to DefaultID.
func NormalizeID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return DefaultID
	}
	return id
}

func (r *Registry) get(id string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		e = &entry{session: New(id)}
		r.entries[id] = e
	}
	return e
}

// Do runs fn with exclusive access to the session id, creating it on first
// use. fn must not retain the session after returning.
func (r *Registry) Do(id string, fn func(*Session) error) error {
	e := r.get(NormalizeID(id))
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.session)
}

// New creates a session with a fresh random id and returns the id.
func (r *Registry) New() string {
	id := uuid.NewString()
	r.get(id)
	return id
}

// Delete forgets a session. Later use of the id starts from scratch.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, NormalizeID(id))
}

// IDs lists known session ids in sorted order.
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
