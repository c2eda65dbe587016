package interview

import (
	"sync"
	"time"

	"github.com/agenthands/triage/internal/core/model"
)

// Store keeps live sessions keyed by id. Rapid double-submission against the
// same session is serialized by a per-session mutex; the outer lock only
// guards the map itself. Sessions are memory-only, eviction is the caller's
// concern (see SweepOlderThan).
type Store struct {
	mu       sync.Mutex
	sessions map[string]*storeEntry
}

type storeEntry struct {
	mu   sync.Mutex
	sess *Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*storeEntry)}
}

// Create registers a fresh session, replacing any previous one with that id.
func (st *Store) Create(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[id] = &storeEntry{sess: newSession(id)}
}

// With runs fn with exclusive access to the session. All turn operations go
// through here so concurrent requests on one id cannot interleave.
func (st *Store) With(id string, fn func(*Session) error) error {
	st.mu.Lock()
	entry, ok := st.sessions[id]
	st.mu.Unlock()
	if !ok {
		return model.ErrSessionNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.sess)
}

func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// SweepOlderThan drops sessions idle for longer than ttl and returns how many
// were removed. The collaborator layer calls this on whatever schedule it
// likes; the store never sweeps on its own.
func (st *Store) SweepOlderThan(ttl time.Duration) int {
	cutoff := time.Now().UTC().Add(-ttl)

	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, entry := range st.sessions {
		entry.mu.Lock()
		stale := entry.sess.UpdatedAt.Before(cutoff)
		entry.mu.Unlock()
		if stale {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}
