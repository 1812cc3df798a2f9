package central

import (
	"sync"
)

// ConnectionRegistry maps station ids to their live session. Registration
// races with lookups from command senders and the status surface, so access
// goes through an RWMutex.
type ConnectionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{sessions: map[string]*Session{}}
}

// Register installs the session as the live one for its station id and
// returns the session it displaced, if any. At most one session per id is
// live; the caller tears the evicted one down.
func (r *ConnectionRegistry) Register(s *Session) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	old := r.sessions[s.id]
	r.sessions[s.id] = s
	return old
}

// Remove deletes the session, but only if it is still the registered one:
// an evicted session tearing down must not remove its replacement.
func (r *ConnectionRegistry) Remove(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions[s.id] == s {
		delete(r.sessions, s.id)
	}
}

func (r *ConnectionRegistry) Get(stationID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[stationID]
	return s, ok
}

func (r *ConnectionRegistry) All() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

func (r *ConnectionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
