package session

import (
	"sync"
	"time"

	"github.com/dpetrov/infracopilot/backend/internal/model/chat"
)

// Store owns all conversational state. Sessions expire lazily: every lookup
// first sweeps the whole map for idle entries, there is no background timer
// and no explicit delete API.
//
// The lock guards the map itself. Two concurrent requests for the same
// session id may interleave their mutations of the returned Session; that
// race is accepted, only cross-key blocking is avoided.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*chat.Session
	ttl      time.Duration
	maxTurns int

	now func() time.Time
}

// NewStore bootstraps the in-memory session store.
func NewStore(ttl time.Duration, maxTurns int) *Store {
	return &Store{
		sessions: make(map[string]*chat.Session),
		ttl:      ttl,
		maxTurns: maxTurns,
		now:      time.Now,
	}
}

// GetOrCreate purges expired sessions, then returns the session for id with
// its activity timestamp refreshed, creating an empty one on first sight.
func (s *Store) GetOrCreate(id string) *chat.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeLocked()

	sess, ok := s.sessions[id]
	if !ok {
		sess = &chat.Session{ID: id}
		s.sessions[id] = sess
	}
	sess.LastActivity = s.now().UTC()
	return sess
}

// AppendTurn appends one utterance and trims the history to twice the
// configured turn count, dropping the oldest entries first.
func (s *Store) AppendTurn(sess *chat.Session, role chat.Role, text string) {
	sess.History = append(sess.History, chat.Turn{Role: role, Text: text})

	limit := s.maxTurns * 2
	if len(sess.History) > limit {
		sess.History = sess.History[len(sess.History)-limit:]
	}
}

// Len reports the current session count after a purge.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked()
	return len(s.sessions)
}

func (s *Store) purgeLocked() {
	cutoff := s.now().UTC().Add(-s.ttl)
	for id, sess := range s.sessions {
		if sess.LastActivity.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}
