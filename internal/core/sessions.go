// ABOUTME: SessionStore keeps per-session chat history behind an atomic get-or-create
// ABOUTME: Passed explicitly to whoever needs it instead of living in a global map
package core

import (
	"sync"

	"github.com/harper/guia/internal/models"
)

// History is the ordered message log of one session
type History struct {
	mu       sync.Mutex
	messages []models.Message
}

// Append adds messages to the end of the history
func (h *History) Append(msgs ...models.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msgs...)
}

// Messages returns a copy of the history
func (h *History) Messages() []models.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]models.Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Len returns the number of stored messages
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

// SessionStore maps session ids to histories
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*History
}

// NewSessionStore creates an empty store
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*History)}
}

// GetOrCreate returns the history for id, creating it if needed.
// The boolean reports whether a new history was created.
func (s *SessionStore) GetOrCreate(id string) (*History, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.sessions[id]; ok {
		return h, false
	}
	h := &History{}
	s.sessions[id] = h
	return h, true
}

// Len returns the number of sessions
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
