package router

import (
	"sync"

	"curebird/internal/providers"
)

// Session is one conversation history. Holders of a session obtained from
// SessionStore.Lock have exclusive access until Unlock.
type Session struct {
	ID       string
	mu       sync.Mutex
	messages []providers.Message
}

func (s *Session) Unlock() { s.mu.Unlock() }

// Messages returns a copy of the history.
func (s *Session) Messages() []providers.Message {
	out := make([]providers.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) Append(msgs ...providers.Message) {
	s.messages = append(s.messages, msgs...)
}

func (s *Session) Len() int { return len(s.messages) }

// SessionStore keeps conversations in memory for the process lifetime.
// The store lock only guards the index; each session has its own lock so
// turns in one conversation are serialized without blocking the others.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: map[string]*Session{}}
}

// Lock returns the session for id, locked. A new session is seeded with the
// messages returned by seed. A session deleted while the caller waited for
// its lock is never returned; the caller moves on to the current one.
func (s *SessionStore) Lock(id string, seed func() []providers.Message) *Session {
	for {
		s.mu.Lock()
		sess, ok := s.sessions[id]
		if !ok {
			sess = &Session{ID: id}
			s.sessions[id] = sess
		}
		s.mu.Unlock()

		sess.mu.Lock()
		s.mu.Lock()
		current := s.sessions[id] == sess
		s.mu.Unlock()
		if !current {
			sess.mu.Unlock()
			continue
		}
		if len(sess.messages) == 0 && seed != nil {
			sess.messages = append(sess.messages, seed()...)
		}
		return sess
	}
}

// History returns a copy of the conversation, if it exists.
func (s *SessionStore) History(id string) ([]providers.Message, bool) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.Messages(), true
}

func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
