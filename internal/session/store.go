package session

import (
	"errors"
	"sync"
	"time"

	"github.com/sashakosti/Go_Race_Bot/internal/wizard"
)

// ErrActiveSession is returned when a chat already has a race in progress.
var ErrActiveSession = errors.New("race entry already in progress")

// Session is the state of one chat between messages.
type Session struct {
	ChatID    int64
	Wizard    *wizard.Wizard
	StartedAt time.Time
}

// Store keeps sessions in memory, keyed by chat id. Sessions never expire.
type Store struct {
	sessions map[int64]*Session
	mu       sync.RWMutex
}

// NewStore creates an empty session store
func NewStore() *Store {
	return &Store{
		sessions: make(map[int64]*Session),
	}
}

// Create binds a wizard to the chat. Only one session per chat is allowed.
func (s *Store) Create(chatID int64, w *wizard.Wizard) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[chatID]; exists {
		return nil, ErrActiveSession
	}
	sess := &Session{ChatID: chatID, Wizard: w, StartedAt: time.Now()}
	s.sessions[chatID] = sess
	return sess, nil
}

// Get retrieves the chat's session
func (s *Store) Get(chatID int64) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, exists := s.sessions[chatID]
	return sess, exists
}

// Delete removes the chat's session
func (s *Store) Delete(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
}

// Len returns the number of active sessions
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
