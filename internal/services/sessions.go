package services

import (
	"errors"
	"sync"
	"time"

	"fantasy-casino-backend/internal/games"
	"fantasy-casino-backend/internal/models"
)

var (
	ErrRoundInProgress = errors.New("a card round is already in progress")
	ErrNoActiveRound   = errors.New("no active card round")
)

// TableSession is one user's open blackjack round. The stake has
// already been debited; the round settles when it finishes or when the
// stale sweep forces it.
type TableSession struct {
	ID        string
	UserID    int64
	Round     *games.CardRound
	StartedAt time.Time
}

// SessionStore keeps at most one open card round per user, in memory.
// Every action on a user's session runs under WithUser, so a player
// action and the stale sweep can never settle the same round twice.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*TableSession
	locks    map[int64]*sync.Mutex
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]*TableSession),
		locks:    make(map[int64]*sync.Mutex),
	}
}

func (s *SessionStore) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

// WithUser runs fn while holding the user's session lock.
func (s *SessionStore) WithUser(userID int64, fn func() error) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	return fn()
}

// Put opens a session for the user. Fails with ErrRoundInProgress while
// another round is still open.
func (s *SessionStore) Put(userID int64, round *games.CardRound) (*TableSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, open := s.sessions[userID]; open {
		return nil, ErrRoundInProgress
	}
	session := &TableSession{
		ID:        models.GenerateSessionID(),
		UserID:    userID,
		Round:     round,
		StartedAt: time.Now(),
	}
	s.sessions[userID] = session
	return session, nil
}

// Get returns the user's open session, or ErrNoActiveRound.
func (s *SessionStore) Get(userID int64) (*TableSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, open := s.sessions[userID]
	if !open {
		return nil, ErrNoActiveRound
	}
	return session, nil
}

// End drops the user's session. Ending a user without one is a no-op.
func (s *SessionStore) End(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// StaleUserIDs lists the users whose session opened before the cutoff.
// The sweep re-checks each session under WithUser before settling it.
func (s *SessionStore) StaleUserIDs(cutoff time.Time) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []int64
	for id, session := range s.sessions {
		if session.StartedAt.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Len reports how many sessions are open.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
