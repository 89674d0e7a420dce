package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mxchestnut/workshelf/internal/database"
	"github.com/mxchestnut/workshelf/pkg/models"
)

var ErrNotLoggedIn = errors.New("not logged in")

// Store holds the current session explicitly instead of every caller reading
// ambient state. It is constructed once in main and injected into whoever
// needs the token or the cached user.
type Store struct {
	db *database.DB

	mu  sync.RWMutex
	cur *models.Session
}

// NewStore loads any persisted session from the local database.
func NewStore(db *database.DB) (*Store, error) {
	sess, err := db.LoadSession()
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return &Store{db: db, cur: sess}, nil
}

// Current returns the active session, or nil when logged out.
func (s *Store) Current() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// CurrentUser returns the cached user profile for the active session.
func (s *Store) CurrentUser() (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur == nil {
		return models.User{}, ErrNotLoggedIn
	}
	return s.cur.User, nil
}

// Token returns the bearer token, or the empty string when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur == nil {
		return ""
	}
	return s.cur.Token
}

// Put activates and persists a session.
func (s *Store) Put(sess models.Session) error {
	if sess.SavedAt.IsZero() {
		sess.SavedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.SaveSession(&sess); err != nil {
		return err
	}
	s.cur = &sess
	return nil
}

// Clear logs out, removing the persisted session.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.ClearSession(); err != nil {
		return err
	}
	s.cur = nil
	return nil
}
