package store

import (
	"context"
	"sync"
	"time"

	"vidlink-backend/internal/models"

	"github.com/google/uuid"
)

// MemoryUserStore is a process-local UserStore.
type MemoryUserStore struct {
	mu       sync.RWMutex
	users    map[string]*models.User
	bySub    map[string]string
	sessions map[string]models.Session
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		users:    make(map[string]*models.User),
		bySub:    make(map[string]string),
		sessions: make(map[string]models.Session),
	}
}

// Put inserts or replaces a user as-is. Used for seeding.
func (s *MemoryUserStore) Put(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = &u
	if u.GoogleSub != "" {
		s.bySub[u.GoogleSub] = u.ID
	}
}

func (s *MemoryUserStore) UpsertGoogleUser(_ context.Context, p models.GoogleProfile) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	id, ok := s.bySub[p.Subject]
	if !ok {
		id = uuid.NewString()
		s.bySub[p.Subject] = id
		s.users[id] = &models.User{ID: id, GoogleSub: p.Subject, CreatedAt: now}
	}
	u := s.users[id]
	u.Email, u.Name, u.Picture, u.UpdatedAt = p.Email, p.Name, p.Picture, now
	cp := *u
	return &cp, nil
}

func (s *MemoryUserStore) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryUserStore) SetUsername(_ context.Context, id, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	for otherID, other := range s.users {
		if otherID != id && other.Username == username {
			return nil, ErrUsernameTaken
		}
	}
	u.Username = username
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	return &cp, nil
}

func (s *MemoryUserStore) CreateSession(_ context.Context, sess models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Token] = sess
	return nil
}

func (s *MemoryUserStore) GetSession(_ context.Context, token string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	if !ok || !sess.ExpiresAt.After(time.Now()) {
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (s *MemoryUserStore) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
