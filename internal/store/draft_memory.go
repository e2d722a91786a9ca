package store

import (
	"context"
	"sync"
	"time"

	"vidlink-backend/internal/models"
)

// MemoryDraftStore is a process-local DraftStore.
type MemoryDraftStore struct {
	mu     sync.RWMutex
	drafts map[string]*models.DraftRecord
}

func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{drafts: make(map[string]*models.DraftRecord)}
}

func (s *MemoryDraftStore) Load(_ context.Context, ownerID string) (*models.DraftRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.drafts[ownerID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	cp.Data = append([]byte(nil), rec.Data...)
	return &cp, nil
}

func (s *MemoryDraftStore) Save(_ context.Context, ownerID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	rec, ok := s.drafts[ownerID]
	if !ok {
		rec = &models.DraftRecord{OwnerID: ownerID, CreatedAt: now}
		s.drafts[ownerID] = rec
	}
	rec.Data = append([]byte(nil), data...)
	rec.Version++
	rec.UpdatedAt = now
	return nil
}

func (s *MemoryDraftStore) Delete(_ context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, ownerID)
	return nil
}
