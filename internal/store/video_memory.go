package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"vidlink-backend/internal/models"

	"github.com/google/uuid"
)

// MemoryVideoStore is a process-local VideoStore.
type MemoryVideoStore struct {
	mu     sync.RWMutex
	videos map[uuid.UUID]*models.Video
	now    func() time.Time
}

func NewMemoryVideoStore() *MemoryVideoStore {
	return &MemoryVideoStore{videos: make(map[uuid.UUID]*models.Video), now: time.Now}
}

func cloneVideo(v *models.Video) *models.Video {
	cp := *v
	cp.Cards = append([]models.Card{}, v.Cards...)
	return &cp
}

func (s *MemoryVideoStore) Create(_ context.Context, v *models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	v.CreatedAt, v.UpdatedAt = now, now
	s.videos[v.ID] = cloneVideo(v)
	return nil
}

func (s *MemoryVideoStore) Get(_ context.Context, id uuid.UUID) (*models.Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.videos[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneVideo(v), nil
}

func (s *MemoryVideoStore) List(_ context.Context, f models.VideoFilter) ([]*models.Video, error) {
	s.mu.RLock()
	all := make([]*models.Video, 0, len(s.videos))
	for _, v := range s.videos {
		if f.OwnerID != "" && v.OwnerID != f.OwnerID {
			continue
		}
		all = append(all, cloneVideo(v))
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID.String() < all[j].ID.String()
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	limit, offset := listWindow(f)
	if offset >= len(all) {
		return []*models.Video{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *MemoryVideoStore) Delete(_ context.Context, id uuid.UUID, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok || v.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(s.videos, id)
	return nil
}

func (s *MemoryVideoStore) AddWatchTime(_ context.Context, id uuid.UUID, seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		return ErrNotFound
	}
	v.Views++
	v.WatchSeconds += seconds
	v.UpdatedAt = s.now()
	return nil
}
