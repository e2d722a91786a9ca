// Package store persists drafts, videos and users.
package store

import (
	"context"
	"errors"

	"vidlink-backend/internal/models"

	"github.com/google/uuid"
)

// Sentinel errors; callers use errors.Is() instead of string matching
var (
	ErrNotFound      = errors.New("not found")
	ErrUsernameTaken = errors.New("username already taken")
)

// DraftStore keeps one serialized upload draft per owner. Writes are last-write-wins.
type DraftStore interface {
	Load(ctx context.Context, ownerID string) (*models.DraftRecord, error)
	Save(ctx context.Context, ownerID string, data []byte) error
	Delete(ctx context.Context, ownerID string) error
}

// VideoStore keeps published videos.
type VideoStore interface {
	Create(ctx context.Context, v *models.Video) error
	Get(ctx context.Context, id uuid.UUID) (*models.Video, error)
	List(ctx context.Context, f models.VideoFilter) ([]*models.Video, error)
	Delete(ctx context.Context, id uuid.UUID, ownerID string) error
	AddWatchTime(ctx context.Context, id uuid.UUID, seconds float64) error
}

// UserStore keeps accounts and login sessions.
type UserStore interface {
	UpsertGoogleUser(ctx context.Context, p models.GoogleProfile) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	SetUsername(ctx context.Context, id, username string) (*models.User, error)
	CreateSession(ctx context.Context, s models.Session) error
	GetSession(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

const defaultListLimit = 20

func listWindow(f models.VideoFilter) (limit, offset int) {
	limit, offset = f.Limit, f.Offset
	if limit <= 0 || limit > 100 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
