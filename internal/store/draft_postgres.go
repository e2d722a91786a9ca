package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"vidlink-backend/internal/models"
)

// PostgresDraftStore keeps drafts in the upload_drafts table, one row per owner.
type PostgresDraftStore struct {
	DB *sql.DB
}

const draftSchema = `
CREATE TABLE IF NOT EXISTS upload_drafts (
	owner_id   TEXT PRIMARY KEY,
	data       JSONB       NOT NULL DEFAULT '{}',
	version    INTEGER     NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Migrate creates the table if it does not exist.
func (s *PostgresDraftStore) Migrate(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, draftSchema)
	return err
}

func (s *PostgresDraftStore) Load(ctx context.Context, ownerID string) (*models.DraftRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		SELECT owner_id, data, version, created_at, updated_at
		FROM upload_drafts
		WHERE owner_id = $1
	`

	rec := &models.DraftRecord{}
	err := s.DB.QueryRowContext(ctx, query, ownerID).Scan(
		&rec.OwnerID,
		&rec.Data,
		&rec.Version,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Save upserts the draft and bumps the version counter.
func (s *PostgresDraftStore) Save(ctx context.Context, ownerID string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO upload_drafts (owner_id, data, version)
		VALUES ($1, $2, 1)
		ON CONFLICT (owner_id) DO UPDATE
		SET data       = EXCLUDED.data,
		    version    = upload_drafts.version + 1,
		    updated_at = NOW()
	`

	_, err := s.DB.ExecContext(ctx, query, ownerID, data)
	return err
}

// Delete permanently removes a draft. Deleting a missing draft is not an error.
func (s *PostgresDraftStore) Delete(ctx context.Context, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.DB.ExecContext(ctx,
		`DELETE FROM upload_drafts WHERE owner_id = $1`, ownerID)
	return err
}
