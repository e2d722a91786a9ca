package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vidlink-backend/internal/models"

	"github.com/google/uuid"
)

// PostgresVideoStore keeps published videos in the videos table.
type PostgresVideoStore struct {
	DB *sql.DB
}

const videoSchema = `
CREATE TABLE IF NOT EXISTS videos (
	id            UUID PRIMARY KEY,
	owner_id      TEXT             NOT NULL,
	video_link    TEXT             NOT NULL,
	duration      DOUBLE PRECISION NOT NULL,
	title         TEXT             NOT NULL,
	info          TEXT             NOT NULL,
	description   TEXT             NOT NULL DEFAULT '',
	cards         JSONB            NOT NULL DEFAULT '[]',
	is_vertical   BOOLEAN          NOT NULL DEFAULT FALSE,
	views         BIGINT           NOT NULL DEFAULT 0,
	watch_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ      NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS videos_owner_created_idx ON videos (owner_id, created_at DESC)`

func (s *PostgresVideoStore) Migrate(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, videoSchema)
	return err
}

const videoColumns = `id, owner_id, video_link, duration, title, info, description, cards,
	is_vertical, views, watch_seconds, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVideo(row rowScanner) (*models.Video, error) {
	v := &models.Video{}
	var cardsJSON []byte
	err := row.Scan(
		&v.ID,
		&v.OwnerID,
		&v.VideoLink,
		&v.Duration,
		&v.Title,
		&v.Info,
		&v.Description,
		&cardsJSON,
		&v.IsVertical,
		&v.Views,
		&v.WatchSeconds,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.Cards = []models.Card{}
	if len(cardsJSON) > 0 {
		if err := json.Unmarshal(cardsJSON, &v.Cards); err != nil {
			return nil, fmt.Errorf("decode cards of video %s: %w", v.ID, err)
		}
	}
	return v, nil
}

func (s *PostgresVideoStore) Create(ctx context.Context, v *models.Video) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cardsJSON, err := json.Marshal(v.Cards)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO videos (id, owner_id, video_link, duration, title, info, description, cards, is_vertical)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	return s.DB.QueryRowContext(ctx, query,
		v.ID, v.OwnerID, v.VideoLink, v.Duration, v.Title, v.Info, v.Description, cardsJSON, v.IsVertical,
	).Scan(&v.CreatedAt, &v.UpdatedAt)
}

func (s *PostgresVideoStore) Get(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	row := s.DB.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, id)
	v, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return v, err
}

func (s *PostgresVideoStore) List(ctx context.Context, f models.VideoFilter) ([]*models.Video, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit, offset := listWindow(f)

	var (
		rows *sql.Rows
		err  error
	)
	if f.OwnerID != "" {
		rows, err = s.DB.QueryContext(ctx,
			`SELECT `+videoColumns+` FROM videos WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			f.OwnerID, limit, offset)
	} else {
		rows, err = s.DB.QueryContext(ctx,
			`SELECT `+videoColumns+` FROM videos ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
			limit, offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	videos := []*models.Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// Delete removes a video only if it belongs to ownerID.
func (s *PostgresVideoStore) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := s.DB.ExecContext(ctx,
		`DELETE FROM videos WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// AddWatchTime counts one view and adds seconds to the running total.
func (s *PostgresVideoStore) AddWatchTime(ctx context.Context, id uuid.UUID, seconds float64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		UPDATE videos
		SET views         = views + 1,
		    watch_seconds = watch_seconds + $1,
		    updated_at    = NOW()
		WHERE id = $2
	`
	result, err := s.DB.ExecContext(ctx, query, seconds, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
