package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"vidlink-backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})
	return db, mock
}

var videoRowColumns = []string{
	"id", "owner_id", "video_link", "duration", "title", "info", "description", "cards",
	"is_vertical", "views", "watch_seconds", "created_at", "updated_at",
}

func TestPostgresVideoGetDecodesCards(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresVideoStore{DB: db}
	id := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM videos WHERE id = $1`)).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows(videoRowColumns).AddRow(
			id.String(), "u1", "https://cdn.example/x.mp4", 65.0, "Demo", "info", "",
			[]byte(`[{"id":"c1","name":"Shop","link":"https://shop.example","start":4,"no":1}]`),
			true, int64(2), 12.5, now, now,
		))

	v, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, v.ID)
	assert.Equal(t, []models.Card{{ID: "c1", Name: "Shop", Link: "https://shop.example", Start: 4, No: 1}}, v.Cards)
	assert.True(t, v.IsVertical)
	assert.Equal(t, int64(2), v.Views)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresVideoGetEmptyCards(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresVideoStore{DB: db}
	id := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM videos WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows(videoRowColumns).AddRow(
			id.String(), "u1", "https://cdn.example/x.mp4", 65.0, "Demo", "", "", nil,
			false, int64(0), 0.0, now, now,
		))

	v, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	assert.NotNil(t, v.Cards)
	assert.Empty(t, v.Cards)
}

func TestPostgresVideoGetBadCardsJSON(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresVideoStore{DB: db}
	id := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM videos WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows(videoRowColumns).AddRow(
			id.String(), "u1", "https://cdn.example/x.mp4", 65.0, "Demo", "", "", []byte(`{"broken"`),
			false, int64(0), 0.0, now, now,
		))

	_, err := s.Get(context.Background(), id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode cards")
}

func TestPostgresVideoMissingRowsMapToNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresVideoStore{DB: db}
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM videos WHERE id = $1`)).
		WillReturnError(sql.ErrNoRows)
	_, err := s.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM videos WHERE id = $1 AND owner_id = $2`)).
		WithArgs(id.String(), "someone-else").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, s.Delete(ctx, id, "someone-else"), ErrNotFound)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE videos`)).
		WithArgs(7.5, id.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, s.AddWatchTime(ctx, id, 7.5), ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresVideoAddWatchTime(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresVideoStore{DB: db}
	id := uuid.New()

	mock.ExpectExec(`SET views\s+= views \+ 1,\s+watch_seconds = watch_seconds \+ \$1`).
		WithArgs(12.0, id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.AddWatchTime(context.Background(), id, 12))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresVideoListFiltersByOwner(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresVideoStore{DB: db}

	mock.ExpectQuery(regexp.QuoteMeta(`FROM videos WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`)).
		WithArgs("u1", sqlmock.AnyArg(), 0).
		WillReturnRows(sqlmock.NewRows(videoRowColumns))

	videos, err := s.List(context.Background(), models.VideoFilter{OwnerID: "u1"})
	require.NoError(t, err)
	assert.NotNil(t, videos)
	assert.Empty(t, videos)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDraftLoadMissingIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresDraftStore{DB: db}

	mock.ExpectQuery(regexp.QuoteMeta(`FROM upload_drafts`)).
		WithArgs("u1").
		WillReturnError(sql.ErrNoRows)

	_, err := s.Load(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresDraftLoadFailureIsNotNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresDraftStore{DB: db}
	down := errors.New("connection reset")

	mock.ExpectQuery(regexp.QuoteMeta(`FROM upload_drafts`)).WillReturnError(down)

	_, err := s.Load(context.Background(), "u1")
	assert.ErrorIs(t, err, down)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestPostgresDraftSaveUpsertsAndBumpsVersion(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresDraftStore{DB: db}
	data := []byte(`{"step":2}`)

	mock.ExpectExec(`ON CONFLICT \(owner_id\) DO UPDATE[\s\S]+version\s+= upload_drafts\.version \+ 1`).
		WithArgs("u1", data).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Save(context.Background(), "u1", data))
	assert.NoError(t, mock.ExpectationsWereMet())
}
