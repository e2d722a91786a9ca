package service

import (
	"context"
	"errors"
	"fmt"

	"vidlink-backend/internal/apperr"
	"vidlink-backend/internal/models"
	"vidlink-backend/internal/store"

	"github.com/google/uuid"
)

var ErrVideoNotFound = apperr.New(apperr.NotFound, "Video not found.")

// VideoService serves published videos and records watch time.
type VideoService struct {
	Videos store.VideoStore
}

func (s *VideoService) List(ctx context.Context, f models.VideoFilter) ([]*models.Video, error) {
	videos, err := s.Videos.List(ctx, f)
	if err != nil {
		return nil, apperr.Wrap(apperr.ActionFetchVideos, err)
	}
	return videos, nil
}

func (s *VideoService) Get(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	v, err := s.Videos.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrVideoNotFound
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.ActionFetchVideos, err)
	}
	return v, nil
}

// Delete removes a video owned by ownerID.
func (s *VideoService) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	err := s.Videos.Delete(ctx, id, ownerID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrVideoNotFound
	}
	if err != nil {
		return apperr.Wrap(apperr.ActionDeleteVideo, err)
	}
	return nil
}

// ReportWatchTime adds one page view's watch seconds to the video. Zero seconds is a
// no-op; negative seconds are rejected.
func (s *VideoService) ReportWatchTime(ctx context.Context, videoID uuid.UUID, seconds float64) error {
	if seconds < 0 {
		return apperr.Invalid("seconds must not be negative.")
	}
	if seconds == 0 {
		return nil
	}
	err := s.Videos.AddWatchTime(ctx, videoID, seconds)
	if errors.Is(err, store.ErrNotFound) {
		return ErrVideoNotFound
	}
	if err != nil {
		return apperr.Wrap(apperr.ActionReportWatchTime, fmt.Errorf("video %s: %w", videoID, err))
	}
	return nil
}
