package service

import (
	"context"
	"fmt"

	"vidlink-backend/internal/apperr"
	"vidlink-backend/internal/models"
	"vidlink-backend/internal/store"
	"vidlink-backend/internal/validation"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PublishService turns a finished draft into a video (wizard step 4).
type PublishService struct {
	Drafts  *DraftService
	Videos  store.VideoStore
	MaxTime float64
	Log     *logrus.Logger
}

// Preview returns the assembled draft once every step's requirements hold.
func (s *PublishService) Preview(ctx context.Context, ownerID string) (models.UploadDraft, error) {
	d := s.Drafts.GetUploadData(ctx, ownerID)
	if d.VideoLink == "" {
		return d, ErrNoVideo
	}
	if d.Duration <= 0 {
		return d, ErrValidating
	}
	if err := validation.Struct(Metadata{Title: d.Title, Info: d.Info, Description: d.Description}); err != nil {
		return d, apperr.Invalid(err.Error())
	}
	for _, c := range d.Cards {
		if err := checkCard(c, d.Duration, s.MaxTime); err != nil {
			return d, err
		}
	}
	return d, nil
}

// Publish stores the video and clears the draft.
func (s *PublishService) Publish(ctx context.Context, ownerID string) (*models.Video, error) {
	d, err := s.Preview(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	v := &models.Video{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		VideoLink:   d.VideoLink,
		Duration:    d.Duration,
		Title:       d.Title,
		Info:        d.Info,
		Description: d.Description,
		Cards:       d.Cards,
		IsVertical:  d.IsVertical,
	}
	for i := range v.Cards {
		v.Cards[i].IsSaved = true
	}
	if err := s.Videos.Create(ctx, v); err != nil {
		return nil, apperr.Wrap(apperr.ActionPublishVideo, fmt.Errorf("create video: %w", err))
	}

	// the video is live; a leftover draft only means the wizard reopens pre-filled
	if err := s.Drafts.ClearUploadData(ctx, ownerID); err != nil {
		s.Log.WithError(err).WithField("owner_id", ownerID).Warn("clear draft after publish failed")
	}

	s.Log.WithFields(logrus.Fields{"owner_id": ownerID, "video_id": v.ID}).Info("video published")
	return v, nil
}

// Cancel throws the draft away.
func (s *PublishService) Cancel(ctx context.Context, ownerID string) error {
	return s.Drafts.ClearUploadData(ctx, ownerID)
}
