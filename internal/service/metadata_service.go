package service

import (
	"context"
	"strings"
	"time"

	"vidlink-backend/internal/apperr"
	"vidlink-backend/internal/models"
	"vidlink-backend/internal/validation"
)

var (
	ErrNoVideo            = apperr.New(apperr.Conflict, "Please add a video first.")
	ErrDimensionsNotReady = apperr.Invalid("Video dimensions are not available yet.")
)

// DefaultOrientationRecheck is how long to wait before probing dimensions again;
// some players report width/height late.
const DefaultOrientationRecheck = 500 * time.Millisecond

// Metadata is what the user types on the details step.
type Metadata struct {
	Title       string `json:"title" validate:"required,max=100"`
	Info        string `json:"info" validate:"required,max=150"`
	Description string `json:"description" validate:"max=500"`
}

// DimensionProbe reports decoded video dimensions once they are known.
type DimensionProbe interface {
	Dimensions(ctx context.Context) (width, height int, ok bool)
}

// StaticDimensions is a probe over dimensions the client already decoded.
type StaticDimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (d StaticDimensions) Dimensions(context.Context) (int, int, bool) {
	return d.Width, d.Height, d.Width > 0 && d.Height > 0
}

// MetadataService drives the details step (wizard step 2).
type MetadataService struct {
	Drafts       *DraftService
	RecheckDelay time.Duration
}

// Load returns the draft, or ErrNoVideo when step 1 has not been completed.
func (s *MetadataService) Load(ctx context.Context, ownerID string) (models.UploadDraft, error) {
	d := s.Drafts.GetUploadData(ctx, ownerID)
	if d.VideoLink == "" {
		return d, ErrNoVideo
	}
	return d, nil
}

// Next persists trimmed metadata and moves to the cards step. Title and info are
// required after trimming.
func (s *MetadataService) Next(ctx context.Context, ownerID string, m Metadata) (*StepResult, error) {
	if _, err := s.Load(ctx, ownerID); err != nil {
		return nil, err
	}

	m = Metadata{
		Title:       strings.TrimSpace(m.Title),
		Info:        strings.TrimSpace(m.Info),
		Description: strings.TrimSpace(m.Description),
	}
	if err := validation.Struct(m); err != nil {
		return nil, apperr.Invalid(err.Error())
	}

	d, err := s.Drafts.SetUploadData(ctx, ownerID, models.DraftPatch{
		Title:       &m.Title,
		Info:        &m.Info,
		Description: &m.Description,
		Step:        models.Ptr(models.StepCards),
	})
	if err != nil {
		return nil, err
	}
	return &StepResult{Draft: d, Next: RouteCards}, nil
}

// Back keeps in-progress edits as typed, without trimming or validation.
func (s *MetadataService) Back(ctx context.Context, ownerID string, m Metadata) (*StepResult, error) {
	d, err := s.Drafts.SetUploadData(ctx, ownerID, models.DraftPatch{
		Title:       &m.Title,
		Info:        &m.Info,
		Description: &m.Description,
		Step:        models.Ptr(models.StepVideo),
	})
	if err != nil {
		return nil, err
	}
	return &StepResult{Draft: d, Next: RouteVideo}, nil
}

// DetectOrientation stores whether the video is taller than wide. If the probe has
// no dimensions yet it is asked once more after RecheckDelay.
func (s *MetadataService) DetectOrientation(ctx context.Context, ownerID string, probe DimensionProbe) (bool, error) {
	if _, err := s.Load(ctx, ownerID); err != nil {
		return false, err
	}

	w, h, ok := probe.Dimensions(ctx)
	if !ok {
		delay := s.RecheckDelay
		if delay <= 0 {
			delay = DefaultOrientationRecheck
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false, ctx.Err()
		case <-timer.C:
		}
		if w, h, ok = probe.Dimensions(ctx); !ok {
			return false, ErrDimensionsNotReady
		}
	}

	vertical := h > w
	if _, err := s.Drafts.SetUploadData(ctx, ownerID, models.DraftPatch{IsVertical: &vertical}); err != nil {
		return false, err
	}
	return vertical, nil
}
