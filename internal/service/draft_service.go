// internal/service/draft_service.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"vidlink-backend/internal/apperr"
	"vidlink-backend/internal/models"
	"vidlink-backend/internal/store"

	"github.com/sirupsen/logrus"
)

// Frontend routes of the upload wizard, returned as navigation hints.
const (
	RouteVideo    = "/upload"
	RouteDetails  = "/upload/details"
	RouteCards    = "/upload/cards"
	RoutePreview  = "/upload/preview"
	RouteSettings = "/settings"
)

// StepResult is the draft after a wizard transition plus where the client goes next.
type StepResult struct {
	Draft models.UploadDraft `json:"draft"`
	Next  string             `json:"next"`
}

// DraftService is the cross-step carrier of the upload wizard: one draft per user,
// created with defaults on first read and cleared on publish or cancel.
type DraftService struct {
	Store store.DraftStore
	Log   *logrus.Logger

	// serialises read-merge-write within this process; across processes the last
	// write wins
	mu sync.Mutex
}

func NewDraftService(s store.DraftStore, log *logrus.Logger) *DraftService {
	return &DraftService{Store: s, Log: log}
}

// GetUploadData returns the stored draft merged over defaults. It never fails: a
// missing, unreadable or malformed draft yields defaults.
func (s *DraftService) GetUploadData(ctx context.Context, ownerID string) models.UploadDraft {
	rec, err := s.Store.Load(ctx, ownerID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.Log.WithError(err).WithField("owner_id", ownerID).Warn("load draft failed, using defaults")
		}
		return models.DefaultDraft()
	}
	return s.decode(ownerID, rec.Data)
}

func (s *DraftService) decode(ownerID string, data []byte) models.UploadDraft {
	d := models.DefaultDraft()
	if len(data) == 0 {
		return d
	}
	if err := json.Unmarshal(data, &d); err != nil {
		s.Log.WithError(err).WithField("owner_id", ownerID).Warn("malformed draft, using defaults")
		return models.DefaultDraft()
	}
	if d.Cards == nil {
		d.Cards = []models.Card{}
	}
	return d
}

// SetUploadData shallow-merges patch into the stored draft and returns the result.
func (s *DraftService) SetUploadData(ctx context.Context, ownerID string, patch models.DraftPatch) (models.UploadDraft, error) {
	if patch.Step != nil {
		if err := checkStep(*patch.Step); err != nil {
			return models.UploadDraft{}, err
		}
	}
	return s.Update(ctx, ownerID, func(d *models.UploadDraft) error {
		*d = d.Apply(patch)
		return nil
	})
}

// Update runs fn on the current draft and saves the result, all under the
// service lock. An error from fn leaves the stored draft untouched.
func (s *DraftService) Update(ctx context.Context, ownerID string, fn func(*models.UploadDraft) error) (models.UploadDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.loadForWrite(ctx, ownerID)
	if err != nil {
		return models.UploadDraft{}, err
	}
	if err := fn(&d); err != nil {
		return models.UploadDraft{}, err
	}

	data, err := json.Marshal(d)
	if err != nil {
		return models.UploadDraft{}, apperr.Wrap(apperr.ActionSaveDraft, err)
	}
	if err := s.Store.Save(ctx, ownerID, data); err != nil {
		return models.UploadDraft{}, apperr.Wrap(apperr.ActionSaveDraft, fmt.Errorf("save draft: %w", err))
	}
	return d, nil
}

// loadForWrite is GetUploadData for the write path: a missing or malformed draft
// starts from defaults, but a failed read is an error so the stored draft is not
// overwritten.
func (s *DraftService) loadForWrite(ctx context.Context, ownerID string) (models.UploadDraft, error) {
	rec, err := s.Store.Load(ctx, ownerID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return models.DefaultDraft(), nil
	case err != nil:
		return models.UploadDraft{}, apperr.Wrap(apperr.ActionSaveDraft, fmt.Errorf("load draft: %w", err))
	}
	return s.decode(ownerID, rec.Data), nil
}

// ClearUploadData removes the draft entirely.
func (s *DraftService) ClearUploadData(ctx context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Store.Delete(ctx, ownerID); err != nil {
		return apperr.Wrap(apperr.ActionSaveDraft, fmt.Errorf("delete draft: %w", err))
	}
	return nil
}

func (s *DraftService) GetUploadStep(ctx context.Context, ownerID string) int {
	return s.GetUploadData(ctx, ownerID).Step
}

func (s *DraftService) SetUploadStep(ctx context.Context, ownerID string, step int) error {
	_, err := s.SetUploadData(ctx, ownerID, models.DraftPatch{Step: &step})
	return err
}

func checkStep(step int) error {
	if step < models.StepVideo || step > models.StepPreview {
		return apperr.Invalid(fmt.Sprintf("step must be between %d and %d.", models.StepVideo, models.StepPreview))
	}
	return nil
}
