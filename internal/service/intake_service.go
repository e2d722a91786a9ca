package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"vidlink-backend/internal/apperr"
	"vidlink-backend/internal/models"
	"vidlink-backend/internal/storage"
	"vidlink-backend/internal/validation"

	"github.com/sirupsen/logrus"
)

var (
	ErrBothSources      = apperr.Invalid("Please input one of them.")
	ErrNoSource         = apperr.Invalid("Please upload a video file or paste a video link.")
	ErrValidating       = apperr.Invalid("Validating video, please try again in a moment.")
	ErrUsernameRequired = apperr.New(apperr.Forbidden, "Please set a username before uploading a video.")
)

// UsernameChecker confirms the uploader has picked a username.
type UsernameChecker interface {
	HasUsername(ctx context.Context, userID string) (bool, error)
}

// UploadFile is a video file received from the client.
type UploadFile struct {
	Header  *multipart.FileHeader
	Content io.Reader
}

// IntakeRequest carries exactly one of File or Link. Duration is measured by the
// client: from the decoded file, or from the player's metadata probe for links.
type IntakeRequest struct {
	File     *UploadFile
	Link     string
	Duration float64
}

// IntakeService resolves the one playable video source of a draft (wizard step 1).
type IntakeService struct {
	Drafts    *DraftService
	Storage   storage.Storage
	Usernames UsernameChecker
	Log       *logrus.Logger

	DenyHosts      []string
	MaxUploadBytes int64
}

// Submit validates the source, stores the file if there is one, and moves the draft to
// step 2 with its previous metadata cleared.
func (s *IntakeService) Submit(ctx context.Context, ownerID string, req IntakeRequest) (*StepResult, error) {
	link := strings.TrimSpace(req.Link)
	hasFile := req.File != nil
	hasLink := link != ""

	switch {
	case hasFile && hasLink:
		return nil, ErrBothSources
	case !hasFile && !hasLink:
		return nil, ErrNoSource
	}

	ok, err := s.Usernames.HasUsername(ctx, ownerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.ActionCheckUsername, err)
	}
	if !ok {
		return nil, ErrUsernameRequired
	}

	var videoLink, source string
	if hasLink {
		source = "link"
		videoLink, err = s.acceptLink(link, req.Duration)
	} else {
		source = "file"
		videoLink, err = s.acceptFile(ctx, req.File, req.Duration)
	}
	if err != nil {
		return nil, err
	}

	// a new video invalidates whatever metadata was drafted for the old one
	draft, err := s.Drafts.SetUploadData(ctx, ownerID, models.DraftPatch{
		VideoLink: &videoLink,
		Duration:  &req.Duration,
		Title:     models.Ptr(""),
		Info:      models.Ptr(""),
		Cards:     &[]models.Card{},
		Step:      models.Ptr(models.StepDetails),
	})
	if err != nil {
		return nil, err
	}

	s.Log.WithFields(logrus.Fields{
		"owner_id": ownerID,
		"source":   source,
		"duration": req.Duration,
	}).Info("video intake accepted")

	return &StepResult{Draft: draft, Next: RouteDetails}, nil
}

func (s *IntakeService) acceptLink(link string, duration float64) (string, error) {
	if err := validation.ValidateVideoLink(link, s.DenyHosts); err != nil {
		return "", apperr.Invalid(err.Error())
	}
	// player metadata not loaded yet; the client retries once it has a duration
	if duration <= 0 {
		return "", ErrValidating
	}
	return link, nil
}

func (s *IntakeService) acceptFile(ctx context.Context, f *UploadFile, duration float64) (string, error) {
	if f.Header == nil || f.Content == nil {
		return "", ErrNoSource
	}
	if err := validation.ValidateUpload(f.Header, s.MaxUploadBytes); err != nil {
		return "", apperr.Invalid(err.Error())
	}
	if duration <= 0 {
		return "", ErrValidating
	}

	contentType := validation.ContentType(f.Header)

	url, err := s.Storage.Upload(ctx, f.Content, f.Header.Filename, contentType)
	if err != nil {
		return "", apperr.Wrap(apperr.ActionUploadVideo, fmt.Errorf("store %q: %w", f.Header.Filename, err))
	}
	return url, nil
}
