package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"vidlink-backend/internal/apperr"
	"vidlink-backend/internal/models"
	"vidlink-backend/internal/store"
	"vidlink-backend/internal/validation"

	"github.com/google/uuid"
)

var (
	ErrNotSignedIn   = apperr.New(apperr.Unauthorized, "Please sign in.")
	ErrUsernameTaken = apperr.New(apperr.Conflict, "That username is already taken.")
)

const defaultSessionTTL = 30 * 24 * time.Hour

// UserService covers Google sign-in, login sessions and usernames.
type UserService struct {
	Users      store.UserStore
	SessionTTL time.Duration
}

// SignIn finds or creates the user behind a verified Google profile and opens a session.
func (s *UserService) SignIn(ctx context.Context, p models.GoogleProfile) (*models.User, *models.Session, error) {
	if p.Subject == "" {
		return nil, nil, apperr.Invalid("Google account is missing an id.")
	}
	u, err := s.Users.UpsertGoogleUser(ctx, p)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.ActionSignIn, err)
	}

	ttl := s.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	now := time.Now().UTC()
	sess := models.Session{
		Token:     uuid.NewString() + uuid.NewString(),
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.Users.CreateSession(ctx, sess); err != nil {
		return nil, nil, apperr.Wrap(apperr.ActionSignIn, err)
	}
	return u, &sess, nil
}

// Authenticate resolves a session token to its user.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNotSignedIn
	}
	sess, err := s.Users.GetSession(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotSignedIn
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.ActionFetchProfile, err)
	}
	return s.Profile(ctx, sess.UserID)
}

func (s *UserService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.Users.DeleteSession(ctx, token); err != nil {
		return apperr.Wrap(apperr.ActionSignIn, err)
	}
	return nil
}

func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.Users.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotSignedIn
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.ActionFetchProfile, err)
	}
	return u, nil
}

// HasUsername reports whether the user has picked a username yet.
func (s *UserService) HasUsername(ctx context.Context, userID string) (bool, error) {
	u, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		return false, apperr.Wrap(apperr.ActionCheckUsername, err)
	}
	return u.Username != "", nil
}

type usernameForm struct {
	Username string `json:"username" validate:"required,username"`
}

// SetUsername stores a normalised (lower-case) unique username.
func (s *UserService) SetUsername(ctx context.Context, userID, username string) (*models.User, error) {
	form := usernameForm{Username: strings.ToLower(strings.TrimSpace(username))}
	if err := validation.Struct(form); err != nil {
		return nil, apperr.Invalid(err.Error())
	}
	u, err := s.Users.SetUsername(ctx, userID, form.Username)
	switch {
	case errors.Is(err, store.ErrUsernameTaken):
		return nil, ErrUsernameTaken
	case errors.Is(err, store.ErrNotFound):
		return nil, ErrNotSignedIn
	case err != nil:
		return nil, apperr.Wrap(apperr.ActionUpdateUsername, err)
	}
	return u, nil
}
