package service

import (
	"context"
	"errors"
	"fmt"

	"vidlink-backend/internal/models"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

// TokenVerifier checks a Google ID token and extracts the profile in it.
type TokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (models.GoogleProfile, error)
}

// IDTokenVerifier validates ID tokens against Google's published keys.
type IDTokenVerifier struct {
	Audience string
}

func (v IDTokenVerifier) Verify(ctx context.Context, raw string) (models.GoogleProfile, error) {
	payload, err := idtoken.Validate(ctx, raw, v.Audience)
	if err != nil {
		return models.GoogleProfile{}, fmt.Errorf("validate id token: %w", err)
	}
	claim := func(key string) string {
		s, _ := payload.Claims[key].(string)
		return s
	}
	return models.GoogleProfile{
		Subject: payload.Subject,
		Email:   claim("email"),
		Name:    claim("name"),
		Picture: claim("picture"),
	}, nil
}

// CodeExchanger trades an authorization code for a token.
type CodeExchanger interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
}

// GoogleOAuth runs the authorization-code flow for "Sign in with Google".
type GoogleOAuth struct {
	Config   CodeExchanger
	Verifier TokenVerifier
}

func NewGoogleOAuth(clientID, clientSecret, redirectURL string) *GoogleOAuth {
	return &GoogleOAuth{
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		Verifier: IDTokenVerifier{Audience: clientID},
	}
}

func (g *GoogleOAuth) LoginURL(state string) string {
	return g.Config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the callback code for a verified Google profile.
func (g *GoogleOAuth) Exchange(ctx context.Context, code string) (models.GoogleProfile, error) {
	tok, err := g.Config.Exchange(ctx, code)
	if err != nil {
		return models.GoogleProfile{}, fmt.Errorf("exchange code: %w", err)
	}
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return models.GoogleProfile{}, errors.New("token response has no id_token")
	}
	return g.Verifier.Verify(ctx, raw)
}
