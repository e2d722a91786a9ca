package handler

import (
	"context"
	"net/http"
	"strings"

	"vidlink-backend/internal/apperr"
	"vidlink-backend/internal/models"
	"vidlink-backend/internal/service"
)

type ctxKey int

const userKey ctxKey = iota

var errAdminOnly = apperr.New(apperr.Forbidden, "Admins only.")

// UserFrom returns the signed-in user placed in ctx by Auth.Require.
func UserFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

// Auth resolves the session cookie (or a bearer token) to a user.
type Auth struct {
	Users *service.UserService
	Resp  *Responder
}

func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func (a *Auth) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := a.Users.Authenticate(r.Context(), sessionToken(r))
		if err != nil {
			a.Resp.Error(w, r, apperr.ActionFetchProfile, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
	})
}

// RequireAdmin is Require plus an admin check.
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return a.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !UserFrom(r.Context()).IsAdmin {
			a.Resp.Error(w, r, apperr.ActionFetchDashboard, errAdminOnly)
			return
		}
		next.ServeHTTP(w, r)
	}))
}
