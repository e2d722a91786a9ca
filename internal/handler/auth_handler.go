package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"vidlink-backend/internal/apperr"
	"vidlink-backend/internal/models"
	"vidlink-backend/internal/service"

	"github.com/google/uuid"
)

var errBadState = apperr.Invalid("Sign-in expired. Please try again.")

// OAuthFlow is the Google authorization-code flow.
type OAuthFlow interface {
	LoginURL(state string) string
	Exchange(ctx context.Context, code string) (models.GoogleProfile, error)
}

// AuthHandler covers Google sign-in, sign-out and the signed-in user's profile.
type AuthHandler struct {
	Users       *service.UserService
	OAuth       OAuthFlow
	Cookies     Cookies
	FrontendURL string
	Resp        *Responder
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	h.Cookies.set(w, stateCookie, state, stateTTL, true)
	http.Redirect(w, r, h.OAuth.LoginURL(state), http.StatusFound)
}

// Callback finishes sign-in and sends the browser back to the frontend; users
// without a username go to settings first.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(stateCookie)
	if err != nil || c.Value == "" || c.Value != r.URL.Query().Get("state") {
		h.Resp.Error(w, r, apperr.ActionSignIn, errBadState)
		return
	}
	h.Cookies.clear(w, stateCookie)

	code := r.URL.Query().Get("code")
	if code == "" {
		h.Resp.Error(w, r, apperr.ActionSignIn, apperr.Invalid("Sign-in was cancelled."))
		return
	}
	profile, err := h.OAuth.Exchange(r.Context(), code)
	if err != nil {
		h.Resp.Error(w, r, apperr.ActionSignIn, err)
		return
	}
	u, sess, err := h.Users.SignIn(r.Context(), profile)
	if err != nil {
		h.Resp.Error(w, r, apperr.ActionSignIn, err)
		return
	}
	h.Cookies.SignedIn(w, sess, u)

	dest := strings.TrimRight(h.FrontendURL, "/") + "/"
	if u.Username == "" {
		dest = strings.TrimRight(h.FrontendURL, "/") + service.RouteSettings
	}
	http.Redirect(w, r, dest, http.StatusFound)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Users.SignOut(r.Context(), sessionToken(r)); err != nil {
		h.Resp.Error(w, r, apperr.ActionSignIn, err)
		return
	}
	h.Cookies.SignedOut(w)
	h.Resp.JSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	h.Resp.JSON(w, http.StatusOK, UserFrom(r.Context()))
}

// CheckUsername answers the upload gate: has the user picked a username yet?
func (h *AuthHandler) CheckUsername(w http.ResponseWriter, r *http.Request) {
	ok, err := h.Users.HasUsername(r.Context(), owner(r))
	if err != nil {
		h.Resp.Error(w, r, apperr.ActionCheckUsername, err)
		return
	}
	h.Resp.JSON(w, http.StatusOK, map[string]bool{"hasUsername": ok})
}

type usernameBody struct {
	Username string `json:"username"`
}

type usernameResult struct {
	User     *models.User `json:"user"`
	Redirect string       `json:"redirect,omitempty"`
}

// SetUsername stores the username and, when the user was sent here from the upload
// wizard, points them back to it.
func (h *AuthHandler) SetUsername(w http.ResponseWriter, r *http.Request) {
	var body usernameBody
	if err := decodeJSON(r, &body); err != nil {
		h.Resp.Error(w, r, apperr.ActionUpdateUsername, err)
		return
	}
	u, err := h.Users.SetUsername(r.Context(), owner(r), body.Username)
	if err != nil {
		h.Resp.Error(w, r, apperr.ActionUpdateUsername, err)
		return
	}

	ttl := h.Users.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	h.Cookies.Display(w, u, ttl)

	res := usernameResult{User: u}
	if h.Cookies.TakeUploadReturn(w, r) {
		res.Redirect = service.RouteVideo
	}
	h.Resp.JSON(w, http.StatusOK, res)
}
