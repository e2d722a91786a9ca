package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"vidlink-backend/internal/models"
)

const (
	SessionCookie      = "session_token"
	UserCookie         = "user"
	UploadReturnCookie = "upload_return"
	stateCookie        = "oauth_state"

	uploadReturnTTL = 24 * time.Hour
	stateTTL        = 10 * time.Minute
)

// Cookies sets and clears the cookies the frontend relies on.
type Cookies struct {
	Secure bool
}

func (c Cookies) set(w http.ResponseWriter, name, value string, ttl time.Duration, httpOnly bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: httpOnly,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c Cookies) clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SignedIn sets the session cookie and the display cache the frontend reads.
func (c Cookies) SignedIn(w http.ResponseWriter, sess *models.Session, u *models.User) {
	ttl := time.Until(sess.ExpiresAt)
	c.set(w, SessionCookie, sess.Token, ttl, true)
	c.Display(w, u, ttl)
}

// Display refreshes the "user" cookie: URL-encoded JSON of picture and username.
func (c Cookies) Display(w http.ResponseWriter, u *models.User, ttl time.Duration) {
	raw, _ := json.Marshal(models.UserDisplay{Picture: u.Picture, Username: u.Username})
	c.set(w, UserCookie, url.QueryEscape(string(raw)), ttl, false)
}

func (c Cookies) SignedOut(w http.ResponseWriter) {
	c.clear(w, SessionCookie)
	c.clear(w, UserCookie)
}

// UploadReturn remembers for a day that settings should send the user back to upload.
func (c Cookies) UploadReturn(w http.ResponseWriter) {
	c.set(w, UploadReturnCookie, "1", uploadReturnTTL, false)
}

// TakeUploadReturn reports whether the flag was set and clears it.
func (c Cookies) TakeUploadReturn(w http.ResponseWriter, r *http.Request) bool {
	if _, err := r.Cookie(UploadReturnCookie); err != nil {
		return false
	}
	c.clear(w, UploadReturnCookie)
	return true
}
