package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"vidlink-backend/internal/apperr"
	"vidlink-backend/internal/service"

	"github.com/sirupsen/logrus"
)

// Responder writes JSON responses and turns errors into user-facing ones.
type Responder struct {
	Log    *logrus.Logger
	Errors *apperr.ErrorLog
}

type errorBody struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

func (rs *Responder) JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		rs.Log.WithError(err).Warn("encode response failed")
	}
}

// Error answers with the error's status and friendly message. Backend failures are
// logged and recorded in the error log; validation and client errors are not.
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, action string, err error) {
	ae := apperr.Wrap(action, err)
	if ae.Kind == apperr.Internal {
		userID := ""
		if u := UserFrom(r.Context()); u != nil {
			userID = u.ID
		}
		rs.Log.WithError(err).WithFields(logrus.Fields{
			"action":  action,
			"user_id": userID,
			"path":    r.URL.Path,
		}).Error("request failed")
		rs.Errors.Record(action, userID, err)
	}

	rs.JSON(w, ae.Kind.Status(), errorBody{
		Error:    ae.Kind.String(),
		Message:  apperr.MessageOf(ae),
		Redirect: redirectFor(err),
	})
}

// redirectFor names the wizard route the client should go to for err, if any.
func redirectFor(err error) string {
	switch {
	case errors.Is(err, service.ErrNoVideo):
		return service.RouteVideo
	case errors.Is(err, service.ErrUsernameRequired):
		return service.RouteSettings
	}
	return ""
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Invalid("Invalid JSON body.")
	}
	return nil
}
