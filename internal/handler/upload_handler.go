package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"vidlink-backend/internal/apperr"
	"vidlink-backend/internal/service"
	"vidlink-backend/internal/storage"
)

const multipartMemory = 32 << 20

// UploadHandler is step 1 of the wizard: a video file or a link.
type UploadHandler struct {
	Intake   *service.IntakeService
	Progress *service.ProgressTracker
	Cookies  Cookies
	Resp     *Responder

	MaxUploadBytes int64
}

type linkIntake struct {
	Link     string  `json:"link"`
	Duration float64 `json:"duration"`
}

// SubmitVideo accepts multipart ("file" and/or "link", plus "duration") or a JSON
// link. Exactly one source must be given.
func (h *UploadHandler) SubmitVideo(w http.ResponseWriter, r *http.Request) {
	req, err := h.parse(w, r)
	if err != nil {
		h.Resp.Error(w, r, apperr.ActionUploadVideo, err)
		return
	}
	if req.File != nil {
		if c, ok := req.File.Content.(io.Closer); ok {
			defer c.Close()
		}
	}

	res, err := h.Intake.Submit(r.Context(), owner(r), req)
	if errors.Is(err, service.ErrUsernameRequired) {
		h.Cookies.UploadReturn(w)
	}
	if err != nil {
		h.Resp.Error(w, r, apperr.ActionUploadVideo, err)
		return
	}
	h.Resp.JSON(w, http.StatusOK, res)
}

func (h *UploadHandler) parse(w http.ResponseWriter, r *http.Request) (service.IntakeRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var body linkIntake
		if err := decodeJSON(r, &body); err != nil {
			return service.IntakeRequest{}, err
		}
		return service.IntakeRequest{Link: body.Link, Duration: body.Duration}, nil
	}

	if h.Progress != nil {
		ownerID := owner(r)
		h.Progress.Set(ownerID, 0)
		defer h.Progress.Done(ownerID)
		r.Body = progressBody{
			Reader: storage.NewProgressReader(r.Body, r.ContentLength, func(pct int) {
				h.Progress.Set(ownerID, pct)
			}),
			Closer: r.Body,
		}
	}
	if h.MaxUploadBytes > 0 {
		// room for the other form fields
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes+1<<20)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return service.IntakeRequest{}, apperr.Invalid("File exceeds the maximum allowed size.")
		}
		return service.IntakeRequest{}, apperr.Invalid("Invalid upload form.")
	}
	if h.Progress != nil {
		// the parser may stop short of the closing CRLF
		h.Progress.Set(owner(r), 100)
	}

	req := service.IntakeRequest{Link: r.FormValue("link")}
	if raw := strings.TrimSpace(r.FormValue("duration")); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return service.IntakeRequest{}, apperr.Invalid("duration must be a number.")
		}
		req.Duration = d
	}

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		return service.IntakeRequest{}, apperr.Invalid("Invalid file.")
	default:
		req.File = &service.UploadFile{Header: header, Content: file}
	}
	return req, nil
}

// progressBody counts request body bytes as the client sends them.
type progressBody struct {
	io.Reader
	io.Closer
}

// UploadProgress reports how much of the caller's file the server has received.
// The final percentage stays readable for a short while after the transfer ends.
func (h *UploadHandler) UploadProgress(w http.ResponseWriter, r *http.Request) {
	pct, active := h.Progress.Get(owner(r))
	h.Resp.JSON(w, http.StatusOK, map[string]interface{}{"percent": pct, "active": active})
}
