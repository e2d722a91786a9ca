package handler

import (
	"net/http"
	"strconv"

	"vidlink-backend/internal/apperr"
	"vidlink-backend/internal/models"
	"vidlink-backend/internal/playback"
	"vidlink-backend/internal/service"
	"vidlink-backend/internal/validation"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

var errBadID = apperr.Invalid("Invalid id.")

// VideoHandler serves published videos and the viewer's watch sessions.
type VideoHandler struct {
	Videos   *service.VideoService
	Playback *playback.Manager
	MaxTime  float64
	Resp     *Responder
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, errBadID
	}
	return id, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.Invalid(name + " must be a non-negative integer.")
	}
	return n, nil
}

// List supports ?owner=<user id>&limit=&offset=.
func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.Resp.Error(w, r, apperr.ActionFetchVideos, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		h.Resp.Error(w, r, apperr.ActionFetchVideos, err)
		return
	}

	videos, err := h.Videos.List(r.Context(), models.VideoFilter{
		OwnerID: r.URL.Query().Get("owner"),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		h.Resp.Error(w, r, apperr.ActionFetchVideos, err)
		return
	}
	h.Resp.JSON(w, http.StatusOK, videos)
}

func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.Resp.Error(w, r, apperr.ActionFetchVideos, err)
		return
	}
	v, err := h.Videos.Get(r.Context(), id)
	if err != nil {
		h.Resp.Error(w, r, apperr.ActionFetchVideos, err)
		return
	}
	h.Resp.JSON(w, http.StatusOK, v)
}

func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.Resp.Error(w, r, apperr.ActionDeleteVideo, err)
		return
	}
	if err := h.Videos.Delete(r.Context(), id, owner(r)); err != nil {
		h.Resp.Error(w, r, apperr.ActionDeleteVideo, err)
		return
	}
	h.Resp.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type watchSessionBody struct {
	SessionID uuid.UUID     `json:"session_id"`
	MaxTime   float64       `json:"max_time"`
	Cards     []models.Card `json:"cards"`
}

// OpenWatchSession starts tracking one page view of a video.
func (h *VideoHandler) OpenWatchSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.Resp.Error(w, r, apperr.ActionReportWatchTime, err)
		return
	}
	v, err := h.Videos.Get(r.Context(), id)
	if err != nil {
		h.Resp.Error(w, r, apperr.ActionFetchVideos, err)
		return
	}
	sid, err := h.Playback.Open(v.ID, v.Cards)
	if err != nil {
		h.Resp.Error(w, r, apperr.ActionReportWatchTime, err)
		return
	}
	h.Resp.JSON(w, http.StatusCreated, watchSessionBody{SessionID: sid, MaxTime: h.MaxTime, Cards: v.Cards})
}

// WatchEvent applies a player event and returns the commands the player must run.
func (h *VideoHandler) WatchEvent(w http.ResponseWriter, r *http.Request) {
	sid, err := pathUUID(r, "sid")
	if err != nil {
		h.Resp.Error(w, r, apperr.ActionReportWatchTime, err)
		return
	}
	var ev playback.Event
	if err := decodeJSON(r, &ev); err != nil {
		h.Resp.Error(w, r, apperr.ActionReportWatchTime, err)
		return
	}
	res, err := h.Playback.Handle(r.Context(), sid, ev)
	if err != nil {
		h.Resp.Error(w, r, apperr.ActionReportWatchTime, err)
		return
	}
	h.Resp.JSON(w, http.StatusOK, res)
}

// ReportWatchTime records seconds watched by a client that tracks time itself.
func (h *VideoHandler) ReportWatchTime(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.Resp.Error(w, r, apperr.ActionReportWatchTime, err)
		return
	}
	var report models.WatchReport
	if err := decodeJSON(r, &report); err != nil {
		h.Resp.Error(w, r, apperr.ActionReportWatchTime, err)
		return
	}
	if err := validation.Struct(report); err != nil {
		h.Resp.Error(w, r, apperr.ActionReportWatchTime, apperr.Invalid(err.Error()))
		return
	}
	if err := h.Videos.ReportWatchTime(r.Context(), id, report.Seconds); err != nil {
		h.Resp.Error(w, r, apperr.ActionReportWatchTime, err)
		return
	}
	h.Resp.JSON(w, http.StatusAccepted, map[string]string{"status": "recorded"})
}
