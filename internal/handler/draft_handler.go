package handler

import (
	"context"
	"net/http"

	"vidlink-backend/internal/apperr"
	"vidlink-backend/internal/models"
	"vidlink-backend/internal/service"

	"github.com/gorilla/mux"
)

// DraftHandler serves the upload wizard's draft and steps 2 to 4.
type DraftHandler struct {
	Drafts   *service.DraftService
	Metadata *service.MetadataService
	Cards    *service.CardService
	Publish  *service.PublishService
	Resp     *Responder
}

func owner(r *http.Request) string {
	return UserFrom(r.Context()).ID
}

func (h *DraftHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	h.Resp.JSON(w, http.StatusOK, h.Drafts.GetUploadData(r.Context(), owner(r)))
}

func (h *DraftHandler) PatchDraft(w http.ResponseWriter, r *http.Request) {
	var patch models.DraftPatch
	if err := decodeJSON(r, &patch); err != nil {
		h.Resp.Error(w, r, apperr.ActionSaveDraft, err)
		return
	}
	d, err := h.Drafts.SetUploadData(r.Context(), owner(r), patch)
	if err != nil {
		h.Resp.Error(w, r, apperr.ActionSaveDraft, err)
		return
	}
	h.Resp.JSON(w, http.StatusOK, d)
}

func (h *DraftHandler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.Drafts.ClearUploadData(r.Context(), owner(r)); err != nil {
		h.Resp.Error(w, r, apperr.ActionSaveDraft, err)
		return
	}
	h.Resp.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type stepBody struct {
	Step int `json:"step"`
}

func (h *DraftHandler) GetStep(w http.ResponseWriter, r *http.Request) {
	h.Resp.JSON(w, http.StatusOK, stepBody{Step: h.Drafts.GetUploadStep(r.Context(), owner(r))})
}

func (h *DraftHandler) PutStep(w http.ResponseWriter, r *http.Request) {
	var body stepBody
	if err := decodeJSON(r, &body); err != nil {
		h.Resp.Error(w, r, apperr.ActionSaveDraft, err)
		return
	}
	if err := h.Drafts.SetUploadStep(r.Context(), owner(r), body.Step); err != nil {
		h.Resp.Error(w, r, apperr.ActionSaveDraft, err)
		return
	}
	h.Resp.JSON(w, http.StatusOK, body)
}

// ── Step 2: details ─────────────────────────────────────────────────────────

func (h *DraftHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	d, err := h.Metadata.Load(r.Context(), owner(r))
	if err != nil {
		h.Resp.Error(w, r, apperr.ActionSaveDraft, err)
		return
	}
	h.Resp.JSON(w, http.StatusOK, d)
}

func (h *DraftHandler) DetailsNext(w http.ResponseWriter, r *http.Request) {
	h.details(w, r, h.Metadata.Next)
}

func (h *DraftHandler) DetailsBack(w http.ResponseWriter, r *http.Request) {
	h.details(w, r, h.Metadata.Back)
}

func (h *DraftHandler) details(w http.ResponseWriter, r *http.Request, step func(ctx context.Context, owner string, m service.Metadata) (*service.StepResult, error)) {
	var m service.Metadata
	if err := decodeJSON(r, &m); err != nil {
		h.Resp.Error(w, r, apperr.ActionSaveDraft, err)
		return
	}
	res, err := step(r.Context(), owner(r), m)
	if err != nil {
		h.Resp.Error(w, r, apperr.ActionSaveDraft, err)
		return
	}
	h.Resp.JSON(w, http.StatusOK, res)
}

// Orientation takes the decoded width/height reported by the preview player.
func (h *DraftHandler) Orientation(w http.ResponseWriter, r *http.Request) {
	var dims service.StaticDimensions
	if err := decodeJSON(r, &dims); err != nil {
		h.Resp.Error(w, r, apperr.ActionSaveDraft, err)
		return
	}
	vertical, err := h.Metadata.DetectOrientation(r.Context(), owner(r), dims)
	if err != nil {
		h.Resp.Error(w, r, apperr.ActionSaveDraft, err)
		return
	}
	h.Resp.JSON(w, http.StatusOK, map[string]bool{"isVertical": vertical})
}

// ── Step 3: cards ───────────────────────────────────────────────────────────

func (h *DraftHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.Cards.List(r.Context(), owner(r))
	if err != nil {
		h.Resp.Error(w, r, apperr.ActionSaveDraft, err)
		return
	}
	h.Resp.JSON(w, http.StatusOK, cards)
}

func (h *DraftHandler) AddCard(w http.ResponseWriter, r *http.Request) {
	var in service.CardInput
	if err := decodeJSON(r, &in); err != nil {
		h.Resp.Error(w, r, apperr.ActionSaveDraft, err)
		return
	}
	card, err := h.Cards.Add(r.Context(), owner(r), in)
	if err != nil {
		h.Resp.Error(w, r, apperr.ActionSaveDraft, err)
		return
	}
	h.Resp.JSON(w, http.StatusCreated, card)
}

func (h *DraftHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	var in service.CardInput
	if err := decodeJSON(r, &in); err != nil {
		h.Resp.Error(w, r, apperr.ActionSaveDraft, err)
		return
	}
	card, err := h.Cards.Update(r.Context(), owner(r), mux.Vars(r)["cardId"], in)
	if err != nil {
		h.Resp.Error(w, r, apperr.ActionSaveDraft, err)
		return
	}
	h.Resp.JSON(w, http.StatusOK, card)
}

func (h *DraftHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	if err := h.Cards.Remove(r.Context(), owner(r), mux.Vars(r)["cardId"]); err != nil {
		h.Resp.Error(w, r, apperr.ActionSaveDraft, err)
		return
	}
	h.Resp.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *DraftHandler) CardsNext(w http.ResponseWriter, r *http.Request) {
	h.stepResult(w, r, h.Cards.Next)
}

func (h *DraftHandler) CardsBack(w http.ResponseWriter, r *http.Request) {
	h.stepResult(w, r, h.Cards.Back)
}

func (h *DraftHandler) stepResult(w http.ResponseWriter, r *http.Request, step func(ctx context.Context, owner string) (*service.StepResult, error)) {
	res, err := step(r.Context(), owner(r))
	if err != nil {
		h.Resp.Error(w, r, apperr.ActionSaveDraft, err)
		return
	}
	h.Resp.JSON(w, http.StatusOK, res)
}

// ── Step 4: preview / publish ───────────────────────────────────────────────

func (h *DraftHandler) Preview(w http.ResponseWriter, r *http.Request) {
	d, err := h.Publish.Preview(r.Context(), owner(r))
	if err != nil {
		h.Resp.Error(w, r, apperr.ActionPublishVideo, err)
		return
	}
	h.Resp.JSON(w, http.StatusOK, d)
}

func (h *DraftHandler) PublishDraft(w http.ResponseWriter, r *http.Request) {
	v, err := h.Publish.Publish(r.Context(), owner(r))
	if err != nil {
		h.Resp.Error(w, r, apperr.ActionPublishVideo, err)
		return
	}
	h.Resp.JSON(w, http.StatusCreated, v)
}

func (h *DraftHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.Publish.Cancel(r.Context(), owner(r)); err != nil {
		h.Resp.Error(w, r, apperr.ActionSaveDraft, err)
		return
	}
	h.Resp.JSON(w, http.StatusOK, map[string]string{"status": "cancelled", "next": service.RouteVideo})
}
