package models

import (
	"time"
)

// Wizard steps. Each step is its own route on the frontend.
const (
	StepVideo   = 1
	StepDetails = 2
	StepCards   = 3
	StepPreview = 4
)

// Card is a timestamped link shown at a moment of the video.
type Card struct {
	ID      string  `json:"id,omitempty" bson:"id,omitempty"`
	Name    string  `json:"name" bson:"name" validate:"required,max=100"`
	Link    string  `json:"link" bson:"link" validate:"required,url"`
	Start   float64 `json:"start" bson:"start" validate:"gte=0"`
	No      int     `json:"no" bson:"no"`
	IsSaved bool    `json:"isSaved,omitempty" bson:"isSaved,omitempty"`
}

// UploadDraft is the not-yet-published video assembled across the upload wizard.
type UploadDraft struct {
	VideoLink   string  `json:"videoLink"`
	Duration    float64 `json:"duration"`
	Title       string  `json:"title"`
	Info        string  `json:"info"`
	Description string  `json:"description"`
	Cards       []Card  `json:"cards"`
	Step        int     `json:"step"`
	IsVertical  bool    `json:"isVertical"`
}

// DefaultDraft is what a user sees before touching the wizard.
func DefaultDraft() UploadDraft {
	return UploadDraft{Cards: []Card{}, Step: StepVideo}
}

// DraftPatch is a partial update. Nil fields are left untouched; Cards replaces the
// whole list.
type DraftPatch struct {
	VideoLink   *string  `json:"videoLink,omitempty"`
	Duration    *float64 `json:"duration,omitempty"`
	Title       *string  `json:"title,omitempty"`
	Info        *string  `json:"info,omitempty"`
	Description *string  `json:"description,omitempty"`
	Cards       *[]Card  `json:"cards,omitempty"`
	Step        *int     `json:"step,omitempty"`
	IsVertical  *bool    `json:"isVertical,omitempty"`
}

// Apply returns d with every set field of p copied over it.
func (d UploadDraft) Apply(p DraftPatch) UploadDraft {
	if p.VideoLink != nil {
		d.VideoLink = *p.VideoLink
	}
	if p.Duration != nil {
		d.Duration = *p.Duration
	}
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Info != nil {
		d.Info = *p.Info
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Cards != nil {
		cards := make([]Card, len(*p.Cards))
		copy(cards, *p.Cards)
		d.Cards = cards
	}
	if p.Step != nil {
		d.Step = *p.Step
	}
	if p.IsVertical != nil {
		d.IsVertical = *p.IsVertical
	}
	return d
}

// DraftRecord is a stored draft row. Data holds the serialized UploadDraft.
type DraftRecord struct {
	OwnerID   string    `json:"owner_id"`
	Data      []byte    `json:"-"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Ptr is shorthand for building patches.
func Ptr[T any](v T) *T { return &v }
