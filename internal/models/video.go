package models

import (
	"time"

	"github.com/google/uuid"
)

// Video is a published draft.
type Video struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     string    `json:"owner_id"`
	VideoLink   string    `json:"video_link"`
	Duration    float64   `json:"duration"`
	Title       string    `json:"title"`
	Info        string    `json:"info"`
	Description string    `json:"description,omitempty"`
	Cards       []Card    `json:"cards"`
	IsVertical  bool      `json:"is_vertical"`

	Views        int64   `json:"views"`
	WatchSeconds float64 `json:"watch_seconds"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VideoFilter narrows a listing. Zero Limit means the store default.
type VideoFilter struct {
	OwnerID string
	Limit   int
	Offset  int
}

// WatchReport is a viewer's accumulated watch time for one page view.
type WatchReport struct {
	VideoID uuid.UUID `json:"video_id"`
	Seconds float64   `json:"seconds" validate:"gte=0"`
}

// CreatorDashboard summarises a creator's videos.
type CreatorDashboard struct {
	TotalVideos       int      `json:"total_videos"`
	TotalViews        int64    `json:"total_views"`
	TotalWatchSeconds float64  `json:"total_watch_seconds"`
	AvgWatchSeconds   float64  `json:"avg_watch_seconds"`
	TopVideos         []*Video `json:"top_videos"`
}
