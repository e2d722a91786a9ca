package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Handlers is everything Register mounts under /api/v1.
type Handlers struct {
	Auth      *Auth
	Account   *AuthHandler
	Drafts    *DraftHandler
	Upload    *UploadHandler
	Videos    *VideoHandler
	Dashboard *DashboardHandler
}

// Register mounts the versioned API on r.
func Register(r *mux.Router, h *Handlers) {
	api := r.PathPrefix("/api/v1").Subrouter()
	signedIn := h.Auth.Require

	// auth
	api.HandleFunc("/auth/google/login", h.Account.Login).Methods("GET")
	api.HandleFunc("/auth/google/callback", h.Account.Callback).Methods("GET")
	api.HandleFunc("/auth/logout", h.Account.Logout).Methods("POST")

	me := api.PathPrefix("/me").Subrouter()
	me.Use(signedIn)
	me.HandleFunc("", h.Account.Me).Methods("GET")
	me.HandleFunc("/username", h.Account.CheckUsername).Methods("GET")
	me.HandleFunc("/username", h.Account.SetUsername).Methods("PUT")

	// upload wizard
	drafts := api.PathPrefix("/drafts/current").Subrouter()
	drafts.Use(signedIn)
	drafts.HandleFunc("", h.Drafts.GetDraft).Methods("GET")
	drafts.HandleFunc("", h.Drafts.PatchDraft).Methods("PATCH")
	drafts.HandleFunc("", h.Drafts.DeleteDraft).Methods("DELETE")
	drafts.HandleFunc("/step", h.Drafts.GetStep).Methods("GET")
	drafts.HandleFunc("/step", h.Drafts.PutStep).Methods("PUT")
	drafts.HandleFunc("/video", h.Upload.SubmitVideo).Methods("POST")
	drafts.HandleFunc("/upload-progress", h.Upload.UploadProgress).Methods("GET")
	drafts.HandleFunc("/details", h.Drafts.GetDetails).Methods("GET")
	drafts.HandleFunc("/details/next", h.Drafts.DetailsNext).Methods("POST")
	drafts.HandleFunc("/details/back", h.Drafts.DetailsBack).Methods("POST")
	drafts.HandleFunc("/orientation", h.Drafts.Orientation).Methods("POST")
	drafts.HandleFunc("/cards", h.Drafts.ListCards).Methods("GET")
	drafts.HandleFunc("/cards", h.Drafts.AddCard).Methods("POST")
	drafts.HandleFunc("/cards/next", h.Drafts.CardsNext).Methods("POST")
	drafts.HandleFunc("/cards/back", h.Drafts.CardsBack).Methods("POST")
	drafts.HandleFunc("/cards/{cardId}", h.Drafts.UpdateCard).Methods("PUT")
	drafts.HandleFunc("/cards/{cardId}", h.Drafts.DeleteCard).Methods("DELETE")
	drafts.HandleFunc("/preview", h.Drafts.Preview).Methods("GET")
	drafts.HandleFunc("/publish", h.Drafts.PublishDraft).Methods("POST")
	drafts.HandleFunc("/cancel", h.Drafts.Cancel).Methods("POST")

	// videos and playback; viewers need not be signed in
	api.HandleFunc("/videos", h.Videos.List).Methods("GET")
	api.HandleFunc("/videos/{id}", h.Videos.Get).Methods("GET")
	api.Handle("/videos/{id}", signedIn(http.HandlerFunc(h.Videos.Delete))).Methods("DELETE")
	api.HandleFunc("/videos/{id}/watch-sessions", h.Videos.OpenWatchSession).Methods("POST")
	api.HandleFunc("/videos/{id}/watch-time", h.Videos.ReportWatchTime).Methods("POST")
	api.HandleFunc("/watch-sessions/{sid}/events", h.Videos.WatchEvent).Methods("POST")

	// analytics
	api.Handle("/dashboard", signedIn(http.HandlerFunc(h.Dashboard.Creator))).Methods("GET")
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(h.Auth.RequireAdmin)
	admin.HandleFunc("/errors", h.Dashboard.ErrorLog).Methods("GET")
	admin.HandleFunc("/system", h.Dashboard.System).Methods("GET")
}
