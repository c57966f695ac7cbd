package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/beccaroth/muse/internal/cache"
	"github.com/beccaroth/muse/internal/calendar"
	"github.com/beccaroth/muse/internal/notify"
	"github.com/beccaroth/muse/internal/store"
	"github.com/beccaroth/muse/internal/types"
	"github.com/beccaroth/muse/internal/undo"
)

// Handler implements the API handlers.
type Handler struct {
	store         store.Store
	listings      *cache.Listings
	undo          *undo.Manager
	calendar      *calendar.Aggregator
	notifications *notify.Ring
	apiKey        string
	version       string
}

// NewHandler creates a new Handler over the given collaborators.
func NewHandler(
	s store.Store,
	listings *cache.Listings,
	undoMgr *undo.Manager,
	agg *calendar.Aggregator,
	notifications *notify.Ring,
	apiKey, version string,
) *Handler {
	return &Handler{
		store:         s,
		listings:      listings,
		undo:          undoMgr,
		calendar:      agg,
		notifications: notifications,
		apiKey:        apiKey,
		version:       version,
	}
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Health returns the health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	resp := types.HealthResponse{
		Status:       "healthy",
		Version:      h.version,
		ProjectCount: stats.ProjectCount,
		SeedCount:    stats.SeedCount,
		TaskCount:    stats.TaskCount,
	}

	if active, err := h.store.GetActiveCycle(r.Context()); err == nil {
		resp.ActiveCycleID = active.ID
	} else if !errors.Is(err, store.ErrNoActiveCycle) {
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Notifications handles GET /api/v1/notifications
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	resp := struct {
		Notifications []undo.Notification `json:"notifications"`
	}{Notifications: h.notifications.Recent()}
	if resp.Notifications == nil {
		resp.Notifications = []undo.Notification{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Undo handles POST /api/v1/undo/{token}: it rolls back a pending
// delete or promote before its grace window elapses.
func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	token := urlParam(r, "token")
	if err := h.undo.Undo(token); err != nil {
		MapStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
