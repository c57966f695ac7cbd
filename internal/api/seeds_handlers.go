package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/beccaroth/muse/internal/types"
	"github.com/beccaroth/muse/internal/undo"
	"github.com/beccaroth/muse/internal/validation"
)

// ListSeeds handles GET /api/v1/seeds. Seeds with a pending delete or
// promote are overlaid out of the listing.
func (h *Handler) ListSeeds(w http.ResponseWriter, r *http.Request) {
	seeds, err := h.listings.Seeds(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.undo.OverlaySeeds(seeds))
}

// GetSeed handles GET /api/v1/seeds/{id}
func (h *Handler) GetSeed(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	if h.undo.IsPendingDelete(undo.KindSeed, id) {
		WriteProblem(w, r, http.StatusNotFound, "Resource not found")
		return
	}

	s, err := h.store.GetSeed(r.Context(), id)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// CreateSeed handles POST /api/v1/seeds
func (h *Handler) CreateSeed(w http.ResponseWriter, r *http.Request) {
	var ns types.NewSeed
	if err := json.NewDecoder(r.Body).Decode(&ns); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err))
		return
	}

	var c validation.Collector
	c.Add(validation.ValidateRequired("title", ns.Title))
	c.Add(validation.ValidateMaxLength("title", ns.Title, maxNameLength))
	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", c.Errors())
		return
	}

	s, err := h.store.InsertSeed(r.Context(), ns)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	h.listings.Invalidate(undo.KindSeed)
	writeJSON(w, http.StatusCreated, s)
}

// UpdateSeed handles PATCH /api/v1/seeds/{id}
func (h *Handler) UpdateSeed(w http.ResponseWriter, r *http.Request) {
	var patch types.SeedPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err))
		return
	}

	var c validation.Collector
	if patch.Title != nil {
		c.Add(validation.ValidateRequired("title", *patch.Title))
		c.Add(validation.ValidateMaxLength("title", *patch.Title, maxNameLength))
	}
	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", c.Errors())
		return
	}

	s, err := h.store.UpdateSeed(r.Context(), urlParam(r, "id"), patch)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	h.listings.Invalidate(undo.KindSeed)
	writeJSON(w, http.StatusOK, s)
}

// DeleteSeed handles DELETE /api/v1/seeds/{id} as an optimistic delete.
func (h *Handler) DeleteSeed(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	if h.undo.IsPendingDelete(undo.KindSeed, id) {
		WriteProblem(w, r, http.StatusNotFound, "Resource not found")
		return
	}

	s, err := h.store.GetSeed(r.Context(), id)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	token := h.undo.DeleteSeed(*s)
	writeJSON(w, http.StatusAccepted, map[string]string{"undo_token": token})
}

// PromoteSeed handles POST /api/v1/seeds/{id}/promote. The seed becomes a
// project optimistically: the response carries a placeholder project with a
// temporary ID plus an undo token. The real insert-then-delete against the
// store happens when the grace window elapses.
func (h *Handler) PromoteSeed(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	if h.undo.IsPendingDelete(undo.KindSeed, id) {
		WriteProblem(w, r, http.StatusNotFound, "Resource not found")
		return
	}

	s, err := h.store.GetSeed(r.Context(), id)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	project, token := h.undo.PromoteSeed(*s)
	writeJSON(w, http.StatusAccepted, struct {
		Project   types.Project `json:"project"`
		UndoToken string        `json:"undo_token"`
	}{Project: project, UndoToken: token})
}
