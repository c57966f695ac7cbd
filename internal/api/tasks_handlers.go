package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/beccaroth/muse/internal/types"
	"github.com/beccaroth/muse/internal/undo"
	"github.com/beccaroth/muse/internal/validation"
)

// ListProjectTasks handles GET /api/v1/projects/{id}/tasks, ordered by
// sort_order with pending deletes overlaid out.
func (h *Handler) ListProjectTasks(w http.ResponseWriter, r *http.Request) {
	projectID := urlParam(r, "id")
	if _, err := h.store.GetProject(r.Context(), projectID); err != nil {
		MapStoreError(w, r, err)
		return
	}

	tasks, err := h.listings.Tasks(r.Context(), projectID)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.undo.OverlayTasks(tasks))
}

// GetTask handles GET /api/v1/tasks/{id}
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	if h.undo.IsPendingDelete(undo.KindTask, id) {
		WriteProblem(w, r, http.StatusNotFound, "Resource not found")
		return
	}

	t, err := h.store.GetTask(r.Context(), id)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// CreateTask handles POST /api/v1/projects/{id}/tasks
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	projectID := urlParam(r, "id")

	var nt types.NewTask
	if err := json.NewDecoder(r.Body).Decode(&nt); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err))
		return
	}
	nt.ProjectID = projectID

	var c validation.Collector
	c.Add(validation.ValidateRequired("title", nt.Title))
	c.Add(validation.ValidateMaxLength("title", nt.Title, maxNameLength))
	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", c.Errors())
		return
	}

	if _, err := h.store.GetProject(r.Context(), projectID); err != nil {
		MapStoreError(w, r, err)
		return
	}

	t, err := h.store.InsertTask(r.Context(), nt)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	h.listings.Invalidate(undo.KindTask)
	writeJSON(w, http.StatusCreated, t)
}

// UpdateTask handles PATCH /api/v1/tasks/{id}
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var patch types.TaskPatch
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

	t, err := h.store.UpdateTask(r.Context(), urlParam(r, "id"), patch)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	h.listings.Invalidate(undo.KindTask)
	writeJSON(w, http.StatusOK, t)
}

// DeleteTask handles DELETE /api/v1/tasks/{id} as an optimistic delete.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	if h.undo.IsPendingDelete(undo.KindTask, id) {
		WriteProblem(w, r, http.StatusNotFound, "Resource not found")
		return
	}

	t, err := h.store.GetTask(r.Context(), id)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	token := h.undo.DeleteTask(*t)
	writeJSON(w, http.StatusAccepted, map[string]string{"undo_token": token})
}
