package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/beccaroth/muse/internal/types"
	"github.com/beccaroth/muse/internal/undo"
	"github.com/beccaroth/muse/internal/validation"
)

const maxNameLength = 200

// ListProjects handles GET /api/v1/projects. Listings come from the cache
// with the undo overlay applied, so pending deletes are hidden and pending
// promotions appear.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.listings.Projects(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.undo.OverlayProjects(projects))
}

// GetProject handles GET /api/v1/projects/{id}
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	if h.undo.IsPendingDelete(undo.KindProject, id) {
		WriteProblem(w, r, http.StatusNotFound, "Resource not found")
		return
	}

	p, err := h.store.GetProject(r.Context(), id)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func validateNewProject(np types.NewProject) []validation.ValidationError {
	var c validation.Collector
	c.Add(validation.ValidateRequired("project_name", np.Name))
	c.Add(validation.ValidateMaxLength("project_name", np.Name, maxNameLength))
	c.Add(validation.ValidateEnum("status", string(np.Status), statusStrings()))
	c.Add(validation.ValidateEnum("priority", string(np.Priority), priorityStrings()))
	c.Add(validation.ValidateIntRange("progress", np.Progress, 0, 100))
	return c.Errors()
}

func statusStrings() []string {
	statuses := types.ProjectStatuses()
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func priorityStrings() []string {
	priorities := types.ProjectPriorities()
	out := make([]string, len(priorities))
	for i, p := range priorities {
		out[i] = string(p)
	}
	return out
}

// CreateProject handles POST /api/v1/projects
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var np types.NewProject
	if err := json.NewDecoder(r.Body).Decode(&np); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err))
		return
	}

	// Form defaults: a bare submission starts unscheduled and unstarted.
	if np.Status == "" {
		np.Status = types.StatusNotStarted
	}
	if np.Priority == "" {
		np.Priority = types.PrioritySomeday
	}

	if errs := validateNewProject(np); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	p, err := h.store.InsertProject(r.Context(), np)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	h.listings.Invalidate(undo.KindProject)
	writeJSON(w, http.StatusCreated, p)
}

// UpdateProject handles PATCH /api/v1/projects/{id}
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var patch types.ProjectPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err))
		return
	}

	var c validation.Collector
	if patch.Name != nil {
		c.Add(validation.ValidateRequired("project_name", *patch.Name))
		c.Add(validation.ValidateMaxLength("project_name", *patch.Name, maxNameLength))
	}
	if patch.Status != nil {
		c.Add(validation.ValidateEnum("status", string(*patch.Status), statusStrings()))
	}
	if patch.Priority != nil {
		c.Add(validation.ValidateEnum("priority", string(*patch.Priority), priorityStrings()))
	}
	if patch.Progress != nil {
		c.Add(validation.ValidateIntRange("progress", *patch.Progress, 0, 100))
	}
	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", c.Errors())
		return
	}

	p, err := h.store.UpdateProject(r.Context(), urlParam(r, "id"), patch)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	h.listings.Invalidate(undo.KindProject)
	writeJSON(w, http.StatusOK, p)
}

// DeleteProject handles DELETE /api/v1/projects/{id}. The delete is
// optimistic: the project vanishes from listings immediately, but the
// backend delete only commits after the grace window. The response carries
// the undo token.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	if h.undo.IsPendingDelete(undo.KindProject, id) {
		WriteProblem(w, r, http.StatusNotFound, "Resource not found")
		return
	}

	p, err := h.store.GetProject(r.Context(), id)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	token := h.undo.DeleteProject(*p)
	writeJSON(w, http.StatusAccepted, map[string]string{"undo_token": token})
}
