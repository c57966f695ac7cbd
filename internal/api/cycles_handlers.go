package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/beccaroth/muse/internal/cycle"
	"github.com/beccaroth/muse/internal/dates"
	"github.com/beccaroth/muse/internal/types"
	"github.com/beccaroth/muse/internal/validation"
)

// cycleView is a cycle enriched with the day-granular derived fields the
// dashboard renders: current week number (absent outside the cycle and its
// buffer week) and elapsed percentage.
type cycleView struct {
	types.TwelveWeekCycle
	CurrentWeek *int `json:"current_week"`
	Progress    int  `json:"progress"`
}

func newCycleView(c types.TwelveWeekCycle, today dates.Date) cycleView {
	v := cycleView{TwelveWeekCycle: c, Progress: cycle.Progress(c, today)}
	if week, ok := cycle.WeekNumber(today, c); ok {
		v.CurrentWeek = &week
	}
	return v
}

// ListCycles handles GET /api/v1/cycles, most recent start date first.
func (h *Handler) ListCycles(w http.ResponseWriter, r *http.Request) {
	cycles, err := h.listings.Cycles(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	today := dates.Today()
	views := make([]cycleView, len(cycles))
	for i, c := range cycles {
		views[i] = newCycleView(c, today)
	}
	writeJSON(w, http.StatusOK, views)
}

// GetCycle handles GET /api/v1/cycles/{id}
func (h *Handler) GetCycle(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.GetCycle(r.Context(), urlParam(r, "id"))
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCycleView(*c, dates.Today()))
}

// GetActiveCycle handles GET /api/v1/cycles/active. Returns 404 when no
// cycle is marked active.
func (h *Handler) GetActiveCycle(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.GetActiveCycle(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCycleView(*c, dates.Today()))
}

// CreateCycle handles POST /api/v1/cycles. The end date is derived, never
// client-supplied. Activating the new cycle deactivates any other.
func (h *Handler) CreateCycle(w http.ResponseWriter, r *http.Request) {
	var nc types.NewCycle
	if err := json.NewDecoder(r.Body).Decode(&nc); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err))
		return
	}

	var c validation.Collector
	c.Add(validation.ValidateRequired("name", nc.Name))
	c.Add(validation.ValidateMaxLength("name", nc.Name, maxNameLength))
	if nc.StartDate.IsZero() {
		c.Add(&validation.ValidationError{Field: "start_date", Message: "start_date is required"})
	}
	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", c.Errors())
		return
	}

	created, err := h.store.InsertCycle(r.Context(), nc)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	h.listings.InvalidateCycles()
	writeJSON(w, http.StatusCreated, created)
}

// UpdateCycle handles PATCH /api/v1/cycles/{id}. Patching start_date
// recomputes the end date; activating deactivates any other cycle.
func (h *Handler) UpdateCycle(w http.ResponseWriter, r *http.Request) {
	var patch types.CyclePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err))
		return
	}

	var c validation.Collector
	if patch.Name != nil {
		c.Add(validation.ValidateRequired("name", *patch.Name))
		c.Add(validation.ValidateMaxLength("name", *patch.Name, maxNameLength))
	}
	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", c.Errors())
		return
	}

	updated, err := h.store.UpdateCycle(r.Context(), urlParam(r, "id"), patch)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	h.listings.InvalidateCycles()
	writeJSON(w, http.StatusOK, updated)
}

// DeleteCycle handles DELETE /api/v1/cycles/{id}. Cycle deletes are not
// undoable; they are rare enough that a confirmation upstream suffices.
func (h *Handler) DeleteCycle(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteCycle(r.Context(), urlParam(r, "id")); err != nil {
		MapStoreError(w, r, err)
		return
	}

	h.listings.InvalidateCycles()
	w.WriteHeader(http.StatusNoContent)
}
