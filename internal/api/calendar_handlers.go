package api

import (
	"net/http"

	"github.com/beccaroth/muse/internal/dates"
	"github.com/beccaroth/muse/internal/validation"
)

// Calendar handles GET /api/v1/calendar?start=YYYY-MM-DD&end=YYYY-MM-DD.
// With no parameters it covers the month grid containing today, padded to
// complete Sunday-to-Saturday weeks. A bare "date" parameter with
// view=week or view=month selects the containing week or month grid.
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Get("start") != "" || q.Get("end") != "" {
		var c validation.Collector
		c.Add(validation.ValidateRequired("start", q.Get("start")))
		c.Add(validation.ValidateRequired("end", q.Get("end")))
		if !c.HasErrors() {
			c.Add(validation.ValidateDate("start", q.Get("start")))
			c.Add(validation.ValidateDate("end", q.Get("end")))
		}
		if c.HasErrors() {
			WriteProblemWithErrors(w, r, "Request contains invalid fields", c.Errors())
			return
		}

		start, _ := dates.Parse(q.Get("start"))
		end, _ := dates.Parse(q.Get("end"))
		if end.Before(start) {
			WriteProblem(w, r, http.StatusBadRequest, "end must not be before start")
			return
		}

		data, err := h.calendar.Range(r.Context(), dates.Range{Start: start, End: end})
		if err != nil {
			MapStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, data)
		return
	}

	anchor := dates.Today()
	if v := q.Get("date"); v != "" {
		if verr := validation.ValidateDate("date", v); verr != nil {
			WriteProblemWithErrors(w, r, "Request contains invalid fields",
				[]validation.ValidationError{*verr})
			return
		}
		anchor, _ = dates.Parse(v)
	}

	switch q.Get("view") {
	case "week":
		data, err := h.calendar.Week(r.Context(), anchor)
		if err != nil {
			MapStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, data)
	case "", "month":
		data, err := h.calendar.Month(r.Context(), anchor)
		if err != nil {
			MapStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, data)
	default:
		WriteProblem(w, r, http.StatusBadRequest, "view must be week or month")
	}
}
