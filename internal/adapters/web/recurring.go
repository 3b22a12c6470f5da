package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"butter-invoicing/internal/app"
)

// createRecurring handles POST /api/recurring.
func (h *Handler) createRecurring(w http.ResponseWriter, r *http.Request) {
	var req app.CreateRecurringRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.CreateRecurringProfile(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

// listRecurring handles GET /api/recurring.
func (h *Handler) listRecurring(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListRecurringProfiles(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// getRecurring handles GET /api/recurring/{id}.
func (h *Handler) getRecurring(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetRecurringProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// pauseRecurring handles POST /api/recurring/{id}/pause.
func (h *Handler) pauseRecurring(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.PauseRecurringProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// resumeRecurring handles POST /api/recurring/{id}/resume.
func (h *Handler) resumeRecurring(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ResumeRecurringProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// runScheduler handles POST /api/scheduler/run. An empty date runs for today.
func (h *Handler) runScheduler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
	}
	// Body is optional here.
	_ = decodeOptionalJSON(r, &req)
	result, err := h.svc.RunScheduler(r.Context(), req.Date)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
