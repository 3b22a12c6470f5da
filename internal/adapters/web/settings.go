package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"butter-invoicing/internal/core"
)

// getSettings handles GET /api/settings.
func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.svc.GetSettings(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, settings)
}

// updateSettings handles PATCH /api/settings.
func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req core.SettingsInput
	if !decodeJSON(w, r, &req) {
		return
	}
	settings, err := h.svc.UpdateSettings(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, settings)
}

// taxSummary handles GET /api/reports/tax/{year}, where year is the FY end
// year (2025 means 1 Jul 2024 to 30 Jun 2025).
func (h *Handler) taxSummary(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, r, "year must be numeric", "VALIDATION", http.StatusBadRequest)
		return
	}
	summary, err := h.svc.TaxSummary(r.Context(), year)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, summary)
}
