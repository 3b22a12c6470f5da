package web

import (
	"net/http"

	"butter-invoicing/internal/app"
)

// createExpense handles POST /api/expenses.
func (h *Handler) createExpense(w http.ResponseWriter, r *http.Request) {
	var req app.CreateExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.CreateExpense(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

// listExpenses handles GET /api/expenses?unpaid=true.
func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	unpaidOnly := r.URL.Query().Get("unpaid") == "true"
	result, err := h.svc.ListExpenses(r.Context(), unpaidOnly)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
