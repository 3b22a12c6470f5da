package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// importTransactions handles POST /api/transactions/import. The body is the
// raw CSV export.
func (h *Handler) importTransactions(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ImportTransactionsCSV(r.Context(), r.Body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// syncTransactions handles POST /api/transactions/sync.
func (h *Handler) syncTransactions(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.SyncBankTransactions(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// listTransactions handles GET /api/transactions.
func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListTransactions(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// getTransaction handles GET /api/transactions/{id}.
func (h *Handler) getTransaction(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// suggestMatches handles GET /api/transactions/{id}/matches.
func (h *Handler) suggestMatches(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.SuggestMatches(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

type confirmMatchRequest struct {
	TransactionID string `json:"transaction_id"`
	InvoiceID     string `json:"invoice_id,omitempty"`
	ExpenseID     string `json:"expense_id,omitempty"`
}

// confirmInvoiceMatch handles POST /api/reconcile/invoice.
func (h *Handler) confirmInvoiceMatch(w http.ResponseWriter, r *http.Request) {
	var req confirmMatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.TransactionID == "" || req.InvoiceID == "" {
		writeError(w, r, "transaction_id and invoice_id are required", "VALIDATION", http.StatusBadRequest)
		return
	}
	if err := h.svc.ConfirmInvoiceMatch(r.Context(), req.TransactionID, req.InvoiceID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"status": "reconciled"})
}

// confirmExpenseMatch handles POST /api/reconcile/expense.
func (h *Handler) confirmExpenseMatch(w http.ResponseWriter, r *http.Request) {
	var req confirmMatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.TransactionID == "" || req.ExpenseID == "" {
		writeError(w, r, "transaction_id and expense_id are required", "VALIDATION", http.StatusBadRequest)
		return
	}
	if err := h.svc.ConfirmExpenseMatch(r.Context(), req.TransactionID, req.ExpenseID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"status": "reconciled"})
}
