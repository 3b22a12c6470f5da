package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"butter-invoicing/internal/app"
)

// createClient handles POST /api/clients.
func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var req app.CreateClientRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.CreateClient(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

// listClients handles GET /api/clients.
func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListClients(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// getClient handles GET /api/clients/{id}.
func (h *Handler) getClient(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetClient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// updateClient handles PATCH /api/clients/{id}. Only contact fields change;
// the name is fixed because invoice numbers embed a code derived from it.
func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	var req app.UpdateClientRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.UpdateClientContact(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// deleteClient handles DELETE /api/clients/{id}.
func (h *Handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteClient(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
