// Package web exposes the application service as a JSON HTTP API.
package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"butter-invoicing/internal/app"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	r.Get("/api/health", h.health)

	// CSV uploads get a larger cap than regular JSON bodies.
	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(10 << 20)) // 10 MB
		r.Post("/api/transactions/import", h.importTransactions)
	})

	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		r.Route("/api/clients", func(r chi.Router) {
			r.Post("/", h.createClient)
			r.Get("/", h.listClients)
			r.Get("/{id}", h.getClient)
			r.Patch("/{id}", h.updateClient)
			r.Delete("/{id}", h.deleteClient)
		})

		r.Route("/api/invoices", func(r chi.Router) {
			r.Post("/", h.createInvoice)
			r.Get("/", h.listInvoices)
			r.Post("/mark-overdue", h.markOverdue)
			r.Get("/{id}", h.getInvoice)
			r.Post("/{id}/status", h.updateInvoiceStatus)
		})

		r.Route("/api/recurring", func(r chi.Router) {
			r.Post("/", h.createRecurring)
			r.Get("/", h.listRecurring)
			r.Get("/{id}", h.getRecurring)
			r.Post("/{id}/pause", h.pauseRecurring)
			r.Post("/{id}/resume", h.resumeRecurring)
		})
		r.Post("/api/scheduler/run", h.runScheduler)

		r.Route("/api/transactions", func(r chi.Router) {
			r.Get("/", h.listTransactions)
			r.Post("/sync", h.syncTransactions)
			r.Get("/{id}", h.getTransaction)
			r.Get("/{id}/matches", h.suggestMatches)
		})
		r.Post("/api/reconcile/invoice", h.confirmInvoiceMatch)
		r.Post("/api/reconcile/expense", h.confirmExpenseMatch)

		r.Route("/api/expenses", func(r chi.Router) {
			r.Post("/", h.createExpense)
			r.Get("/", h.listExpenses)
		})

		r.Get("/api/settings", h.getSettings)
		r.Patch("/api/settings", h.updateSettings)

		r.Get("/api/reports/tax/{year}", h.taxSummary)
	})

	h.router = r
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}
