/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for a frontend

ROUTE GROUPS:
  /api/accounts/*     Account management + transfers
  /api/expenses/*     Expense records
  /api/incomes/*      Income records
  /api/consistency    Balance drift report

SECURITY NOTE:
  No authentication middleware. All endpoints are public; this is a
  single-user tool.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/warp/budget-engine/ledger"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", h.ListAccounts)
			r.Post("/", h.CreateAccount)
			r.Get("/{id}", h.GetAccount)
			r.Put("/{id}", h.UpdateAccount)
			r.Delete("/{id}", h.DeleteAccount)
			r.Post("/{id}/transfer", h.Transfer)
		})

		r.Route("/expenses", transactionRoutes(h, ledger.KindExpense))
		r.Route("/incomes", transactionRoutes(h, ledger.KindIncome))

		r.Get("/consistency", h.CheckConsistency)
	})

	return r
}

// transactionRoutes wires the shared record handlers for one kind.
func transactionRoutes(h *Handler, kind ledger.Kind) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", h.ListTransactions(kind))
		r.Post("/", h.CreateTransaction(kind))
		r.Get("/{id}", h.GetTransaction(kind))
		r.Put("/{id}", h.UpdateTransaction(kind))
		r.Delete("/{id}", h.DeleteTransaction(kind))
	}
}
