/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/parties/*    Sales and their payments
  /api/payments/*   Payment deletion
  /api/clients/*    Funnel management
  /api/visits/*     Public venue-tour booking
  /api/costs/*      Cost tables and margins
  /api/tracking/*   Payment health and cash-flow projection

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Party and payment handlers
  - crm_handlers.go: Client, visit and cost handlers
  - tracking.go: Derived-view handlers
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a router with all routes configured. allowedOrigins
// feeds the CORS middleware.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/parties", func(r chi.Router) {
			r.Get("/", h.ListParties)
			r.Post("/", h.CreateParty)
			r.Get("/stats", h.GetPartyStats)
			r.Get("/code/{code}", h.GetPartyByCode)
			r.Get("/{id}", h.GetParty)
			r.Put("/{id}", h.UpdateParty)
			r.Delete("/{id}", h.DeleteParty)
			r.Get("/{id}/payments", h.ListPayments)
			r.Post("/{id}/payments", h.CreatePayment)
			r.Get("/{id}/summary", h.GetPaymentSummary)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Delete("/{id}", h.DeletePayment)
		})

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", h.ListClients)
			r.Post("/", h.CreateClient)
			r.Get("/{id}", h.GetClient)
			r.Get("/{id}/parties", h.GetClientWithParties)
			r.Put("/{id}", h.UpdateClient)
			r.Put("/{id}/funnel", h.UpdateClientFunnel)
			r.Delete("/{id}", h.DeleteClient)
		})

		r.Route("/visits", func(r chi.Router) {
			r.Get("/", h.ListVisits)
			r.Post("/", h.CreateVisit)
			r.Get("/busy", h.ListBusySlots)
			r.Put("/{id}/status", h.UpdateVisitStatus)
		})

		r.Route("/costs", func(r chi.Router) {
			r.Get("/margin", h.GetMargin)
			r.Route("/variable", func(r chi.Router) {
				r.Get("/", h.ListVariableCosts)
				r.Post("/", h.CreateVariableCost)
				r.Put("/{id}", h.UpdateVariableCost)
				r.Delete("/{id}", h.DeleteVariableCost)
			})
			r.Route("/fixed", func(r chi.Router) {
				r.Get("/", h.ListFixedCosts)
				r.Post("/", h.CreateFixedCost)
				r.Put("/{id}", h.UpdateFixedCost)
				r.Delete("/{id}", h.DeleteFixedCost)
			})
		})

		r.Route("/tracking", func(r chi.Router) {
			r.Get("/health", h.GetTrackingHealth)
			r.Get("/projection", h.GetTrackingProjection)
		})
	})

	return r
}
