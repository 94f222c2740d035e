package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zedx-auto/garagepos/internal/auth"
	"github.com/zedx-auto/garagepos/internal/catalog"
	"github.com/zedx-auto/garagepos/internal/customers"
	"github.com/zedx-auto/garagepos/internal/dashboard"
	"github.com/zedx-auto/garagepos/internal/outgoing"
	"github.com/zedx-auto/garagepos/internal/pos"
	"github.com/zedx-auto/garagepos/internal/session"
	"github.com/zedx-auto/garagepos/internal/transactions"
	"github.com/zedx-auto/garagepos/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	SessionManager      *session.Manager
	AuthHandler         *auth.Handler
	POSHandler          *pos.Handler
	CustomersHandler    *customers.Handler
	CatalogHandler      *catalog.Handler
	OutgoingHandler     *outgoing.Handler
	TransactionsHandler *transactions.Handler
	DashboardHandler    *dashboard.Handler
	JobHandler          *jobs.Handler
}

// NewRouter constructs the chi.Router with gateway defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Route("/pos", params.POSHandler.MountRoutes)
			r.Route("/customers", params.CustomersHandler.MountRoutes)
			params.CatalogHandler.MountRoutes(r)
			r.Route("/outgoing-payments", params.OutgoingHandler.MountRoutes)
			r.Route("/transactions", params.TransactionsHandler.MountRoutes)
			r.Route("/dashboard", params.DashboardHandler.MountRoutes)
			if params.JobHandler != nil {
				r.Route("/jobs", params.JobHandler.MountRoutes)
			}
		})
	})

	return r
}
