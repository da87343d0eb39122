package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/sharebrasil/portal/internal/auth"
	"github.com/sharebrasil/portal/internal/logbook"
	"github.com/sharebrasil/portal/internal/observability"
	"github.com/sharebrasil/portal/internal/rbac"
	"github.com/sharebrasil/portal/internal/reconciliation"
	"github.com/sharebrasil/portal/internal/registry"
	"github.com/sharebrasil/portal/internal/travel"
	"github.com/sharebrasil/portal/internal/users"
	"github.com/sharebrasil/portal/jobs"
	"github.com/sharebrasil/portal/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger                *slog.Logger
	Config                *Config
	AuthHandler           *auth.Handler
	RBACHandler           *rbac.Handler
	UsersHandler          *users.Handler
	RegistryHandler       *registry.Handler
	TravelHandler         *travel.Handler
	ReconciliationHandler *reconciliation.Handler
	LogbookHandler        *logbook.Handler
	ReportHandler         *report.Handler
	JobHandler            *jobs.Handler
	Metrics               *observability.Metrics
}

// NewRouter constructs the chi.Router with portal defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.ReportHandler != nil {
		r.Route("/report", params.ReportHandler.MountRoutes)
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)

	// Everything below requires a bearer token.
	r.Group(func(r chi.Router) {
		r.Use(params.AuthHandler.Middleware)

		r.Route("/functions/v1", func(r chi.Router) {
			if params.UsersHandler != nil {
				params.UsersHandler.MountFunctions(r)
			}
			if params.TravelHandler != nil {
				params.TravelHandler.MountFunctions(r)
			}
		})
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.RBACHandler != nil {
			r.Route("/rbac", params.RBACHandler.MountRoutes)
		}
		if params.RegistryHandler != nil {
			r.Route("/registry", params.RegistryHandler.MountRoutes)
		}
		if params.TravelHandler != nil {
			r.Route("/travel-reports", params.TravelHandler.MountRoutes)
		}
		if params.ReconciliationHandler != nil {
			r.Route("/reconciliations", params.ReconciliationHandler.MountRoutes)
		}
		if params.LogbookHandler != nil {
			r.Route("/logbook", params.LogbookHandler.MountRoutes)
		}
	})

	return r
}
