package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/fabrica-erp/panel/internal/auth"
	"github.com/fabrica-erp/panel/internal/dashboard"
	"github.com/fabrica-erp/panel/internal/masterdata/materials"
	"github.com/fabrica-erp/panel/internal/masterdata/products"
	"github.com/fabrica-erp/panel/internal/observability"
	"github.com/fabrica-erp/panel/internal/resource"
	"github.com/fabrica-erp/panel/internal/sales/customers"
	"github.com/fabrica-erp/panel/internal/sales/orders"
	"github.com/fabrica-erp/panel/internal/shared"
	"github.com/fabrica-erp/panel/jobs"
	"github.com/fabrica-erp/panel/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	SessionManager   *shared.SessionManager
	CSRFManager      *shared.CSRFManager
	Base             *resource.Base
	AuthHandler      *auth.Handler
	DashboardHandler *dashboard.Handler
	OrdersHandler    *orders.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with the panel defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	r.Group(func(r chi.Router) {
		for _, mw := range MiddlewareStack(MiddlewareConfig{
			Logger:         params.Logger,
			Config:         params.Config,
			SessionManager: params.SessionManager,
			CSRFManager:    params.CSRFManager,
			Metrics:        params.Metrics,
		}) {
			r.Use(mw)
		}
		r.Use(chimw.Logger)

		r.Route("/auth", params.AuthHandler.MountRoutes)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireLogin)
			params.DashboardHandler.MountRoutes(r)
			r.Route("/clientes", customers.NewHandler(params.Base).MountRoutes)
			r.Route("/productos", products.NewHandler(params.Base).MountRoutes)
			r.Route("/materias-primas", materials.NewHandler(params.Base).MountRoutes)
			r.Route(orders.Path, params.OrdersHandler.MountRoutes)
			if params.JobHandler != nil {
				r.Route("/jobs", params.JobHandler.MountRoutes)
			}
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			params.Base.NotFound(w, r)
		})
	})

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
