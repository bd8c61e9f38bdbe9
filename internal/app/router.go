package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/wearkati/katicontrol/internal/cash"
	"github.com/wearkati/katicontrol/internal/catalog"
	"github.com/wearkati/katicontrol/internal/dashboard"
	"github.com/wearkati/katicontrol/internal/drops"
	"github.com/wearkati/katicontrol/internal/expenses"
	"github.com/wearkati/katicontrol/internal/importer"
	"github.com/wearkati/katicontrol/internal/inventory"
	"github.com/wearkati/katicontrol/internal/orders"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	ProductHandler   *catalog.Handler
	OrderHandler     *orders.Handler
	DropHandler      *drops.Handler
	ExpenseHandler   *expenses.Handler
	CashHandler      *cash.Handler
	InventoryHandler *inventory.Handler
	DashboardHandler *dashboard.Handler
	ImporterHandler  *importer.Handler
	ReportCache      *dashboard.Cache
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(invalidateReports(params.ReportCache, params.Logger))
		api.Route("/products", params.ProductHandler.MountRoutes)
		api.Route("/orders", params.OrderHandler.MountRoutes)
		api.Route("/drops", params.DropHandler.MountRoutes)
		api.Route("/expenses", params.ExpenseHandler.MountRoutes)
		api.Route("/cash", params.CashHandler.MountRoutes)
		api.Route("/inventory", params.InventoryHandler.MountRoutes)
		api.Route("/dashboard", params.DashboardHandler.MountRoutes)
		params.ImporterHandler.MountRoutes(api)
	})

	return r
}

// invalidateReports bumps the dashboard cache version after any successful
// mutating request, orphaning every cached report at once. Reads pass
// through untouched.
func invalidateReports(cache *dashboard.Cache, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			wrapped := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(wrapped, r)
			if wrapped.Status() < 400 {
				if err := cache.Bump(r.Context()); err != nil {
					logger.Warn("bump report cache", slog.Any("error", err))
				}
			}
		})
	}
}
