package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/maasra-erp/maasra/internal/ledger"
	"github.com/maasra-erp/maasra/internal/observability"
	"github.com/maasra-erp/maasra/internal/platform/httpx"
	"github.com/maasra-erp/maasra/internal/shared"
	"github.com/maasra-erp/maasra/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger        *slog.Logger
	Config        *Config
	LedgerHandler *ledger.Handler
	JobHandler    *jobs.Handler
	Metrics       *observability.Metrics
	Idempotency   *shared.IdempotencyStore
	// Version reports the in-memory ledger version on /healthz.
	Version func() int64
}

// NewRouter constructs the chi.Router with the application defaults.
func NewRouter(params RouterParams) http.Handler {
	if params.Logger == nil {
		params.Logger = slog.Default()
	}
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	if params.Config == nil || !params.Config.IsProduction() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{"status": "ok"}
		if params.Version != nil {
			body["ledger_version"] = params.Version()
		}
		httpx.JSON(w, http.StatusOK, body)
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	hash := ""
	if params.Config != nil {
		hash = params.Config.APIKeyHash
	}
	r.Group(func(r chi.Router) {
		r.Use(APIKeyGuard(hash, params.Logger))
		if params.LedgerHandler != nil {
			r.With(Idempotency(params.Idempotency, "ledger", params.Logger)).Route("/api/ledger", params.LedgerHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, http.StatusText(http.StatusNotFound), "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed), r.Method+" is not allowed on "+r.URL.Path)
	})

	return r
}
