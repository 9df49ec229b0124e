package http

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"books-search/internal/handler/http/books"
	"books-search/internal/handler/http/middleware"
	"books-search/internal/handler/http/requestid"
	"books-search/internal/handler/http/respond"
	"books-search/internal/observability/tracing"
	"books-search/internal/usecase/browse"
	"books-search/internal/usecase/settings"
)

// RouterConfig holds what the API serves.
type RouterConfig struct {
	Session *browse.Session
	Store   *settings.Store
	Images  books.ImageLoader
	DB      *sql.DB
	Version string
	Logger  *slog.Logger

	// CORSOrigins enables CORS for the listed origins.
	CORSOrigins []string
	// Limiter rate-limits the session endpoints. nil disables it.
	Limiter *middleware.RateLimiter
}

// NewRouter builds the API handler with its middleware stack.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(tracing.Middleware)
	r.Use(Recover(logger))
	r.Use(Logging(logger))
	r.Use(MetricsMiddleware)
	r.Use(middleware.SecurityHeaders)
	if len(cfg.CORSOrigins) > 0 {
		r.Use(middleware.CORS(cfg.CORSOrigins))
	}
	r.Use(InputValidation())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusMethodNotAllowed)
	})

	health := &HealthHandler{DB: cfg.DB, Version: cfg.Version, Logger: logger}
	if cfg.Session != nil {
		health.Session = cfg.Session.Controller()
	}
	r.Get("/health", health.Live)
	r.Get("/ready", health.Ready)
	r.Method(http.MethodGet, "/metrics", MetricsHandler())

	r.Group(func(r chi.Router) {
		r.Use(cfg.Limiter.Middleware)
		books.Register(r, cfg.Session, cfg.Store, cfg.Images)
	})
	return r
}

func writeStatus(w http.ResponseWriter, code int) {
	respond.JSON(w, code, respond.ErrorBody{Error: strings.ToLower(http.StatusText(code))})
}
