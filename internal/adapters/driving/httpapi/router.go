// Package httpapi exposes the ask pipeline over HTTP.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/custodia-labs/regula/internal/core/ports/driving"
)

// DefaultRequestTimeout bounds one request when Options.RequestTimeout is unset.
const DefaultRequestTimeout = 90 * time.Second

// Observer receives one observation per served request.
type Observer interface {
	ObserveHTTP(method, route string, status int, d time.Duration)
}

// Options configures the router.
type Options struct {
	Ask    driving.AskService
	Logger *zap.Logger

	// Observer records request metrics. Optional.
	Observer Observer

	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler

	// RequestTimeout bounds each request.
	RequestTimeout time.Duration

	// AllowedOrigins configures CORS. Defaults to localhost origins.
	AllowedOrigins []string
}

// NewRouter builds the HTTP routes and middleware.
func NewRouter(opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(opts.Logger, opts.Observer))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	h := NewHandler(opts.Ask, opts.Logger)
	r.Get("/healthz", h.HandleHealth)
	r.Post("/ask", h.HandleAsk)
	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	return r
}

func requestLogger(log *zap.Logger, obs Observer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			elapsed := time.Since(start)

			log.Info("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Duration("duration", elapsed))
			if obs != nil {
				obs.ObserveHTTP(r.Method, route, status, elapsed)
			}
		})
	}
}
