// Package server assembles the HTTP router and runs it.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tabletop-ledger/partie/app/shared/httpx"
	"github.com/tabletop-ledger/partie/app/shared/observability/attr"
)

// Routes is implemented by every module's HTTP handlers.
type Routes interface {
	Routes(r chi.Router)
}

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Options struct {
	Address         string
	RateLimit       float64
	RateBurst       int
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	// Registry is served on /metrics when set.
	Registry *prometheus.Registry
	Health   HealthCheck
}

// NewRouter mounts every module below the shared middleware stack.
func NewRouter(opts Options, logger *slog.Logger, modules ...Routes) chi.Router {
	r := chi.NewRouter()
	r.Use(CorrelationID)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(CORSMiddleware(opts.AllowedOrigins))

	r.Get("/healthz", healthHandler(opts.Health, logger))
	if opts.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		if opts.RateLimit > 0 {
			r.Use(RateLimit(opts.RateLimit, opts.RateBurst))
		}
		r.Use(RequestingUser)
		for _, m := range modules {
			m.Routes(r)
		}
	})
	return r
}

func healthHandler(check HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				logger.WarnContext(r.Context(), "Health check failed", attr.Error(err))
				httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// Server runs the router until its context is cancelled.
type Server struct {
	http            *http.Server
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

func New(opts Options, handler http.Handler, logger *slog.Logger) *Server {
	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Server{
		http: &http.Server{
			Addr:              opts.Address,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		shutdownTimeout: timeout,
		logger:          logger,
	}
}

// Run serves until ctx is done, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", attr.String("address", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
