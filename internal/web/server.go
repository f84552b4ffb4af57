// Package web provides the HTTP server for the PDF to XLSX converter.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Macora01/pdftoexcl/internal/config"
	"github.com/Macora01/pdftoexcl/internal/core"
	"github.com/Macora01/pdftoexcl/internal/web/middleware"
)

// rateLimiterCleanupInterval is how often idle rate limit buckets are evicted.
const rateLimiterCleanupInterval = time.Minute

// Server is the HTTP server for the converter API.
type Server struct {
	service *core.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server

	limiters []*middleware.RateLimiter
}

// NewServer creates a Server with its routes and middleware installed.
func NewServer(service *core.Service, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(s.securityHeaders)
	s.router.Use(cors.Handler(corsOptions(s.cfg.Server.CORSOrigins)))

	if s.cfg.Rate.Enabled {
		s.router.Use(s.rateLimit(s.cfg.Rate.RequestsPerMinute))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.NotFound(s.handleAPINotFound)
		r.Get("/", s.handleRoot)

		r.Group(func(r chi.Router) {
			if s.cfg.Rate.Enabled {
				r.Use(s.rateLimit(s.cfg.Rate.UploadLimit))
			}
			r.Post("/upload", s.handleUpload)
		})

		r.Get("/preview/{id}", s.handlePreview)
		r.Get("/download/{id}", s.handleDownload)
		r.Delete("/file/{id}", s.handleDelete)
	})

	s.router.Get("/*", s.frontend())
}

func (s *Server) rateLimit(perMinute int) func(http.Handler) http.Handler {
	rl := middleware.NewRateLimiter(perMinute)
	s.limiters = append(s.limiters, rl)
	return middleware.RateLimit(rl, func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, r, errRateLimited)
	})
}

func corsOptions(origins []string) cors.Options {
	wildcard := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
	}
	if wildcard {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: !wildcard,
		MaxAge:           300,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully within
// SERVER_SHUTDOWN_TIMEOUT, letting running uploads finish.
func (s *Server) Run(ctx context.Context) error {
	for _, rl := range s.limiters {
		go rl.Cleanup(ctx, rateLimiterCleanupInterval)
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", s.server.Addr)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if status := s.service.UploadLimiterStatus(); status.Active > 0 {
		slog.Info("waiting for uploads to complete", "active", status.Active)
	}
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := s.service.WaitForUploads(shutdownCtx); err != nil {
		slog.Warn("uploads did not complete in time", "error", err)
	}
	slog.Info("server stopped")
	return nil
}

// Handler returns the root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// securityHeaders adds security headers to all responses.
func (s *Server) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if s.cfg.Security.EnableCSP {
			h.Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		}
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v with the given status. Encoding errors are only
// logged since the header is already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err, "request_id", chimw.GetReqID(r.Context()))
	}
}
