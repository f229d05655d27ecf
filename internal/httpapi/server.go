// Package httpapi serves the task manager over a JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"task-manager/internal/api"
	"task-manager/internal/config"
)

// shutdownTimeout bounds how long in-flight requests may run after Run's context ends
const shutdownTimeout = 10 * time.Second

// Server is the HTTP front end of an API.
type Server struct {
	api    api.API
	cfg    config.ServerConfig
	logger *slog.Logger
	tokens *tokenCache
	router chi.Router

	sessionTTL time.Duration
}

// NewServer builds the router for apiInstance. Call Close when done.
func NewServer(apiInstance api.API, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	tokens, err := newTokenCache(cfg.Auth.TokenCacheSize, cfg.Auth.TokenCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("token cache: %w", err)
	}

	s := &Server{
		api:    apiInstance,
		cfg:    cfg.Server,
		logger: logger,
		tokens: tokens,

		sessionTTL: cfg.Auth.SessionTTL,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(detachSession)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.mountRoutes(r)

	s.router = r
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("starting server", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close releases the token cache.
func (s *Server) Close() {
	s.tokens.Close()
}
