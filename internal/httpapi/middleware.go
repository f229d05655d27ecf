package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"task-manager/internal/api"
	"task-manager/internal/errors"
)

type tokenCtxKey struct{}

// tokenFromContext returns the bearer token the request was authenticated with.
func tokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenCtxKey{}).(string)
	return token
}

// detachSession keeps requests from reading or changing the process-wide
// signed-in user. Each request acts only as the user its token names.
func detachSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(api.WithoutSession(r.Context())))
	})
}

// requestLogger returns middleware that logs HTTP requests using slog.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		s.logger.InfoContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// authenticate resolves "Authorization: Bearer <token>" to a user and binds
// it to the request context. Resolved tokens are cached.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "authorization required")
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader || token == "" {
			writeError(w, http.StatusUnauthorized, "invalid authorization header")
			return
		}

		user, ok := s.tokens.Get(token)
		if !ok {
			resolved, lifetime, err := s.api.Authenticate(r.Context(), token)
			if err != nil {
				if !errors.IsErrorType(err, errors.ErrorTypeUnauthenticated) {
					writeDomainError(w, r, s.logger, err)
					return
				}
				writeError(w, http.StatusUnauthorized, errors.GetUserMessage(err))
				return
			}
			user = *resolved
			s.tokens.Set(token, user, lifetime)
		}

		ctx := api.WithUser(r.Context(), user)
		ctx = context.WithValue(ctx, tokenCtxKey{}, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
