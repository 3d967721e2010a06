package http

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dejobratic/orderbot/internal/admins"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// routeLabel is the matched mux pattern, keeping metric cardinality bounded.
func routeLabel(r *http.Request) string {
	if r.Pattern == "" {
		return "unmatched"
	}
	return r.Pattern
}

func WithMetrics(next http.Handler, metrics *Metrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := newResponseWriter(w)

		metrics.TrackInFlight(r.Context(), 1)
		defer metrics.TrackInFlight(r.Context(), -1)

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		metrics.RecordRequest(r.Context(), routeLabel(r), rw.statusCode, duration)
	})
}

func WithLogging(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)
		logger.InfoContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration", time.Since(start),
		)
	})
}

func WithRecovery(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(r.Context(), "panic recovered", "error", rec, "path", r.URL.Path)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Authenticator checks the basic-auth credentials of an admin account.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*admins.User, error)
}

// RequireAdmin guards /v1/ routes. A request passes with the static bearer
// token or with the email and password of an account holding the admin role.
// With neither a token nor an authenticator the API is open.
func RequireAdmin(next http.Handler, token string, auth Authenticator, logger *slog.Logger) http.Handler {
	if token == "" && auth == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v1/") {
			next.ServeHTTP(w, r)
			return
		}

		if given, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
			if token != "" && subtle.ConstantTimeCompare([]byte(given), []byte(token)) == 1 {
				next.ServeHTTP(w, r)
				return
			}
			unauthorized(w)
			return
		}

		email, password, ok := r.BasicAuth()
		if !ok || auth == nil {
			unauthorized(w)
			return
		}
		user, err := auth.Authenticate(r.Context(), email, password)
		if err != nil {
			if errors.Is(err, admins.ErrInvalidCredentials) {
				logger.WarnContext(r.Context(), "admin login refused", "email", email, "path", r.URL.Path)
				unauthorized(w)
				return
			}
			logger.ErrorContext(r.Context(), "admin authentication failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		logger.DebugContext(r.Context(), "admin authenticated", "user_id", user.ID.String())
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="orderbot admin"`)
	writeError(w, http.StatusUnauthorized, "unauthorized")
}
