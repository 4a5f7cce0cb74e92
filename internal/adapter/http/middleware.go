package adapthttp

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"carbontrack/internal/app"
	"carbontrack/internal/domain"

	"github.com/google/uuid"
)

type contextKey string

const userContextKey contextKey = "user"

// userFromContext returns the authenticated user, or nil for anonymous
// requests.
func userFromContext(r *http.Request) *domain.User {
	user, _ := r.Context().Value(userContextKey).(*domain.User)
	return user
}

// resolveUser identifies the caller from the forward-auth header or the
// session cookie. A nil user with nil error means anonymous.
func (s *Server) resolveUser(r *http.Request) (*domain.User, error) {
	// Trusted reverse-proxy forward auth takes precedence.
	if remoteUser := r.Header.Get("Remote-User"); remoteUser != "" {
		user, err := s.authSvc.ValidateForwardAuth(r.Context(), remoteUser)
		if err == nil && user != nil {
			return user, nil
		}
	}

	cookie, err := r.Cookie("session")
	if err != nil {
		return nil, nil
	}

	user, err := s.authSvc.ValidateSession(r.Context(), cookie.Value)
	if errors.Is(err, app.ErrSessionNotFound) || errors.Is(err, app.ErrSessionExpired) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// requireAuth rejects anonymous requests with 401.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.disableAuth {
			ctx := context.WithValue(r.Context(), userContextKey, &domain.User{ID: 1, Username: "test"})
			next(w, r.WithContext(ctx))
			return
		}

		user, err := s.resolveUser(r)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
			return
		}
		if user == nil {
			writeError(w, http.StatusUnauthorized, "MISSING_TOKEN", "unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// optionalAuth attaches the user when a valid session is present and lets
// anonymous requests through.
func (s *Server) optionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.disableAuth {
			next(w, r)
			return
		}

		user, err := s.resolveUser(r)
		if err == nil && user != nil {
			r = r.WithContext(context.WithValue(r.Context(), userContextKey, user))
		}
		next(w, r)
	}
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware logs each request with a generated request id.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		log.Printf("%s %s %s %d %s", reqID, r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
