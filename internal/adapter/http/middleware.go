package adapthttp

import (
	"context"
	"net/http"
	"time"

	"prochecka/internal/domain"
)

type contextKey string

const userContextKey contextKey = "user"

// guestTokenHeader carries the anonymous session token on requests made
// before the visitor has an account.
const guestTokenHeader = "X-Guest-Token"

// resolveUser attaches the authenticated user to the request context when a
// forward-auth header or a valid session cookie is present. It never
// rejects: endpoints that require a user check the context themselves, and
// guest traffic passes through untouched.
func (s *Server) resolveUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Forward-auth proxy header wins over the cookie session.
		if remoteUser := r.Header.Get("Remote-User"); remoteUser != "" {
			user, err := s.authSvc.ValidateForwardAuth(r.Context(), remoteUser)
			if err == nil && user != nil {
				ctx := context.WithValue(r.Context(), userContextKey, user)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
		}

		if cookie, err := r.Cookie("session"); err == nil {
			user, err := s.authSvc.ValidateSession(r.Context(), cookie.Value)
			if err == nil && user != nil {
				ctx := context.WithValue(r.Context(), userContextKey, user)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// userFromContext returns the authenticated user, or nil for guest traffic.
func userFromContext(r *http.Request) *domain.User {
	user, _ := r.Context().Value(userContextKey).(*domain.User)
	return user
}

// requireUser returns the authenticated user or writes a 401 and returns nil.
func requireUser(w http.ResponseWriter, r *http.Request) *domain.User {
	user := userFromContext(r)
	if user == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil
	}
	return user
}

// resolveOwner identifies the record owner: the authenticated user if
// present, otherwise the guest session token from the request header.
// Writes a 401 and returns a zero Owner when neither is available.
func resolveOwner(w http.ResponseWriter, r *http.Request) (domain.Owner, bool) {
	if user := userFromContext(r); user != nil {
		return domain.UserOwner(user.ID), true
	}
	if token := r.Header.Get(guestTokenHeader); token != "" {
		return domain.GuestOwner(token), true
	}
	http.Error(w, "unauthorized", http.StatusUnauthorized)
	return domain.Owner{}, false
}

// statusRecorder captures the response code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs one line per request.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		s.log.Infow("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
