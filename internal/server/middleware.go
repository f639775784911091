package server

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"crescendo/internal/auth"
)

type contextKey string

// UserContextKey carries the authenticated session through the request
// context.
const UserContextKey contextKey = "user"

// responseWriter wraps http.ResponseWriter to capture status code & size.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(data []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(data)
	rw.size += size
	return size, err
}

// requestLoggingMiddleware logs HTTP requests (if enabled) with latency.
func (as *AlbumServer) requestLoggingMiddleware(next http.Handler) http.Handler {
	if !as.config.Logging.RequestLogging {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     200, // Default status code
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start)

		// Skip logging for health checks to reduce noise
		if r.URL.Path != "/health" {
			log.Printf("[%s] %s %s - %d (%v)",
				r.Method,
				r.URL.Path,
				r.RemoteAddr,
				rw.statusCode,
				duration.Round(time.Millisecond),
			)
		}
	})
}

// corsMiddleware injects CORS headers if enabled in configuration.
func (as *AlbumServer) corsMiddleware(next http.Handler) http.Handler {
	if !as.config.Server.EnableCORS {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}

// panicRecoveryMiddleware intercepts panics returning HTTP 500 without
// crashing the process.
func (as *AlbumServer) panicRecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("PANIC in %s %s: %v", r.Method, r.URL.Path, err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// authMiddleware resolves the session cookie into the request context and
// rejects writes from anonymous callers. Reads stay public.
func (as *AlbumServer) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, valid := as.authService.GetSessionManager().GetSessionFromRequest(r)
		if valid {
			// Refresh session on each request
			as.authService.RefreshSession(session.ID)
			r = r.WithContext(context.WithValue(r.Context(), UserContextKey, session))
		}

		if !valid && requiresAuth(r) {
			as.respondWithError(w, r, http.StatusUnauthorized, "Authentication required", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requiresAuth reports whether the request must carry a valid session.
// Anyone may browse; only authenticated users may write, and only they may
// ask who they are.
func requiresAuth(r *http.Request) bool {
	if isPublicPath(r.URL.Path) {
		return false
	}
	if r.URL.Path == "/api/auth/me" {
		return true
	}
	return r.Method != http.MethodGet
}

// isPublicPath checks if a path should be accessible without authentication
func isPublicPath(path string) bool {
	publicPaths := []string{
		"/api/auth/login",
		"/api/auth/register",
		"/api/auth/logout",
		"/health",
	}

	for _, publicPath := range publicPaths {
		if strings.HasPrefix(path, publicPath) {
			return true
		}
	}

	return false
}

// sessionFromContext returns the authenticated session, or nil for an
// anonymous request.
func sessionFromContext(r *http.Request) *auth.Session {
	session, _ := r.Context().Value(UserContextKey).(*auth.Session)
	return session
}
