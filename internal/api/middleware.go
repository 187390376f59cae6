package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/StrangePerch/laravel-trello-server/internal/domain"
	"github.com/StrangePerch/laravel-trello-server/internal/http/response"
	"github.com/StrangePerch/laravel-trello-server/internal/ratelimit"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const contextKeyUser contextKey = "user"

// requireAuth validates the bearer token and attaches the resolved user to
// the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Unauthenticated", s.logger)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Unauthenticated", s.logger)
			return
		}

		user, err := s.authService.VerifyToken(r.Context(), parts[1])
		if err != nil {
			response.Unauthorized(w, "Unauthenticated", s.logger)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentUser extracts the authenticated user from the request context.
// Only valid behind requireAuth.
func currentUser(ctx context.Context) *domain.User {
	user, _ := ctx.Value(contextKeyUser).(*domain.User)
	return user
}

// rateLimitByIP limits requests per client IP. Returns 429 when exceeded.
func (s *Server) rateLimitByIP(limiter *ratelimit.KeyedRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			if !limiter.Allow(key) {
				s.logger.Warn("Rate limit exceeded", "ip", key, "path", r.URL.Path)
				response.Error(w, http.StatusTooManyRequests, "Too many requests. Please try again later.", nil, s.logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP extracts the client IP from the request. The RealIP middleware
// already folds X-Forwarded-For / X-Real-IP into RemoteAddr; this strips
// the port.
func clientIP(r *http.Request) string {
	ip := r.RemoteAddr
	for i := len(ip) - 1; i >= 0; i-- {
		if ip[i] == ':' {
			return ip[:i]
		}
	}
	return ip
}
