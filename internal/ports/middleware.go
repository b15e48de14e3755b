package ports

import (
	"crypto/subtle"
	"net/http"

	"github.com/Amund211/campaigncache/internal/ratelimiting"
)

func NewRateLimitMiddleware(rateLimiter ratelimiting.RequestRateLimiter, onLimitExceeded http.HandlerFunc) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !rateLimiter.Consume(r) {
				onLimitExceeded(w, r)
				return
			}

			next(w, r)
		}
	}
}

// Only let requests with the admin token through.
//
// With an empty token the admin routes are disabled and respond as if they did not exist.
func NewAdminTokenMiddleware(adminToken string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if adminToken == "" {
				writeErrorResponse(r.Context(), w, "not found", http.StatusNotFound)
				return
			}

			provided := r.Header.Get("X-Admin-Token")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(adminToken)) != 1 {
				writeErrorResponse(r.Context(), w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next(w, r)
		}
	}
}

func ComposeMiddlewares(middlewares ...func(http.HandlerFunc) http.HandlerFunc) func(http.HandlerFunc) http.HandlerFunc {
	if len(middlewares) == 1 {
		return middlewares[0]
	}
	first := middlewares[0]
	rest := ComposeMiddlewares(middlewares[1:]...)
	return func(h http.HandlerFunc) http.HandlerFunc {
		return first(rest(h))
	}
}

func onRateLimitExceeded(w http.ResponseWriter, r *http.Request) {
	writeErrorResponse(r.Context(), w, "rate limit exceeded", http.StatusTooManyRequests)
}
