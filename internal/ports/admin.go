package ports

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Amund211/campaigncache/internal/adapters/cache"
	"github.com/Amund211/campaigncache/internal/app"
	"github.com/Amund211/campaigncache/internal/logging"
	"github.com/Amund211/campaigncache/internal/ratelimiting"
	"github.com/Amund211/campaigncache/internal/reporting"
)

type cacheStatusResponseObject struct {
	Name                  string     `json:"name"`
	Populated             bool       `json:"populated"`
	Refreshing            bool       `json:"refreshing"`
	LastSuccess           *time.Time `json:"lastSuccess"`
	LastAttempt           *time.Time `json:"lastAttempt"`
	RefreshTimeoutSeconds float64    `json:"refreshTimeoutSeconds"`
	CacheValiditySeconds  float64    `json:"cacheValiditySeconds"`
}

type cacheStatusResponse struct {
	Success bool                        `json:"success"`
	Caches  []cacheStatusResponseObject `json:"caches"`
}

type cacheResetResponse struct {
	Success bool     `json:"success"`
	Reset   []string `json:"reset"`
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func newAdminMiddleware(
	handlerName string,
	adminToken string,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) func(http.HandlerFunc) http.HandlerFunc {
	ipLimiter, _ := ratelimiting.NewTokenBucketRateLimiter(
		ratelimiting.RefillPerSecond(1),
		ratelimiting.BurstSize(10),
	)
	tokenLimiter, _ := ratelimiting.NewTokenBucketRateLimiter(
		ratelimiting.RefillPerSecond(1),
		ratelimiting.BurstSize(30),
	)

	return ComposeMiddlewares(
		buildMetricsMiddleware(handlerName),
		logging.NewRequestLoggerMiddleware(rootLogger),
		sentryMiddleware,
		reporting.NewAddMetaMiddleware(handlerName),
		NewRateLimitMiddleware(
			ratelimiting.NewRequestBasedRateLimiter(ipLimiter, ratelimiting.IPKeyFunc),
			onRateLimitExceeded,
		),
		NewRateLimitMiddleware(
			ratelimiting.NewRequestBasedRateLimiter(tokenLimiter, ratelimiting.AdminTokenKeyFunc),
			onRateLimitExceeded,
		),
		NewAdminTokenMiddleware(adminToken),
	)
}

// Reset the refresh-ahead caches. ?name= limits the reset to a single cache.
func MakeResetCachesHandler(
	resetCaches app.ResetCaches,
	cacheNames func() []string,
	adminToken string,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := newAdminMiddleware("reset_caches", adminToken, rootLogger, sentryMiddleware)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		name := r.URL.Query().Get("name")

		err := resetCaches(ctx, name)
		if errors.Is(err, cache.ErrUnknownCacheName) {
			writeErrorResponse(ctx, w, "unknown cache", http.StatusNotFound)
			return
		} else if err != nil {
			reporting.Report(ctx, err, map[string]string{
				"name": name,
			})
			writeErrorResponse(ctx, w, "internal server error", http.StatusInternalServerError)
			return
		}

		reset := []string{name}
		if name == "" {
			reset = cacheNames()
		}

		writeJSONResponse(ctx, w, cacheResetResponse{Success: true, Reset: reset}, http.StatusOK)
	}

	return middleware(handler)
}

func MakeGetCacheStatusHandler(
	getCacheStatus app.GetCacheStatus,
	adminToken string,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := newAdminMiddleware("get_cache_status", adminToken, rootLogger, sentryMiddleware)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		statuses := getCacheStatus(ctx)

		response := cacheStatusResponse{
			Success: true,
			Caches:  make([]cacheStatusResponseObject, 0, len(statuses)),
		}
		for _, status := range statuses {
			response.Caches = append(response.Caches, cacheStatusResponseObject{
				Name:                  status.Name,
				Populated:             status.Populated,
				Refreshing:            status.Refreshing,
				LastSuccess:           optionalTime(status.LastSuccess),
				LastAttempt:           optionalTime(status.LastAttempt),
				RefreshTimeoutSeconds: status.Policy.RefreshTimeout().Seconds(),
				CacheValiditySeconds:  status.Policy.CacheValidity().Seconds(),
			})
		}

		writeJSONResponse(ctx, w, response, http.StatusOK)
	}

	return middleware(handler)
}
