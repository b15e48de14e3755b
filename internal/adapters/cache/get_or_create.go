package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Amund211/campaigncache/internal/logging"
)

// Get the entry for key, or create it if it is missing.
//
// Concurrent callers for the same key wait for the first caller to create the
// entry instead of calling create themselves.
//
// Returns data, created, error
func GetOrCreate[T any](ctx context.Context, cache Cache[T], key string, create func() (T, error)) (T, bool, error) {
	logger := logging.FromContext(ctx).With(slog.String("key", key))

	// Clean up the cache if we claim an entry, but don't set it
	// This allows other callers to try again
	claimed := false
	set := false
	defer func() {
		if claimed && !set {
			cache.delete(key)
		}
	}()

	for {
		result := cache.getOrClaim(key)

		if result.claimed {
			claimed = true

			logger.InfoContext(ctx, "Getting cache entry", "cache", "miss")
			recordKeyedLookup(ctx, "miss")

			data, err := create()
			if err != nil {
				var empty T
				return empty, false, fmt.Errorf("failed to create cache entry: %w", err)
			}

			cache.set(key, data)
			set = true

			return data, true, nil
		}

		if result.valid {
			logger.InfoContext(ctx, "Getting cache entry", "cache", "hit")
			recordKeyedLookup(ctx, "hit")
			return result.data, false, nil
		}

		logger.InfoContext(ctx, "Waiting for cache")
		cache.wait()
	}
}
