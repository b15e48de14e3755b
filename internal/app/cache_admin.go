package app

import (
	"context"
	"fmt"

	"github.com/Amund211/campaigncache/internal/adapters/cache"
	"github.com/Amund211/campaigncache/internal/logging"
)

// Reset the named refresh-ahead cache, or all of them if name is empty
type ResetCaches func(ctx context.Context, name string) error

type GetCacheStatus func(ctx context.Context) []cache.RecordStatus

func BuildResetCaches(registry *cache.Registry) ResetCaches {
	return func(ctx context.Context, name string) error {
		logger := logging.FromContext(ctx)

		if name == "" {
			registry.Reset()
			logger.InfoContext(ctx, "Reset all caches", "names", registry.Names())
			return nil
		}

		if err := registry.ResetNamed(name); err != nil {
			return fmt.Errorf("failed to reset cache: %w", err)
		}
		logger.InfoContext(ctx, "Reset cache", "name", name)
		return nil
	}
}

func BuildGetCacheStatus(registry *cache.Registry) GetCacheStatus {
	return func(ctx context.Context) []cache.RecordStatus {
		return registry.Status()
	}
}
