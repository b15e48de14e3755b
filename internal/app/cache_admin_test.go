package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Amund211/campaigncache/internal/adapters/cache"
	"github.com/Amund211/campaigncache/internal/app"
)

func TestCacheAdmin(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) (*cache.Registry, *cache.Record[string], *cache.Record[int]) {
		t.Helper()

		registry := cache.NewRegistry()
		policy, err := cache.NewPolicy(cache.DefaultRefreshTimeout, cache.DefaultCacheValidity)
		require.NoError(t, err)

		names, err := cache.Register[string](registry, "names", policy)
		require.NoError(t, err)
		counts, err := cache.Register[int](registry, "counts", policy)
		require.NoError(t, err)

		_, err = names.Access(t.Context(), func(ctx context.Context) (string, error) { return "a", nil }, nil)
		require.NoError(t, err)
		_, err = counts.Access(t.Context(), func(ctx context.Context) (int, error) { return 1, nil }, nil)
		require.NoError(t, err)

		return registry, names, counts
	}

	t.Run("status", func(t *testing.T) {
		t.Parallel()

		registry, _, _ := setup(t)
		statuses := app.BuildGetCacheStatus(registry)(t.Context())

		require.Len(t, statuses, 2)
		require.Equal(t, "names", statuses[0].Name)
		require.Equal(t, "counts", statuses[1].Name)
		for _, status := range statuses {
			require.True(t, status.Populated)
			require.False(t, status.Refreshing)
		}
	})

	t.Run("reset all", func(t *testing.T) {
		t.Parallel()

		registry, names, counts := setup(t)
		err := app.BuildResetCaches(registry)(t.Context(), "")
		require.NoError(t, err)

		require.False(t, names.Status().Populated)
		require.False(t, counts.Status().Populated)
	})

	t.Run("reset named", func(t *testing.T) {
		t.Parallel()

		registry, names, counts := setup(t)
		err := app.BuildResetCaches(registry)(t.Context(), "counts")
		require.NoError(t, err)

		require.True(t, names.Status().Populated)
		require.False(t, counts.Status().Populated)
	})

	t.Run("reset unknown", func(t *testing.T) {
		t.Parallel()

		registry, names, counts := setup(t)
		err := app.BuildResetCaches(registry)(t.Context(), "missing")
		require.ErrorIs(t, err, cache.ErrUnknownCacheName)

		require.True(t, names.Status().Populated)
		require.True(t, counts.Status().Populated)
	})
}
