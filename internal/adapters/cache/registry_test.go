package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Amund211/campaigncache/internal/adapters/cache"
)

func constQuery[T any](value T) cache.Query[T] {
	return func(ctx context.Context) (T, error) {
		return value, nil
	}
}

func defaultPolicy(t *testing.T) cache.Policy {
	t.Helper()

	policy, err := cache.NewPolicy(cache.DefaultRefreshTimeout, cache.DefaultCacheValidity)
	require.NoError(t, err)
	return policy
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("register and list", func(t *testing.T) {
		t.Parallel()

		registry := cache.NewRegistry()

		_, err := cache.Register[string](registry, "campaigns", defaultPolicy(t))
		require.NoError(t, err)
		_, err = cache.Register[int](registry, "campaign-count", defaultPolicy(t))
		require.NoError(t, err)

		require.Equal(t, []string{"campaigns", "campaign-count"}, registry.Names())
	})

	t.Run("duplicate names are rejected", func(t *testing.T) {
		t.Parallel()

		registry := cache.NewRegistry()

		_, err := cache.Register[string](registry, "campaigns", defaultPolicy(t))
		require.NoError(t, err)

		_, err = cache.Register[int](registry, "campaigns", defaultPolicy(t))
		require.ErrorIs(t, err, cache.ErrDuplicateCacheName)
	})

	t.Run("reset clears every record", func(t *testing.T) {
		t.Parallel()

		ctx := t.Context()
		registry := cache.NewRegistry()
		policy, err := cache.NewPolicy(time.Second, time.Hour)
		require.NoError(t, err)

		campaigns, err := cache.Register[string](registry, "campaigns", policy)
		require.NoError(t, err)
		count, err := cache.Register[int](registry, "campaign-count", defaultPolicy(t))
		require.NoError(t, err)

		_, err = campaigns.Access(ctx, constQuery("all campaigns"), nil)
		require.NoError(t, err)
		_, err = count.Access(ctx, constQuery(3), nil)
		require.NoError(t, err)

		for _, status := range registry.Status() {
			require.True(t, status.Populated, status.Name)
		}

		registry.Reset()

		statuses := registry.Status()
		require.Len(t, statuses, 2)
		for _, status := range statuses {
			require.False(t, status.Populated, status.Name)
			require.False(t, status.Refreshing, status.Name)
			require.True(t, status.LastSuccess.IsZero(), status.Name)
			require.True(t, status.LastAttempt.IsZero(), status.Name)
		}
		require.Equal(t, policy, statuses[0].Policy)
		require.Equal(t, defaultPolicy(t), statuses[1].Policy)

		value, err := count.Access(ctx, constQuery(4), nil)
		require.NoError(t, err)
		require.Equal(t, 4, value)
	})

	t.Run("reset a single record", func(t *testing.T) {
		t.Parallel()

		ctx := t.Context()
		registry := cache.NewRegistry()

		campaigns, err := cache.Register[string](registry, "campaigns", defaultPolicy(t))
		require.NoError(t, err)
		count, err := cache.Register[int](registry, "campaign-count", defaultPolicy(t))
		require.NoError(t, err)

		_, err = campaigns.Access(ctx, constQuery("all campaigns"), nil)
		require.NoError(t, err)
		_, err = count.Access(ctx, constQuery(3), nil)
		require.NoError(t, err)

		err = registry.ResetNamed("campaign-count")
		require.NoError(t, err)

		require.True(t, campaigns.Status().Populated)
		require.False(t, count.Status().Populated)
	})

	t.Run("reset an unknown record", func(t *testing.T) {
		t.Parallel()

		registry := cache.NewRegistry()
		err := registry.ResetNamed("missing")
		require.ErrorIs(t, err, cache.ErrUnknownCacheName)
	})
}
