package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Amund211/campaigncache/internal/adapters/cache"
)

func TestNewPolicy(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		policy, err := cache.NewPolicy(10*time.Second, 5*time.Minute)
		require.NoError(t, err)
		require.Equal(t, 10*time.Second, policy.RefreshTimeout())
		require.Equal(t, 5*time.Minute, policy.CacheValidity())

		defaults, err := cache.NewPolicy(cache.DefaultRefreshTimeout, cache.DefaultCacheValidity)
		require.NoError(t, err)
		require.Equal(t, defaults, policy)
	})

	cases := []struct {
		name           string
		refreshTimeout time.Duration
		cacheValidity  time.Duration
	}{
		{name: "zero timeout", refreshTimeout: 0, cacheValidity: time.Minute},
		{name: "negative timeout", refreshTimeout: -time.Second, cacheValidity: time.Minute},
		{name: "zero validity", refreshTimeout: time.Second, cacheValidity: 0},
		{name: "negative validity", refreshTimeout: time.Second, cacheValidity: -time.Minute},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			_, err := cache.NewPolicy(c.refreshTimeout, c.cacheValidity)
			require.ErrorIs(t, err, cache.ErrInvalidPolicy)
		})
	}
}
