package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Amund211/campaigncache/internal/adapters/cache"
	"github.com/Amund211/campaigncache/internal/app"
	"github.com/Amund211/campaigncache/internal/domain"
)

type mockCampaignGetter struct {
	t *testing.T

	mu       sync.Mutex
	calls    int
	expectID string
	campaign domain.Campaign
	err      error
}

func (m *mockCampaignGetter) GetCampaign(ctx context.Context, id string) (domain.Campaign, error) {
	m.t.Helper()
	require.Equal(m.t, m.expectID, id)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	return m.campaign, m.err
}

func TestBuildGetCampaignWithCache(t *testing.T) {
	t.Parallel()

	const id = "4f1c5e0a-0b7e-4b3c-9a55-6a2f3f1b6c01"
	spring := domain.Campaign{ID: id, Name: "Spring sale", Status: domain.CampaignStatusActive}

	t.Run("cache miss then hit", func(t *testing.T) {
		t.Parallel()

		getter := &mockCampaignGetter{t: t, expectID: id, campaign: spring}
		getCampaign := app.BuildGetCampaignWithCache(cache.NewBasicCache[domain.Campaign](), getter)

		campaign, err := getCampaign(t.Context(), id)
		require.NoError(t, err)
		require.Equal(t, spring, campaign)

		campaign, err = getCampaign(t.Context(), id)
		require.NoError(t, err)
		require.Equal(t, spring, campaign)

		require.Equal(t, 1, getter.calls)
	})

	t.Run("id is normalized", func(t *testing.T) {
		t.Parallel()

		getter := &mockCampaignGetter{t: t, expectID: id, campaign: spring}
		getCampaign := app.BuildGetCampaignWithCache(cache.NewBasicCache[domain.Campaign](), getter)

		campaign, err := getCampaign(t.Context(), "4F1C5E0A0B7E4B3C9A556A2F3F1B6C01")
		require.NoError(t, err)
		require.Equal(t, spring, campaign)

		_, err = getCampaign(t.Context(), id)
		require.NoError(t, err)
		require.Equal(t, 1, getter.calls)
	})

	t.Run("invalid id", func(t *testing.T) {
		t.Parallel()

		getter := &mockCampaignGetter{t: t}
		getCampaign := app.BuildGetCampaignWithCache(cache.NewBasicCache[domain.Campaign](), getter)

		_, err := getCampaign(t.Context(), "spring-sale")
		require.ErrorIs(t, err, domain.ErrInvalidCampaignID)
		require.Equal(t, 0, getter.calls)
	})

	t.Run("not found is not cached", func(t *testing.T) {
		t.Parallel()

		getter := &mockCampaignGetter{t: t, expectID: id, err: domain.ErrCampaignNotFound}
		getCampaign := app.BuildGetCampaignWithCache(cache.NewBasicCache[domain.Campaign](), getter)

		_, err := getCampaign(t.Context(), id)
		require.ErrorIs(t, err, domain.ErrCampaignNotFound)
		require.NotErrorIs(t, err, domain.ErrTemporarilyUnavailable)

		_, err = getCampaign(t.Context(), id)
		require.ErrorIs(t, err, domain.ErrCampaignNotFound)
		require.Equal(t, 2, getter.calls)
	})

	t.Run("repository error", func(t *testing.T) {
		t.Parallel()

		repoErr := errors.New("connection reset")
		getter := &mockCampaignGetter{t: t, expectID: id, err: repoErr}
		getCampaign := app.BuildGetCampaignWithCache(cache.NewBasicCache[domain.Campaign](), getter)

		_, err := getCampaign(t.Context(), id)
		require.ErrorIs(t, err, domain.ErrTemporarilyUnavailable)
		require.ErrorIs(t, err, repoErr)
	})

	t.Run("ttl cache", func(t *testing.T) {
		t.Parallel()

		c := cache.NewTTLCache[domain.Campaign](time.Minute)
		t.Cleanup(c.Stop)

		getter := &mockCampaignGetter{t: t, expectID: id, campaign: spring}
		getCampaign := app.BuildGetCampaignWithCache(c, getter)

		for range 3 {
			campaign, err := getCampaign(t.Context(), id)
			require.NoError(t, err)
			require.Equal(t, spring, campaign)
		}
		require.Equal(t, 1, getter.calls)
	})
}
