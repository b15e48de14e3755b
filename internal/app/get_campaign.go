package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/Amund211/campaigncache/internal/adapters/cache"
	"github.com/Amund211/campaigncache/internal/domain"
	"github.com/google/uuid"
)

type GetCampaign func(ctx context.Context, id string) (domain.Campaign, error)

type campaignGetter interface {
	GetCampaign(ctx context.Context, id string) (domain.Campaign, error)
}

func BuildGetCampaignWithCache(campaignCache cache.Cache[domain.Campaign], repo campaignGetter) GetCampaign {
	return func(ctx context.Context, id string) (domain.Campaign, error) {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return domain.Campaign{}, fmt.Errorf("%w: %s", domain.ErrInvalidCampaignID, id)
		}
		normalizedID := parsed.String()

		// NOTE: Errors (including not found) are not cached
		campaign, _, err := cache.GetOrCreate(ctx, campaignCache, normalizedID, func() (domain.Campaign, error) {
			return repo.GetCampaign(ctx, normalizedID)
		})
		if errors.Is(err, domain.ErrCampaignNotFound) {
			return domain.Campaign{}, domain.ErrCampaignNotFound
		} else if err != nil {
			// NOTE: The repository handles its own error reporting
			return domain.Campaign{}, fmt.Errorf("%w: failed to get campaign: %w", domain.ErrTemporarilyUnavailable, err)
		}

		return campaign, nil
	}
}
