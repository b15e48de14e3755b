package app

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/Amund211/campaigncache/internal/adapters/cache"
	"github.com/Amund211/campaigncache/internal/domain"
	"github.com/Amund211/campaigncache/internal/reporting"
)

var ErrRefreshTimedOut = errors.New("campaign refresh timed out")

type GetCampaigns func(ctx context.Context) ([]domain.Campaign, error)

type campaignLister interface {
	ListCampaigns(ctx context.Context) ([]domain.Campaign, error)
}

func BuildGetCampaignsWithCache(record *cache.Record[[]domain.Campaign], repo campaignLister) GetCampaigns {
	query := func(ctx context.Context) ([]domain.Campaign, error) {
		// NOTE: The repository handles its own error reporting
		return repo.ListCampaigns(ctx)
	}

	return func(ctx context.Context) ([]domain.Campaign, error) {
		onRefreshTimeout := func() {
			reporting.Report(context.WithoutCancel(ctx), ErrRefreshTimedOut, map[string]string{
				"cache":          record.Name(),
				"refreshTimeout": record.Policy().RefreshTimeout().String(),
			})
		}

		campaigns, err := record.Access(ctx, query, onRefreshTimeout)
		if err != nil {
			if errors.Is(err, cache.ErrQueryPanicked) {
				reporting.Report(ctx, err, map[string]string{
					"cache": record.Name(),
				})
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("failed to get campaigns: %w", err)
			}
			return nil, fmt.Errorf("%w: failed to get campaigns: %w", domain.ErrTemporarilyUnavailable, err)
		}

		// The cached slice is shared between all callers
		return slices.Clone(campaigns), nil
	}
}
