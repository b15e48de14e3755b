package campaignrepository

import (
	"context"

	"github.com/Amund211/campaigncache/internal/domain"
)

type CampaignRepository interface {
	ListCampaigns(ctx context.Context) ([]domain.Campaign, error)
	GetCampaign(ctx context.Context, id string) (domain.Campaign, error)
}
