package ports

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Amund211/campaigncache/internal/app"
	"github.com/Amund211/campaigncache/internal/domain"
	"github.com/Amund211/campaigncache/internal/logging"
	"github.com/Amund211/campaigncache/internal/ratelimiting"
	"github.com/Amund211/campaigncache/internal/reporting"
)

type campaignResponseObject struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	StartsAt  time.Time  `json:"startsAt"`
	EndsAt    *time.Time `json:"endsAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type campaignsResponse struct {
	Success   bool                     `json:"success"`
	Campaigns []campaignResponseObject `json:"campaigns"`
}

type campaignResponse struct {
	Success  bool                   `json:"success"`
	Campaign campaignResponseObject `json:"campaign"`
}

func campaignToResponseObject(campaign domain.Campaign) campaignResponseObject {
	return campaignResponseObject{
		ID:        campaign.ID,
		Name:      campaign.Name,
		Status:    string(campaign.Status),
		StartsAt:  campaign.StartsAt,
		EndsAt:    campaign.EndsAt,
		UpdatedAt: campaign.UpdatedAt,
	}
}

func newPublicMiddleware(
	handlerName string,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) func(http.HandlerFunc) http.HandlerFunc {
	ipLimiter, _ := ratelimiting.NewTokenBucketRateLimiter(
		ratelimiting.RefillPerSecond(8),
		ratelimiting.BurstSize(240),
	)
	ipRateLimiter := ratelimiting.NewRequestBasedRateLimiter(
		ipLimiter,
		ratelimiting.IPKeyFunc,
	)

	return ComposeMiddlewares(
		buildMetricsMiddleware(handlerName),
		logging.NewRequestLoggerMiddleware(rootLogger),
		sentryMiddleware,
		reporting.NewAddMetaMiddleware(handlerName),
		BuildCORSMiddleware(allowedOrigins, http.MethodGet),
		NewRateLimitMiddleware(ipRateLimiter, onRateLimitExceeded),
	)
}

// List all campaigns. With ?running=true only the campaigns running right now are listed.
func MakeGetCampaignsHandler(
	getCampaigns app.GetCampaigns,
	nowFunc func() time.Time,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := newPublicMiddleware("get_campaigns", allowedOrigins, rootLogger, sentryMiddleware)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var onlyRunning bool
		switch r.URL.Query().Get("running") {
		case "", "false":
		case "true":
			onlyRunning = true
		default:
			writeErrorResponse(ctx, w, "invalid value for running", http.StatusBadRequest)
			return
		}

		campaigns, err := getCampaigns(ctx)
		if errors.Is(err, domain.ErrTemporarilyUnavailable) {
			writeErrorResponse(ctx, w, "temporarily unavailable", http.StatusServiceUnavailable)
			return
		} else if err != nil {
			// NOTE: Cancelled by the client, or reported by the app layer
			logging.FromContext(ctx).InfoContext(ctx, "Failed to get campaigns", "error", err.Error())
			writeErrorResponse(ctx, w, "internal server error", http.StatusInternalServerError)
			return
		}

		if onlyRunning {
			campaigns = domain.RunningCampaigns(campaigns, nowFunc())
		}

		response := campaignsResponse{
			Success:   true,
			Campaigns: make([]campaignResponseObject, 0, len(campaigns)),
		}
		for _, campaign := range campaigns {
			response.Campaigns = append(response.Campaigns, campaignToResponseObject(campaign))
		}

		writeJSONResponse(ctx, w, response, http.StatusOK)
	}

	return middleware(handler)
}

func MakeGetCampaignHandler(
	getCampaign app.GetCampaign,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := newPublicMiddleware("get_campaign", allowedOrigins, rootLogger, sentryMiddleware)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		rawID := r.PathValue("id")

		ctx = logging.AddMetaToContext(ctx, slog.String("campaignId", rawID))
		ctx = reporting.AddExtrasToContext(ctx,
			map[string]string{
				"campaignId": rawID,
			},
		)

		campaign, err := getCampaign(ctx, rawID)
		if errors.Is(err, domain.ErrInvalidCampaignID) {
			writeErrorResponse(ctx, w, "invalid campaign id", http.StatusBadRequest)
			return
		} else if errors.Is(err, domain.ErrCampaignNotFound) {
			writeErrorResponse(ctx, w, "not found", http.StatusNotFound)
			return
		} else if errors.Is(err, domain.ErrTemporarilyUnavailable) {
			writeErrorResponse(ctx, w, "temporarily unavailable", http.StatusServiceUnavailable)
			return
		} else if err != nil {
			writeErrorResponse(ctx, w, "internal server error", http.StatusInternalServerError)
			return
		}

		writeJSONResponse(ctx, w, campaignResponse{
			Success:  true,
			Campaign: campaignToResponseObject(campaign),
		}, http.StatusOK)
	}

	return middleware(handler)
}
