package domain

import (
	"time"
)

type CampaignStatus string

const (
	CampaignStatusDraft  CampaignStatus = "draft"
	CampaignStatusActive CampaignStatus = "active"
	CampaignStatusPaused CampaignStatus = "paused"
	CampaignStatusEnded  CampaignStatus = "ended"
)

func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignStatusDraft, CampaignStatusActive, CampaignStatusPaused, CampaignStatusEnded:
		return true
	}
	return false
}

type Campaign struct {
	ID     string
	Name   string
	Status CampaignStatus

	StartsAt time.Time
	// Nil for campaigns without a scheduled end
	EndsAt *time.Time

	UpdatedAt time.Time
}

// Whether the campaign should be running at the given time
func (c Campaign) RunningAt(t time.Time) bool {
	if c.Status != CampaignStatusActive {
		return false
	}
	if t.Before(c.StartsAt) {
		return false
	}
	if c.EndsAt != nil && !t.Before(*c.EndsAt) {
		return false
	}
	return true
}

// The campaigns running at the given time, in their original order
func RunningCampaigns(campaigns []Campaign, at time.Time) []Campaign {
	running := make([]Campaign, 0, len(campaigns))
	for _, campaign := range campaigns {
		if campaign.RunningAt(at) {
			running = append(running, campaign)
		}
	}
	return running
}
