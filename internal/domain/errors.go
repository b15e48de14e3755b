package domain

import "errors"

var (
	ErrCampaignNotFound       = errors.New("campaign not found")
	ErrInvalidCampaignID      = errors.New("invalid campaign id")
	ErrTemporarilyUnavailable = errors.New("temporarily unavailable")
)
