package handler

import (
	"clubhub/internal/campaign/models"
)

// CampaignResponse is the wire shape of a campaign, statistics included.
type CampaignResponse struct {
	*models.Campaign
}

// ListResponse pages campaigns with the unfiltered total.
type ListResponse struct {
	Campaigns []*models.Campaign `json:"campaigns"`
	Total     int                `json:"total"`
	Limit     int                `json:"limit,omitempty"`
	Offset    int                `json:"offset,omitempty"`
}
