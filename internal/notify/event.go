// Package notify publishes domain events to interested consumers. Emission
// is best-effort: a sink failure is logged and never propagated into the
// operation that produced the event.
package notify

import (
	"time"

	id "clubhub/pkg/domain"
)

// Event types emitted by the campaign, application, and membership flows.
const (
	EventCampaignCreated       = "campaign.created"
	EventCampaignPublished     = "campaign.published"
	EventCampaignStatusChanged = "campaign.status_changed"
	EventCampaignDeleted       = "campaign.deleted"

	EventApplicationSubmitted = "application.submitted"
	EventApplicationUpdated   = "application.updated"
	EventApplicationApproved  = "application.approved"
	EventApplicationRejected  = "application.rejected"
	EventApplicationWithdrawn = "application.withdrawn"

	EventMembershipCreated = "membership.created"
)

// Event is one domain occurrence. Subject identifies the primary entity;
// Fields carries type-specific details flat for downstream filtering.
type Event struct {
	Type       string            `json:"type"`
	OccurredAt time.Time         `json:"occurred_at"`
	ClubID     id.ClubID         `json:"club_id,omitempty"`
	Subject    string            `json:"subject,omitempty"`
	Actor      id.UserID         `json:"actor,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
}
