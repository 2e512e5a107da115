// Package admission implements the gating checks applied before an
// application is accepted: campaign status, deadline, capacity, duplicates.
//
// Check is a pure function. The stores call it inside their critical section
// (campaign row locked FOR UPDATE in PostgreSQL, store mutex in memory) with
// counts computed under that same lock, so the capacity decision and the
// subsequent insert are one atomic step - never a read-then-insert.
package admission

import (
	"time"

	campaignmodels "clubhub/internal/campaign/models"
	dErrors "clubhub/pkg/domain-errors"
)

// Stable reasons carried on admission errors so transports and clients can
// distinguish outcomes without string matching.
const (
	ReasonCampaignClosed       = "campaign_closed"
	ReasonDeadlinePassed       = "deadline_passed"
	ReasonCampaignFull         = "campaign_full"
	ReasonDuplicateApplication = "duplicate_application"
)

// Check evaluates the admission gates in order and fails fast on the first
// violation:
//
//  1. campaign must be published
//  2. now must not be past the campaign end date
//  3. when a cap is set, active applications must be under it
//  4. the user must not already hold an active application
//
// active counts applications in pending, approving, or approved states;
// withdrawn and rejected applications free their slot and permit
// re-application.
func Check(c *campaignmodels.Campaign, now time.Time, active int, duplicate bool) error {
	if c.Status != campaignmodels.CampaignStatusPublished {
		return dErrors.WithReason(dErrors.CodeConflict, ReasonCampaignClosed,
			"campaign is not accepting applications")
	}
	if now.After(c.EndDate) {
		return dErrors.WithReason(dErrors.CodeConflict, ReasonDeadlinePassed,
			"campaign application deadline has passed")
	}
	if c.MaxApplications > 0 && active >= c.MaxApplications {
		return dErrors.WithReason(dErrors.CodeConflict, ReasonCampaignFull,
			"campaign has reached its application limit")
	}
	if duplicate {
		return Duplicate()
	}
	return nil
}

// Duplicate is the error returned when a user already holds an active
// application. Exposed so the PostgreSQL store can map a unique-index
// violation onto the same outcome the gate produces.
func Duplicate() error {
	return dErrors.WithReason(dErrors.CodeConflict, ReasonDuplicateApplication,
		"an application for this campaign already exists")
}
