package models

import (
	"strings"
	"time"

	id "clubhub/pkg/domain"
	dErrors "clubhub/pkg/domain-errors"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 2000
	maxRequirementLength = 1000
)

// Statistics is the per-campaign application tally. It is derived from the
// application store on read, never persisted alongside the campaign, so the
// counters cannot drift from the rows they summarize.
type Statistics struct {
	Total    int `json:"total"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Pending  int `json:"pending"`
}

// Campaign is the aggregate root for one time-boxed recruitment round.
//
// Invariants:
//   - Title is non-empty and at most 200 characters
//   - Description is non-empty and at most 2000 characters
//   - EndDate is strictly after StartDate
//   - MaxApplications, when set (> 0), is the cap on concurrently
//     pending-or-approved applications; 0 means unlimited
//   - Status transitions follow campaignTransitions only
//   - Question set and MaxApplications freeze once applications exist
//     (enforced at the service layer, which knows the application count)
type Campaign struct {
	ID              id.CampaignID         `json:"id"`
	ClubID          id.ClubID             `json:"club_id"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Requirements    []string              `json:"requirements,omitempty"`
	Questions       []ApplicationQuestion `json:"application_questions,omitempty"`
	StartDate       time.Time             `json:"start_date"`
	EndDate         time.Time             `json:"end_date"`
	MaxApplications int                   `json:"max_applications,omitempty"`
	Status          CampaignStatus        `json:"status"`
	Statistics      Statistics            `json:"statistics"`
	CreatedBy       id.UserID             `json:"created_by"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// NewCampaign constructs a draft campaign, validating authored content.
func NewCampaign(campaignID id.CampaignID, clubID id.ClubID, createdBy id.UserID, title, description string, requirements []string, questions []ApplicationQuestion, startDate, endDate time.Time, maxApplications int, now time.Time) (*Campaign, error) {
	c := &Campaign{
		ID:              campaignID,
		ClubID:          clubID,
		Title:           strings.TrimSpace(title),
		Description:     strings.TrimSpace(description),
		Requirements:    requirements,
		Questions:       questions,
		StartDate:       startDate,
		EndDate:         endDate,
		MaxApplications: maxApplications,
		Status:          CampaignStatusDraft,
		CreatedBy:       createdBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := c.validateContent(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Campaign) validateContent() error {
	if c.Title == "" {
		return dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if len(c.Title) > maxTitleLength {
		return dErrors.New(dErrors.CodeValidation, "title must be 200 characters or less")
	}
	if c.Description == "" {
		return dErrors.New(dErrors.CodeValidation, "description is required")
	}
	if len(c.Description) > maxDescriptionLength {
		return dErrors.New(dErrors.CodeValidation, "description must be 2000 characters or less")
	}
	for _, req := range c.Requirements {
		if len(req) > maxRequirementLength {
			return dErrors.New(dErrors.CodeValidation, "requirements must be 1000 characters or less")
		}
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "start and end dates are required")
	}
	if !c.EndDate.After(c.StartDate) {
		return dErrors.New(dErrors.CodeValidation, "end date must be after start date")
	}
	if c.MaxApplications < 0 {
		return dErrors.New(dErrors.CodeValidation, "max applications must be positive")
	}
	for _, q := range c.Questions {
		if err := q.ValidateDefinition(); err != nil {
			return err
		}
	}
	return nil
}

// AcceptingBefore reports whether the campaign accepts submissions at the
// given instant, considering status and deadline only. Capacity and
// duplicate checks require store coordination and live in the admission
// package.
func (c *Campaign) AcceptingBefore(now time.Time) bool {
	return c.Status == CampaignStatusPublished && !now.After(c.EndDate)
}

// CanTransition checks if the campaign may perform the requested action.
// Returns an error describing the rejected transition.
func (c *Campaign) CanTransition(action StatusAction) error {
	target := action.Target()
	if target == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid status action")
	}
	// Resuming is only meaningful from paused; publish only from draft.
	// Both map to published, so disambiguate before the generic check.
	if action == ActionPublish && c.Status != CampaignStatusDraft {
		return dErrors.New(dErrors.CodeConflict, "only draft campaigns can be published")
	}
	if action == ActionResume && c.Status != CampaignStatusPaused {
		return dErrors.New(dErrors.CodeConflict, "only paused campaigns can be resumed")
	}
	if !c.Status.CanTransitionTo(target) {
		return dErrors.New(dErrors.CodeConflict,
			"cannot "+string(action)+" a "+c.Status.String()+" campaign")
	}
	return nil
}

// ApplyTransition moves the campaign to the action's target status.
// Call CanTransition first; pairing with Execute callbacks keeps the
// validate-then-mutate atomic under the store's lock.
func (c *Campaign) ApplyTransition(action StatusAction, now time.Time) {
	c.Status = action.Target()
	c.UpdatedAt = now
}

// CanEdit checks whether campaign content may still be modified.
func (c *Campaign) CanEdit() error {
	if c.Status == CampaignStatusCompleted {
		return dErrors.New(dErrors.CodeConflict, "completed campaigns cannot be edited")
	}
	return nil
}

// CanDelete checks whether the campaign may be destroyed.
func (c *Campaign) CanDelete() error {
	if c.Status == CampaignStatusCompleted {
		return dErrors.New(dErrors.CodeConflict, "completed campaigns cannot be deleted")
	}
	return nil
}

// ApplyUpdate replaces editable content and re-validates the aggregate.
// When frozen is true the question set and application cap must not change;
// the caller determines frozenness from the live application count.
func (c *Campaign) ApplyUpdate(update CampaignUpdate, frozen bool, now time.Time) error {
	if err := c.CanEdit(); err != nil {
		return err
	}

	updated := *c
	if update.Title != nil {
		updated.Title = strings.TrimSpace(*update.Title)
	}
	if update.Description != nil {
		updated.Description = strings.TrimSpace(*update.Description)
	}
	if update.Requirements != nil {
		updated.Requirements = *update.Requirements
	}
	if update.StartDate != nil {
		updated.StartDate = *update.StartDate
	}
	if update.EndDate != nil {
		updated.EndDate = *update.EndDate
	}
	if update.Questions != nil {
		if frozen {
			return dErrors.New(dErrors.CodeConflict, "application questions cannot change after applications have been submitted")
		}
		updated.Questions = *update.Questions
	}
	if update.MaxApplications != nil {
		if frozen {
			return dErrors.New(dErrors.CodeConflict, "max applications cannot change after applications have been submitted")
		}
		updated.MaxApplications = *update.MaxApplications
	}
	if err := updated.validateContent(); err != nil {
		return err
	}

	updated.UpdatedAt = now
	*c = updated
	return nil
}

// CampaignUpdate carries the editable subset of a campaign. Nil fields are
// left untouched.
type CampaignUpdate struct {
	Title           *string
	Description     *string
	Requirements    *[]string
	Questions       *[]ApplicationQuestion
	StartDate       *time.Time
	EndDate         *time.Time
	MaxApplications *int
}
