package models

import dErrors "clubhub/pkg/domain-errors"

// CampaignStatus is the closed enumeration of campaign lifecycle states.
// All transitions are centralized here; no other package may compare or
// switch on raw status strings.
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusPublished CampaignStatus = "published"
	CampaignStatusPaused    CampaignStatus = "paused"
	CampaignStatusCompleted CampaignStatus = "completed"
)

var validCampaignStatuses = map[CampaignStatus]bool{
	CampaignStatusDraft:     true,
	CampaignStatusPublished: true,
	CampaignStatusPaused:    true,
	CampaignStatusCompleted: true,
}

// campaignTransitions is the single source of truth for the lifecycle:
// draft → published → {paused, completed}, paused → {published, completed},
// completed is terminal.
var campaignTransitions = map[CampaignStatus][]CampaignStatus{
	CampaignStatusDraft:     {CampaignStatusPublished},
	CampaignStatusPublished: {CampaignStatusPaused, CampaignStatusCompleted},
	CampaignStatusPaused:    {CampaignStatusPublished, CampaignStatusCompleted},
	CampaignStatusCompleted: {},
}

// ParseCampaignStatus constructs a CampaignStatus from external input.
func ParseCampaignStatus(s string) (CampaignStatus, error) {
	st := CampaignStatus(s)
	if !st.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid campaign status")
	}
	return st, nil
}

// IsValid checks whether the status is one of the supported enum values.
func (s CampaignStatus) IsValid() bool {
	return validCampaignStatuses[s]
}

// CanTransitionTo reports whether the lifecycle permits moving to target.
func (s CampaignStatus) CanTransitionTo(target CampaignStatus) bool {
	for _, next := range campaignTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

func (s CampaignStatus) String() string {
	return string(s)
}

// StatusAction is a caller-requested lifecycle transition.
type StatusAction string

const (
	ActionPublish  StatusAction = "publish"
	ActionPause    StatusAction = "pause"
	ActionResume   StatusAction = "resume"
	ActionComplete StatusAction = "complete"
)

// ParseStatusAction constructs a StatusAction from external input.
func ParseStatusAction(s string) (StatusAction, error) {
	switch a := StatusAction(s); a {
	case ActionPublish, ActionPause, ActionResume, ActionComplete:
		return a, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid status action")
	}
}

// Target returns the status this action moves a campaign into.
func (a StatusAction) Target() CampaignStatus {
	switch a {
	case ActionPublish, ActionResume:
		return CampaignStatusPublished
	case ActionPause:
		return CampaignStatusPaused
	case ActionComplete:
		return CampaignStatusCompleted
	default:
		return ""
	}
}
