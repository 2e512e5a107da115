// Package models defines the Application aggregate and its state machine.
package models

import (
	"strings"
	"time"

	id "clubhub/pkg/domain"
	dErrors "clubhub/pkg/domain-errors"
)

const maxMessageLength = 2000

// ApplicationStatus is the closed enumeration of application states.
//
// StatusApproving is the internal two-phase reservation state: the reviewer
// has won the decision race and membership projection is in flight. It is
// never a legal resting state; the review flow commits it to approved or
// reverts it to pending. Externally it reads as pending.
type ApplicationStatus string

const (
	StatusPending   ApplicationStatus = "pending"
	StatusApproving ApplicationStatus = "approving"
	StatusApproved  ApplicationStatus = "approved"
	StatusRejected  ApplicationStatus = "rejected"
	StatusWithdrawn ApplicationStatus = "withdrawn"
)

// ParseApplicationStatus constructs an ApplicationStatus from external input.
// The internal approving state is not accepted from the outside.
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	switch st := ApplicationStatus(s); st {
	case StatusPending, StatusApproved, StatusRejected, StatusWithdrawn:
		return st, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid application status")
	}
}

// IsActive reports whether the application counts against campaign capacity
// and blocks re-application. Withdrawn and rejected applications free the
// slot; an in-flight approval holds it.
func (s ApplicationStatus) IsActive() bool {
	switch s {
	case StatusPending, StatusApproving, StatusApproved:
		return true
	}
	return false
}

// External reports the status as exposed to clients; the internal approving
// reservation reads as pending until the projection commits.
func (s ApplicationStatus) External() ApplicationStatus {
	if s == StatusApproving {
		return StatusPending
	}
	return s
}

func (s ApplicationStatus) String() string { return string(s) }

// Application is one user's submission against a campaign. Applications are
// never deleted, only state-transitioned; audit fields record who decided
// and why.
type Application struct {
	ID              id.ApplicationID  `json:"id"`
	CampaignID      id.CampaignID     `json:"campaign_id"`
	ClubID          id.ClubID         `json:"club_id"`
	UserID          id.UserID         `json:"user_id"`
	Status          ApplicationStatus `json:"status"`
	Message         string            `json:"application_message,omitempty"`
	Answers         map[string]Answer `json:"application_answers,omitempty"`
	SubmittedAt     time.Time         `json:"submitted_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	ReviewedBy      id.UserID         `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time        `json:"reviewed_at,omitempty"`
	ReviewNotes     string            `json:"review_notes,omitempty"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
	AssignedRole    string            `json:"assigned_role,omitempty"`
}

// NewApplication constructs a pending application. Answer validation against
// the campaign's question set happens in the intake layer before this point.
func NewApplication(appID id.ApplicationID, campaignID id.CampaignID, clubID id.ClubID, userID id.UserID, message string, answers map[string]Answer, now time.Time) (*Application, error) {
	message = strings.TrimSpace(message)
	if len(message) > maxMessageLength {
		return nil, dErrors.WithFields(dErrors.CodeValidation, "application is invalid",
			map[string]string{"application_message": "too_long"})
	}
	return &Application{
		ID:          appID,
		CampaignID:  campaignID,
		ClubID:      clubID,
		UserID:      userID,
		Status:      StatusPending,
		Message:     message,
		Answers:     answers,
		SubmittedAt: now,
		UpdatedAt:   now,
	}, nil
}

// CanReview checks the decision precondition: only pending applications can
// be decided. An application already reserved by a concurrent reviewer is no
// longer pending, so the loser of a decision race fails here.
func (a *Application) CanReview() error {
	if a.Status != StatusPending {
		return dErrors.WithReason(dErrors.CodeConflict, "application_already_reviewed",
			"application has already been reviewed")
	}
	return nil
}

// ApplyReservation moves pending → approving, claiming the decision for one
// reviewer. Call CanReview first under the store's lock.
func (a *Application) ApplyReservation(now time.Time) {
	a.Status = StatusApproving
	a.UpdatedAt = now
}

// CanCommitApproval guards the second phase of approval.
func (a *Application) CanCommitApproval() error {
	if a.Status != StatusApproving {
		return dErrors.New(dErrors.CodeInvariantViolation, "application is not reserved for approval")
	}
	return nil
}

// ApplyApproval commits approving → approved with audit fields.
func (a *Application) ApplyApproval(reviewer id.UserID, role, notes string, now time.Time) {
	a.Status = StatusApproved
	a.ReviewedBy = reviewer
	a.ReviewedAt = &now
	a.ReviewNotes = notes
	a.AssignedRole = role
	a.UpdatedAt = now
}

// ApplyRevert rolls an in-flight approval back to pending after membership
// projection failed. No audit fields are set; the application is reviewable
// again.
func (a *Application) ApplyRevert(now time.Time) {
	a.Status = StatusPending
	a.UpdatedAt = now
}

// ValidateRejection checks the rejection payload before any state mutation.
func ValidateRejection(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return dErrors.WithFields(dErrors.CodeValidation, "rejection is invalid",
			map[string]string{"reason": "required"})
	}
	return nil
}

// ApplyRejection moves pending → rejected with audit fields. Call CanReview
// and ValidateRejection first.
func (a *Application) ApplyRejection(reviewer id.UserID, reason, notes string, now time.Time) {
	a.Status = StatusRejected
	a.ReviewedBy = reviewer
	a.ReviewedAt = &now
	a.RejectionReason = reason
	a.ReviewNotes = notes
	a.UpdatedAt = now
}

// CanWithdraw checks that actor owns the application and it is still pending.
func (a *Application) CanWithdraw(actor id.UserID) error {
	if a.UserID != actor {
		return dErrors.New(dErrors.CodeForbidden, "forbidden")
	}
	if a.Status != StatusPending {
		return dErrors.New(dErrors.CodeConflict, "only pending applications can be withdrawn")
	}
	return nil
}

// ApplyWithdrawal moves pending → withdrawn. Terminal; no reviewer fields.
func (a *Application) ApplyWithdrawal(now time.Time) {
	a.Status = StatusWithdrawn
	a.UpdatedAt = now
}

// CanEdit checks that actor owns the application and it is still pending.
func (a *Application) CanEdit(actor id.UserID) error {
	if a.UserID != actor {
		return dErrors.New(dErrors.CodeForbidden, "forbidden")
	}
	if a.Status != StatusPending {
		return dErrors.New(dErrors.CodeConflict, "only pending applications can be edited")
	}
	return nil
}

// ApplyEdit replaces the applicant-supplied content while pending.
func (a *Application) ApplyEdit(message string, answers map[string]Answer, now time.Time) {
	a.Message = strings.TrimSpace(message)
	a.Answers = answers
	a.UpdatedAt = now
}
