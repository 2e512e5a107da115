package service

import (
	"context"
	"time"

	"clubhub/internal/application/models"
	membershipmodels "clubhub/internal/membership/models"
	"clubhub/internal/notify"
	id "clubhub/pkg/domain"
	"clubhub/pkg/requestcontext"
)

// ApprovalInput carries the reviewer's approval payload. Role defaults to
// member when empty.
type ApprovalInput struct {
	Role  string
	Notes string
}

// Approve decides an application in two phases. Phase one atomically
// reserves the pending application for this reviewer; a concurrent reviewer
// loses here with application_already_reviewed. Phase two projects the
// membership and commits the approval, or reverts the reservation back to
// pending when projection definitively fails so another review can retry.
func (s *Service) Approve(ctx context.Context, appID id.ApplicationID, input ApprovalInput) (*models.Application, error) {
	start := time.Now()
	defer s.observeReview(start)

	role, err := membershipmodels.ParseRole(input.Role)
	if err != nil {
		return nil, err
	}

	app, err := s.store.FindByID(ctx, appID)
	if err != nil {
		return nil, notFoundOr(err, "application")
	}
	reviewer, err := s.requireReviewer(ctx, app)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	reserved, err := s.store.Execute(ctx, appID,
		func(cur *models.Application) error { return cur.CanReview() },
		func(cur *models.Application) { cur.ApplyReservation(now) })
	if err != nil {
		return nil, notFoundOr(err, "application")
	}

	// Once the reservation is taken the commit and the compensating revert
	// must outlive the caller: a client disconnect mid-projection must not
	// strand the application in its reserved state.
	detached := context.WithoutCancel(ctx)

	if _, err := s.projector.Project(ctx, reserved.ClubID, reserved.UserID, role, appID, now); err != nil {
		s.revertReservation(detached, appID)
		s.logger.ErrorContext(ctx, "approval rolled back, membership projection failed",
			"application_id", appID, "reviewer", reviewer, "error", err)
		if s.metrics != nil {
			s.metrics.IncrementRevert()
		}
		return nil, err
	}

	approved, err := s.store.Execute(detached, appID,
		func(cur *models.Application) error { return cur.CanCommitApproval() },
		func(cur *models.Application) { cur.ApplyApproval(reviewer, string(role), input.Notes, now) })
	if err != nil {
		// Membership exists but the commit failed; the upsert keeps a later
		// retry idempotent.
		s.logger.ErrorContext(ctx, "approval commit failed after projection",
			"application_id", appID, "error", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "application approved",
		"application_id", appID, "reviewer", reviewer, "role", role)
	if s.metrics != nil {
		s.metrics.IncrementDecision("approved")
	}
	s.emit(ctx, notify.EventApplicationApproved, approved, map[string]string{"role": string(role)})
	return approved, nil
}

// RejectionInput carries the reviewer's rejection payload. Reason is
// required; Notes are internal.
type RejectionInput struct {
	Reason string
	Notes  string
}

// Reject declines a pending application. The payload is validated before
// any state changes so a bad request never half-transitions the aggregate.
func (s *Service) Reject(ctx context.Context, appID id.ApplicationID, input RejectionInput) (*models.Application, error) {
	start := time.Now()
	defer s.observeReview(start)

	if err := models.ValidateRejection(input.Reason); err != nil {
		return nil, err
	}

	app, err := s.store.FindByID(ctx, appID)
	if err != nil {
		return nil, notFoundOr(err, "application")
	}
	reviewer, err := s.requireReviewer(ctx, app)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	rejected, err := s.store.Execute(ctx, appID,
		func(cur *models.Application) error { return cur.CanReview() },
		func(cur *models.Application) { cur.ApplyRejection(reviewer, input.Reason, input.Notes, now) })
	if err != nil {
		return nil, notFoundOr(err, "application")
	}

	s.logger.InfoContext(ctx, "application rejected",
		"application_id", appID, "reviewer", reviewer)
	if s.metrics != nil {
		s.metrics.IncrementDecision("rejected")
	}
	s.emit(ctx, notify.EventApplicationRejected, rejected, map[string]string{"reason": input.Reason})
	return rejected, nil
}

// revertReservation returns a reserved application to pending. A failure
// here strands the application in approving, which reads as pending but
// cannot be re-reserved, so log loudly for the operator.
func (s *Service) revertReservation(ctx context.Context, appID id.ApplicationID) {
	_, err := s.store.Execute(ctx, appID,
		func(cur *models.Application) error { return cur.CanCommitApproval() },
		func(cur *models.Application) { cur.ApplyRevert(requestcontext.Now(ctx)) })
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to revert approval reservation",
			"application_id", appID, "error", err)
	}
}

func (s *Service) observeReview(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveReview(start)
	}
}
