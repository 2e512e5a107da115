package service

import (
	"context"
	"errors"
	"time"

	"clubhub/internal/membership/models"
	"clubhub/internal/notify"
	id "clubhub/pkg/domain"
	dErrors "clubhub/pkg/domain-errors"
	"clubhub/pkg/platform/sentinel"
)

// ReasonProjectionFailed is carried on the error returned when membership
// could not be created; the application flow maps it onto an approval
// revert.
const ReasonProjectionFailed = "membership_creation_failed"

// Project creates or updates the membership for an approved application.
// Each attempt runs under its own timeout; transient failures are retried
// with linear backoff up to the configured attempt limit. A tripped
// circuit breaker fails immediately without touching the store, and every
// exhausted projection feeds the breaker.
func (s *Service) Project(ctx context.Context, clubID id.ClubID, userID id.UserID, role models.Role, applicationID id.ApplicationID, now time.Time) (*models.Membership, error) {
	if s.breaker.IsOpen() {
		s.logger.WarnContext(ctx, "membership projection short-circuited",
			"breaker", s.breaker.Name(), "club_id", clubID)
		return nil, projectionFailed(errors.New("projection circuit open"))
	}

	candidate := models.NewMembership(clubID, userID, role, applicationID, now)

	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		m, err := s.upsertOnce(ctx, candidate)
		if err == nil {
			if _, change := s.breaker.RecordSuccess(); change.Closed {
				s.logger.InfoContext(ctx, "membership projection recovered", "breaker", s.breaker.Name())
			}
			s.emit(ctx, m)
			return m, nil
		}
		lastErr = err

		if !retryable(err) {
			break
		}
		s.logger.WarnContext(ctx, "membership projection attempt failed",
			"attempt", attempt, "club_id", clubID, "user_id", userID, "error", err)

		if attempt < s.attempts {
			select {
			case <-time.After(time.Duration(attempt) * s.backoff):
			case <-ctx.Done():
				lastErr = ctx.Err()
				attempt = s.attempts
			}
		}
	}

	if _, change := s.breaker.RecordFailure(); change.Opened {
		s.logger.ErrorContext(ctx, "membership projection circuit opened", "breaker", s.breaker.Name())
	}
	return nil, projectionFailed(lastErr)
}

func (s *Service) upsertOnce(ctx context.Context, candidate *models.Membership) (*models.Membership, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.store.Upsert(attemptCtx, candidate)
}

func (s *Service) emit(ctx context.Context, m *models.Membership) {
	if s.events == nil {
		return
	}
	s.events.Emit(ctx, notify.Event{
		Type:       notify.EventMembershipCreated,
		OccurredAt: m.JoinedAt,
		ClubID:     m.ClubID,
		Subject:    m.ID.String(),
		Fields: map[string]string{
			"user_id":        m.UserID.String(),
			"role":           string(m.Role),
			"application_id": m.ApplicationID.String(),
		},
	})
}

// retryable classifies failures worth another attempt: infra unavailability
// and timeouts, not validation or invariant errors.
func retryable(err error) bool {
	if errors.Is(err, sentinel.ErrUnavailable) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	switch dErrors.CodeOf(err) {
	case dErrors.CodeTimeout, dErrors.CodeUnavailable:
		return true
	}
	return false
}

func projectionFailed(cause error) error {
	return dErrors.WrapReason(cause, dErrors.CodeUnavailable, ReasonProjectionFailed,
		"membership could not be created")
}
