// Package service manages club memberships and projects approved
// applications into membership records.
package service

import (
	"context"
	"log/slog"
	"time"

	"clubhub/internal/membership/models"
	"clubhub/internal/notify"
	id "clubhub/pkg/domain"
	"clubhub/pkg/platform/circuit"
)

// Store is the membership persistence contract. Upsert must be idempotent
// on (club, user) so projection retries never duplicate records.
type Store interface {
	Upsert(ctx context.Context, m *models.Membership) (*models.Membership, error)
	Find(ctx context.Context, clubID id.ClubID, userID id.UserID) (*models.Membership, error)
	ListByClub(ctx context.Context, clubID id.ClubID) ([]*models.Membership, error)
}

// EventPublisher emits domain events; failures are the publisher's problem.
type EventPublisher interface {
	Emit(ctx context.Context, e notify.Event)
}

type Service struct {
	store    Store
	logger   *slog.Logger
	events   EventPublisher
	breaker  *circuit.Breaker
	attempts int
	timeout  time.Duration
	backoff  time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithEventPublisher(events EventPublisher) Option {
	return func(s *Service) {
		s.events = events
	}
}

// WithProjectionAttempts bounds how many times one projection is tried.
func WithProjectionAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.attempts = n
		}
	}
}

// WithProjectionTimeout bounds each projection attempt.
func WithProjectionTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithProjectionBackoff sets the base delay between retries; attempt n
// waits n times the base.
func WithProjectionBackoff(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.backoff = d
		}
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		logger:   slog.Default(),
		breaker:  circuit.New("membership-projection", circuit.WithFailureThreshold(5)),
		attempts: 3,
		timeout:  2 * time.Second,
		backoff:  100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RoleOf returns the user's role in the club, or ok=false when the user is
// not a member.
func (s *Service) RoleOf(ctx context.Context, clubID id.ClubID, userID id.UserID) (models.Role, bool) {
	m, err := s.store.Find(ctx, clubID, userID)
	if err != nil {
		return "", false
	}
	return m.Role, true
}

// CanManage reports whether the actor holds a reviewing role in the club.
// Campaign and application services use this as their authorization check.
func (s *Service) CanManage(ctx context.Context, clubID id.ClubID, actor id.UserID) bool {
	role, ok := s.RoleOf(ctx, clubID, actor)
	return ok && role.CanReview()
}

// ListMembers returns the club's membership roster.
func (s *Service) ListMembers(ctx context.Context, clubID id.ClubID) ([]*models.Membership, error) {
	return s.store.ListByClub(ctx, clubID)
}
