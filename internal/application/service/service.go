// Package service orchestrates the application lifecycle: validated intake
// through the admission gates, applicant edits and withdrawal, and the
// review decisions that project approvals into memberships.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"clubhub/internal/application/metrics"
	"clubhub/internal/application/models"
	campaignmodels "clubhub/internal/campaign/models"
	membershipmodels "clubhub/internal/membership/models"
	"clubhub/internal/notify"
	id "clubhub/pkg/domain"
	dErrors "clubhub/pkg/domain-errors"
	"clubhub/pkg/platform/sentinel"
	"clubhub/pkg/requestcontext"
)

type Store interface {
	SubmitIfAdmissible(ctx context.Context, app *models.Application) error
	FindByID(ctx context.Context, appID id.ApplicationID) (*models.Application, error)
	Execute(ctx context.Context, appID id.ApplicationID, validate func(*models.Application) error, mutate func(*models.Application)) (*models.Application, error)
	ListByCampaign(ctx context.Context, campaignID id.CampaignID, status models.ApplicationStatus, limit, offset int) ([]*models.Application, int, error)
	ListByUser(ctx context.Context, userID id.UserID, status models.ApplicationStatus) ([]*models.Application, error)
}

// CampaignReader provides the question set answers are validated against.
type CampaignReader interface {
	FindByID(ctx context.Context, campaignID id.CampaignID) (*campaignmodels.Campaign, error)
}

// MembershipProjector creates the membership for an approved application.
// The implementation owns retries, timeouts, and circuit breaking; a
// returned error means the projection is definitively not done.
type MembershipProjector interface {
	Project(ctx context.Context, clubID id.ClubID, userID id.UserID, role membershipmodels.Role, applicationID id.ApplicationID, now time.Time) (*membershipmodels.Membership, error)
}

// Authorizer answers whether the actor may review the club's applications.
type Authorizer interface {
	CanManage(ctx context.Context, clubID id.ClubID, actor id.UserID) bool
}

type EventPublisher interface {
	Emit(ctx context.Context, e notify.Event)
}

// AnswerValidator checks submitted answers against a campaign's questions,
// returning IDs of questions it could not fully validate.
type AnswerValidator func(questions []campaignmodels.ApplicationQuestion, answers map[string]models.Answer) (warnings []string, err error)

type Service struct {
	store     Store
	campaigns CampaignReader
	projector MembershipProjector
	authz     Authorizer
	validate  AnswerValidator
	logger    *slog.Logger
	events    EventPublisher
	metrics   *metrics.Metrics
}

type Option func(s *Service)

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

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service. validate is typically intake.ValidateAnswers.
func New(store Store, campaigns CampaignReader, projector MembershipProjector, authz Authorizer, validate AnswerValidator, opts ...Option) *Service {
	s := &Service{
		store:     store,
		campaigns: campaigns,
		projector: projector,
		authz:     authz,
		validate:  validate,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates the applicant's answers against the campaign's question
// set and hands the application to the store, which runs the admission
// gates atomically with the insert.
func (s *Service) Submit(ctx context.Context, campaignID id.CampaignID, message string, answers map[string]models.Answer) (*models.Application, error) {
	start := time.Now()
	defer s.observeSubmit(start)

	actor := requestcontext.UserID(ctx)
	if actor.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	c, err := s.campaigns.FindByID(ctx, campaignID)
	if err != nil {
		return nil, notFoundOr(err, "campaign")
	}

	warnings, err := s.validate(c.Questions, answers)
	if err != nil {
		return nil, err
	}
	for _, qid := range warnings {
		s.logger.WarnContext(ctx, "answer stored without full validation",
			"campaign_id", campaignID, "question_id", qid)
	}

	app, err := models.NewApplication(id.NewApplicationID(), campaignID, c.ClubID, actor,
		message, answers, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.store.SubmitIfAdmissible(ctx, app); err != nil {
		if reason := dErrors.ReasonOf(err); reason != "" && s.metrics != nil {
			s.metrics.IncrementGated(reason)
		}
		return nil, notFoundOr(err, "campaign")
	}

	s.logger.InfoContext(ctx, "application submitted",
		"application_id", app.ID, "campaign_id", campaignID, "user_id", actor)
	if s.metrics != nil {
		s.metrics.IncrementAccepted()
	}
	s.emit(ctx, notify.EventApplicationSubmitted, app, nil)
	return app, nil
}

// Get returns one application. Applicants see their own; club managers see
// any in their club. Everyone else gets the same not-found an absent
// application would produce.
func (s *Service) Get(ctx context.Context, appID id.ApplicationID) (*models.Application, error) {
	app, err := s.store.FindByID(ctx, appID)
	if err != nil {
		return nil, notFoundOr(err, "application")
	}
	actor := requestcontext.UserID(ctx)
	if app.UserID != actor && !s.authz.CanManage(ctx, app.ClubID, actor) {
		return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
	}
	return app, nil
}

// Update lets the applicant revise message and answers while pending.
// Answers are re-validated against the campaign's current question set.
func (s *Service) Update(ctx context.Context, appID id.ApplicationID, message string, answers map[string]models.Answer) (*models.Application, error) {
	app, err := s.Get(ctx, appID)
	if err != nil {
		return nil, err
	}

	c, err := s.campaigns.FindByID(ctx, app.CampaignID)
	if err != nil {
		return nil, notFoundOr(err, "campaign")
	}
	warnings, err := s.validate(c.Questions, answers)
	if err != nil {
		return nil, err
	}
	for _, qid := range warnings {
		s.logger.WarnContext(ctx, "answer stored without full validation",
			"campaign_id", app.CampaignID, "question_id", qid)
	}

	actor := requestcontext.UserID(ctx)
	now := requestcontext.Now(ctx)
	updated, err := s.store.Execute(ctx, appID,
		func(cur *models.Application) error { return cur.CanEdit(actor) },
		func(cur *models.Application) { cur.ApplyEdit(message, answers, now) })
	if err != nil {
		return nil, err
	}

	s.emit(ctx, notify.EventApplicationUpdated, updated, nil)
	return updated, nil
}

// Withdraw retracts the applicant's own pending application, freeing its
// capacity slot and permitting re-application.
func (s *Service) Withdraw(ctx context.Context, appID id.ApplicationID) error {
	actor := requestcontext.UserID(ctx)
	now := requestcontext.Now(ctx)

	withdrawn, err := s.store.Execute(ctx, appID,
		func(cur *models.Application) error { return cur.CanWithdraw(actor) },
		func(cur *models.Application) { cur.ApplyWithdrawal(now) })
	if err != nil {
		return notFoundOr(err, "application")
	}

	s.logger.InfoContext(ctx, "application withdrawn",
		"application_id", appID, "user_id", actor)
	s.emit(ctx, notify.EventApplicationWithdrawn, withdrawn, nil)
	return nil
}

// ListByCampaign returns a campaign's applications for its reviewers.
func (s *Service) ListByCampaign(ctx context.Context, campaignID id.CampaignID, status models.ApplicationStatus, limit, offset int) ([]*models.Application, int, error) {
	c, err := s.campaigns.FindByID(ctx, campaignID)
	if err != nil {
		return nil, 0, notFoundOr(err, "campaign")
	}
	actor := requestcontext.UserID(ctx)
	if !s.authz.CanManage(ctx, c.ClubID, actor) {
		return nil, 0, dErrors.New(dErrors.CodeForbidden, "forbidden")
	}
	return s.store.ListByCampaign(ctx, campaignID, status, limit, offset)
}

// ListMine returns the caller's applications across campaigns.
func (s *Service) ListMine(ctx context.Context, status models.ApplicationStatus) ([]*models.Application, error) {
	actor := requestcontext.UserID(ctx)
	if actor.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return s.store.ListByUser(ctx, actor, status)
}

func (s *Service) requireReviewer(ctx context.Context, app *models.Application) (id.UserID, error) {
	actor := requestcontext.UserID(ctx)
	if actor.IsNil() {
		return id.UserID{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if !s.authz.CanManage(ctx, app.ClubID, actor) {
		return id.UserID{}, dErrors.New(dErrors.CodeForbidden, "forbidden")
	}
	return actor, nil
}

func (s *Service) emit(ctx context.Context, eventType string, app *models.Application, fields map[string]string) {
	if s.events == nil {
		return
	}
	if fields == nil {
		fields = map[string]string{}
	}
	fields["campaign_id"] = app.CampaignID.String()
	fields["user_id"] = app.UserID.String()
	s.events.Emit(ctx, notify.Event{
		Type:      eventType,
		ClubID:    app.ClubID,
		Subject:   app.ID.String(),
		Actor:     requestcontext.UserID(ctx),
		RequestID: requestcontext.RequestID(ctx),
		Fields:    fields,
	})
}

func (s *Service) observeSubmit(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveSubmit(start)
	}
}

func notFoundOr(err error, what string) error {
	if err == nil {
		return nil
	}
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		return err
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, what+" not found")
	}
	return err
}
