// Package service orchestrates campaign lifecycle operations: creation,
// editing, status transitions, deletion, and reads enriched with live
// application statistics.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"clubhub/internal/campaign/metrics"
	"clubhub/internal/campaign/models"
	"clubhub/internal/notify"
	id "clubhub/pkg/domain"
	dErrors "clubhub/pkg/domain-errors"
	"clubhub/pkg/platform/sentinel"
	"clubhub/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, c *models.Campaign) error
	FindByID(ctx context.Context, campaignID id.CampaignID) (*models.Campaign, error)
	Execute(ctx context.Context, campaignID id.CampaignID, validate func(*models.Campaign) error, mutate func(*models.Campaign)) (*models.Campaign, error)
	Delete(ctx context.Context, campaignID id.CampaignID) error
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	ListByClub(ctx context.Context, clubID id.ClubID, status models.CampaignStatus, limit, offset int) ([]*models.Campaign, int, error)
	ListPublished(ctx context.Context, limit, offset int) ([]*models.Campaign, int, error)
}

// StatsReader derives a campaign's application tally on demand. Statistics
// are never stored on the campaign row; they are computed from application
// state at read time so the two can never drift.
type StatsReader interface {
	Stats(ctx context.Context, campaignID id.CampaignID) (models.Statistics, error)
}

// Authorizer answers whether the actor may manage the club's campaigns.
type Authorizer interface {
	CanManage(ctx context.Context, clubID id.ClubID, actor id.UserID) bool
}

type EventPublisher interface {
	Emit(ctx context.Context, e notify.Event)
}

type Service struct {
	store   Store
	stats   StatsReader
	authz   Authorizer
	logger  *slog.Logger
	events  EventPublisher
	metrics *metrics.Metrics
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

// New constructs a Service.
func New(store Store, stats StatsReader, authz Authorizer, opts ...Option) *Service {
	s := &Service{store: store, stats: stats, authz: authz, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCampaignInput carries the authored content for a new campaign.
type CreateCampaignInput struct {
	Title           string
	Description     string
	Requirements    []string
	Questions       []models.ApplicationQuestion
	StartDate       time.Time
	EndDate         time.Time
	MaxApplications int
}

// Create authors a new draft campaign for the club. Questions without an ID
// are assigned one; supplied IDs are kept so clients can reference questions
// stably across edits.
func (s *Service) Create(ctx context.Context, clubID id.ClubID, input CreateCampaignInput) (*models.Campaign, error) {
	actor := requestcontext.UserID(ctx)
	if err := s.requireManager(ctx, clubID, actor); err != nil {
		return nil, err
	}

	questions := assignQuestionIDs(input.Questions)
	c, err := models.NewCampaign(id.NewCampaignID(), clubID, actor,
		input.Title, input.Description, input.Requirements, questions,
		input.StartDate, input.EndDate, input.MaxApplications, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}

	s.logger.InfoContext(ctx, "campaign created",
		"campaign_id", c.ID, "club_id", clubID, "created_by", actor)
	if s.metrics != nil {
		s.metrics.IncrementCreated()
	}
	s.emit(ctx, notify.EventCampaignCreated, c, nil)
	return c, nil
}

// Get returns the campaign with statistics derived from its applications.
// Draft campaigns are visible only to club managers; everyone else gets the
// same not-found as a campaign that does not exist.
func (s *Service) Get(ctx context.Context, campaignID id.CampaignID) (*models.Campaign, error) {
	start := time.Now()
	defer s.observeGet(start)

	c, err := s.store.FindByID(ctx, campaignID)
	if err != nil {
		return nil, notFoundOr(err, "campaign")
	}
	if c.Status == models.CampaignStatusDraft {
		actor := requestcontext.UserID(ctx)
		if !s.authz.CanManage(ctx, c.ClubID, actor) {
			return nil, dErrors.New(dErrors.CodeNotFound, "campaign not found")
		}
	}
	return s.withStats(ctx, c)
}

// ListByClub returns the club's campaigns. Drafts are filtered out unless
// the actor manages the club.
func (s *Service) ListByClub(ctx context.Context, clubID id.ClubID, status models.CampaignStatus, limit, offset int) ([]*models.Campaign, int, error) {
	start := time.Now()
	defer s.observeList(start)

	actor := requestcontext.UserID(ctx)
	manager := s.authz.CanManage(ctx, clubID, actor)
	if !manager && status == models.CampaignStatusDraft {
		return nil, 0, nil
	}

	list, total, err := s.store.ListByClub(ctx, clubID, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list club campaigns: %w", err)
	}
	if !manager {
		list, total = dropDrafts(list, total)
	}
	return s.listWithStats(ctx, list, total)
}

// ListPublished returns open campaigns across all clubs for discovery.
func (s *Service) ListPublished(ctx context.Context, limit, offset int) ([]*models.Campaign, int, error) {
	start := time.Now()
	defer s.observeList(start)

	list, total, err := s.store.ListPublished(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list published campaigns: %w", err)
	}
	return s.listWithStats(ctx, list, total)
}

// Update edits campaign content. Once the campaign has received
// applications its question set and capacity are frozen.
func (s *Service) Update(ctx context.Context, campaignID id.CampaignID, update models.CampaignUpdate) (*models.Campaign, error) {
	c, err := s.store.FindByID(ctx, campaignID)
	if err != nil {
		return nil, notFoundOr(err, "campaign")
	}
	actor := requestcontext.UserID(ctx)
	if err := s.requireManager(ctx, c.ClubID, actor); err != nil {
		return nil, err
	}

	stats, err := s.stats.Stats(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("read campaign stats: %w", err)
	}
	frozen := stats.Total > 0

	if update.Questions != nil {
		assigned := assignQuestionIDs(*update.Questions)
		update.Questions = &assigned
	}

	now := requestcontext.Now(ctx)
	// ApplyUpdate validates on a copy and mutates only on success, so it can
	// run in the validate phase and surface its error.
	updated, err := s.store.Execute(ctx, campaignID,
		func(cur *models.Campaign) error {
			if err := cur.CanEdit(); err != nil {
				return err
			}
			return cur.ApplyUpdate(update, frozen, now)
		},
		func(*models.Campaign) {})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "campaign updated", "campaign_id", campaignID, "actor", actor)
	return s.withStats(ctx, updated)
}

// ChangeStatus applies a lifecycle action: publish, pause, resume, complete.
func (s *Service) ChangeStatus(ctx context.Context, campaignID id.CampaignID, action models.StatusAction) (*models.Campaign, error) {
	c, err := s.store.FindByID(ctx, campaignID)
	if err != nil {
		return nil, notFoundOr(err, "campaign")
	}
	actor := requestcontext.UserID(ctx)
	if err := s.requireManager(ctx, c.ClubID, actor); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	updated, err := s.store.Execute(ctx, campaignID,
		func(cur *models.Campaign) error { return cur.CanTransition(action) },
		func(cur *models.Campaign) { cur.ApplyTransition(action, now) })
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "campaign status changed",
		"campaign_id", campaignID, "action", action, "status", updated.Status, "actor", actor)
	if s.metrics != nil {
		s.metrics.IncrementTransition(string(action))
	}

	eventType := notify.EventCampaignStatusChanged
	if action == models.ActionPublish {
		eventType = notify.EventCampaignPublished
	}
	s.emit(ctx, eventType, updated, map[string]string{"status": updated.Status.String()})
	return s.withStats(ctx, updated)
}

// Delete removes a campaign that never received an application. Campaigns
// with history are completed instead so the application audit trail stays
// intact.
func (s *Service) Delete(ctx context.Context, campaignID id.CampaignID) error {
	c, err := s.store.FindByID(ctx, campaignID)
	if err != nil {
		return notFoundOr(err, "campaign")
	}
	actor := requestcontext.UserID(ctx)
	if err := s.requireManager(ctx, c.ClubID, actor); err != nil {
		return err
	}
	// The no-applications check and the delete run in one transaction. The
	// Execute takes the campaign row lock first, so a submission racing the
	// delete either lands before the stats read or waits until the delete has
	// committed and then fails with not found.
	err = s.store.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.store.Execute(ctx, campaignID,
			func(cur *models.Campaign) error { return cur.CanDelete() },
			func(*models.Campaign) {}); err != nil {
			return err
		}

		stats, err := s.stats.Stats(ctx, campaignID)
		if err != nil {
			return fmt.Errorf("read campaign stats: %w", err)
		}
		if stats.Total > 0 {
			return dErrors.WithReason(dErrors.CodeConflict, "campaign_has_applications",
				"campaign with applications cannot be deleted")
		}

		return s.store.Delete(ctx, campaignID)
	})
	if err != nil {
		return notFoundOr(err, "campaign")
	}

	s.logger.InfoContext(ctx, "campaign deleted", "campaign_id", campaignID, "actor", actor)
	if s.metrics != nil {
		s.metrics.IncrementDeleted()
	}
	s.emit(ctx, notify.EventCampaignDeleted, c, nil)
	return nil
}

func (s *Service) requireManager(ctx context.Context, clubID id.ClubID, actor id.UserID) error {
	if actor.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if !s.authz.CanManage(ctx, clubID, actor) {
		return dErrors.New(dErrors.CodeForbidden, "forbidden")
	}
	return nil
}

func (s *Service) withStats(ctx context.Context, c *models.Campaign) (*models.Campaign, error) {
	stats, err := s.stats.Stats(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("read campaign stats: %w", err)
	}
	c.Statistics = stats
	return c, nil
}

func (s *Service) listWithStats(ctx context.Context, list []*models.Campaign, total int) ([]*models.Campaign, int, error) {
	for _, c := range list {
		if _, err := s.withStats(ctx, c); err != nil {
			return nil, 0, err
		}
	}
	return list, total, nil
}

func (s *Service) emit(ctx context.Context, eventType string, c *models.Campaign, fields map[string]string) {
	if s.events == nil {
		return
	}
	s.events.Emit(ctx, notify.Event{
		Type:      eventType,
		ClubID:    c.ClubID,
		Subject:   c.ID.String(),
		Actor:     requestcontext.UserID(ctx),
		RequestID: requestcontext.RequestID(ctx),
		Fields:    fields,
	})
}

func (s *Service) observeGet(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveGet(start)
	}
}

func (s *Service) observeList(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveList(start)
	}
}

// assignQuestionIDs fills in IDs for questions that lack one. Generated IDs
// are positional with a random suffix so re-authored question lists do not
// collide with answers keyed by earlier IDs.
func assignQuestionIDs(questions []models.ApplicationQuestion) []models.ApplicationQuestion {
	if len(questions) == 0 {
		return questions
	}
	out := make([]models.ApplicationQuestion, len(questions))
	copy(out, questions)
	for i := range out {
		if strings.TrimSpace(out[i].ID) == "" {
			out[i].ID = fmt.Sprintf("q%d_%s", i+1, uuid.NewString()[:8])
		}
	}
	return out
}

// notFoundOr maps the store's sentinel onto a coded not-found and passes
// everything else through wrapped.
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

// dropDrafts strips draft campaigns from a page for non-manager readers.
// The total shrinks by the drafts removed from this page only; drafts are a
// manager-side artifact and pages are small.
func dropDrafts(list []*models.Campaign, total int) ([]*models.Campaign, int) {
	out := list[:0]
	for _, c := range list {
		if c.Status == models.CampaignStatusDraft {
			total--
			continue
		}
		out = append(out, c)
	}
	return out, total
}
