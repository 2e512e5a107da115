// Package application provides application persistence. Both backends expose
// the same atomic primitives: a conditional admission-checked insert and an
// Execute callback that holds a lock across validate-then-mutate. Admission
// gating and review serialization both ride on these two primitives.
package application

import (
	"context"
	"sort"
	"sync"

	"clubhub/internal/application/admission"
	"clubhub/internal/application/models"
	campaignmodels "clubhub/internal/campaign/models"
	id "clubhub/pkg/domain"
	"clubhub/pkg/platform/sentinel"
)

// CampaignGuard provides an exclusive view of a campaign. The in-memory
// admission path runs inside it so a submission cannot interleave with a
// pause, complete, or another submission to the same campaign.
type CampaignGuard interface {
	View(ctx context.Context, campaignID id.CampaignID, fn func(*campaignmodels.Campaign) error) error
}

// InMemory keeps applications in a map guarded by one mutex. Lock order is
// always campaign guard first, then the application mutex.
type InMemory struct {
	campaigns CampaignGuard
	mu        sync.RWMutex
	byID      map[id.ApplicationID]*models.Application
}

func NewInMemory(campaigns CampaignGuard) *InMemory {
	return &InMemory{campaigns: campaigns, byID: make(map[id.ApplicationID]*models.Application)}
}

func cloneApplication(a *models.Application) *models.Application {
	out := *a
	if a.Answers != nil {
		out.Answers = make(map[string]models.Answer, len(a.Answers))
		for k, v := range a.Answers {
			out.Answers[k] = v
		}
	}
	if a.ReviewedAt != nil {
		t := *a.ReviewedAt
		out.ReviewedAt = &t
	}
	return &out
}

// SubmitIfAdmissible runs the admission gates and inserts the application as
// one atomic step under the campaign guard. Returns the campaign's sentinel
// ErrNotFound when the campaign does not exist, or the admission error that
// rejected the submission.
func (s *InMemory) SubmitIfAdmissible(ctx context.Context, app *models.Application) error {
	return s.campaigns.View(ctx, app.CampaignID, func(c *campaignmodels.Campaign) error {
		s.mu.Lock()
		defer s.mu.Unlock()

		active := 0
		duplicate := false
		for _, existing := range s.byID {
			if existing.CampaignID != app.CampaignID || !existing.Status.IsActive() {
				continue
			}
			active++
			if existing.UserID == app.UserID {
				duplicate = true
			}
		}

		if err := admission.Check(c, app.SubmittedAt, active, duplicate); err != nil {
			return err
		}
		s.byID[app.ID] = cloneApplication(app)
		return nil
	})
}

func (s *InMemory) FindByID(_ context.Context, appID id.ApplicationID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[appID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneApplication(a), nil
}

// Execute atomically runs validate then mutate against the stored
// application while holding the store lock. This is the compare-and-set that
// serializes concurrent review decisions: the loser revalidates against the
// winner's committed state and fails.
func (s *InMemory) Execute(_ context.Context, appID id.ApplicationID, validate func(*models.Application) error, mutate func(*models.Application)) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[appID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	work := cloneApplication(a)
	if err := validate(work); err != nil {
		return nil, err
	}
	mutate(work)
	s.byID[appID] = work
	return cloneApplication(work), nil
}

// ListByCampaign returns the campaign's applications newest-first,
// optionally filtered by externally visible status.
func (s *InMemory) ListByCampaign(_ context.Context, campaignID id.CampaignID, status models.ApplicationStatus, limit, offset int) ([]*models.Application, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*models.Application
	for _, a := range s.byID {
		if a.CampaignID != campaignID {
			continue
		}
		if status != "" && a.Status.External() != status {
			continue
		}
		matches = append(matches, cloneApplication(a))
	}
	return paginate(matches, limit, offset)
}

// ListByUser returns the user's applications across campaigns newest-first.
func (s *InMemory) ListByUser(_ context.Context, userID id.UserID, status models.ApplicationStatus) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*models.Application
	for _, a := range s.byID {
		if a.UserID != userID {
			continue
		}
		if status != "" && a.Status.External() != status {
			continue
		}
		matches = append(matches, cloneApplication(a))
	}
	matches, _, _ = paginate(matches, 0, 0)
	return matches, nil
}

// Stats derives the campaign's application tally from live rows. Pending
// includes in-flight approvals; Total counts every submission ever made,
// including withdrawn ones.
func (s *InMemory) Stats(_ context.Context, campaignID id.CampaignID) (campaignmodels.Statistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats campaignmodels.Statistics
	for _, a := range s.byID {
		if a.CampaignID != campaignID {
			continue
		}
		stats.Total++
		switch a.Status.External() {
		case models.StatusPending:
			stats.Pending++
		case models.StatusApproved:
			stats.Approved++
		case models.StatusRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}

func paginate(matches []*models.Application, limit, offset int) ([]*models.Application, int, error) {
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].SubmittedAt.After(matches[j].SubmittedAt)
	})
	total := len(matches)
	if offset >= total {
		return nil, total, nil
	}
	matches = matches[offset:]
	if limit > 0 && limit < len(matches) {
		matches = matches[:limit]
	}
	return matches, total, nil
}
