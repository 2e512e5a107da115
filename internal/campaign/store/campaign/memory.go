// Package campaign provides campaign persistence: an in-memory store for
// tests and single-node development, and a PostgreSQL store for production.
// Both expose the same atomic primitives so services are storage-agnostic.
package campaign

import (
	"context"
	"sort"
	"sync"

	"clubhub/internal/campaign/models"
	id "clubhub/pkg/domain"
	"clubhub/pkg/platform/sentinel"
)

// InMemory keeps campaigns in a map guarded by one mutex. It intentionally
// favors clarity over performance.
type InMemory struct {
	mu   sync.RWMutex
	byID map[id.CampaignID]*models.Campaign
}

func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[id.CampaignID]*models.Campaign)}
}

func cloneCampaign(c *models.Campaign) *models.Campaign {
	out := *c
	out.Requirements = append([]string(nil), c.Requirements...)
	out.Questions = append([]models.ApplicationQuestion(nil), c.Questions...)
	return &out
}

func (s *InMemory) Create(_ context.Context, c *models.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[c.ID]; ok {
		return sentinel.ErrConflict
	}
	s.byID[c.ID] = cloneCampaign(c)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, campaignID id.CampaignID) (*models.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[campaignID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneCampaign(c), nil
}

// Execute atomically runs validate then mutate against the stored campaign
// while holding the store lock, so no concurrent writer can interleave
// between the check and the change. Mutate runs only when validate returns
// nil. The updated campaign is returned as a copy.
func (s *InMemory) Execute(_ context.Context, campaignID id.CampaignID, validate func(*models.Campaign) error, mutate func(*models.Campaign)) (*models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[campaignID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	work := cloneCampaign(c)
	if err := validate(work); err != nil {
		return nil, err
	}
	mutate(work)
	s.byID[campaignID] = work
	return cloneCampaign(work), nil
}

// RunInTx runs fn directly. The in-memory store has no transactions; each
// operation is already atomic under the store mutex, so callers that group
// statements for PostgreSQL just run them in sequence here.
func (s *InMemory) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// View runs fn against the stored campaign while holding the store lock
// exclusively. The application store serializes admission on this lock so a
// campaign cannot be paused or completed between the status check and the
// application insert. fn must not retain or mutate the campaign.
func (s *InMemory) View(_ context.Context, campaignID id.CampaignID, fn func(*models.Campaign) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[campaignID]
	if !ok {
		return sentinel.ErrNotFound
	}
	return fn(cloneCampaign(c))
}

func (s *InMemory) Delete(_ context.Context, campaignID id.CampaignID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[campaignID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byID, campaignID)
	return nil
}

// ListByClub returns the club's campaigns newest-first, optionally filtered
// by status, with the total count before paging.
func (s *InMemory) ListByClub(_ context.Context, clubID id.ClubID, status models.CampaignStatus, limit, offset int) ([]*models.Campaign, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*models.Campaign
	for _, c := range s.byID {
		if c.ClubID != clubID {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		matches = append(matches, cloneCampaign(c))
	}
	return paginate(matches, limit, offset)
}

// ListPublished returns publicly browsable campaigns (published, paused, or
// completed - drafts stay private to the club) newest-first.
func (s *InMemory) ListPublished(_ context.Context, limit, offset int) ([]*models.Campaign, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*models.Campaign
	for _, c := range s.byID {
		if c.Status == models.CampaignStatusDraft {
			continue
		}
		matches = append(matches, cloneCampaign(c))
	}
	return paginate(matches, limit, offset)
}

func paginate(matches []*models.Campaign, limit, offset int) ([]*models.Campaign, int, error) {
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
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
