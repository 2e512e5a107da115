// Package store provides membership persistence. Upsert keyed on
// (club, user) makes projection idempotent: replaying an approval updates
// the existing record instead of creating a second membership.
package store

import (
	"context"
	"sort"
	"sync"

	"clubhub/internal/membership/models"
	id "clubhub/pkg/domain"
	"clubhub/pkg/platform/sentinel"
)

type memberKey struct {
	club id.ClubID
	user id.UserID
}

type InMemory struct {
	mu   sync.RWMutex
	byID map[memberKey]*models.Membership
}

func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[memberKey]*models.Membership)}
}

// Upsert inserts the membership or, when the user already belongs to the
// club, updates role and source application in place. Returns the stored
// record.
func (s *InMemory) Upsert(_ context.Context, m *models.Membership) (*models.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memberKey{club: m.ClubID, user: m.UserID}
	if existing, ok := s.byID[key]; ok {
		updated := *existing
		updated.Role = m.Role
		updated.ApplicationID = m.ApplicationID
		s.byID[key] = &updated
		out := updated
		return &out, nil
	}
	stored := *m
	s.byID[key] = &stored
	out := stored
	return &out, nil
}

// Find returns the user's membership in the club.
func (s *InMemory) Find(_ context.Context, clubID id.ClubID, userID id.UserID) (*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.byID[memberKey{club: clubID, user: userID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := *m
	return &out, nil
}

// ListByClub returns the club's memberships ordered by join time.
func (s *InMemory) ListByClub(_ context.Context, clubID id.ClubID) ([]*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []*models.Membership
	for _, m := range s.byID {
		if m.ClubID != clubID {
			continue
		}
		out := *m
		list = append(list, &out)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].JoinedAt.Before(list[j].JoinedAt) })
	return list, nil
}
