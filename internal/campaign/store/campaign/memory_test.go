package campaign

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"clubhub/internal/campaign/models"
	id "clubhub/pkg/domain"
	dErrors "clubhub/pkg/domain-errors"
	"clubhub/pkg/platform/sentinel"
)

type CampaignStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *CampaignStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestCampaignStoreSuite(t *testing.T) {
	suite.Run(t, new(CampaignStoreSuite))
}

func (s *CampaignStoreSuite) newCampaign(clubID id.ClubID, status models.CampaignStatus) *models.Campaign {
	now := time.Now()
	return &models.Campaign{
		ID:          id.NewCampaignID(),
		ClubID:      clubID,
		Title:       "Test Campaign",
		Description: "desc",
		StartDate:   now,
		EndDate:     now.Add(7 * 24 * time.Hour),
		Status:      status,
		CreatedBy:   id.NewUserID(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (s *CampaignStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds campaign by ID", func() {
		c := s.newCampaign(id.NewClubID(), models.CampaignStatusDraft)
		s.Require().NoError(s.store.Create(s.ctx, c))

		found, err := s.store.FindByID(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Equal(c.Title, found.Title)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, id.NewCampaignID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("rejects duplicate ID", func() {
		c := s.newCampaign(id.NewClubID(), models.CampaignStatusDraft)
		s.Require().NoError(s.store.Create(s.ctx, c))
		s.Require().ErrorIs(s.store.Create(s.ctx, c), sentinel.ErrConflict)
	})

	s.Run("FindByID returns a copy", func() {
		c := s.newCampaign(id.NewClubID(), models.CampaignStatusDraft)
		s.Require().NoError(s.store.Create(s.ctx, c))

		found, err := s.store.FindByID(s.ctx, c.ID)
		s.Require().NoError(err)
		found.Title = "mutated"

		again, err := s.store.FindByID(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Equal("Test Campaign", again.Title)
	})
}

func (s *CampaignStoreSuite) TestExecute() {
	s.Run("applies mutate when validate passes", func() {
		c := s.newCampaign(id.NewClubID(), models.CampaignStatusDraft)
		s.Require().NoError(s.store.Create(s.ctx, c))

		updated, err := s.store.Execute(s.ctx, c.ID,
			func(c *models.Campaign) error { return c.CanTransition(models.ActionPublish) },
			func(c *models.Campaign) { c.ApplyTransition(models.ActionPublish, time.Now()) },
		)
		s.Require().NoError(err)
		s.Equal(models.CampaignStatusPublished, updated.Status)
	})

	s.Run("leaves campaign untouched when validate fails", func() {
		c := s.newCampaign(id.NewClubID(), models.CampaignStatusCompleted)
		s.Require().NoError(s.store.Create(s.ctx, c))

		_, err := s.store.Execute(s.ctx, c.ID,
			func(c *models.Campaign) error { return c.CanTransition(models.ActionPublish) },
			func(c *models.Campaign) { c.ApplyTransition(models.ActionPublish, time.Now()) },
		)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))

		found, err := s.store.FindByID(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Equal(models.CampaignStatusCompleted, found.Status)
	})

	s.Run("returns ErrNotFound for unknown campaign", func() {
		_, err := s.store.Execute(s.ctx, id.NewCampaignID(),
			func(*models.Campaign) error { return nil },
			func(*models.Campaign) {},
		)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *CampaignStoreSuite) TestListing() {
	clubID := id.NewClubID()

	drafts := s.newCampaign(clubID, models.CampaignStatusDraft)
	published := s.newCampaign(clubID, models.CampaignStatusPublished)
	otherClub := s.newCampaign(id.NewClubID(), models.CampaignStatusPublished)
	s.Require().NoError(s.store.Create(s.ctx, drafts))
	s.Require().NoError(s.store.Create(s.ctx, published))
	s.Require().NoError(s.store.Create(s.ctx, otherClub))

	s.Run("filters by club", func() {
		list, total, err := s.store.ListByClub(s.ctx, clubID, "", 0, 0)
		s.Require().NoError(err)
		s.Equal(2, total)
		s.Len(list, 2)
	})

	s.Run("filters by status", func() {
		list, total, err := s.store.ListByClub(s.ctx, clubID, models.CampaignStatusPublished, 0, 0)
		s.Require().NoError(err)
		s.Equal(1, total)
		s.Require().Len(list, 1)
		s.Equal(published.ID, list[0].ID)
	})

	s.Run("public listing excludes drafts", func() {
		list, total, err := s.store.ListPublished(s.ctx, 0, 0)
		s.Require().NoError(err)
		s.Equal(2, total)
		for _, c := range list {
			s.NotEqual(models.CampaignStatusDraft, c.Status)
		}
	})

	s.Run("paginates with total count", func() {
		list, total, err := s.store.ListByClub(s.ctx, clubID, "", 1, 0)
		s.Require().NoError(err)
		s.Equal(2, total)
		s.Len(list, 1)

		rest, _, err := s.store.ListByClub(s.ctx, clubID, "", 1, 1)
		s.Require().NoError(err)
		s.Len(rest, 1)
		s.NotEqual(list[0].ID, rest[0].ID)
	})
}

func (s *CampaignStoreSuite) TestDelete() {
	c := s.newCampaign(id.NewClubID(), models.CampaignStatusDraft)
	s.Require().NoError(s.store.Create(s.ctx, c))
	s.Require().NoError(s.store.Delete(s.ctx, c.ID))
	s.Require().ErrorIs(s.store.Delete(s.ctx, c.ID), sentinel.ErrNotFound)
}
