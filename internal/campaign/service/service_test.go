package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"clubhub/internal/campaign/models"
	campaignstore "clubhub/internal/campaign/store/campaign"
	"clubhub/internal/notify"
	notifystore "clubhub/internal/notify/store"
	id "clubhub/pkg/domain"
	dErrors "clubhub/pkg/domain-errors"
	"clubhub/pkg/requestcontext"
)

// stubStats returns fixed statistics; tests flip Total to exercise the
// frozen-content and delete rules.
type stubStats struct {
	stats models.Statistics
}

func (s *stubStats) Stats(context.Context, id.CampaignID) (models.Statistics, error) {
	return s.stats, nil
}

// allowList authorizes specific (club, user) pairs.
type allowList struct {
	managers map[id.ClubID][]id.UserID
}

func (a *allowList) allow(clubID id.ClubID, userID id.UserID) {
	if a.managers == nil {
		a.managers = make(map[id.ClubID][]id.UserID)
	}
	a.managers[clubID] = append(a.managers[clubID], userID)
}

func (a *allowList) CanManage(_ context.Context, clubID id.ClubID, actor id.UserID) bool {
	for _, u := range a.managers[clubID] {
		if u == actor {
			return true
		}
	}
	return false
}

type CampaignServiceSuite struct {
	suite.Suite
	store   *campaignstore.InMemory
	stats   *stubStats
	authz   *allowList
	events  *notifystore.InMemory
	svc     *Service
	clubID  id.ClubID
	manager id.UserID
}

func (s *CampaignServiceSuite) SetupTest() {
	s.store = campaignstore.NewInMemory()
	s.stats = &stubStats{}
	s.authz = &allowList{}
	s.events = notifystore.NewInMemory()
	s.svc = New(s.store, s.stats, s.authz,
		WithEventPublisher(notify.NewPublisher([]notify.Sink{s.events})))
	s.clubID = id.NewClubID()
	s.manager = id.NewUserID()
	s.authz.allow(s.clubID, s.manager)
}

func TestCampaignServiceSuite(t *testing.T) {
	suite.Run(t, new(CampaignServiceSuite))
}

func (s *CampaignServiceSuite) asManager() context.Context {
	return requestcontext.WithUserID(context.Background(), s.manager)
}

func (s *CampaignServiceSuite) asUser(userID id.UserID) context.Context {
	return requestcontext.WithUserID(context.Background(), userID)
}

func (s *CampaignServiceSuite) validInput() CreateCampaignInput {
	now := time.Now()
	return CreateCampaignInput{
		Title:       "Autumn Recruitment",
		Description: "Join us this autumn",
		StartDate:   now,
		EndDate:     now.Add(14 * 24 * time.Hour),
		Questions: []models.ApplicationQuestion{
			{Prompt: "Why do you want to join?", Type: models.QuestionTypeTextarea, Required: true},
		},
	}
}

func (s *CampaignServiceSuite) create() *models.Campaign {
	c, err := s.svc.Create(s.asManager(), s.clubID, s.validInput())
	s.Require().NoError(err)
	return c
}

func (s *CampaignServiceSuite) TestCreate() {
	s.Run("creates draft campaign with generated question IDs", func() {
		c := s.create()
		s.Equal(models.CampaignStatusDraft, c.Status)
		s.Require().Len(c.Questions, 1)
		s.NotEmpty(c.Questions[0].ID)
		s.Len(s.events.OfType(notify.EventCampaignCreated), 1)
	})

	s.Run("rejects anonymous creation", func() {
		_, err := s.svc.Create(context.Background(), s.clubID, s.validInput())
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("rejects non-manager creation", func() {
		_, err := s.svc.Create(s.asUser(id.NewUserID()), s.clubID, s.validInput())
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("rejects invalid content", func() {
		input := s.validInput()
		input.Title = ""
		_, err := s.svc.Create(s.asManager(), s.clubID, input)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *CampaignServiceSuite) TestGetVisibility() {
	c := s.create()

	s.Run("manager sees draft", func() {
		got, err := s.svc.Get(s.asManager(), c.ID)
		s.Require().NoError(err)
		s.Equal(c.ID, got.ID)
	})

	s.Run("non-manager gets not found for draft", func() {
		_, err := s.svc.Get(s.asUser(id.NewUserID()), c.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("anyone sees published campaign with statistics", func() {
		_, err := s.svc.ChangeStatus(s.asManager(), c.ID, models.ActionPublish)
		s.Require().NoError(err)

		s.stats.stats = models.Statistics{Total: 3, Pending: 2, Rejected: 1}
		got, err := s.svc.Get(s.asUser(id.NewUserID()), c.ID)
		s.Require().NoError(err)
		s.Equal(3, got.Statistics.Total)
	})
}

func (s *CampaignServiceSuite) TestStatusTransitions() {
	s.Run("publish pause resume complete", func() {
		c := s.create()
		for _, action := range []models.StatusAction{
			models.ActionPublish, models.ActionPause, models.ActionResume, models.ActionComplete,
		} {
			updated, err := s.svc.ChangeStatus(s.asManager(), c.ID, action)
			s.Require().NoError(err, "action %s", action)
			s.Equal(action.Target(), updated.Status)
		}
		s.Len(s.events.OfType(notify.EventCampaignPublished), 1)
		s.Len(s.events.OfType(notify.EventCampaignStatusChanged), 3)
	})

	s.Run("rejects invalid transition", func() {
		c := s.create()
		_, err := s.svc.ChangeStatus(s.asManager(), c.ID, models.ActionPause)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("completed is terminal", func() {
		c := s.create()
		_, err := s.svc.ChangeStatus(s.asManager(), c.ID, models.ActionPublish)
		s.Require().NoError(err)
		_, err = s.svc.ChangeStatus(s.asManager(), c.ID, models.ActionComplete)
		s.Require().NoError(err)

		_, err = s.svc.ChangeStatus(s.asManager(), c.ID, models.ActionPublish)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("non-manager cannot transition", func() {
		c := s.create()
		_, err := s.svc.ChangeStatus(s.asUser(id.NewUserID()), c.ID, models.ActionPublish)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *CampaignServiceSuite) TestUpdate() {
	s.Run("edits content while no applications exist", func() {
		c := s.create()
		title := "Winter Recruitment"
		max := 25
		updated, err := s.svc.Update(s.asManager(), c.ID, models.CampaignUpdate{
			Title:           &title,
			MaxApplications: &max,
		})
		s.Require().NoError(err)
		s.Equal("Winter Recruitment", updated.Title)
		s.Equal(25, updated.MaxApplications)
	})

	s.Run("freezes questions and capacity once applications exist", func() {
		c := s.create()
		s.stats.stats = models.Statistics{Total: 1, Pending: 1}
		defer func() { s.stats.stats = models.Statistics{} }()

		max := 5
		_, err := s.svc.Update(s.asManager(), c.ID, models.CampaignUpdate{MaxApplications: &max})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))

		// Unfrozen fields still editable.
		title := "Still Editable"
		updated, err := s.svc.Update(s.asManager(), c.ID, models.CampaignUpdate{Title: &title})
		s.Require().NoError(err)
		s.Equal("Still Editable", updated.Title)
	})

	s.Run("rejects edit of completed campaign", func() {
		c := s.create()
		_, err := s.svc.ChangeStatus(s.asManager(), c.ID, models.ActionPublish)
		s.Require().NoError(err)
		_, err = s.svc.ChangeStatus(s.asManager(), c.ID, models.ActionComplete)
		s.Require().NoError(err)

		title := "Too Late"
		_, err = s.svc.Update(s.asManager(), c.ID, models.CampaignUpdate{Title: &title})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *CampaignServiceSuite) TestDelete() {
	s.Run("deletes campaign without applications", func() {
		c := s.create()
		s.Require().NoError(s.svc.Delete(s.asManager(), c.ID))

		_, err := s.svc.Get(s.asManager(), c.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Len(s.events.OfType(notify.EventCampaignDeleted), 1)
	})

	s.Run("blocks deletion once applications exist", func() {
		c := s.create()
		s.stats.stats = models.Statistics{Total: 2}
		defer func() { s.stats.stats = models.Statistics{} }()

		err := s.svc.Delete(s.asManager(), c.ID)
		s.Require().Error(err)
		s.Equal("campaign_has_applications", dErrors.ReasonOf(err))
	})
}

func (s *CampaignServiceSuite) TestListVisibility() {
	draft := s.create()
	published := s.create()
	_, err := s.svc.ChangeStatus(s.asManager(), published.ID, models.ActionPublish)
	s.Require().NoError(err)

	s.Run("manager sees drafts in club list", func() {
		list, total, err := s.svc.ListByClub(s.asManager(), s.clubID, "", 0, 0)
		s.Require().NoError(err)
		s.Equal(2, total)
		s.Len(list, 2)
	})

	s.Run("non-manager does not see drafts", func() {
		list, total, err := s.svc.ListByClub(s.asUser(id.NewUserID()), s.clubID, "", 0, 0)
		s.Require().NoError(err)
		s.Equal(1, total)
		s.Require().Len(list, 1)
		s.NotEqual(draft.ID, list[0].ID)
	})

	s.Run("published discovery list excludes drafts", func() {
		list, total, err := s.svc.ListPublished(context.Background(), 0, 0)
		s.Require().NoError(err)
		s.Equal(1, total)
		s.Len(list, 1)
	})
}
