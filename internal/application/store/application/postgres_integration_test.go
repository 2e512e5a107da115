//go:build integration

package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"clubhub/internal/application/admission"
	"clubhub/internal/application/models"
	campaignmodels "clubhub/internal/campaign/models"
	campaignstore "clubhub/internal/campaign/store/campaign"
	id "clubhub/pkg/domain"
	dErrors "clubhub/pkg/domain-errors"
	"clubhub/pkg/testutil/containers"
)

type PostgresApplicationSuite struct {
	suite.Suite
	pg        *containers.PostgresContainer
	campaigns *campaignstore.Postgres
	store     *Postgres
	ctx       context.Context
}

func (s *PostgresApplicationSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.campaigns = campaignstore.NewPostgres(s.pg.DB)
	s.store = NewPostgres(s.pg.DB)
	s.ctx = context.Background()
}

func (s *PostgresApplicationSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(s.ctx))
}

func TestPostgresApplicationSuite(t *testing.T) {
	suite.Run(t, new(PostgresApplicationSuite))
}

func (s *PostgresApplicationSuite) publishedCampaign(maxApplications int) *campaignmodels.Campaign {
	now := time.Now().UTC()
	c := &campaignmodels.Campaign{
		ID:              id.NewCampaignID(),
		ClubID:          id.NewClubID(),
		Title:           "Autumn Recruitment",
		Description:     "Join us for the autumn season.",
		StartDate:       now.Add(-time.Hour),
		EndDate:         now.Add(7 * 24 * time.Hour),
		MaxApplications: maxApplications,
		Status:          campaignmodels.CampaignStatusPublished,
		CreatedBy:       id.NewUserID(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.Require().NoError(s.campaigns.Create(s.ctx, c))
	return c
}

func (s *PostgresApplicationSuite) newApplication(c *campaignmodels.Campaign, userID id.UserID) *models.Application {
	app, err := models.NewApplication(id.NewApplicationID(), c.ID, c.ClubID, userID, "hello",
		map[string]models.Answer{"q1": {Text: "because"}}, time.Now().UTC())
	s.Require().NoError(err)
	return app
}

func (s *PostgresApplicationSuite) TestSubmitGates() {
	s.Run("accepts a submission and round-trips the row", func() {
		c := s.publishedCampaign(0)
		app := s.newApplication(c, id.NewUserID())
		s.Require().NoError(s.store.SubmitIfAdmissible(s.ctx, app))

		found, err := s.store.FindByID(s.ctx, app.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, found.Status)
		s.Equal("hello", found.Message)
		s.Equal("because", found.Answers["q1"].Text)
	})

	s.Run("rejects duplicate active application", func() {
		c := s.publishedCampaign(0)
		userID := id.NewUserID()
		s.Require().NoError(s.store.SubmitIfAdmissible(s.ctx, s.newApplication(c, userID)))

		err := s.store.SubmitIfAdmissible(s.ctx, s.newApplication(c, userID))
		s.Require().Error(err)
		s.Equal(admission.ReasonDuplicateApplication, dErrors.ReasonOf(err))
	})

	s.Run("allows re-application after withdrawal", func() {
		c := s.publishedCampaign(0)
		userID := id.NewUserID()
		first := s.newApplication(c, userID)
		s.Require().NoError(s.store.SubmitIfAdmissible(s.ctx, first))

		_, err := s.store.Execute(s.ctx, first.ID,
			func(a *models.Application) error { return a.CanWithdraw(userID) },
			func(a *models.Application) { a.ApplyWithdrawal(time.Now().UTC()) })
		s.Require().NoError(err)

		s.Require().NoError(s.store.SubmitIfAdmissible(s.ctx, s.newApplication(c, userID)))
	})

	s.Run("rejects submission past capacity", func() {
		c := s.publishedCampaign(1)
		s.Require().NoError(s.store.SubmitIfAdmissible(s.ctx, s.newApplication(c, id.NewUserID())))

		err := s.store.SubmitIfAdmissible(s.ctx, s.newApplication(c, id.NewUserID()))
		s.Require().Error(err)
		s.Equal(admission.ReasonCampaignFull, dErrors.ReasonOf(err))
	})

	s.Run("rejects submission past the deadline", func() {
		c := s.publishedCampaign(0)
		app := s.newApplication(c, id.NewUserID())
		app.SubmittedAt = c.EndDate.Add(time.Hour)

		err := s.store.SubmitIfAdmissible(s.ctx, app)
		s.Require().Error(err)
		s.Equal(admission.ReasonDeadlinePassed, dErrors.ReasonOf(err))
	})
}

// Twenty users race for three seats across real transactions; the row lock
// must let exactly three submissions land.
func (s *PostgresApplicationSuite) TestConcurrentSubmissionsRespectCapacity() {
	const seats = 3
	const contenders = 20

	c := s.publishedCampaign(seats)

	apps := make([]*models.Application, contenders)
	for i := range apps {
		apps[i] = s.newApplication(c, id.NewUserID())
	}

	var g errgroup.Group
	accepted := make(chan struct{}, contenders)
	for _, app := range apps {
		g.Go(func() error {
			err := s.store.SubmitIfAdmissible(s.ctx, app)
			if err == nil {
				accepted <- struct{}{}
				return nil
			}
			if dErrors.ReasonOf(err) == admission.ReasonCampaignFull {
				return nil
			}
			return err
		})
	}
	s.Require().NoError(g.Wait())
	close(accepted)
	s.Len(accepted, seats)

	stats, err := s.store.Stats(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(seats, stats.Pending)
}

func (s *PostgresApplicationSuite) TestReviewRoundTrip() {
	c := s.publishedCampaign(0)
	app := s.newApplication(c, id.NewUserID())
	s.Require().NoError(s.store.SubmitIfAdmissible(s.ctx, app))

	reviewer := id.NewUserID()
	_, err := s.store.Execute(s.ctx, app.ID,
		func(a *models.Application) error { return a.CanReview() },
		func(a *models.Application) { a.ApplyReservation(time.Now().UTC()) })
	s.Require().NoError(err)

	_, err = s.store.Execute(s.ctx, app.ID,
		func(a *models.Application) error { return a.CanCommitApproval() },
		func(a *models.Application) { a.ApplyApproval(reviewer, "organizer", "welcome", time.Now().UTC()) })
	s.Require().NoError(err)

	found, err := s.store.FindByID(s.ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, found.Status)
	s.Equal(reviewer, found.ReviewedBy)
	s.Require().NotNil(found.ReviewedAt)
	s.Equal("organizer", found.AssignedRole)
	s.Equal("welcome", found.ReviewNotes)

	// A decided application loses subsequent decision races.
	_, err = s.store.Execute(s.ctx, app.ID,
		func(a *models.Application) error { return a.CanReview() },
		func(a *models.Application) { a.ApplyReservation(time.Now().UTC()) })
	s.Require().Error(err)
	s.Equal("application_already_reviewed", dErrors.ReasonOf(err))
}

func (s *PostgresApplicationSuite) TestListingAndStats() {
	c := s.publishedCampaign(0)
	reviewer := id.NewUserID()

	pending := s.newApplication(c, id.NewUserID())
	s.Require().NoError(s.store.SubmitIfAdmissible(s.ctx, pending))

	approving := s.newApplication(c, id.NewUserID())
	s.Require().NoError(s.store.SubmitIfAdmissible(s.ctx, approving))
	_, err := s.store.Execute(s.ctx, approving.ID,
		func(a *models.Application) error { return a.CanReview() },
		func(a *models.Application) { a.ApplyReservation(time.Now().UTC()) })
	s.Require().NoError(err)

	rejected := s.newApplication(c, id.NewUserID())
	s.Require().NoError(s.store.SubmitIfAdmissible(s.ctx, rejected))
	_, err = s.store.Execute(s.ctx, rejected.ID,
		func(a *models.Application) error { return a.CanReview() },
		func(a *models.Application) { a.ApplyRejection(reviewer, "not a fit", "", time.Now().UTC()) })
	s.Require().NoError(err)

	// The pending filter folds in-flight approvals into pending.
	list, total, err := s.store.ListByCampaign(s.ctx, c.ID, models.StatusPending, 0, 0)
	s.Require().NoError(err)
	s.Equal(2, total)
	s.Len(list, 2)

	stats, err := s.store.Stats(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(campaignmodels.Statistics{Total: 3, Pending: 2, Rejected: 1}, stats)

	mine, err := s.store.ListByUser(s.ctx, pending.UserID, "")
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal(pending.ID, mine[0].ID)
}
