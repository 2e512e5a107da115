//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"clubhub/internal/membership/models"
	id "clubhub/pkg/domain"
	"clubhub/pkg/platform/sentinel"
	"clubhub/pkg/testutil/containers"
)

type PostgresMembershipSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *Postgres
	ctx   context.Context
}

func (s *PostgresMembershipSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgres(s.pg.DB)
	s.ctx = context.Background()
}

func (s *PostgresMembershipSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(s.ctx))
}

func TestPostgresMembershipSuite(t *testing.T) {
	suite.Run(t, new(PostgresMembershipSuite))
}

// Replaying a projection must update the existing row, never add a second
// membership for the same (club, user) pair.
func (s *PostgresMembershipSuite) TestUpsertIsIdempotent() {
	clubID := id.NewClubID()
	userID := id.NewUserID()
	appID := id.NewApplicationID()

	first, err := s.store.Upsert(s.ctx,
		models.NewMembership(clubID, userID, models.RoleMember, appID, time.Now().UTC()))
	s.Require().NoError(err)

	second, err := s.store.Upsert(s.ctx,
		models.NewMembership(clubID, userID, models.RoleOrganizer, appID, time.Now().UTC()))
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	s.Equal(models.RoleOrganizer, second.Role)

	members, err := s.store.ListByClub(s.ctx, clubID)
	s.Require().NoError(err)
	s.Len(members, 1)
}

func (s *PostgresMembershipSuite) TestFindAndList() {
	clubID := id.NewClubID()
	manager := id.NewUserID()
	member := id.NewUserID()

	_, err := s.store.Upsert(s.ctx,
		models.NewMembership(clubID, manager, models.RoleClubManager, id.ApplicationID{}, time.Now().UTC().Add(-time.Hour)))
	s.Require().NoError(err)
	_, err = s.store.Upsert(s.ctx,
		models.NewMembership(clubID, member, models.RoleMember, id.NewApplicationID(), time.Now().UTC()))
	s.Require().NoError(err)

	found, err := s.store.Find(s.ctx, clubID, manager)
	s.Require().NoError(err)
	s.Equal(models.RoleClubManager, found.Role)

	_, err = s.store.Find(s.ctx, clubID, id.NewUserID())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	members, err := s.store.ListByClub(s.ctx, clubID)
	s.Require().NoError(err)
	s.Require().Len(members, 2)
	s.Equal(manager, members[0].UserID)
}
