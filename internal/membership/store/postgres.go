package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"clubhub/internal/membership/models"
	id "clubhub/pkg/domain"
	"clubhub/pkg/platform/sentinel"
)

const membershipColumns = `id, club_id, user_id, role, application_id, joined_at`

// Postgres persists memberships with a unique constraint on
// (club_id, user_id); Upsert rides ON CONFLICT to stay idempotent.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func scanMembership(row interface{ Scan(...any) error }) (*models.Membership, error) {
	var (
		m     models.Membership
		appID sql.NullString
	)
	err := row.Scan(&m.ID, &m.ClubID, &m.UserID, &m.Role, &appID, &m.JoinedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan membership: %w", err)
	}
	if appID.Valid {
		aid, err := id.ParseApplicationID(appID.String)
		if err != nil {
			return nil, fmt.Errorf("decode application_id: %w", err)
		}
		m.ApplicationID = aid
	}
	return &m, nil
}

func (s *Postgres) Upsert(ctx context.Context, m *models.Membership) (*models.Membership, error) {
	var appID any
	if !m.ApplicationID.IsNil() {
		appID = m.ApplicationID.String()
	}
	row := s.db.QueryRowContext(ctx, `INSERT INTO memberships (`+membershipColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (club_id, user_id) DO UPDATE
			SET role = EXCLUDED.role, application_id = EXCLUDED.application_id
		RETURNING `+membershipColumns,
		m.ID, m.ClubID, m.UserID, m.Role, appID, m.JoinedAt)
	return scanMembership(row)
}

func (s *Postgres) Find(ctx context.Context, clubID id.ClubID, userID id.UserID) (*models.Membership, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE club_id = $1 AND user_id = $2`,
		clubID, userID)
	return scanMembership(row)
}

func (s *Postgres) ListByClub(ctx context.Context, clubID id.ClubID) ([]*models.Membership, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE club_id = $1 ORDER BY joined_at`, clubID)
	if err != nil {
		return nil, fmt.Errorf("query memberships: %w", err)
	}
	defer rows.Close()

	var list []*models.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
