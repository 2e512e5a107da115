package campaign

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"clubhub/internal/campaign/models"
	id "clubhub/pkg/domain"
	"clubhub/pkg/platform/sentinel"
	txcontext "clubhub/pkg/platform/tx"
)

// Postgres persists campaigns in PostgreSQL. Execute serializes
// validate-then-mutate on a SELECT ... FOR UPDATE row lock, mirroring the
// mutex the in-memory store holds.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Postgres) runner(ctx context.Context) queryer {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const campaignColumns = `id, club_id, title, description, requirements, questions,
	start_date, end_date, max_applications, status, created_by, created_at, updated_at`

func scanCampaign(row interface{ Scan(...any) error }) (*models.Campaign, error) {
	var (
		c            models.Campaign
		requirements []byte
		questions    []byte
	)
	err := row.Scan(&c.ID, &c.ClubID, &c.Title, &c.Description, &requirements, &questions,
		&c.StartDate, &c.EndDate, &c.MaxApplications, &c.Status, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan campaign: %w", err)
	}
	if len(requirements) > 0 {
		if err := json.Unmarshal(requirements, &c.Requirements); err != nil {
			return nil, fmt.Errorf("decode requirements: %w", err)
		}
	}
	if len(questions) > 0 {
		if err := json.Unmarshal(questions, &c.Questions); err != nil {
			return nil, fmt.Errorf("decode questions: %w", err)
		}
	}
	return &c, nil
}

func campaignArgs(c *models.Campaign) ([]any, error) {
	requirements, err := json.Marshal(c.Requirements)
	if err != nil {
		return nil, fmt.Errorf("encode requirements: %w", err)
	}
	questions, err := json.Marshal(c.Questions)
	if err != nil {
		return nil, fmt.Errorf("encode questions: %w", err)
	}
	return []any{
		c.ID.String(), c.ClubID.String(), c.Title, c.Description, requirements, questions,
		c.StartDate, c.EndDate, c.MaxApplications, c.Status.String(), c.CreatedBy.String(),
		c.CreatedAt, c.UpdatedAt,
	}, nil
}

func (s *Postgres) Create(ctx context.Context, c *models.Campaign) error {
	args, err := campaignArgs(c)
	if err != nil {
		return err
	}
	_, err = s.runner(ctx).ExecContext(ctx, `
		INSERT INTO campaigns (`+campaignColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert campaign: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, campaignID id.CampaignID) (*models.Campaign, error) {
	row := s.runner(ctx).QueryRowContext(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, campaignID.String())
	return scanCampaign(row)
}

// RunInTx runs fn in a single transaction. Store calls made with the context
// fn receives join that transaction through runner, so a multi-statement
// mutation commits or rolls back as one unit.
func (s *Postgres) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	if _, ok := txcontext.From(ctx); ok {
		return fn(ctx)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Execute locks the campaign row FOR UPDATE, runs validate then mutate, and
// persists the result in one transaction. Concurrent Executes on the same
// campaign serialize on the row lock. Inside RunInTx it joins the enclosing
// transaction and holds the lock until that transaction ends.
func (s *Postgres) Execute(ctx context.Context, campaignID id.CampaignID, validate func(*models.Campaign) error, mutate func(*models.Campaign)) (*models.Campaign, error) {
	var out *models.Campaign
	err := s.RunInTx(ctx, func(ctx context.Context) error {
		row := s.runner(ctx).QueryRowContext(ctx,
			`SELECT `+campaignColumns+` FROM campaigns WHERE id = $1 FOR UPDATE`, campaignID.String())
		c, err := scanCampaign(row)
		if err != nil {
			return err
		}

		if err := validate(c); err != nil {
			return err
		}
		mutate(c)

		if err := s.update(ctx, s.runner(ctx), c); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Postgres) update(ctx context.Context, run queryer, c *models.Campaign) error {
	args, err := campaignArgs(c)
	if err != nil {
		return err
	}
	res, err := run.ExecContext(ctx, `
		UPDATE campaigns SET
			club_id = $2, title = $3, description = $4, requirements = $5, questions = $6,
			start_date = $7, end_date = $8, max_applications = $9, status = $10,
			created_by = $11, created_at = $12, updated_at = $13
		WHERE id = $1
	`, args...)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// View reads the campaign without taking the row lock; the PostgreSQL
// application store serializes admission on its own FOR UPDATE of the
// campaign row instead of going through this method.
func (s *Postgres) View(ctx context.Context, campaignID id.CampaignID, fn func(*models.Campaign) error) error {
	c, err := s.FindByID(ctx, campaignID)
	if err != nil {
		return err
	}
	return fn(c)
}

func (s *Postgres) Delete(ctx context.Context, campaignID id.CampaignID) error {
	res, err := s.runner(ctx).ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, campaignID.String())
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) ListByClub(ctx context.Context, clubID id.ClubID, status models.CampaignStatus, limit, offset int) ([]*models.Campaign, int, error) {
	where := `WHERE club_id = $1`
	args := []any{clubID.String()}
	if status != "" {
		where += ` AND status = $2`
		args = append(args, status.String())
	}
	return s.list(ctx, where, args, limit, offset)
}

func (s *Postgres) ListPublished(ctx context.Context, limit, offset int) ([]*models.Campaign, int, error) {
	return s.list(ctx, `WHERE status <> $1`, []any{models.CampaignStatusDraft.String()}, limit, offset)
}

func (s *Postgres) list(ctx context.Context, where string, args []any, limit, offset int) ([]*models.Campaign, int, error) {
	run := s.runner(ctx)

	var total int
	if err := run.QueryRowContext(ctx, `SELECT COUNT(*) FROM campaigns `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count campaigns: %w", err)
	}

	query := `SELECT ` + campaignColumns + ` FROM campaigns ` + where + ` ORDER BY created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}
	if offset > 0 {
		query += fmt.Sprintf(` OFFSET %d`, offset)
	}

	rows, err := run.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var out []*models.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}
