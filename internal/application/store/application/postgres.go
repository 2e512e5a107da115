package application

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"clubhub/internal/application/admission"
	"clubhub/internal/application/models"
	campaignmodels "clubhub/internal/campaign/models"
	id "clubhub/pkg/domain"
	"clubhub/pkg/platform/sentinel"
	txcontext "clubhub/pkg/platform/tx"
)

const applicationColumns = `id, campaign_id, club_id, user_id, status, message, answers,
	submitted_at, updated_at, reviewed_by, reviewed_at, review_notes, rejection_reason, assigned_role`

// Postgres persists applications in the applications table. A partial
// unique index on (campaign_id, user_id) over active statuses backstops the
// duplicate gate against races the row lock does not cover.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type runner interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Postgres) runner(ctx context.Context) runner {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func scanApplication(row interface{ Scan(...any) error }) (*models.Application, error) {
	var (
		a           models.Application
		answers     []byte
		reviewedBy  sql.NullString
		reviewedAt  sql.NullTime
		notes       sql.NullString
		rejection   sql.NullString
		assignedRol sql.NullString
	)
	err := row.Scan(&a.ID, &a.CampaignID, &a.ClubID, &a.UserID, &a.Status, &a.Message, &answers,
		&a.SubmittedAt, &a.UpdatedAt, &reviewedBy, &reviewedAt, &notes, &rejection, &assignedRol)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan application: %w", err)
	}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &a.Answers); err != nil {
			return nil, fmt.Errorf("decode answers: %w", err)
		}
	}
	if reviewedBy.Valid {
		uid, err := id.ParseUserID(reviewedBy.String)
		if err != nil {
			return nil, fmt.Errorf("decode reviewed_by: %w", err)
		}
		a.ReviewedBy = uid
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		a.ReviewedAt = &t
	}
	a.ReviewNotes = notes.String
	a.RejectionReason = rejection.String
	a.AssignedRole = assignedRol.String
	return &a, nil
}

func applicationArgs(a *models.Application) ([]any, error) {
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}
	var reviewedBy any
	if !a.ReviewedBy.IsNil() {
		reviewedBy = a.ReviewedBy.String()
	}
	var reviewedAt any
	if a.ReviewedAt != nil {
		reviewedAt = *a.ReviewedAt
	}
	return []any{a.ID, a.CampaignID, a.ClubID, a.UserID, a.Status, a.Message, answers,
		a.SubmittedAt, a.UpdatedAt, reviewedBy, reviewedAt, a.ReviewNotes, a.RejectionReason, a.AssignedRole}, nil
}

// SubmitIfAdmissible locks the campaign row, counts active applications,
// checks for a live duplicate, runs the admission gates, and inserts, all in
// one transaction. Two racing submissions for the last seat serialize on the
// row lock and exactly one passes the capacity gate.
func (s *Postgres) SubmitIfAdmissible(ctx context.Context, app *models.Application) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var (
		status  campaignmodels.CampaignStatus
		endDate time.Time
		maxApps int
	)
	err = tx.QueryRowContext(ctx,
		`SELECT status, end_date, max_applications FROM campaigns WHERE id = $1 FOR UPDATE`,
		app.CampaignID).Scan(&status, &endDate, &maxApps)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("lock campaign: %w", err)
	}

	var active int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM applications WHERE campaign_id = $1 AND status IN ('pending', 'approving', 'approved')`,
		app.CampaignID).Scan(&active)
	if err != nil {
		return fmt.Errorf("count active applications: %w", err)
	}

	var duplicate bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM applications
			WHERE campaign_id = $1 AND user_id = $2 AND status IN ('pending', 'approving', 'approved'))`,
		app.CampaignID, app.UserID).Scan(&duplicate)
	if err != nil {
		return fmt.Errorf("check duplicate application: %w", err)
	}

	gate := &campaignmodels.Campaign{Status: status, EndDate: endDate, MaxApplications: maxApps}
	if err := admission.Check(gate, app.SubmittedAt, active, duplicate); err != nil {
		return err
	}

	args, err := applicationArgs(app)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO applications (`+applicationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return admission.Duplicate()
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return tx.Commit()
}

func (s *Postgres) FindByID(ctx context.Context, appID id.ApplicationID) (*models.Application, error) {
	row := s.runner(ctx).QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, appID)
	return scanApplication(row)
}

// Execute locks the application row, runs validate then mutate, and writes
// the result back in the same transaction.
func (s *Postgres) Execute(ctx context.Context, appID id.ApplicationID, validate func(*models.Application) error, mutate func(*models.Application)) (*models.Application, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	row := tx.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1 FOR UPDATE`, appID)
	a, err := scanApplication(row)
	if err != nil {
		return nil, err
	}

	if err := validate(a); err != nil {
		return nil, err
	}
	mutate(a)

	args, err := applicationArgs(a)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx, `UPDATE applications SET
		status = $5, message = $6, answers = $7, submitted_at = $8, updated_at = $9,
		reviewed_by = $10, reviewed_at = $11, review_notes = $12, rejection_reason = $13, assigned_role = $14
		WHERE id = $1`, args...)
	if err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return a, nil
}

func (s *Postgres) ListByCampaign(ctx context.Context, campaignID id.CampaignID, status models.ApplicationStatus, limit, offset int) ([]*models.Application, int, error) {
	where := `campaign_id = $1`
	args := []any{campaignID}
	if status != "" {
		args = append(args, statusMatches(status))
		where += fmt.Sprintf(` AND status = ANY($%d)`, len(args))
	}

	var total int
	err := s.runner(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM applications WHERE `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	query := `SELECT ` + applicationColumns + ` FROM applications WHERE ` + where +
		` ORDER BY submitted_at DESC`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	list, err := s.queryApplications(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (s *Postgres) ListByUser(ctx context.Context, userID id.UserID, status models.ApplicationStatus) ([]*models.Application, error) {
	where := `user_id = $1`
	args := []any{userID}
	if status != "" {
		args = append(args, statusMatches(status))
		where += fmt.Sprintf(` AND status = ANY($%d)`, len(args))
	}
	return s.queryApplications(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE `+where+` ORDER BY submitted_at DESC`, args...)
}

// Stats derives the campaign tally with one grouped scan.
func (s *Postgres) Stats(ctx context.Context, campaignID id.CampaignID) (campaignmodels.Statistics, error) {
	rows, err := s.runner(ctx).QueryContext(ctx,
		`SELECT status, COUNT(*) FROM applications WHERE campaign_id = $1 GROUP BY status`, campaignID)
	if err != nil {
		return campaignmodels.Statistics{}, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var stats campaignmodels.Statistics
	for rows.Next() {
		var (
			status models.ApplicationStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return campaignmodels.Statistics{}, fmt.Errorf("scan stats: %w", err)
		}
		stats.Total += n
		switch status.External() {
		case models.StatusPending:
			stats.Pending += n
		case models.StatusApproved:
			stats.Approved += n
		case models.StatusRejected:
			stats.Rejected += n
		}
	}
	return stats, rows.Err()
}

func (s *Postgres) queryApplications(ctx context.Context, query string, args ...any) ([]*models.Application, error) {
	rows, err := s.runner(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close()

	var list []*models.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// statusMatches maps an externally visible status filter onto the stored
// statuses it covers. A pending filter also matches in-flight approvals.
func statusMatches(status models.ApplicationStatus) pq.StringArray {
	if status == models.StatusPending {
		return pq.StringArray{string(models.StatusPending), string(models.StatusApproving)}
	}
	return pq.StringArray{string(status)}
}
