//go:build integration

package containers

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

const schema = `
CREATE TABLE campaigns (
	id UUID PRIMARY KEY,
	club_id UUID NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	requirements JSONB,
	questions JSONB,
	start_date TIMESTAMPTZ NOT NULL,
	end_date TIMESTAMPTZ NOT NULL,
	max_applications INT NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	created_by UUID NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX campaigns_club_status_idx ON campaigns (club_id, status);

CREATE TABLE applications (
	id UUID PRIMARY KEY,
	campaign_id UUID NOT NULL REFERENCES campaigns (id) ON DELETE CASCADE,
	club_id UUID NOT NULL,
	user_id UUID NOT NULL,
	status TEXT NOT NULL,
	message TEXT NOT NULL DEFAULT '',
	answers JSONB,
	submitted_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	reviewed_by UUID,
	reviewed_at TIMESTAMPTZ,
	review_notes TEXT,
	rejection_reason TEXT,
	assigned_role TEXT
);
-- One active application per applicant per campaign. Backstops the
-- duplicate gate against races the campaign row lock does not cover.
CREATE UNIQUE INDEX applications_active_applicant_idx
	ON applications (campaign_id, user_id)
	WHERE status IN ('pending', 'approving', 'approved');
CREATE INDEX applications_campaign_status_idx ON applications (campaign_id, status);
CREATE INDEX applications_user_idx ON applications (user_id);

CREATE TABLE memberships (
	id UUID PRIMARY KEY,
	club_id UUID NOT NULL,
	user_id UUID NOT NULL,
	role TEXT NOT NULL,
	application_id UUID,
	joined_at TIMESTAMPTZ NOT NULL,
	UNIQUE (club_id, user_id)
);
`

// PostgresContainer wraps a testcontainers Postgres instance with the
// clubhub schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	URL       string
	DB        *sql.DB
}

// NewPostgresContainer starts a Postgres container and applies the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("clubhub_test"),
		tcpostgres.WithUsername("clubhub"),
		tcpostgres.WithPassword("clubhub"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", url)
	if err != nil {
		t.Fatalf("failed to open postgres connection: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("failed to ping postgres: %v", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	return &PostgresContainer{Container: container, URL: url, DB: db}
}

// Truncate empties all tables. Use between tests to ensure isolation.
func (p *PostgresContainer) Truncate(ctx context.Context) error {
	_, err := p.DB.ExecContext(ctx, `TRUNCATE campaigns, applications, memberships`)
	return err
}
