package migration

import (
	"context"

	"gocompare/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the observation schema read by the SQL sample source
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in order. Every statement is idempotent.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createObservationsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create experiment_observations table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

// Statements returns the DDL in execution order
func (r *MigrationRunner) Statements() []string {
	return []string{createObservationsSQL, createIndexesSQL}
}

const createObservationsSQL = `
	CREATE TABLE IF NOT EXISTS experiment_observations (
		id BIGSERIAL PRIMARY KEY,
		experiment VARCHAR(100) NOT NULL DEFAULT 'default',
		group_name VARCHAR(100) NOT NULL,
		observed_on DATE,
		impression DOUBLE PRECISION,
		click DOUBLE PRECISION,
		page_view DOUBLE PRECISION,
		purchase DOUBLE PRECISION,
		earning DOUBLE PRECISION,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)
`

const createIndexesSQL = `
	CREATE INDEX IF NOT EXISTS idx_experiment_observations_group
		ON experiment_observations(experiment, group_name)
`

func (r *MigrationRunner) createObservationsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, createObservationsSQL)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, createIndexesSQL)
	return err
}
