package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"testing"

	"gocompare/domain/core"
	"gocompare/domain/dataset"
	apperrors "gocompare/internal/errors"
	"gocompare/internal/migration"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFrameQuery(t *testing.T) {
	q := SampleQuery{Table: "public.experiment_observations", GroupColumn: "group_name", Group: "control"}

	query, args := buildFrameQuery(q, []string{"Page view", "Purchase"})
	assert.Equal(t, `SELECT "page_view"::double precision, "purchase"::double precision FROM "public"."experiment_observations" WHERE "group_name" = $1`, query)
	assert.Equal(t, []interface{}{"control"}, args)

	q.Experiment = "homepage"
	query, args = buildFrameQuery(q, []string{"Click"})
	assert.Contains(t, query, "AND experiment = $2")
	assert.Equal(t, []interface{}{"control", "homepage"}, args)
}

func TestBuildFrameQuery_QuotesHostileNames(t *testing.T) {
	q := SampleQuery{Table: "obs", GroupColumn: "g", Group: "x"}
	query, _ := buildFrameQuery(q, []string{`a"; DROP TABLE obs; --`})
	assert.Contains(t, query, `"a"";_drop_table_obs;_--"`)
}

func TestBuildInsert(t *testing.T) {
	query, indexes, skipped := buildInsert([]string{"Date", "Page view", "Purchase", "Bounce"})
	assert.Equal(t, `INSERT INTO experiment_observations (experiment, group_name, "page_view", "purchase") VALUES ($1, $2, $3, $4)`, query)
	assert.Equal(t, []int{1, 2}, indexes)
	assert.Equal(t, []string{"Date", "Bounce"}, skipped)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "page_view", SnakeCase("  Page   View "))
	assert.Equal(t, "experiment_observations", tableName("public.experiment_observations"))
	assert.True(t, math.IsNaN(nullToNaN(sql.NullFloat64{})))
	assert.Equal(t, 2.5, nullToNaN(sql.NullFloat64{Float64: 2.5, Valid: true}))
	assert.Nil(t, nanToNull(math.NaN()))
	assert.Equal(t, 1.0, nanToNull(1.0))
}

func TestNewSampleReader_RequiresQuery(t *testing.T) {
	_, err := NewSampleReader(nil, SampleQuery{Table: "obs"})
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestMapQueryError(t *testing.T) {
	undefined := &pq.Error{Code: "42703", Message: `column "bounce" does not exist`}
	err := mapQueryError(fmt.Errorf("select: %w", undefined), []string{"Bounce"})
	assert.ErrorIs(t, err, core.ErrColumnNotFound)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))
	assert.Contains(t, err.Error(), "requested Bounce")

	refused := errors.New("dial tcp: connection refused")
	err = mapQueryError(refused, []string{"Click"})
	assert.Equal(t, apperrors.CodeDatabaseError, apperrors.GetCode(err))
	assert.ErrorIs(t, err, refused)

	err = mapQueryError(context.Canceled, []string{"Click"})
	assert.Same(t, context.Canceled, err)
}

func TestSampleReader_GroupLabel(t *testing.T) {
	reader, err := NewSampleReader(nil, SampleQuery{Table: "obs", GroupColumn: "group_name", Group: "holdout"})
	require.NoError(t, err)
	assert.Equal(t, `group "holdout" in obs`, reader.groupLabel())

	reader.query.Experiment = "homepage"
	assert.Equal(t, `group "holdout" in obs for experiment "homepage"`, reader.groupLabel())
}

// TestSampleReader_RoundTrip needs a disposable database in TEST_DATABASE_URL
func TestSampleReader_RoundTrip(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	db, err := sqlx.Connect("postgres", url)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, migration.NewRunner().Run(ctx, db))

	experiment := "roundtrip-" + t.Name()
	_, err = db.ExecContext(ctx, "DELETE FROM experiment_observations WHERE experiment = $1", experiment)
	require.NoError(t, err)

	frame := dataset.NewFrame("fixture", []string{"Click", "Purchase"})
	require.NoError(t, frame.Append([]float64{100, 10}))
	require.NoError(t, frame.Append([]float64{120, math.NaN()}))

	n, err := NewObservationWriter(db).Insert(ctx, experiment, "control", frame)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	reader, err := NewSampleReader(db, SampleQuery{
		Table: "experiment_observations", GroupColumn: "group_name", Group: "control", Experiment: experiment,
	})
	require.NoError(t, err)

	purchases, err := reader.LoadColumn(ctx, "Purchase")
	require.NoError(t, err)
	assert.Equal(t, []float64{10}, purchases)

	_, err = reader.LoadColumn(ctx, "Bounce")
	assert.ErrorIs(t, err, core.ErrColumnNotFound)

	missing, err := NewSampleReader(db, SampleQuery{
		Table: "experiment_observations", GroupColumn: "group_name", Group: "holdout", Experiment: experiment,
	})
	require.NoError(t, err)
	_, err = missing.LoadColumn(ctx, "Purchase")
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))

	cols, err := reader.Columns(ctx)
	require.NoError(t, err)
	assert.Contains(t, cols, "page_view")
}
