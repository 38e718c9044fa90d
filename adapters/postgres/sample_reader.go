package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"gocompare/domain/core"
	"gocompare/domain/dataset"
	"gocompare/internal"
	apperrors "gocompare/internal/errors"
	"gocompare/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// SampleQuery selects the rows of one experiment group
type SampleQuery struct {
	Table       string `json:"table"`
	GroupColumn string `json:"group_column"`
	Group       string `json:"group"`
	Experiment  string `json:"experiment,omitempty"`
}

// SampleReader implements ports.SampleSource over a PostgreSQL table.
// Column names are matched in snake case, so "Page view" reads page_view.
type SampleReader struct {
	db     *sqlx.DB
	query  SampleQuery
	logger *internal.Logger
}

var _ ports.SampleSource = (*SampleReader)(nil)

// NewSampleReader creates a reader for one group
func NewSampleReader(db *sqlx.DB, query SampleQuery) (*SampleReader, error) {
	if query.Table == "" || query.GroupColumn == "" || query.Group == "" {
		return nil, core.NewConfigError("sample query", "table, group column and group are required")
	}
	return &SampleReader{db: db, query: query, logger: internal.DefaultLogger.With("SampleReader")}, nil
}

// Name identifies the table and group
func (r *SampleReader) Name() string {
	return fmt.Sprintf("%s[%s=%s]", r.query.Table, r.query.GroupColumn, r.query.Group)
}

func (r *SampleReader) groupLabel() string {
	label := fmt.Sprintf("group %q in %s", r.query.Group, r.query.Table)
	if r.query.Experiment != "" {
		label += fmt.Sprintf(" for experiment %q", r.query.Experiment)
	}
	return label
}

// Columns lists the numeric columns of the table
func (r *SampleReader) Columns(ctx context.Context) ([]string, error) {
	var cols []string
	err := r.db.SelectContext(ctx, &cols, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_name = $1
		  AND data_type IN ('smallint', 'integer', 'bigint', 'numeric', 'real', 'double precision')
		  AND column_name <> 'id'
		ORDER BY ordinal_position
	`, tableName(r.query.Table))
	if err != nil {
		return nil, apperrors.DatabaseError(fmt.Sprintf("list columns of %s", r.query.Table), err)
	}
	return cols, nil
}

// LoadColumn returns the non-null values of one column for the group
func (r *SampleReader) LoadColumn(ctx context.Context, column string) ([]float64, error) {
	frame, err := r.LoadFrame(ctx, column)
	if err != nil {
		return nil, err
	}
	values, dropped, err := frame.Column(frame.Columns[0])
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		r.logger.Warn("%s: dropped %d null values from %q", r.Name(), dropped, column)
	}
	return values, nil
}

// LoadFrame selects the requested columns for the group; NULL becomes NaN
func (r *SampleReader) LoadFrame(ctx context.Context, columns ...string) (*dataset.Frame, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no columns requested", core.ErrColumnNotFound)
	}

	query, args := buildFrameQuery(r.query, columns)
	r.logger.Debug("query: %s", query)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, mapQueryError(err, columns)
	}
	defer rows.Close()

	frame := dataset.NewFrame(r.Name(), columns)
	cells := make([]sql.NullFloat64, len(columns))
	dest := make([]interface{}, len(columns))
	for i := range cells {
		dest[i] = &cells[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, apperrors.DatabaseError(fmt.Sprintf("scan %s", r.Name()), err)
		}
		values := make([]float64, len(cells))
		for i, c := range cells {
			values[i] = nullToNaN(c)
		}
		if err := frame.Append(values); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, mapQueryError(err, columns)
	}
	if frame.Len() == 0 {
		return nil, apperrors.NotFound(r.groupLabel())
	}
	return frame, nil
}

// buildFrameQuery renders the SELECT for the requested columns. Identifiers are quoted;
// values are bound as parameters.
func buildFrameQuery(q SampleQuery, columns []string) (string, []interface{}) {
	selects := make([]string, len(columns))
	for i, c := range columns {
		selects[i] = pq.QuoteIdentifier(SnakeCase(c)) + "::double precision"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s WHERE %s = $1",
		strings.Join(selects, ", "), quoteTable(q.Table), pq.QuoteIdentifier(q.GroupColumn))
	args := []interface{}{q.Group}
	if q.Experiment != "" {
		b.WriteString(" AND experiment = $2")
		args = append(args, q.Experiment)
	}
	return b.String(), args
}

// SnakeCase converts a display column name ("Page view") to its column form ("page_view")
func SnakeCase(name string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(name)))
	return strings.Join(fields, "_")
}

func quoteTable(table string) string {
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

func tableName(table string) string {
	if i := strings.LastIndex(table, "."); i >= 0 {
		return table[i+1:]
	}
	return table
}

func nullToNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

// mapQueryError turns an undefined_column error into core.ErrColumnNotFound.
// Anything else is a database failure.
func mapQueryError(err error, columns []string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "42703" {
		return fmt.Errorf("%w: %s (requested %s)", core.ErrColumnNotFound, pqErr.Message, strings.Join(columns, ", "))
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return apperrors.DatabaseError("query samples", err)
}
