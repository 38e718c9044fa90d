package postgres

import (
	"context"
	"fmt"
	"math"
	"strings"

	"gocompare/domain/dataset"
	"gocompare/internal"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ObservationColumns are the metric columns of experiment_observations
var ObservationColumns = []string{"impression", "click", "page_view", "purchase", "earning"}

// ObservationWriter imports frames into experiment_observations
type ObservationWriter struct {
	db     *sqlx.DB
	logger *internal.Logger
}

// NewObservationWriter creates a new writer
func NewObservationWriter(db *sqlx.DB) *ObservationWriter {
	return &ObservationWriter{db: db, logger: internal.DefaultLogger.With("ObservationWriter")}
}

// Insert stores every row of frame for (experiment, group) in one transaction.
// Frame columns that are not observation columns are skipped; NaN is stored as NULL.
func (w *ObservationWriter) Insert(ctx context.Context, experiment, group string, frame *dataset.Frame) (int, error) {
	query, indexes, skipped := buildInsert(frame.Columns)
	if len(indexes) == 0 {
		return 0, fmt.Errorf("%s has none of the columns %s", frame.Source, strings.Join(ObservationColumns, ", "))
	}
	if len(skipped) > 0 {
		w.logger.Warn("%s: skipping columns %s", frame.Source, strings.Join(skipped, ", "))
	}

	tx, err := w.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for r := 0; r < frame.Len(); r++ {
		args := []interface{}{experiment, group}
		for _, idx := range indexes {
			args = append(args, nanToNull(frame.Cell(r, idx)))
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", r+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	w.logger.Info("imported %d rows into %s/%s", frame.Len(), experiment, group)
	return frame.Len(), nil
}

// buildInsert maps frame columns onto observation columns and renders the INSERT
func buildInsert(columns []string) (string, []int, []string) {
	known := make(map[string]bool, len(ObservationColumns))
	for _, c := range ObservationColumns {
		known[c] = true
	}

	names := []string{"experiment", "group_name"}
	var indexes []int
	var skipped []string
	for i, c := range columns {
		col := SnakeCase(c)
		if !known[col] {
			skipped = append(skipped, c)
			continue
		}
		names = append(names, pq.QuoteIdentifier(col))
		indexes = append(indexes, i)
	}

	placeholders := make([]string, len(names))
	for i := range names {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO experiment_observations (%s) VALUES (%s)",
		strings.Join(names, ", "), strings.Join(placeholders, ", "))
	return query, indexes, skipped
}

func nanToNull(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
