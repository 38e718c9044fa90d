package engine

import (
	"context"
	"fmt"

	"gocompare/domain/comparison"

	"golang.org/x/sync/errgroup"
)

// Pair is one named sample pair to compare
type Pair struct {
	Name string
	A    comparison.Sample
	B    comparison.Sample
}

// PairReport is the report built for a Pair
type PairReport struct {
	Name   string             `json:"name"`
	Report *comparison.Report `json:"report"`
}

// BuildReports compares independent pairs concurrently with at most workers in flight.
// Results keep the input order. The first failure cancels the remaining pairs and the
// whole batch fails: there are no partial batches.
func (e *StatsEngine) BuildReports(ctx context.Context, pairs []Pair, workers int) ([]PairReport, error) {
	if workers <= 0 {
		workers = 1
	}

	results := make([]PairReport, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, pair := range pairs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report, err := e.BuildReport(pair.A, pair.B)
			if err != nil {
				return fmt.Errorf("pair %q: %w", pair.Name, err)
			}
			results[i] = PairReport{Name: pair.Name, Report: report}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// BuildReports is the one-shot form of StatsEngine.BuildReports
func BuildReports(ctx context.Context, pairs []Pair, cfg Config, workers int) ([]PairReport, error) {
	e, err := NewStatsEngine(cfg)
	if err != nil {
		return nil, err
	}
	return e.BuildReports(ctx, pairs, workers)
}
