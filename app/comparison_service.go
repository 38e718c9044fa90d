package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"gocompare/adapters/stats/engine"
	"gocompare/domain/comparison"
	"gocompare/domain/core"
	"gocompare/internal"
	"gocompare/internal/errors"
	"gocompare/internal/metrics"
	"gocompare/ports"

	"golang.org/x/sync/errgroup"
)

// ComparisonService loads experiment metrics from two sources and compares each pair
type ComparisonService struct {
	engine  *engine.StatsEngine
	workers int
	logger  *internal.Logger
}

// CompareRequest names the sources and the metrics to compare. Columns are compared as
// loaded; Metrics are derived row by row first.
type CompareRequest struct {
	Control ports.SampleSource
	Test    ports.SampleSource
	Columns []string
	Metrics []metrics.Definition
	RunID   core.RunID // optional, generated if empty
}

// MetricKind tells a raw column from a derived metric
type MetricKind string

const (
	MetricColumn  MetricKind = "column"
	MetricDerived MetricKind = "derived"
)

// MetricReport is the comparison of one metric between control and test
type MetricReport struct {
	Key        core.MetricKey     `json:"key"`
	Kind       MetricKind         `json:"kind"`
	Definition string             `json:"definition,omitempty"`
	DroppedA   int                `json:"dropped_a"`
	DroppedB   int                `json:"dropped_b"`
	InputHash  core.Hash          `json:"input_hash"`
	Report     *comparison.Report `json:"report"`
}

// Run is the outcome of one CompareMetrics call. Metrics keep the request order.
type Run struct {
	ID        core.RunID     `json:"id"`
	Alpha     float64        `json:"alpha"`
	Control   string         `json:"control"`
	Test      string         `json:"test"`
	Metrics   []MetricReport `json:"metrics"`
	RuntimeMs int64          `json:"runtime_ms"`
}

// NewComparisonService creates a service around a validated engine
func NewComparisonService(cfg engine.Config, workers int, logger *internal.Logger) (*ComparisonService, error) {
	e, err := engine.NewStatsEngine(cfg)
	if err != nil {
		return nil, errors.FromDomain(err)
	}
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ComparisonService{engine: e, workers: workers, logger: logger.With("ComparisonService")}, nil
}

// Config returns the engine configuration used by default
func (s *ComparisonService) Config() engine.Config {
	return s.engine.Config()
}

type metricJob struct {
	key  core.MetricKey
	kind MetricKind
	def  metrics.Definition
}

// CompareMetrics compares every requested column and derived metric concurrently.
// Any failure fails the whole run.
func (s *ComparisonService) CompareMetrics(ctx context.Context, req CompareRequest) (*Run, error) {
	start := time.Now()

	if req.Control == nil || req.Test == nil {
		return nil, errors.InvalidInput("control and test sources are required")
	}
	jobs, err := buildJobs(req)
	if err != nil {
		return nil, err
	}

	runID := req.RunID
	if runID == "" {
		runID = core.NewRunID()
	}
	s.logger.Info("run %s: comparing %d metrics (%s vs %s)", runID, len(jobs), req.Control.Name(), req.Test.Name())

	results := make([]MetricReport, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, job := range jobs {
		g.Go(func() error {
			mr, err := s.compareJob(gctx, req, job)
			if err != nil {
				return errors.Wrapf(errors.FromDomain(err), "metric %q", job.key)
			}
			results[i] = *mr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("run %s failed: %v", runID, err)
		return nil, err
	}

	run := &Run{
		ID:        runID,
		Alpha:     s.engine.Config().Alpha,
		Control:   req.Control.Name(),
		Test:      req.Test.Name(),
		Metrics:   results,
		RuntimeMs: time.Since(start).Milliseconds(),
	}
	s.logger.Info("run %s completed in %dms", runID, run.RuntimeMs)
	return run, nil
}

func buildJobs(req CompareRequest) ([]metricJob, error) {
	var jobs []metricJob
	seen := make(map[core.MetricKey]bool)
	add := func(name string, kind MetricKind, def metrics.Definition) error {
		key, err := core.ParseMetricKey(name)
		if err != nil {
			return errors.InvalidInput(err.Error())
		}
		if seen[key] {
			return errors.InvalidInput(fmt.Sprintf("metric %q requested twice", key))
		}
		seen[key] = true
		jobs = append(jobs, metricJob{key: key, kind: kind, def: def})
		return nil
	}

	for _, col := range req.Columns {
		if err := add(col, MetricColumn, metrics.Definition{}); err != nil {
			return nil, err
		}
	}
	for _, def := range req.Metrics {
		if err := add(def.Name, MetricDerived, def); err != nil {
			return nil, err
		}
	}
	if len(jobs) == 0 {
		return nil, errors.InvalidInput("no columns or metrics requested")
	}
	return jobs, nil
}

func (s *ComparisonService) compareJob(ctx context.Context, req CompareRequest, job metricJob) (*MetricReport, error) {
	a, droppedA, err := s.load(ctx, req.Control, job)
	if err != nil {
		return nil, err
	}
	b, droppedB, err := s.load(ctx, req.Test, job)
	if err != nil {
		return nil, err
	}

	sa, err := comparison.NewSample(a)
	if err != nil {
		return nil, fmt.Errorf("control: %w", err)
	}
	sb, err := comparison.NewSample(b)
	if err != nil {
		return nil, fmt.Errorf("test: %w", err)
	}

	report, err := s.engine.BuildReport(sa, sb)
	if err != nil {
		return nil, err
	}
	s.logOutcome(job.key, report)

	mr := &MetricReport{
		Key:       job.key,
		Kind:      job.kind,
		DroppedA:  droppedA,
		DroppedB:  droppedB,
		InputHash: core.HashSamples(a, b),
		Report:    report,
	}
	if job.kind == MetricDerived {
		mr.Definition = job.def.String()
	}
	s.logger.Trace("%s: %d vs %d observations, input %s", job.key, len(a), len(b), mr.InputHash.Short())
	return mr, nil
}

// load returns the metric values of one source plus the number of rows left out
func (s *ComparisonService) load(ctx context.Context, src ports.SampleSource, job metricJob) ([]float64, int, error) {
	if job.kind == MetricColumn {
		frame, err := src.LoadFrame(ctx, string(job.key))
		if err != nil {
			return nil, 0, sourceError(src, err)
		}
		values, dropped, err := frame.Column(frame.Columns[0])
		if err != nil {
			return nil, 0, err
		}
		return values, dropped, nil
	}

	frame, err := src.LoadFrame(ctx, job.def.Columns()...)
	if err != nil {
		return nil, 0, sourceError(src, err)
	}
	values, skipped, err := job.def.Derive(frame)
	if err != nil {
		return nil, 0, err
	}
	if skipped > 0 {
		s.logger.Debug("%s: %s skipped %d rows with missing values or zero denominator", src.Name(), job.def.Name, skipped)
	}
	return values, skipped, nil
}

func sourceError(src ports.SampleSource, err error) error {
	if core.IsInputError(err) || stderrors.Is(err, core.ErrColumnNotFound) || isContextError(err) || errors.IsAppError(err) {
		return err
	}
	return errors.DataSourceError(src.Name(), err)
}

func isContextError(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}

func (s *ComparisonService) logOutcome(key core.MetricKey, r *comparison.Report) {
	if r.Comparison.FellBack() {
		s.logger.Warn("%s: %s", key, r.Comparison.FallbackReason)
	}
	s.logger.Debug("%s: %s p=%.4f -> %s", key, r.Comparison.Method(), r.Comparison.PValue, r.Verdict.Kind)
}

// PairInput is a raw sample pair submitted for comparison
type PairInput struct {
	Name string    `json:"name"`
	A    []float64 `json:"a"`
	B    []float64 `json:"b"`
}

// CompareSamples compares raw samples with cfg, or the service configuration when cfg is nil
func (s *ComparisonService) CompareSamples(ctx context.Context, pairs []PairInput, cfg *engine.Config) (*Run, error) {
	start := time.Now()
	if len(pairs) == 0 {
		return nil, errors.InvalidInput("no sample pairs submitted")
	}

	e := s.engine
	if cfg != nil {
		var err error
		if e, err = engine.NewStatsEngine(*cfg); err != nil {
			return nil, errors.FromDomain(err)
		}
	}

	enginePairs := make([]engine.Pair, len(pairs))
	for i, p := range pairs {
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("pair-%d", i+1)
		}
		a, err := comparison.NewSample(p.A)
		if err != nil {
			return nil, errors.Wrapf(errors.FromDomain(err), "%s sample a", name)
		}
		b, err := comparison.NewSample(p.B)
		if err != nil {
			return nil, errors.Wrapf(errors.FromDomain(err), "%s sample b", name)
		}
		enginePairs[i] = engine.Pair{Name: name, A: a, B: b}
	}

	reports, err := e.BuildReports(ctx, enginePairs, s.workers)
	if err != nil {
		return nil, errors.FromDomain(err)
	}

	run := &Run{ID: core.NewRunID(), Alpha: e.Config().Alpha, Metrics: make([]MetricReport, len(reports))}
	for i, r := range reports {
		s.logOutcome(core.MetricKey(r.Name), r.Report)
		run.Metrics[i] = MetricReport{
			Key:       core.MetricKey(r.Name),
			Kind:      MetricColumn,
			InputHash: core.HashSamples(pairs[i].A, pairs[i].B),
			Report:    r.Report,
		}
	}
	run.RuntimeMs = time.Since(start).Milliseconds()
	return run, nil
}
