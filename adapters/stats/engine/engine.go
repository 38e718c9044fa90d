package engine

import (
	"fmt"

	"gocompare/adapters/stats/hypothesis"
	"gocompare/domain/comparison"
	"gocompare/domain/core"
	"gocompare/domain/verdict"
)

// Config holds the parameters of one engine. It is passed by value and never mutated
// after construction, so one Config can be shared across goroutines.
type Config struct {
	Alpha             float64                      `json:"alpha"`
	NormalityStrategy hypothesis.NormalityStrategy `json:"normality_strategy"`
	ShapiroWilkMaxN   int                          `json:"shapiro_wilk_max_n"`
}

// DefaultConfig returns alpha 0.05 with automatic normality test selection
func DefaultConfig() Config {
	return Config{
		Alpha:             comparison.DefaultAlpha,
		NormalityStrategy: hypothesis.StrategyAuto,
		ShapiroWilkMaxN:   hypothesis.DefaultShapiroWilkMaxN,
	}
}

// Validate checks alpha, strategy and threshold
func (c Config) Validate() error {
	if err := verdict.ValidateAlpha(c.Alpha); err != nil {
		return err
	}
	if _, err := hypothesis.ParseNormalityStrategy(string(c.NormalityStrategy)); err != nil {
		return err
	}
	if c.ShapiroWilkMaxN < 0 {
		return core.NewConfigError("shapiro_wilk_max_n", fmt.Sprintf("must not be negative, got %d", c.ShapiroWilkMaxN))
	}
	return nil
}

// StatsEngine builds comparison reports. It holds no per-call state and is safe for
// concurrent use.
type StatsEngine struct {
	cfg       Config
	normality hypothesis.NormalityTester
}

// NewStatsEngine validates cfg and creates an engine
func NewStatsEngine(cfg Config) (*StatsEngine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	strategy, _ := hypothesis.ParseNormalityStrategy(string(cfg.NormalityStrategy))
	cfg.NormalityStrategy = strategy
	return &StatsEngine{
		cfg: cfg,
		normality: hypothesis.NormalityTester{
			Strategy:        strategy,
			ShapiroWilkMaxN: cfg.ShapiroWilkMaxN,
		},
	}, nil
}

// Config returns a copy of the engine configuration
func (e *StatsEngine) Config() Config {
	return e.cfg
}

// BuildReport runs summary, normality, variance, selection, comparison and classification
// on one sample pair. Any stage failure is returned unchanged except the zero-variance
// fallback, which is recorded in the report.
func (e *StatsEngine) BuildReport(a, b comparison.Sample) (*comparison.Report, error) {
	alpha := e.cfg.Alpha

	descA, err := hypothesis.Summarize(a)
	if err != nil {
		return nil, fmt.Errorf("sample A: %w", err)
	}
	descB, err := hypothesis.Summarize(b)
	if err != nil {
		return nil, fmt.Errorf("sample B: %w", err)
	}

	normA, err := e.normality.Test(a, alpha)
	if err != nil {
		return nil, fmt.Errorf("sample A: %w", err)
	}
	normB, err := e.normality.Test(b, alpha)
	if err != nil {
		return nil, fmt.Errorf("sample B: %w", err)
	}

	variance, err := hypothesis.TestVarianceEquality(a, b, alpha)
	if err != nil {
		return nil, err
	}

	choice := comparison.SelectTest(normA, normB, variance)

	result, err := RunComparison(a, b, choice)
	if err != nil {
		return nil, err
	}

	v, err := comparison.Classify(result, alpha)
	if err != nil {
		return nil, err
	}

	return &comparison.Report{
		Alpha:        alpha,
		DescriptiveA: descA,
		DescriptiveB: descB,
		NormalityA:   normA,
		NormalityB:   normB,
		Variance:     variance,
		Comparison:   result,
		Verdict:      v,
		Caveats:      caveats(normA, normB, result),
	}, nil
}

// BuildReport is the one-shot form of StatsEngine.BuildReport
func BuildReport(a, b comparison.Sample, cfg Config) (*comparison.Report, error) {
	e, err := NewStatsEngine(cfg)
	if err != nil {
		return nil, err
	}
	return e.BuildReport(a, b)
}

func caveats(normA, normB comparison.DistributionVerdict, result comparison.ComparisonResult) []string {
	notes := []string{
		"Normality verdicts are heuristic: failing to reject normality (p > alpha) is treated as normality, which is not proof of it.",
	}
	if normA.Test == string(hypothesis.StrategyKolmogorovSmirnov) || normB.Test == string(hypothesis.StrategyKolmogorovSmirnov) {
		notes = append(notes, "Kolmogorov-Smirnov with estimated mean and standard deviation is conservative: it under-rejects normality.")
	}
	if result.Method() == comparison.MannWhitneyU {
		notes = append(notes, "Mann-Whitney U compares distributions by rank (location shift, medians); it does not test equality of means.")
	}
	if result.FellBack() {
		notes = append(notes, "Fallback: "+result.FallbackReason)
	}
	return notes
}
