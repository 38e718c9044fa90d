package hypothesis

import (
	"fmt"
	"strings"

	"gocompare/domain/comparison"
	"gocompare/domain/core"
)

// NormalityStrategy selects which normality test runs
type NormalityStrategy string

const (
	// StrategyAuto runs Shapiro-Wilk up to the configured threshold and Kolmogorov-Smirnov above it
	StrategyAuto              NormalityStrategy = "auto"
	StrategyShapiroWilk       NormalityStrategy = "shapiro_wilk"
	StrategyKolmogorovSmirnov NormalityStrategy = "kolmogorov_smirnov"
)

// DefaultShapiroWilkMaxN is the sample size above which auto switches to Kolmogorov-Smirnov.
// Royston's approximation is calibrated up to 5000 observations.
const DefaultShapiroWilkMaxN = 5000

// MinNormalitySize is the smallest sample a normality test accepts
const MinNormalitySize = 3

// ParseNormalityStrategy parses a strategy name; the empty string means auto
func ParseNormalityStrategy(s string) (NormalityStrategy, error) {
	switch NormalityStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyAuto:
		return StrategyAuto, nil
	case StrategyShapiroWilk, "shapiro":
		return StrategyShapiroWilk, nil
	case StrategyKolmogorovSmirnov, "ks":
		return StrategyKolmogorovSmirnov, nil
	}
	return "", core.NewConfigError("normality_strategy", fmt.Sprintf("unknown strategy %q", s))
}

// NormalityTester runs the configured normality test. The zero value behaves as auto
// with the default threshold.
type NormalityTester struct {
	Strategy        NormalityStrategy
	ShapiroWilkMaxN int
}

// Resolve returns the concrete test that would run for a sample of size n
func (t NormalityTester) Resolve(n int) NormalityStrategy {
	switch t.Strategy {
	case StrategyShapiroWilk, StrategyKolmogorovSmirnov:
		return t.Strategy
	}
	limit := t.ShapiroWilkMaxN
	if limit <= 0 {
		limit = DefaultShapiroWilkMaxN
	}
	if n > limit {
		return StrategyKolmogorovSmirnov
	}
	return StrategyShapiroWilk
}

// Test runs the normality test. Null hypothesis: the sample is drawn from a normal
// distribution; IsNormal is p > alpha.
func (t NormalityTester) Test(s comparison.Sample, alpha float64) (comparison.DistributionVerdict, error) {
	if s.Len() < MinNormalitySize {
		return comparison.DistributionVerdict{}, core.NewInsufficientDataError("normality test", MinNormalitySize, s.Len())
	}

	data := s.Values()
	switch strategy := t.Resolve(s.Len()); strategy {
	case StrategyKolmogorovSmirnov:
		d, p := kolmogorovSmirnovNormal(data)
		return comparison.NewDistributionVerdict(string(strategy), d, p, alpha), nil
	default:
		w, p := shapiroWilk(data)
		return comparison.NewDistributionVerdict(string(StrategyShapiroWilk), w, p, alpha), nil
	}
}

// TestNormality runs the normality test chosen by strategy with the default threshold
func TestNormality(s comparison.Sample, alpha float64, strategy NormalityStrategy) (comparison.DistributionVerdict, error) {
	return NormalityTester{Strategy: strategy}.Test(s, alpha)
}
