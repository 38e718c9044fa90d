package hypothesis

import (
	"fmt"
	"math"

	"gocompare/domain/comparison"
	"gocompare/domain/core"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// LeveneTestName identifies the median-centred Levene test in verdicts
const LeveneTestName = "levene_median"

// TestVarianceEquality runs Levene's test on absolute deviations from each group's median
// (the Brown-Forsythe variant, robust to non-normality). EqualVariance is p > alpha.
func TestVarianceEquality(a, b comparison.Sample, alpha float64) (comparison.VarianceVerdict, error) {
	if a.Len() < 2 {
		return comparison.VarianceVerdict{}, core.NewInsufficientDataError("variance test (sample A)", 2, a.Len())
	}
	if b.Len() < 2 {
		return comparison.VarianceVerdict{}, core.NewInsufficientDataError("variance test (sample B)", 2, b.Len())
	}

	za, err := medianDeviations(a.Values())
	if err != nil {
		return comparison.VarianceVerdict{}, err
	}
	zb, err := medianDeviations(b.Values())
	if err != nil {
		return comparison.VarianceVerdict{}, err
	}

	w, p := leveneStatistic(za, zb)
	return comparison.NewVarianceVerdict(LeveneTestName, w, p, alpha), nil
}

func medianDeviations(data []float64) ([]float64, error) {
	median, err := stats.Median(data)
	if err != nil {
		return nil, fmt.Errorf("levene median: %w", err)
	}
	z := make([]float64, len(data))
	for i, v := range data {
		z[i] = math.Abs(v - median)
	}
	return z, nil
}

// leveneStatistic is the one-way ANOVA F statistic on the deviations of two groups
func leveneStatistic(za, zb []float64) (w, pValue float64) {
	na, nb := float64(len(za)), float64(len(zb))
	total := na + nb

	meanA := stat.Mean(za, nil)
	meanB := stat.Mean(zb, nil)
	grand := (na*meanA + nb*meanB) / total

	between := na*(meanA-grand)*(meanA-grand) + nb*(meanB-grand)*(meanB-grand)
	within := 0.0
	for _, z := range za {
		within += (z - meanA) * (z - meanA)
	}
	for _, z := range zb {
		within += (z - meanB) * (z - meanB)
	}

	// Both groups have constant deviations: identical spread, or entirely different spread.
	if within == 0 {
		if between == 0 {
			return 0, 1
		}
		return math.Inf(1), 0
	}

	df2 := int(total) - 2
	w = float64(df2) * between / within
	return w, clamp01(fUpperTail(w, 1, df2))
}
