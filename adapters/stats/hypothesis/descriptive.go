package hypothesis

import (
	"fmt"
	"math"

	"gocompare/domain/comparison"
	"gocompare/domain/core"

	"github.com/montanaflynn/stats"
)

// Summarize computes count, mean, sample standard deviation, median, min and max.
// Nothing is rounded here; rounding belongs to the renderer.
func Summarize(s comparison.Sample) (comparison.DescriptiveStats, error) {
	if s.Len() < 2 {
		return comparison.DescriptiveStats{}, core.NewInsufficientDataError("summarize", 2, s.Len())
	}

	data := stats.Float64Data(s.Values())

	mean, err := stats.Mean(data)
	if err != nil {
		return comparison.DescriptiveStats{}, fmt.Errorf("summarize mean: %w", err)
	}
	std, err := stats.StandardDeviationSample(data)
	if err != nil {
		return comparison.DescriptiveStats{}, fmt.Errorf("summarize std: %w", err)
	}
	median, err := stats.Median(data)
	if err != nil {
		return comparison.DescriptiveStats{}, fmt.Errorf("summarize median: %w", err)
	}
	min, err := stats.Min(data)
	if err != nil {
		return comparison.DescriptiveStats{}, fmt.Errorf("summarize min: %w", err)
	}
	max, err := stats.Max(data)
	if err != nil {
		return comparison.DescriptiveStats{}, fmt.Errorf("summarize max: %w", err)
	}

	// Summation error can push the mean of near-constant data past an endpoint.
	mean = math.Max(min, math.Min(max, mean))

	return comparison.DescriptiveStats{
		Count:  s.Len(),
		Mean:   mean,
		Std:    std,
		Median: median,
		Min:    min,
		Max:    max,
	}, nil
}
