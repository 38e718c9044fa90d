package engine

import (
	"fmt"

	"gocompare/adapters/stats/hypothesis"
	"gocompare/domain/comparison"
	"gocompare/domain/core"
)

// RunComparison executes the test named by choice. When a t-test meets a zero-variance
// sample it runs Mann-Whitney U instead and records why in FallbackReason.
func RunComparison(a, b comparison.Sample, choice comparison.TestChoice) (comparison.ComparisonResult, error) {
	switch choice.Method {
	case comparison.StudentT, comparison.WelchT:
		res, err := runTTest(a, b, choice.Method)
		if err == nil {
			return comparison.ComparisonResult{
				Statistic:        res.T,
				PValue:           comparison.ClampPValue(res.P),
				DegreesOfFreedom: res.DoF,
				Choice:           choice,
				Requested:        choice.Method,
			}, nil
		}
		if !core.IsDegenerateSampleError(err) {
			return comparison.ComparisonResult{}, err
		}
		return fallbackToMannWhitney(a, b, choice, err)

	case comparison.MannWhitneyU:
		res, err := hypothesis.MannWhitneyUTest(a, b)
		if err != nil {
			return comparison.ComparisonResult{}, err
		}
		return comparison.ComparisonResult{
			Statistic: res.U,
			PValue:    comparison.ClampPValue(res.P),
			Choice:    choice,
			Requested: choice.Method,
		}, nil
	}

	return comparison.ComparisonResult{}, fmt.Errorf("%w: %q", core.ErrUnknownMethod, choice.Method)
}

func runTTest(a, b comparison.Sample, method comparison.Method) (hypothesis.TTestResult, error) {
	if method == comparison.WelchT {
		return hypothesis.WelchTTest(a, b)
	}
	return hypothesis.StudentTTest(a, b)
}

func fallbackToMannWhitney(a, b comparison.Sample, requested comparison.TestChoice, cause error) (comparison.ComparisonResult, error) {
	res, err := hypothesis.MannWhitneyUTest(a, b)
	if err != nil {
		return comparison.ComparisonResult{}, err
	}

	reason := fmt.Sprintf("%s is undefined (%v); ran %s instead",
		requested.Method.DisplayName(), cause, comparison.MannWhitneyU.DisplayName())

	return comparison.ComparisonResult{
		Statistic: res.U,
		PValue:    comparison.ClampPValue(res.P),
		Choice: comparison.TestChoice{
			Method:    comparison.MannWhitneyU,
			Rationale: requested.Rationale,
			Reason:    requested.Reason + "; zero-variance sample forced the rank-based test",
		},
		Requested:      requested.Method,
		FallbackReason: reason,
	}, nil
}
