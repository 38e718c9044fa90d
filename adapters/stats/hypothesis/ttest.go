package hypothesis

import (
	"errors"
	"fmt"

	"gocompare/domain/comparison"
	"gocompare/domain/core"

	mstats "github.com/aclements/go-moremath/stats"
)

// TTestResult is the outcome of a two-sided two-sample t-test
type TTestResult struct {
	T   float64
	DoF float64
	P   float64
}

// StudentTTest runs the pooled-variance two-sample t-test (two-sided)
func StudentTTest(a, b comparison.Sample) (TTestResult, error) {
	return runTTest(a, b, comparison.StudentT)
}

// WelchTTest runs the unequal-variance t-test with Welch-Satterthwaite degrees of freedom
func WelchTTest(a, b comparison.Sample) (TTestResult, error) {
	return runTTest(a, b, comparison.WelchT)
}

func runTTest(a, b comparison.Sample, method comparison.Method) (TTestResult, error) {
	if a.Len() < 2 {
		return TTestResult{}, core.NewInsufficientDataError(method.DisplayName()+" (sample A)", 2, a.Len())
	}
	if b.Len() < 2 {
		return TTestResult{}, core.NewInsufficientDataError(method.DisplayName()+" (sample B)", 2, b.Len())
	}
	if a.HasZeroVariance() {
		return TTestResult{}, core.NewDegenerateSampleError("A")
	}
	if b.HasZeroVariance() {
		return TTestResult{}, core.NewDegenerateSampleError("B")
	}

	x1 := &mstats.Sample{Xs: a.Values()}
	x2 := &mstats.Sample{Xs: b.Values()}

	var (
		res *mstats.TTestResult
		err error
	)
	if method == comparison.WelchT {
		res, err = mstats.TwoSampleWelchTTest(x1, x2, mstats.LocationDiffers)
	} else {
		res, err = mstats.TwoSampleTTest(x1, x2, mstats.LocationDiffers)
	}
	if err != nil {
		switch {
		case errors.Is(err, mstats.ErrZeroVariance):
			return TTestResult{}, fmt.Errorf("%w: %v", core.ErrDegenerateSample, err)
		case errors.Is(err, mstats.ErrSampleSize):
			return TTestResult{}, fmt.Errorf("%w: %v", core.ErrInsufficientData, err)
		}
		return TTestResult{}, fmt.Errorf("%s: %w", method.DisplayName(), err)
	}

	return TTestResult{T: res.T, DoF: res.DoF, P: clamp01(res.P)}, nil
}
