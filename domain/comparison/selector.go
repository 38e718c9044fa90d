package comparison

import (
	"fmt"

	"gocompare/domain/verdict"
)

// SelectTest picks the comparison method from the normality and variance verdicts.
//
//	normal A | normal B | equal variance | method
//	   yes   |   yes    |      yes       | StudentT
//	   yes   |   yes    |      no        | WelchT
//	   no    |    *     |       *        | MannWhitneyU
//	    *    |   no     |       *        | MannWhitneyU
//
// The variance verdict always gates which t-test runs.
func SelectTest(normalityA, normalityB DistributionVerdict, variance VarianceVerdict) TestChoice {
	r := Rationale{
		NormalA:       normalityA.IsNormal,
		NormalB:       normalityB.IsNormal,
		EqualVariance: variance.EqualVariance,
	}

	switch {
	case !r.NormalA || !r.NormalB:
		return TestChoice{Method: MannWhitneyU, Rationale: r, Reason: nonNormalReason(r)}
	case r.EqualVariance:
		return TestChoice{
			Method:    StudentT,
			Rationale: r,
			Reason:    "both samples consistent with normality and variances equal: pooled-variance t-test",
		}
	default:
		return TestChoice{
			Method:    WelchT,
			Rationale: r,
			Reason:    "both samples consistent with normality but variances differ: Welch-Satterthwaite t-test",
		}
	}
}

func nonNormalReason(r Rationale) string {
	switch {
	case !r.NormalA && !r.NormalB:
		return "neither sample is consistent with normality: rank-based test"
	case !r.NormalA:
		return "sample A is not consistent with normality: rank-based test"
	default:
		return "sample B is not consistent with normality: rank-based test"
	}
}

// Classify turns a comparison result into a verdict phrased for the method that actually ran
func Classify(result ComparisonResult, alpha float64) (verdict.Verdict, error) {
	m := result.Method()
	if !m.Valid() {
		return verdict.Verdict{}, fmt.Errorf("classify: %w", errUnknownMethod(m))
	}
	return verdict.Classify(m.NullHypothesis(), result.PValue, alpha)
}
