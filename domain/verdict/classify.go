package verdict

import (
	"fmt"
	"math"

	"gocompare/domain/core"
)

type narrative struct {
	null        string
	alternative string
	significant string
	notSig      string
}

var narratives = map[Hypothesis]narrative{
	HypothesisEqualMeans: {
		null:        "There is no difference between the means of the two samples",
		alternative: "There is a difference between the means of the two samples",
		significant: "There is a statistically significant difference between the means of the two samples",
		notSig:      "There is no statistically significant difference between the means of the two samples",
	},
	HypothesisEqualDistributions: {
		null:        "The two samples come from the same distribution (no difference in medians or location)",
		alternative: "One sample tends to take larger values than the other (the distributions differ in location)",
		significant: "There is a statistically significant difference between the distributions (medians) of the two samples",
		notSig:      "There is no statistically significant difference between the distributions (medians) of the two samples",
	},
}

// Classify thresholds a p-value against alpha. The difference is significant iff p <= alpha.
func Classify(h Hypothesis, pValue, alpha float64) (Verdict, error) {
	n, ok := narratives[h]
	if !ok {
		return Verdict{}, fmt.Errorf("%w: no hypothesis narrative for %q", core.ErrUnknownMethod, h)
	}
	if err := ValidateAlpha(alpha); err != nil {
		return Verdict{}, err
	}
	if math.IsNaN(pValue) || pValue < 0 || pValue > 1 {
		return Verdict{}, fmt.Errorf("%w: p-value %v outside [0,1]", core.ErrInvariant, pValue)
	}

	v := Verdict{
		Hypothesis:     h,
		PValue:         pValue,
		Alpha:          alpha,
		NullHypothesis: n.null,
		AltHypothesis:  n.alternative,
	}
	if pValue <= alpha {
		v.Kind = SignificantDifference
		v.Decision = DecisionReject
		v.Conclusion = n.significant
	} else {
		v.Kind = NoSignificantDifference
		v.Decision = DecisionFailToReject
		v.Conclusion = n.notSig
	}
	return v, nil
}

// ValidateAlpha checks that a significance level lies in (0,1)
func ValidateAlpha(alpha float64) error {
	if math.IsNaN(alpha) || alpha <= 0 || alpha >= 1 {
		return core.NewConfigError("alpha", fmt.Sprintf("must be in (0,1), got %v", alpha))
	}
	return nil
}
