package verdict

// Kind is the categorical conclusion of a two-sample comparison
type Kind string

const (
	SignificantDifference   Kind = "significant_difference"
	NoSignificantDifference Kind = "no_significant_difference"
)

// Hypothesis names the null hypothesis a comparison test evaluates.
// The parametric tests compare means; the rank-based test compares distributions.
type Hypothesis string

const (
	HypothesisEqualMeans         Hypothesis = "equal_means"
	HypothesisEqualDistributions Hypothesis = "equal_distributions"
)

// Decision records whether the null hypothesis was rejected
type Decision string

const (
	DecisionReject       Decision = "reject_null"
	DecisionFailToReject Decision = "fail_to_reject_null"
)

// Verdict represents the judgment on a comparison result
type Verdict struct {
	Kind           Kind       `json:"kind"`
	Decision       Decision   `json:"decision"`
	Hypothesis     Hypothesis `json:"hypothesis"`
	PValue         float64    `json:"p_value"`
	Alpha          float64    `json:"alpha"`
	NullHypothesis string     `json:"null_hypothesis"`
	AltHypothesis  string     `json:"alternative_hypothesis"`
	Conclusion     string     `json:"conclusion"`
}

// Significant reports whether the verdict found a difference
func (v Verdict) Significant() bool {
	return v.Kind == SignificantDifference
}
