package comparison

import (
	"encoding/json"
	"fmt"
	"math"

	"gocompare/domain/core"
	"gocompare/domain/verdict"
)

// DefaultAlpha is the significance level used when none is configured
const DefaultAlpha = 0.05

// DescriptiveStats summarizes one sample. Values are stored unrounded.
type DescriptiveStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// DistributionVerdict is the outcome of a normality test on one sample.
// IsNormal is a heuristic: failing to reject normality is not evidence of it.
type DistributionVerdict struct {
	Test      string  `json:"test"`
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	Alpha     float64 `json:"alpha"`
	IsNormal  bool    `json:"is_normal"`
}

// NewDistributionVerdict derives IsNormal from (p, alpha): normal iff p > alpha.
func NewDistributionVerdict(test string, statistic, pValue, alpha float64) DistributionVerdict {
	p := ClampPValue(pValue)
	return DistributionVerdict{
		Test:      test,
		Statistic: statistic,
		PValue:    p,
		Alpha:     alpha,
		IsNormal:  p > alpha,
	}
}

// Interpretation describes the normality result without overstating it
func (d DistributionVerdict) Interpretation() string {
	if d.IsNormal {
		return fmt.Sprintf("no evidence against normality (p=%.4f > %.2f); treated as normal heuristically, not proven", d.PValue, d.Alpha)
	}
	return fmt.Sprintf("normality rejected (p=%.4f <= %.2f)", d.PValue, d.Alpha)
}

// VarianceVerdict is the outcome of a variance homogeneity test on a sample pair
type VarianceVerdict struct {
	Test          string  `json:"test"`
	Statistic     float64 `json:"statistic"`
	PValue        float64 `json:"p_value"`
	Alpha         float64 `json:"alpha"`
	EqualVariance bool    `json:"equal_variance"`
}

// NewVarianceVerdict derives EqualVariance from (p, alpha): equal iff p > alpha.
func NewVarianceVerdict(test string, statistic, pValue, alpha float64) VarianceVerdict {
	p := ClampPValue(pValue)
	return VarianceVerdict{
		Test:          test,
		Statistic:     statistic,
		PValue:        p,
		Alpha:         alpha,
		EqualVariance: p > alpha,
	}
}

// MarshalJSON writes a non-finite statistic as null, since JSON has no infinity.
// Levene's W is +Inf when both groups have constant but different deviations.
func (v VarianceVerdict) MarshalJSON() ([]byte, error) {
	type plain VarianceVerdict
	out := struct {
		plain
		Statistic *float64 `json:"statistic"`
	}{plain: plain(v)}
	if !math.IsInf(v.Statistic, 0) && !math.IsNaN(v.Statistic) {
		stat := v.Statistic
		out.Statistic = &stat
	}
	return json.Marshal(out)
}

// Method identifies a two-sample comparison test
type Method string

const (
	StudentT     Method = "student_t"
	WelchT       Method = "welch_t"
	MannWhitneyU Method = "mann_whitney_u"
)

// Valid reports whether m is a known method
func (m Method) Valid() bool {
	switch m {
	case StudentT, WelchT, MannWhitneyU:
		return true
	}
	return false
}

// Parametric reports whether m assumes normality
func (m Method) Parametric() bool {
	return m == StudentT || m == WelchT
}

// NullHypothesis returns the hypothesis family the method tests
func (m Method) NullHypothesis() verdict.Hypothesis {
	if m.Parametric() {
		return verdict.HypothesisEqualMeans
	}
	return verdict.HypothesisEqualDistributions
}

// DisplayName returns a human-readable test name
func (m Method) DisplayName() string {
	switch m {
	case StudentT:
		return "Student's t-test"
	case WelchT:
		return "Welch's t-test"
	case MannWhitneyU:
		return "Mann-Whitney U test"
	}
	return string(m)
}

// Rationale records the selector inputs that produced a TestChoice
type Rationale struct {
	NormalA       bool `json:"normal_a"`
	NormalB       bool `json:"normal_b"`
	EqualVariance bool `json:"equal_variance"`
}

// TestChoice is the selected comparison method plus the reason it was chosen
type TestChoice struct {
	Method    Method    `json:"method"`
	Rationale Rationale `json:"rationale"`
	Reason    string    `json:"reason"`
}

// ComparisonResult is the outcome of running a comparison test.
// Requested is the selector's method; Choice.Method is what actually ran.
type ComparisonResult struct {
	Statistic        float64    `json:"statistic"`
	PValue           float64    `json:"p_value"`
	DegreesOfFreedom float64    `json:"degrees_of_freedom,omitempty"`
	Choice           TestChoice `json:"choice"`
	Requested        Method     `json:"requested_method"`
	FallbackReason   string     `json:"fallback_reason,omitempty"`
}

// Method returns the method that produced the statistic
func (r ComparisonResult) Method() Method {
	return r.Choice.Method
}

// FellBack reports whether the executed test differs from the requested one
func (r ComparisonResult) FellBack() bool {
	return r.FallbackReason != ""
}

// Report aggregates every stage of one comparison. It is built once and never mutated.
type Report struct {
	Alpha        float64             `json:"alpha"`
	DescriptiveA DescriptiveStats    `json:"descriptive_a"`
	DescriptiveB DescriptiveStats    `json:"descriptive_b"`
	NormalityA   DistributionVerdict `json:"normality_a"`
	NormalityB   DistributionVerdict `json:"normality_b"`
	Variance     VarianceVerdict     `json:"variance"`
	Comparison   ComparisonResult    `json:"comparison"`
	Verdict      verdict.Verdict     `json:"verdict"`
	Caveats      []string            `json:"caveats"`
}

// ClampPValue forces p into [0,1]. NaN maps to 1 (no evidence).
func ClampPValue(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return 1
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

func errUnknownMethod(m Method) error {
	return fmt.Errorf("%w: %q", core.ErrUnknownMethod, m)
}

// ParseMethod parses a method name
func ParseMethod(s string) (Method, error) {
	m := Method(s)
	if !m.Valid() {
		return "", errUnknownMethod(m)
	}
	return m, nil
}
