package verdict

import (
	"errors"
	"math"
	"testing"

	"gocompare/domain/core"
)

func TestClassify_Threshold(t *testing.T) {
	tests := []struct {
		p     float64
		alpha float64
		want  Kind
	}{
		{0.0, 0.05, SignificantDifference},
		{0.049, 0.05, SignificantDifference},
		{0.05, 0.05, SignificantDifference},
		{0.0500001, 0.05, NoSignificantDifference},
		{1.0, 0.05, NoSignificantDifference},
		{0.009, 0.01, SignificantDifference},
		{0.02, 0.01, NoSignificantDifference},
	}

	for _, tt := range tests {
		v, err := Classify(HypothesisEqualMeans, tt.p, tt.alpha)
		if err != nil {
			t.Fatalf("Classify(%v, %v): %v", tt.p, tt.alpha, err)
		}
		if v.Kind != tt.want {
			t.Errorf("Classify(%v, %v) = %s, want %s", tt.p, tt.alpha, v.Kind, tt.want)
		}
		if v.Significant() != (tt.want == SignificantDifference) {
			t.Errorf("Significant() disagrees with Kind for p=%v", tt.p)
		}
	}
}

func TestClassify_RejectsBadInputs(t *testing.T) {
	if _, err := Classify(HypothesisEqualMeans, 0.5, 0); !core.IsConfigError(err) {
		t.Errorf("expected config error for alpha=0, got %v", err)
	}
	if _, err := Classify(HypothesisEqualMeans, 0.5, 1); !core.IsConfigError(err) {
		t.Errorf("expected config error for alpha=1, got %v", err)
	}
	for _, p := range []float64{1.5, -0.1, math.NaN()} {
		_, err := Classify(HypothesisEqualMeans, p, 0.05)
		if !errors.Is(err, core.ErrInvariant) {
			t.Errorf("expected invariant error for p=%v, got %v", p, err)
		}
		if core.IsInputError(err) {
			t.Errorf("p=%v must not be reported as bad input", p)
		}
	}
	if _, err := Classify(Hypothesis("variance"), 0.5, 0.05); !core.IsConfigError(err) {
		t.Errorf("expected unknown-method error, got %v", err)
	}
}
