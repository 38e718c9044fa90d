package comparison

import (
	"fmt"
	"math"

	"gocompare/domain/core"
)

// Sample is an immutable sequence of finite observations.
// Order is preserved for display but never affects any statistic.
type Sample struct {
	values []float64
}

// NewSample copies values into a Sample. It fails on an empty input or any NaN/Inf.
func NewSample(values []float64) (Sample, error) {
	if len(values) == 0 {
		return Sample{}, fmt.Errorf("%w: sample is empty", core.ErrInvalidSample)
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Sample{}, core.NewInvalidSampleError(i, v)
		}
	}
	cp := make([]float64, len(values))
	copy(cp, values)
	return Sample{values: cp}, nil
}

// MustSample is NewSample for literals known to be valid. It panics otherwise.
func MustSample(values ...float64) Sample {
	s, err := NewSample(values)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of observations
func (s Sample) Len() int {
	return len(s.values)
}

// Values returns a copy of the observations
func (s Sample) Values() []float64 {
	cp := make([]float64, len(s.values))
	copy(cp, s.values)
	return cp
}

// IsZero reports whether s was never constructed
func (s Sample) IsZero() bool {
	return s.values == nil
}

// HasZeroVariance reports whether every observation is identical
func (s Sample) HasZeroVariance() bool {
	if len(s.values) < 2 {
		return true
	}
	for _, v := range s.values[1:] {
		if v != s.values[0] {
			return false
		}
	}
	return true
}
