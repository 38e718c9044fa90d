package hypothesis

import (
	"errors"
	"fmt"

	"gocompare/domain/comparison"
	"gocompare/domain/core"

	mstats "github.com/aclements/go-moremath/stats"
)

// MannWhitneyResult is the outcome of a two-sided Mann-Whitney U test
type MannWhitneyResult struct {
	U float64 // U statistic for sample A
	P float64
}

// MannWhitneyUTest compares two samples by rank sums. Null hypothesis: both samples come
// from the same distribution. Small samples use the exact U distribution (tie-aware);
// larger ones the normal approximation with tie and continuity corrections.
// When every observation of both samples is equal there is no evidence of a difference
// and p is 1.
func MannWhitneyUTest(a, b comparison.Sample) (MannWhitneyResult, error) {
	if a.Len() < 1 {
		return MannWhitneyResult{}, core.NewInsufficientDataError("Mann-Whitney U (sample A)", 1, a.Len())
	}
	if b.Len() < 1 {
		return MannWhitneyResult{}, core.NewInsufficientDataError("Mann-Whitney U (sample B)", 1, b.Len())
	}

	res, err := mstats.MannWhitneyUTest(a.Values(), b.Values(), mstats.LocationDiffers)
	if err != nil {
		switch {
		case errors.Is(err, mstats.ErrSamplesEqual):
			return MannWhitneyResult{U: float64(a.Len()*b.Len()) / 2, P: 1}, nil
		case errors.Is(err, mstats.ErrSampleSize):
			return MannWhitneyResult{}, fmt.Errorf("%w: %v", core.ErrInsufficientData, err)
		}
		return MannWhitneyResult{}, fmt.Errorf("Mann-Whitney U: %w", err)
	}

	return MannWhitneyResult{U: res.U, P: clamp01(res.P)}, nil
}
