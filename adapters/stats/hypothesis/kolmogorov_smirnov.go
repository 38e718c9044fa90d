package hypothesis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// kolmogorovSmirnovNormal tests data against a normal distribution with the sample's
// own mean and standard deviation. The p-value uses the limiting Kolmogorov distribution
// with Stephens' small-sample correction; because the parameters are estimated it is
// conservative (it rejects normality less often than the nominal alpha).
func kolmogorovSmirnovNormal(data []float64) (d, pValue float64) {
	n := len(data)
	x := make([]float64, n)
	copy(x, data)
	sort.Float64s(x)

	mean, std := stat.MeanStdDev(x, nil)
	if std == 0 || math.IsNaN(std) {
		return 0, 1
	}

	dist := distuv.Normal{Mu: mean, Sigma: std}
	fn := float64(n)
	for i, v := range x {
		cdf := dist.CDF(v)
		above := float64(i+1)/fn - cdf
		below := cdf - float64(i)/fn
		d = math.Max(d, math.Max(above, below))
	}

	sqrtN := math.Sqrt(fn)
	return d, kolmogorovUpperTail((sqrtN + 0.12 + 0.11/sqrtN) * d)
}
