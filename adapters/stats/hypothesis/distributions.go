package hypothesis

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// normalQuantile is the inverse CDF of the standard normal
func normalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// normalUpperTail returns P(X > x) for X ~ N(mu, sigma)
func normalUpperTail(x, mu, sigma float64) float64 {
	return distuv.Normal{Mu: mu, Sigma: sigma}.Survival(x)
}

// fUpperTail returns P(F > f) for F ~ F(d1, d2)
func fUpperTail(f float64, d1, d2 int) float64 {
	if d1 <= 0 || d2 <= 0 {
		return 1.0
	}
	fDist := distuv.F{D1: float64(d1), D2: float64(d2)}
	return 1 - fDist.CDF(f)
}

// kolmogorovUpperTail returns P(K > z) for the limiting Kolmogorov distribution.
// Two series are used so that both tails converge in a handful of terms.
func kolmogorovUpperTail(z float64) float64 {
	if z <= 0 {
		return 1
	}
	if z < 1.18 {
		y := math.Exp(-math.Pi * math.Pi / (8 * z * z))
		cdf := math.Sqrt(2*math.Pi) / z * (y + math.Pow(y, 9) + math.Pow(y, 25) + math.Pow(y, 49))
		return clamp01(1 - cdf)
	}
	x := math.Exp(-2 * z * z)
	return clamp01(2 * (x - math.Pow(x, 4) + math.Pow(x, 9)))
}

// poly evaluates c[0] + c[1]x + c[2]x^2 + ...
func poly(c []float64, x float64) float64 {
	result := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		result = result*x + c[i]
	}
	return result
}

func clamp01(p float64) float64 {
	if math.IsNaN(p) {
		return 1
	}
	return math.Max(0, math.Min(1, p))
}
