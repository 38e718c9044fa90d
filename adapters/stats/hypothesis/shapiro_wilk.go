package hypothesis

import (
	"math"
	"sort"
)

// Royston (1995) AS R94 polynomial coefficients
var (
	swC1 = []float64{0, 0.221157, -0.147981, -2.07119, 4.434685, -2.706056}
	swC2 = []float64{0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swC3 = []float64{0.544, -0.39978, 0.025054, -6.714e-4}
	swC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swC6 = []float64{-0.4803, -0.082676, 0.0030302}
	swG  = []float64{-2.273, 0.459}
)

// shapiroWilk computes the W statistic and its p-value using Royston's approximation.
// The caller guarantees len(data) >= 3. A sample with zero range returns W=1, p=1.
func shapiroWilk(data []float64) (w, pValue float64) {
	n := len(data)
	x := make([]float64, n)
	copy(x, data)
	sort.Float64s(x)

	spread := x[n-1] - x[0]
	if spread == 0 {
		return 1, 1
	}

	a := shapiroWilkCoefficients(n)

	// Scale by the range so large magnitudes do not lose precision in the sums.
	lo := x[0]
	mean := 0.0
	for i := range x {
		x[i] = (x[i] - lo) / spread
		mean += x[i]
	}
	mean /= float64(n)

	ss := 0.0
	for _, v := range x {
		d := v - mean
		ss += d * d
	}

	b := 0.0
	for i, ai := range a {
		b += ai * (x[n-1-i] - x[i])
	}

	w = math.Min(1, b*b/ss)
	return w, shapiroWilkPValue(w, n)
}

// shapiroWilkCoefficients returns the upper-half coefficients a_n, a_{n-1}, ...
// The lower half is the same vector negated.
func shapiroWilkCoefficients(n int) []float64 {
	half := n / 2
	a := make([]float64, half)
	if n == 3 {
		a[0] = math.Sqrt(0.5)
		return a
	}

	fn := float64(n)
	m := make([]float64, half)
	summ2 := 0.0
	for i := range m {
		m[i] = normalQuantile((float64(i+1) - 0.375) / (fn + 0.25))
		summ2 += m[i] * m[i]
	}
	summ2 *= 2
	ssumm2 := math.Sqrt(summ2)
	rsn := 1 / math.Sqrt(fn)

	a1 := poly(swC1, rsn) - m[0]/ssumm2
	first := 1
	var fac float64
	if n > 5 {
		first = 2
		a2 := -m[1]/ssumm2 + poly(swC2, rsn)
		fac = math.Sqrt((summ2 - 2*m[0]*m[0] - 2*m[1]*m[1]) / (1 - 2*a1*a1 - 2*a2*a2))
		a[1] = a2
	} else {
		fac = math.Sqrt((summ2 - 2*m[0]*m[0]) / (1 - 2*a1*a1))
	}
	a[0] = a1
	for i := first; i < half; i++ {
		a[i] = -m[i] / fac
	}
	return a
}

func shapiroWilkPValue(w float64, n int) float64 {
	if n == 3 {
		// Exact distribution for n = 3
		p := 6 / math.Pi * (math.Asin(math.Sqrt(w)) - math.Asin(math.Sqrt(0.75)))
		return clamp01(p)
	}

	fn := float64(n)
	y := math.Log(1 - w)
	var mu, sigma float64
	if n <= 11 {
		gamma := poly(swG, fn)
		if y >= gamma {
			return 1e-99
		}
		y = -math.Log(gamma - y)
		mu = poly(swC3, fn)
		sigma = math.Exp(poly(swC4, fn))
	} else {
		ln := math.Log(fn)
		mu = poly(swC5, ln)
		sigma = math.Exp(poly(swC6, ln))
	}
	return clamp01(normalUpperTail(y, mu, sigma))
}
