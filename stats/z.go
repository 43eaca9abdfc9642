package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ZVal returns the two-tailed Z-value associated with a specific confidence interval.
// The interval is a number from 0 to 100 percent.
func ZVal(confidenceInterval float64) float64 {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: 1,
	}
	area := (1 + (confidenceInterval / 100)) / 2
	return dist.Quantile(area)
}

// WinRate is the share of wins in n games with its margin of error at the
// given confidence, both in percent. The margin uses the normal
// approximation of the binomial.
func WinRate(wins float64, n int, confidence float64) (pct, margin float64) {
	if n == 0 {
		return 0, 0
	}
	p := wins / float64(n)
	se := math.Sqrt(p * (1 - p) / float64(n))
	return 100 * p, 100 * ZVal(confidence) * se
}
