// Package stats keeps running statistics over autoplayed games.
package stats

import "math"

const (
	Epsilon = 1e-6
)

func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Statistic is a running mean and variance (Welford) with the extremes seen.
type Statistic struct {
	n    int
	mean float64
	m2   float64
	min  float64
	max  float64
}

func (s *Statistic) Push(val float64) {
	s.n++
	if s.n == 1 {
		s.mean = val
		s.m2 = 0
		s.min = val
		s.max = val
		return
	}
	delta := val - s.mean
	s.mean += delta / float64(s.n)
	s.m2 += delta * (val - s.mean)
	s.min = min(s.min, val)
	s.max = max(s.max, val)
}

// Merge folds the values pushed to o into s.
func (s *Statistic) Merge(o *Statistic) {
	if o.n == 0 {
		return
	}
	if s.n == 0 {
		*s = *o
		return
	}
	n := s.n + o.n
	delta := o.mean - s.mean
	s.m2 += o.m2 + delta*delta*float64(s.n)*float64(o.n)/float64(n)
	s.mean += delta * float64(o.n) / float64(n)
	s.n = n
	s.min = min(s.min, o.min)
	s.max = max(s.max, o.max)
}

func (s *Statistic) Mean() float64 {
	if s.n > 0 {
		return s.mean
	}
	return 0.0
}

func (s *Statistic) Variance() float64 {
	if s.n <= 1 {
		return 0.0
	}
	return s.m2 / float64(s.n-1)
}

func (s *Statistic) Stdev() float64 {
	return math.Sqrt(s.Variance())
}

// StandardError returns the standard error of the mean.
func (s *Statistic) StandardError() float64 {
	if s.n == 0 {
		return 0.0
	}
	return math.Sqrt(s.Variance() / float64(s.n))
}

func (s *Statistic) Min() float64 {
	return s.min
}

func (s *Statistic) Max() float64 {
	return s.max
}

func (s *Statistic) Iterations() int {
	return s.n
}
