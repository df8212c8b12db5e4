package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// TTestResult holds the outcome of a Welch two-sample t-test.
type TTestResult struct {
	T  float64
	DF float64
	P  float64
}

// welchTTest runs Welch's unequal-variance t-test on two samples and
// reports the two-sided p-value. ok is false when the test is undefined:
// fewer than two observations on either side, or a degenerate pooled
// variance (both samples constant). Callers surface that as a null
// p-value instead of a spurious one.
func welchTTest(xs, ys []float64) (TTestResult, bool) {
	nx, ny := float64(len(xs)), float64(len(ys))
	if len(xs) < 2 || len(ys) < 2 {
		return TTestResult{}, false
	}

	mx := stat.Mean(xs, nil)
	my := stat.Mean(ys, nil)
	vx := stat.Variance(xs, nil)
	vy := stat.Variance(ys, nil)

	sx := vx / nx
	sy := vy / ny
	se := sx + sy
	if se <= 0 || math.IsNaN(se) || math.IsInf(se, 0) {
		return TTestResult{}, false
	}

	t := (mx - my) / math.Sqrt(se)
	df := se * se / (sx*sx/(nx-1) + sy*sy/(ny-1))
	if math.IsNaN(t) || math.IsInf(t, 0) || math.IsNaN(df) || df <= 0 {
		return TTestResult{}, false
	}

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.CDF(-math.Abs(t))
	return TTestResult{T: t, DF: df, P: p}, true
}
