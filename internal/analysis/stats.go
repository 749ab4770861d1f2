package analysis

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary holds the descriptive statistics the textual branches report.
type Summary struct {
	Min    float64
	Max    float64
	Mean   float64
	Median float64
	StdDev float64
}

func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	return Summary{
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   stat.Mean(values, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		StdDev: stat.StdDev(values, nil),
	}
}

func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Correlation is the Pearson coefficient over row-aligned pairs.
func Correlation(xs, ys []float64) float64 {
	if len(xs) < 2 || len(xs) != len(ys) {
		return 0
	}
	return stat.Correlation(xs, ys, nil)
}

// CorrelationStrength maps a coefficient to the wording the scatter branch
// uses. Thresholds are fixed observable output.
func CorrelationStrength(r float64) string {
	switch {
	case r > 0.7:
		return "strong positive"
	case r > 0.3:
		return "moderate positive"
	case r > 0:
		return "weak positive"
	case r > -0.3:
		return "weak negative"
	case r > -0.7:
		return "moderate negative"
	default:
		return "strong negative"
	}
}

// Regression is a least-squares fit y = Intercept + Slope*x.
func Regression(xs, ys []float64) (slope, intercept float64) {
	if len(xs) < 2 || len(xs) != len(ys) {
		return 0, 0
	}
	intercept, slope = stat.LinearRegression(xs, ys, nil, false)
	return slope, intercept
}
