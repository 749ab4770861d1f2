package viz

import (
	"strings"

	"github.com/csvchat/backend/internal/dataset"
)

// Kind identifies a chart family the renderer knows how to draw.
type Kind string

const (
	KindBar        Kind = "bar"
	KindHistogram  Kind = "hist"
	KindScatter    Kind = "scatter"
	KindPie        Kind = "pie"
	KindTimeSeries Kind = "timeseries"
	KindHeatmap    Kind = "correlation"
)

// Spec is a decided chart: kind plus column bindings, prior to rendering.
// X carries the categorical/date/x-axis column, Y the numeric one.
type Spec struct {
	Kind      Kind
	X         string
	Y         string
	Trendline bool
}

// Chart keyword groups. Matched independently and cumulatively: one query
// can produce several charts. Substring matching, like the intent matcher.
var (
	barTerms        = []string{"bar chart", "bar plot", "bar graph"}
	histogramTerms  = []string{"histogram", "distribution"}
	scatterTerms    = []string{"scatter plot", "scatter", "relationship"}
	pieTerms        = []string{"pie chart", "pie"}
	timeSeriesTerms = []string{"time series", "trend", "over time"}
)

const maxHeatmapColumns = 10

// SelectCharts decides which charts a query produces, without rendering
// anything. Every matched keyword group contributes at most one spec; when
// no group matches, a correlation heatmap is the fallback (needs at least
// two numeric columns). Datasets without numeric columns produce nothing.
func SelectCharts(lowerQuery string, d *dataset.Dataset, cls dataset.Classification) []Spec {
	if d.Rows() == 0 || len(cls.Numeric) == 0 {
		return nil
	}

	var specs []Spec

	if spec, ok := selectBar(lowerQuery, cls); ok {
		specs = append(specs, spec)
	}
	if spec, ok := selectHistogram(lowerQuery, cls); ok {
		specs = append(specs, spec)
	}
	if spec, ok := selectScatter(lowerQuery, cls); ok {
		specs = append(specs, spec)
	}
	if spec, ok := selectPie(lowerQuery, cls); ok {
		specs = append(specs, spec)
	}
	if spec, ok := selectTimeSeries(lowerQuery, cls); ok {
		specs = append(specs, spec)
	}

	if len(specs) == 0 && len(cls.Numeric) >= 2 {
		specs = append(specs, Spec{Kind: KindHeatmap})
	}

	return specs
}

// selectBar wants one categorical x and one numeric y. With no categorical
// column available it degrades to binning y, but keeps the bar artifact key
// so it never clobbers a histogram from the same query.
func selectBar(q string, cls dataset.Classification) (Spec, bool) {
	if !hasAny(q, barTerms) {
		return Spec{}, false
	}

	y := firstMentioned(q, cls.Numeric)
	x := firstMentioned(q, cls.Categorical)

	if y == "" && len(cls.Numeric) > 0 {
		y = cls.Numeric[0]
	}
	if x == "" && len(cls.Categorical) > 0 {
		x = cls.Categorical[0]
	}

	if x == "" && len(cls.Numeric) > 1 {
		return Spec{Kind: KindBar, Y: y}, y != ""
	}
	if x == "" || y == "" {
		return Spec{}, false
	}
	return Spec{Kind: KindBar, X: x, Y: y}, true
}

func selectHistogram(q string, cls dataset.Classification) (Spec, bool) {
	if !hasAny(q, histogramTerms) {
		return Spec{}, false
	}

	col := firstMentioned(q, cls.Numeric)
	if col == "" && len(cls.Numeric) > 0 {
		col = cls.Numeric[0]
	}
	if col == "" {
		return Spec{}, false
	}
	return Spec{Kind: KindHistogram, Y: col}, true
}

func selectScatter(q string, cls dataset.Classification) (Spec, bool) {
	if !hasAny(q, scatterTerms) || len(cls.Numeric) < 2 {
		return Spec{}, false
	}

	var x, y string
	for _, name := range cls.Numeric {
		if !strings.Contains(q, strings.ToLower(name)) {
			continue
		}
		if x == "" {
			x = name
		} else if y == "" {
			y = name
		}
	}

	if x == "" && len(cls.Numeric) > 0 {
		x = cls.Numeric[0]
	}
	if y == "" || y == x {
		y = cls.Numeric[1]
		if y == x {
			y = cls.Numeric[0]
		}
	}

	return Spec{
		Kind:      KindScatter,
		X:         x,
		Y:         y,
		Trendline: strings.Contains(q, "trend"),
	}, true
}

func selectPie(q string, cls dataset.Classification) (Spec, bool) {
	if !hasAny(q, pieTerms) {
		return Spec{}, false
	}

	col := firstMentioned(q, cls.Categorical)
	if col == "" && len(cls.Categorical) > 0 {
		col = cls.Categorical[0]
	}
	if col == "" {
		return Spec{}, false
	}
	return Spec{Kind: KindPie, X: col}, true
}

// selectTimeSeries needs a date-like column and a numeric one. Mentions are
// scanned without early exit, so the last mentioned column of each kind
// wins the slot.
func selectTimeSeries(q string, cls dataset.Classification) (Spec, bool) {
	if !hasAny(q, timeSeriesTerms) {
		return Spec{}, false
	}

	var dateCol, valueCol string
	for _, name := range cls.DateLike {
		if strings.Contains(q, strings.ToLower(name)) {
			dateCol = name
		}
	}
	for _, name := range cls.Numeric {
		if strings.Contains(q, strings.ToLower(name)) {
			valueCol = name
		}
	}

	if dateCol == "" && len(cls.DateLike) > 0 {
		dateCol = cls.DateLike[0]
	}
	if valueCol == "" && len(cls.Numeric) > 0 {
		valueCol = cls.Numeric[0]
	}
	if dateCol == "" || valueCol == "" {
		return Spec{}, false
	}
	return Spec{Kind: KindTimeSeries, X: dateCol, Y: valueCol}, true
}

func hasAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

func firstMentioned(q string, candidates []string) string {
	for _, name := range candidates {
		if strings.Contains(q, strings.ToLower(name)) {
			return name
		}
	}
	return ""
}
