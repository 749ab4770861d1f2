package analysis

import "strings"

// Intent is the primary textual-response path for a query.
type Intent int

const (
	IntentGeneric Intent = iota
	IntentAverage
	IntentStatistics
	IntentScatter
	IntentTopN
)

func (i Intent) String() string {
	switch i {
	case IntentAverage:
		return "average"
	case IntentStatistics:
		return "statistics"
	case IntentScatter:
		return "scatter"
	case IntentTopN:
		return "topn"
	default:
		return "generic"
	}
}

// Keyword groups are ordered and matched by literal substring. The order is
// observable behavior: "show me average stats" is an average query, not a
// statistics query. Do not sort or dedupe.
var (
	averageTerms    = []string{"average", "mean", "avg"}
	statisticsTerms = []string{"describe", "statistics", "summary", "stat"}
	scatterTerms    = []string{"scatter", "relationship"}
	topTerms        = []string{"top", "first", "head"}

	chartTerms = []string{
		"chart", "plot", "graph", "visualization", "viz",
		"show", "display", "histogram", "bar", "pie", "trend",
	}
)

const noChartPhrase = "no chart"

// DetectIntent classifies a lower-cased query into its primary intent.
// First satisfied group wins.
func DetectIntent(lowerQuery string) Intent {
	switch {
	case containsAny(lowerQuery, averageTerms):
		return IntentAverage
	case containsAny(lowerQuery, statisticsTerms):
		return IntentStatistics
	case containsAny(lowerQuery, scatterTerms):
		return IntentScatter
	case containsAny(lowerQuery, topTerms):
		return IntentTopN
	default:
		return IntentGeneric
	}
}

// WantsChart reports whether the query asks for any visual output. This is
// orthogonal to the primary intent: an average query can still want a chart.
func WantsChart(lowerQuery string) bool {
	return containsAny(lowerQuery, chartTerms)
}

// RefusesChart reports an explicit opt-out of chart generation.
func RefusesChart(lowerQuery string) bool {
	return strings.Contains(lowerQuery, noChartPhrase)
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
