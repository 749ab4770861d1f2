package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectIntent(t *testing.T) {
	cases := []struct {
		query string
		want  Intent
	}{
		{"what is the average revenue?", IntentAverage},
		{"show the mean of units", IntentAverage},
		{"avg price please", IntentAverage},
		{"describe the data", IntentStatistics},
		{"give me summary statistics", IntentStatistics},
		{"show stats", IntentStatistics},
		{"scatter plot of x vs y", IntentScatter},
		{"what is the relationship between cost and revenue", IntentScatter},
		{"show me the top 10 rows", IntentTopN},
		{"first few rows", IntentTopN},
		{"head of the table", IntentTopN},
		{"tell me about this dataset", IntentGeneric},
		{"pie chart of region", IntentGeneric},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, DetectIntent(tc.query), "query %q", tc.query)
	}
}

// Group order is observable: a query matching several groups resolves to
// the earliest one.
func TestDetectIntentPrecedence(t *testing.T) {
	assert.Equal(t, IntentAverage, DetectIntent("show me average stats"))
	assert.Equal(t, IntentStatistics, DetectIntent("summary of the top rows"))
	assert.Equal(t, IntentScatter, DetectIntent("scatter the top values"))
}

func TestWantsChart(t *testing.T) {
	assert.True(t, WantsChart("show me the data"))
	assert.True(t, WantsChart("plot revenue"))
	assert.True(t, WantsChart("a histogram of units"))
	assert.True(t, WantsChart("pie of region"))
	assert.False(t, WantsChart("what is the average revenue?"))
	assert.False(t, WantsChart("describe the data"))
}

func TestRefusesChart(t *testing.T) {
	assert.True(t, RefusesChart("average revenue, no chart please"))
	assert.False(t, RefusesChart("average revenue with a chart"))
}

func TestIntentString(t *testing.T) {
	assert.Equal(t, "average", IntentAverage.String())
	assert.Equal(t, "statistics", IntentStatistics.String())
	assert.Equal(t, "scatter", IntentScatter.String())
	assert.Equal(t, "topn", IntentTopN.String())
	assert.Equal(t, "generic", IntentGeneric.String())
}
