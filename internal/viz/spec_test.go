package viz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csvchat/backend/internal/dataset"
)

const vizCSV = `date,region,revenue,cost
2024-01-01,North,1200.50,300
2024-01-02,South,980.00,250
2024-01-03,North,1500.25,420
`

func mustParse(t *testing.T, csv string) *dataset.Dataset {
	t.Helper()
	d, err := dataset.Parse("test.csv", strings.NewReader(csv))
	require.NoError(t, err)
	return d
}

func selectFor(t *testing.T, csv, query string) []Spec {
	t.Helper()
	d := mustParse(t, csv)
	return SelectCharts(query, d, dataset.Classify(d))
}

func kinds(specs []Spec) []Kind {
	out := make([]Kind, len(specs))
	for i, s := range specs {
		out[i] = s.Kind
	}
	return out
}

func TestSelectChartsHeatmapFallback(t *testing.T) {
	specs := selectFor(t, vizCSV, "tell me about the data")
	require.Len(t, specs, 1)
	assert.Equal(t, KindHeatmap, specs[0].Kind)
}

func TestSelectChartsNoFallbackWithOneNumericColumn(t *testing.T) {
	specs := selectFor(t, "name,score\nalice,1\nbob,2\n", "tell me about the data")
	assert.Empty(t, specs)
}

func TestSelectChartsNoNumericColumns(t *testing.T) {
	specs := selectFor(t, "name,city\nalice,Paris\n", "show a histogram")
	assert.Nil(t, specs)
}

func TestSelectChartsEmptyDataset(t *testing.T) {
	specs := selectFor(t, "a,b\n", "show a histogram")
	assert.Nil(t, specs)
}

func TestSelectChartsGroupsAccumulate(t *testing.T) {
	specs := selectFor(t, vizCSV, "a histogram of revenue, a pie chart of region and a bar graph")
	assert.Equal(t, []Kind{KindBar, KindHistogram, KindPie}, kinds(specs))
}

func TestSelectBarBindsColumns(t *testing.T) {
	specs := selectFor(t, vizCSV, "bar chart of cost by region")
	require.Len(t, specs, 1)
	assert.Equal(t, Spec{Kind: KindBar, X: "region", Y: "cost"}, specs[0])
}

func TestSelectBarDefaultsToFirstColumns(t *testing.T) {
	specs := selectFor(t, vizCSV, "draw a bar chart")
	require.Len(t, specs, 1)
	assert.Equal(t, Spec{Kind: KindBar, X: "date", Y: "revenue"}, specs[0])
}

func TestSelectBarDegradesWithoutCategorical(t *testing.T) {
	specs := selectFor(t, "revenue,cost\n10,1\n20,2\n", "bar chart of revenue")
	require.Len(t, specs, 1)
	// no x column: the renderer bins y instead, still under the bar key
	assert.Equal(t, Spec{Kind: KindBar, Y: "revenue"}, specs[0])
}

func TestSelectHistogram(t *testing.T) {
	specs := selectFor(t, vizCSV, "distribution of cost")
	require.Len(t, specs, 1)
	assert.Equal(t, Spec{Kind: KindHistogram, Y: "cost"}, specs[0])
}

func TestSelectScatterBindsMentions(t *testing.T) {
	specs := selectFor(t, vizCSV, "scatter of cost against revenue")
	require.Len(t, specs, 1)
	assert.Equal(t, KindScatter, specs[0].Kind)
	// dataset order decides the slots, not query order
	assert.Equal(t, "revenue", specs[0].X)
	assert.Equal(t, "cost", specs[0].Y)
	assert.False(t, specs[0].Trendline)
}

func TestSelectScatterTrendline(t *testing.T) {
	specs := selectFor(t, "revenue,cost\n10,1\n20,2\n", "scatter of revenue with trend")
	require.Len(t, specs, 1)
	assert.Equal(t, KindScatter, specs[0].Kind)
	assert.True(t, specs[0].Trendline)
}

func TestSelectScatterNeedsTwoNumericColumns(t *testing.T) {
	specs := selectFor(t, "name,score\nalice,1\nbob,2\n", "scatter plot of score")
	assert.Empty(t, specs)
}

func TestSelectScatterDistinctAxes(t *testing.T) {
	specs := selectFor(t, vizCSV, "scatter plot of cost")
	require.Len(t, specs, 1)
	assert.Equal(t, "cost", specs[0].X)
	assert.Equal(t, "revenue", specs[0].Y)
	assert.NotEqual(t, specs[0].X, specs[0].Y)
}

func TestSelectPie(t *testing.T) {
	specs := selectFor(t, vizCSV, "pie chart of region")
	require.Len(t, specs, 1)
	assert.Equal(t, Spec{Kind: KindPie, X: "region"}, specs[0])
}

func TestSelectPieDefaultsToFirstCategorical(t *testing.T) {
	specs := selectFor(t, vizCSV, "draw a pie")
	require.Len(t, specs, 1)
	assert.Equal(t, "date", specs[0].X)
}

func TestSelectTimeSeries(t *testing.T) {
	specs := selectFor(t, vizCSV, "revenue over time")
	require.Len(t, specs, 1)
	assert.Equal(t, Spec{Kind: KindTimeSeries, X: "date", Y: "revenue"}, specs[0])
}

func TestSelectTimeSeriesLastMentionWins(t *testing.T) {
	specs := selectFor(t, vizCSV, "trend of revenue and then cost")
	require.Len(t, specs, 1)
	assert.Equal(t, "cost", specs[0].Y)
}

func TestSelectTimeSeriesWithoutDateColumnFallsBack(t *testing.T) {
	specs := selectFor(t, "revenue,cost\n10,1\n20,2\n", "revenue over time")
	require.Len(t, specs, 1)
	assert.Equal(t, KindHeatmap, specs[0].Kind)
}
