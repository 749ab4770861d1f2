package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csvchat/backend/internal/dataset"
)

func mustParse(t *testing.T, csv string) *dataset.Dataset {
	t.Helper()
	d, err := dataset.Parse("test.csv", strings.NewReader(csv))
	require.NoError(t, err)
	return d
}

func TestMentionedColumnsDatasetOrder(t *testing.T) {
	d := mustParse(t, "alpha,beta,gamma\n1,2,3\n")

	// query order does not matter, dataset order does
	got := MentionedColumns("compare gamma with alpha", d)
	assert.Equal(t, []string{"alpha", "gamma"}, got)
}

func TestMentionedColumnsCaseInsensitive(t *testing.T) {
	d := mustParse(t, "Revenue,Units\n1,2\n")
	got := MentionedColumns("average revenue", d)
	assert.Equal(t, []string{"Revenue"}, got)
}

func TestMentionedColumnsSubstringMatch(t *testing.T) {
	d := mustParse(t, "cost,cost_total\n1,2\n")
	// "cost" occurs inside "cost_total" mentions too; both match the query
	got := MentionedColumns("what is the cost_total", d)
	assert.Equal(t, []string{"cost", "cost_total"}, got)
}

func TestBindAverageColumn(t *testing.T) {
	d := mustParse(t, "region,revenue,units\nNorth,10,1\nSouth,20,2\n")

	assert.Equal(t, "revenue", BindAverageColumn("average revenue please", d))
	assert.Equal(t, "units", BindAverageColumn("mean units", d))
	// text columns never bind, even when mentioned
	assert.Equal(t, "", BindAverageColumn("average region", d))
	assert.Equal(t, "", BindAverageColumn("average of everything", d))
}

func TestBindScatterColumnsDefaults(t *testing.T) {
	d := mustParse(t, "cost,revenue,units\n1,10,100\n2,20,200\n")
	numeric := []string{"cost", "revenue", "units"}

	x, y := BindScatterColumns("scatter plot", d, numeric)
	assert.Equal(t, "cost", x)
	assert.Equal(t, "revenue", y)
}

func TestBindScatterColumnsMentionsFillXThenY(t *testing.T) {
	d := mustParse(t, "cost,revenue,units\n1,10,100\n2,20,200\n")
	numeric := []string{"cost", "revenue", "units"}

	x, y := BindScatterColumns("scatter of revenue and units", d, numeric)
	assert.Equal(t, "revenue", x)
	assert.Equal(t, "units", y)
}

func TestBindScatterColumnsDatasetOrderTieBreak(t *testing.T) {
	d := mustParse(t, "alpha,beta\n1,2\n3,4\n")
	numeric := []string{"alpha", "beta"}

	// beta comes first in the query but alpha wins the x slot
	x, y := BindScatterColumns("compare beta and alpha", d, numeric)
	assert.Equal(t, "alpha", x)
	assert.Equal(t, "beta", y)
}

func TestBindScatterColumnsAxisWindows(t *testing.T) {
	d := mustParse(t, "cost,revenue\n1,10\n2,20\n")
	numeric := []string{"cost", "revenue"}

	x, y := BindScatterColumns("scatter with x-axis: revenue and y-axis: cost", d, numeric)
	assert.Equal(t, "revenue", x)
	assert.Equal(t, "cost", y)
}

func TestBindScatterColumnsAxisWindowIsTwentyChars(t *testing.T) {
	d := mustParse(t, "cost,revenue\n1,10\n2,20\n")
	numeric := []string{"cost", "revenue"}

	// revenue sits far past the window after "x-axis", so it binds by
	// dataset order instead
	x, y := BindScatterColumns("x-axis should definitely probably be revenue against cost", d, numeric)
	assert.Equal(t, "cost", x)
	assert.Equal(t, "revenue", y)
}

func TestExtractRowCount(t *testing.T) {
	assert.Equal(t, 12, ExtractRowCount("show me the top 12 rows"))
	assert.Equal(t, 5, ExtractRowCount("show me the top rows"))
	assert.Equal(t, 3, ExtractRowCount("first 3 then 7"))
	// an explicit zero is honored, not defaulted
	assert.Equal(t, 0, ExtractRowCount("top 0 rows"))
}

func TestFirstMentioned(t *testing.T) {
	candidates := []string{"cost", "revenue"}

	assert.Equal(t, "revenue", FirstMentioned("plot revenue", candidates, false))
	assert.Equal(t, "", FirstMentioned("plot something", candidates, false))
	assert.Equal(t, "cost", FirstMentioned("plot something", candidates, true))
	assert.Equal(t, "", FirstMentioned("plot something", nil, true))
}
