package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeIntro(t *testing.T) {
	intro := composeIntro("sales.csv")
	assert.True(t, strings.HasPrefix(intro, "The language of the original query is English.\n\n"))
	assert.Contains(t, intro, `Response (in English): "The analysis of the uploaded dataset reveals several key insights about the data in sales.csv:`)
}

func TestCloseFraming(t *testing.T) {
	intro := composeIntro("sales.csv")

	framed := intro + "1. Something.\n\n"
	assert.Equal(t, framed+`"`, closeFraming(framed, intro))

	// external error text carries no framing and gets no closing quote
	assert.Equal(t, "plain error", closeFraming("plain error", intro))
	assert.Equal(t, "", closeFraming("", intro))
}

func TestChartTrailer(t *testing.T) {
	intro := composeIntro("sales.csv")

	assert.Equal(t, "answer", chartTrailer("answer", intro, 0))

	got := chartTrailer("answer", intro, 1)
	assert.Equal(t, "answer\n\n**1 visualization generated based on your request**", got)

	got = chartTrailer("answer", intro, 3)
	assert.Contains(t, got, "**3 visualizations generated based on your request**")

	// an answer already discussing visualizations is left alone
	visual := "here is your Data Visualization"
	assert.Equal(t, visual, chartTrailer(visual, intro, 2))

	// empty answer gets the framing plus the note
	got = chartTrailer("", intro, 1)
	assert.Equal(t, intro+"**1 visualization generated based on your request**", got)
}

func TestMarkdownTable(t *testing.T) {
	d := mustParse(t, "name,score\nalice,1\nbob,2\ncarol,3\n")

	table := markdownTable(d, 2, 8)
	lines := strings.Split(strings.TrimRight(table, "\n"), "\n")
	assert.Equal(t, "| name | score |", lines[0])
	assert.Equal(t, "|---|---|", lines[1])
	assert.Equal(t, "| alice | 1 |", lines[2])
	assert.Equal(t, "| bob | 2 |", lines[3])
	assert.Len(t, lines, 4)
}

func TestMarkdownTableTruncatesColumns(t *testing.T) {
	d := mustParse(t, "a,b,c\n1,2,3\n")

	table := markdownTable(d, 1, 2)
	assert.Contains(t, table, "| a | b |")
	assert.NotContains(t, table, "c |")
}

func TestMarkdownTableClampsRows(t *testing.T) {
	d := mustParse(t, "a\n1\n2\n")
	table := markdownTable(d, 99, 8)
	assert.Equal(t, 2, strings.Count(table, "| 1 |")+strings.Count(table, "| 2 |"))
}

func TestJoinFirst(t *testing.T) {
	assert.Equal(t, "a, b", joinFirst([]string{"a", "b"}, 3))
	assert.Equal(t, "a, b, c...", joinFirst([]string{"a", "b", "c", "d"}, 3))
	assert.Equal(t, "", joinFirst(nil, 3))
}
