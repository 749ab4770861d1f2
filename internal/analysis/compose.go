package analysis

import (
	"fmt"
	"strings"

	"github.com/csvchat/backend/internal/dataset"
)

// The textual answer is framed as a quoted analysis of the uploaded file.
// Shapes here are observable output; keep the exact wording.

func composeIntro(filename string) string {
	return "The language of the original query is English.\n\n" +
		fmt.Sprintf("Response (in English): \"The analysis of the uploaded dataset reveals several key insights about the data in %s:\n\n", filename)
}

// closeFraming appends the closing quote matching the intro, but only when
// the answer actually carries the framing (external error blocks do not).
func closeFraming(answer, intro string) string {
	if answer != "" && strings.Contains(answer, intro) {
		return answer + `"`
	}
	return answer
}

// chartTrailer appends the chart-count note unless the composed text
// already talks about visualizations.
func chartTrailer(answer, intro string, count int) string {
	if count == 0 {
		return answer
	}

	word := "visualization"
	if count != 1 {
		word = "visualizations"
	}
	note := fmt.Sprintf("**%d %s generated based on your request**", count, word)

	switch {
	case answer == "":
		return intro + note
	case strings.Contains(strings.ToLower(answer), "visualization"):
		return answer
	default:
		return answer + "\n\n" + note
	}
}

// markdownTable renders the first n rows of a dataset, truncated to the
// first maxCols columns, as a markdown table.
func markdownTable(d *dataset.Dataset, n, maxCols int) string {
	cols := d.Columns
	if len(cols) > maxCols {
		cols = cols[:maxCols]
	}
	if n > d.Rows() {
		n = d.Rows()
	}

	var b strings.Builder
	b.WriteString("|")
	for _, col := range cols {
		b.WriteString(" " + col.Name + " |")
	}
	b.WriteString("\n|")
	for range cols {
		b.WriteString("---|")
	}
	b.WriteString("\n")

	for i := 0; i < n; i++ {
		b.WriteString("|")
		for _, col := range cols {
			b.WriteString(" " + col.Values[i] + " |")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func joinFirst(names []string, max int) string {
	suffix := ""
	if len(names) > max {
		names = names[:max]
		suffix = "..."
	}
	return strings.Join(names, ", ") + suffix
}
