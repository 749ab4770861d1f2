package analysis

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/csvchat/backend/internal/dataset"
)

// Column binding scans dataset columns in declaration order and tests each
// name for literal case-insensitive occurrence in the query. The scan order
// is the tie-break: when several columns could fill a slot, the one that
// appears earliest in the dataset wins, regardless of word order in the
// query.

var countPattern = regexp.MustCompile(`\b(\d+)\b`)

const defaultTopN = 5

// MentionedColumns returns the dataset columns whose names occur as
// substrings of the lower-cased query, in dataset column order.
func MentionedColumns(lowerQuery string, d *dataset.Dataset) []string {
	var mentioned []string
	for _, col := range d.Columns {
		if strings.Contains(lowerQuery, strings.ToLower(col.Name)) {
			mentioned = append(mentioned, col.Name)
		}
	}
	return mentioned
}

// BindAverageColumn picks the numeric column an average query refers to:
// the first mentioned numeric column, or empty when no numeric column is
// named (the caller then averages every numeric column).
func BindAverageColumn(lowerQuery string, d *dataset.Dataset) string {
	for _, col := range d.Columns {
		if col.Kind == dataset.KindNumeric && strings.Contains(lowerQuery, strings.ToLower(col.Name)) {
			return col.Name
		}
	}
	return ""
}

// BindScatterColumns resolves the x/y pair for a scatter query. Column
// mentions inside the 20 characters following "x-axis" or "y-axis" bind
// to that axis; other mentions fill x first, then y, in dataset order;
// unfilled slots default to the first and second numeric columns.
func BindScatterColumns(lowerQuery string, d *dataset.Dataset, numericCols []string) (x, y string) {
	for _, col := range d.Columns {
		lowerName := strings.ToLower(col.Name)
		if !strings.Contains(lowerQuery, lowerName) {
			continue
		}

		switch {
		case inAxisWindow(lowerQuery, "x-axis", lowerName):
			x = col.Name
		case inAxisWindow(lowerQuery, "y-axis", lowerName):
			y = col.Name
		case x == "":
			x = col.Name
		case y == "":
			y = col.Name
		}
	}

	if x == "" && len(numericCols) > 0 {
		x = numericCols[0]
	}
	if y == "" && len(numericCols) > 1 {
		y = numericCols[1]
	}
	return x, y
}

// inAxisWindow reports whether name occurs within the 20 characters that
// follow the first occurrence of the axis phrase.
func inAxisWindow(lowerQuery, axis, name string) bool {
	i := strings.Index(lowerQuery, axis)
	if i < 0 {
		return false
	}
	window := lowerQuery[i+len(axis):]
	if len(window) > 20 {
		window = window[:20]
	}
	return strings.Contains(window, name)
}

// ExtractRowCount pulls the first integer literal out of a top-N query,
// defaulting to 5 when the query names no number.
func ExtractRowCount(query string) int {
	m := countPattern.FindStringSubmatch(query)
	if m == nil {
		return defaultTopN
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return defaultTopN
	}
	return n
}

// FirstMentioned returns the first column from candidates (a classification
// subset, in dataset order) whose name occurs in the query, or the fallback
// candidate when none is mentioned and useDefault is set.
func FirstMentioned(lowerQuery string, candidates []string, useDefault bool) string {
	for _, name := range candidates {
		if strings.Contains(lowerQuery, strings.ToLower(name)) {
			return name
		}
	}
	if useDefault && len(candidates) > 0 {
		return candidates[0]
	}
	return ""
}
