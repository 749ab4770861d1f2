package dataset

import "time"

// Classification tags every column of a dataset by how analysis treats it.
// Numeric and Categorical partition the columns by storage kind; DateLike
// is a subset of Categorical whose cells look like dates. Column order
// inside each set follows dataset declaration order.
type Classification struct {
	Numeric     []string
	Categorical []string
	DateLike    []string
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"02-01-2006",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// Classify derives a Classification from a dataset. Pure: same dataset in,
// same classification out, nothing cached.
func Classify(d *Dataset) Classification {
	var cls Classification

	for _, col := range d.Columns {
		if col.Kind == KindNumeric {
			cls.Numeric = append(cls.Numeric, col.Name)
			continue
		}

		cls.Categorical = append(cls.Categorical, col.Name)
		if anyParsesAsDate(col.Values) {
			cls.DateLike = append(cls.DateLike, col.Name)
		}
	}

	return cls
}

// anyParsesAsDate mirrors a coercing date parse: one parseable non-empty
// cell is enough to call the column date-like.
func anyParsesAsDate(values []string) bool {
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := ParseDate(v); ok {
			return true
		}
	}
	return false
}

// ParseDate tries a fixed set of lenient layouts.
func ParseDate(v string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
