package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

type Kind int

const (
	KindText Kind = iota
	KindNumeric
)

// Column is an ordered sequence of cell values of one inferred storage kind.
// For numeric columns Floats holds the parsed values aligned with Values,
// with NaN marking missing cells.
type Column struct {
	Name   string
	Kind   Kind
	Values []string
	Floats []float64
}

// Dataset is an immutable in-memory table parsed from an uploaded CSV file.
type Dataset struct {
	Filename string
	Columns  []Column

	index map[string]int
	rows  int
}

// Parse reads a CSV document with a header row into a columnar Dataset.
// A column is numeric when every non-empty cell parses as a float and at
// least one cell is non-empty; everything else is text.
func Parse(filename string, r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv file is empty")
	}

	header := dedupe(records[0])
	rows := records[1:]

	ds := &Dataset{
		Filename: filename,
		Columns:  make([]Column, len(header)),
		index:    make(map[string]int, len(header)),
		rows:     len(rows),
	}

	for i, name := range header {
		values := make([]string, len(rows))
		for j, row := range rows {
			if i < len(row) {
				values[j] = strings.TrimSpace(row[i])
			}
		}
		ds.Columns[i] = buildColumn(name, values)
		ds.index[name] = i
	}

	return ds, nil
}

func buildColumn(name string, values []string) Column {
	floats := make([]float64, len(values))
	numeric := false
	nonEmpty := 0

	for j, v := range values {
		if v == "" {
			floats[j] = math.NaN()
			continue
		}
		nonEmpty++
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Column{Name: name, Kind: KindText, Values: values}
		}
		floats[j] = f
	}
	numeric = nonEmpty > 0

	if !numeric {
		return Column{Name: name, Kind: KindText, Values: values}
	}
	return Column{Name: name, Kind: KindNumeric, Values: values, Floats: floats}
}

// dedupe makes header names unique by suffixing repeats with .1, .2, ...
func dedupe(header []string) []string {
	seen := make(map[string]int, len(header))
	out := make([]string, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("column_%d", i)
		}
		if n, ok := seen[name]; ok {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n)
		}
		if _, ok := seen[name]; !ok {
			seen[name] = 1
		}
		out[i] = name
	}
	return out
}

func (d *Dataset) Rows() int {
	return d.rows
}

func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return &d.Columns[i], true
}

// NumericValues returns the finite values of a numeric column, missing
// cells excluded. Returns nil for text columns.
func (d *Dataset) NumericValues(name string) []float64 {
	col, ok := d.Column(name)
	if !ok || col.Kind != KindNumeric {
		return nil
	}
	out := make([]float64, 0, len(col.Floats))
	for _, f := range col.Floats {
		if !math.IsNaN(f) {
			out = append(out, f)
		}
	}
	return out
}

// NumericPairs returns row-aligned (x, y) values for two numeric columns,
// dropping rows where either side is missing.
func (d *Dataset) NumericPairs(xName, yName string) ([]float64, []float64) {
	xCol, okX := d.Column(xName)
	yCol, okY := d.Column(yName)
	if !okX || !okY || xCol.Kind != KindNumeric || yCol.Kind != KindNumeric {
		return nil, nil
	}

	xs := make([]float64, 0, d.rows)
	ys := make([]float64, 0, d.rows)
	for i := 0; i < d.rows; i++ {
		x, y := xCol.Floats[i], yCol.Floats[i]
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	return xs, ys
}

// ValueCounts returns distinct values of a column with their frequencies,
// ordered by descending count, ties broken by first occurrence.
func (d *Dataset) ValueCounts(name string) []ValueCount {
	col, ok := d.Column(name)
	if !ok {
		return nil
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	for _, v := range col.Values {
		if _, ok := counts[v]; !ok {
			order = append(order, v)
		}
		counts[v]++
	}

	out := make([]ValueCount, 0, len(order))
	for _, v := range order {
		out = append(out, ValueCount{Value: v, Count: counts[v]})
	}
	// stable: equal counts keep first-occurrence order
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Count > out[j-1].Count; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

type ValueCount struct {
	Value string
	Count int
}

// Preview returns the first n rows as ordered records, numeric cells as
// float64 and everything else as the raw string.
func (d *Dataset) Preview(n int) []map[string]interface{} {
	if n > d.rows {
		n = d.rows
	}
	out := make([]map[string]interface{}, n)
	for i := 0; i < n; i++ {
		rec := make(map[string]interface{}, len(d.Columns))
		for _, col := range d.Columns {
			if col.Kind == KindNumeric && !math.IsNaN(col.Floats[i]) {
				rec[col.Name] = col.Floats[i]
			} else {
				rec[col.Name] = col.Values[i]
			}
		}
		out[i] = rec
	}
	return out
}

// Records returns all rows as ordered records with the same cell typing as
// Preview. Used to ship the dataset to the dataframe-query service.
func (d *Dataset) Records() []map[string]interface{} {
	return d.Preview(d.rows)
}
