package viz

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/csvchat/backend/internal/dataset"
	"github.com/csvchat/backend/pkg/logger"
)

const (
	chartWidth  = 8 * vg.Inch
	chartHeight = 4 * vg.Inch

	maxPieSlices   = 10
	maxBoxplotCols = 5
	pieImageSizePx = 800
)

var (
	trendColor = color.RGBA{R: 0xd6, G: 0x2b, B: 0x2b, A: 0xff}
	curveColor = color.RGBA{R: 0x2b, G: 0x5f, B: 0xd6, A: 0xff}
)

// Renderer rasterizes chart specs into PNG files under a shared directory.
// The directory is a transient cache: files are written, read back for
// transport encoding, and never tracked afterward.
type Renderer struct {
	dir string
}

func NewRenderer(dir string) (*Renderer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create charts directory: %w", err)
	}
	return &Renderer{dir: dir}, nil
}

// Render draws one decided chart. stem namespaces the artifact (dataset id
// plus query id), so concurrent queries never clobber each other's files.
func (r *Renderer) Render(spec Spec, d *dataset.Dataset, stem string) (string, error) {
	switch spec.Kind {
	case KindBar:
		return r.Bar(d, spec.X, spec.Y, stem)
	case KindHistogram:
		return r.Histogram(d, spec.Y, stem)
	case KindScatter:
		return r.Scatter(d, spec.X, spec.Y, spec.Trendline, stem)
	case KindPie:
		return r.Pie(d, spec.X, stem)
	case KindTimeSeries:
		return r.TimeSeries(d, spec.X, spec.Y, stem)
	case KindHeatmap:
		return r.Heatmap(d, stem)
	default:
		return "", fmt.Errorf("unknown chart kind %q", spec.Kind)
	}
}

// RenderAll renders every spec, isolating failures: a broken chart is
// logged and skipped so the remaining kinds still complete.
func (r *Renderer) RenderAll(specs []Spec, d *dataset.Dataset, stem string) []string {
	var paths []string
	for _, spec := range specs {
		path, err := r.Render(spec, d, stem)
		if err != nil {
			logger.Error("Chart rendering failed",
				zap.String("kind", string(spec.Kind)),
				zap.Error(err),
			)
			continue
		}
		paths = append(paths, path)
	}
	return paths
}

func (r *Renderer) path(stem string, suffix string) string {
	return filepath.Join(r.dir, fmt.Sprintf("%s_%s.png", stem, suffix))
}

// Histogram draws the distribution of a numeric column with a normal
// density curve overlaid.
func (r *Renderer) Histogram(d *dataset.Dataset, col, stem string) (string, error) {
	return r.histogram(d, col, stem, string(KindHistogram), math.NaN())
}

// MeanHistogram is the average-branch variant: same histogram plus a
// dashed vertical line at the mean.
func (r *Renderer) MeanHistogram(d *dataset.Dataset, col string, mean float64, stem string) (string, error) {
	return r.histogram(d, col, stem, "avg_dist", mean)
}

// ColumnHistogram backs the generic single-column fallback.
func (r *Renderer) ColumnHistogram(d *dataset.Dataset, col, stem string) (string, error) {
	return r.histogram(d, col, stem, "col_dist", math.NaN())
}

func (r *Renderer) histogram(d *dataset.Dataset, col, stem, suffix string, meanLine float64) (string, error) {
	values := d.NumericValues(col)
	if len(values) == 0 {
		return "", fmt.Errorf("column %q has no numeric values", col)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Distribution of %s", col)
	p.X.Label.Text = col
	p.Y.Label.Text = "Density"

	h, err := plotter.NewHist(plotter.Values(values), 16)
	if err != nil {
		return "", fmt.Errorf("failed to build histogram: %w", err)
	}
	h.Normalize(1)
	p.Add(h)

	mean := stat.Mean(values, nil)
	sd := stat.StdDev(values, nil)
	peak := 1.0

	if sd > 0 {
		peak = 1 / (sd * math.Sqrt(2*math.Pi))
		density := plotter.NewFunction(func(x float64) float64 {
			z := (x - mean) / sd
			return peak * math.Exp(-0.5*z*z)
		})
		density.Color = curveColor
		density.Width = vg.Points(1.5)
		p.Add(density)
	}

	if !math.IsNaN(meanLine) {
		line, err := plotter.NewLine(plotter.XYs{
			{X: meanLine, Y: 0},
			{X: meanLine, Y: peak},
		})
		if err == nil {
			line.Color = trendColor
			line.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
			p.Add(line)
			p.Legend.Add(fmt.Sprintf("Mean: %.2f", meanLine), line)
			p.Title.Text = fmt.Sprintf("Distribution of %s with Mean", col)
		}
	}

	out := r.path(stem, suffix)
	if err := p.Save(chartWidth, chartHeight, out); err != nil {
		return "", fmt.Errorf("failed to save histogram: %w", err)
	}
	return out, nil
}

// Bar draws the mean of a numeric column grouped by a categorical one,
// categories in first-occurrence order. Without a categorical column it
// degrades to binning the numeric column, still under the bar artifact key.
func (r *Renderer) Bar(d *dataset.Dataset, catCol, numCol, stem string) (string, error) {
	if catCol == "" {
		return r.histogram(d, numCol, stem, string(KindBar), math.NaN())
	}

	cat, ok := d.Column(catCol)
	if !ok {
		return "", fmt.Errorf("unknown column %q", catCol)
	}
	num, ok := d.Column(numCol)
	if !ok || num.Kind != dataset.KindNumeric {
		return "", fmt.Errorf("column %q is not numeric", numCol)
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	var order []string
	for i := 0; i < d.Rows(); i++ {
		label := cat.Values[i]
		v := num.Floats[i]
		if math.IsNaN(v) {
			continue
		}
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		sums[label] += v
		counts[label]++
	}
	if len(order) == 0 {
		return "", fmt.Errorf("no values to plot for %q by %q", numCol, catCol)
	}

	means := make(plotter.Values, len(order))
	for i, label := range order {
		means[i] = sums[label] / float64(counts[label])
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Bar Chart of %s by %s", numCol, catCol)
	p.Y.Label.Text = numCol

	bars, err := plotter.NewBarChart(means, vg.Points(25))
	if err != nil {
		return "", fmt.Errorf("failed to build bar chart: %w", err)
	}
	p.Add(bars)
	p.NominalX(order...)

	out := r.path(stem, string(KindBar))
	if err := p.Save(chartWidth, chartHeight, out); err != nil {
		return "", fmt.Errorf("failed to save bar chart: %w", err)
	}
	return out, nil
}

// ValueCountBar backs the generic categorical fallback: top-10 value
// frequencies as bars.
func (r *Renderer) ValueCountBar(d *dataset.Dataset, col, stem string) (string, error) {
	counts := d.ValueCounts(col)
	if len(counts) == 0 {
		return "", fmt.Errorf("column %q has no values", col)
	}
	if len(counts) > maxPieSlices {
		counts = counts[:maxPieSlices]
	}

	labels := make([]string, len(counts))
	values := make(plotter.Values, len(counts))
	for i, vc := range counts {
		labels[i] = vc.Value
		values[i] = float64(vc.Count)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Top values for %s", col)
	p.Y.Label.Text = "Count"

	bars, err := plotter.NewBarChart(values, vg.Points(25))
	if err != nil {
		return "", fmt.Errorf("failed to build bar chart: %w", err)
	}
	p.Add(bars)
	p.NominalX(labels...)

	out := r.path(stem, "value_counts")
	if err := p.Save(chartWidth, chartHeight, out); err != nil {
		return "", fmt.Errorf("failed to save bar chart: %w", err)
	}
	return out, nil
}

// Scatter draws y against x, with an optional least-squares trendline.
func (r *Renderer) Scatter(d *dataset.Dataset, xCol, yCol string, trendline bool, stem string) (string, error) {
	return r.scatter(d, xCol, yCol, trendline, stem, string(KindScatter))
}

// RelationshipScatter backs the relationship branch: the same plot keyed
// apart from the selection pass, so one query can carry both.
func (r *Renderer) RelationshipScatter(d *dataset.Dataset, xCol, yCol string, trendline bool, stem string) (string, error) {
	return r.scatter(d, xCol, yCol, trendline, stem, "rel_scatter")
}

func (r *Renderer) scatter(d *dataset.Dataset, xCol, yCol string, trendline bool, stem, suffix string) (string, error) {
	xs, ys := d.NumericPairs(xCol, yCol)
	if len(xs) == 0 {
		return "", fmt.Errorf("no numeric pairs for %q and %q", xCol, yCol)
	}

	pts := make(plotter.XYs, len(xs))
	minX, maxX := xs[0], xs[0]
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
		minX = math.Min(minX, xs[i])
		maxX = math.Max(maxX, xs[i])
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Scatter Plot of %s vs %s", yCol, xCol)
	p.X.Label.Text = xCol
	p.Y.Label.Text = yCol

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return "", fmt.Errorf("failed to build scatter: %w", err)
	}
	p.Add(scatter)

	if trendline && len(xs) >= 2 {
		intercept, slope := stat.LinearRegression(xs, ys, nil, false)
		line, err := plotter.NewLine(plotter.XYs{
			{X: minX, Y: intercept + slope*minX},
			{X: maxX, Y: intercept + slope*maxX},
		})
		if err == nil {
			line.Color = trendColor
			line.Width = vg.Points(1.5)
			p.Add(line)
		}
	}

	out := r.path(stem, suffix)
	if err := p.Save(chartWidth, chartHeight, out); err != nil {
		return "", fmt.Errorf("failed to save scatter: %w", err)
	}
	return out, nil
}

// Boxplot draws side-by-side boxes for up to the first five numeric columns.
func (r *Renderer) Boxplot(d *dataset.Dataset, cols []string, stem string) (string, error) {
	if len(cols) > maxBoxplotCols {
		cols = cols[:maxBoxplotCols]
	}
	if len(cols) == 0 {
		return "", fmt.Errorf("no numeric columns to plot")
	}

	p := plot.New()
	p.Title.Text = "Distribution Across Numeric Columns"

	for i, col := range cols {
		values := d.NumericValues(col)
		if len(values) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(vg.Points(30), float64(i), plotter.Values(values))
		if err != nil {
			return "", fmt.Errorf("failed to build boxplot for %q: %w", col, err)
		}
		p.Add(box)
	}
	p.NominalX(cols...)

	out := r.path(stem, "boxplot")
	if err := p.Save(chartWidth, chartHeight, out); err != nil {
		return "", fmt.Errorf("failed to save boxplot: %w", err)
	}
	return out, nil
}

// Pie draws the frequency split of a categorical column: top 10 categories,
// with everything past that collapsed into a single "Other" slice.
func (r *Renderer) Pie(d *dataset.Dataset, col, stem string) (string, error) {
	counts := d.ValueCounts(col)
	if len(counts) == 0 {
		return "", fmt.Errorf("column %q has no values", col)
	}

	pie := chart.PieChart{
		Title:  fmt.Sprintf("Distribution of %s", col),
		Width:  pieImageSizePx,
		Height: pieImageSizePx,
		Values: pieSlices(counts),
	}

	out := r.path(stem, string(KindPie))
	f, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := pie.Render(chart.PNG, f); err != nil {
		return "", fmt.Errorf("failed to render pie chart: %w", err)
	}
	return out, nil
}

// pieSlices keeps the top categories as individual slices and folds the
// rest into a single "Other" slice.
func pieSlices(counts []dataset.ValueCount) []chart.Value {
	var values []chart.Value
	if len(counts) > maxPieSlices {
		other := 0
		for _, vc := range counts[maxPieSlices:] {
			other += vc.Count
		}
		counts = counts[:maxPieSlices]
		for _, vc := range counts {
			values = append(values, chart.Value{Value: float64(vc.Count), Label: vc.Value})
		}
		return append(values, chart.Value{Value: float64(other), Label: "Other"})
	}
	for _, vc := range counts {
		values = append(values, chart.Value{Value: float64(vc.Count), Label: vc.Value})
	}
	return values
}

// TimeSeries plots a numeric column over a date-like column, rows sorted by
// date ascending. Rows whose date cell does not parse are dropped.
func (r *Renderer) TimeSeries(d *dataset.Dataset, dateCol, valueCol, stem string) (string, error) {
	dates, ok := d.Column(dateCol)
	if !ok {
		return "", fmt.Errorf("unknown column %q", dateCol)
	}
	values, ok := d.Column(valueCol)
	if !ok || values.Kind != dataset.KindNumeric {
		return "", fmt.Errorf("column %q is not numeric", valueCol)
	}

	type point struct {
		t time.Time
		v float64
	}
	var points []point
	for i := 0; i < d.Rows(); i++ {
		t, ok := dataset.ParseDate(dates.Values[i])
		if !ok || math.IsNaN(values.Floats[i]) {
			continue
		}
		points = append(points, point{t: t, v: values.Floats[i]})
	}
	if len(points) == 0 {
		return "", fmt.Errorf("no plottable rows for %q over %q", valueCol, dateCol)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].t.Before(points[j].t) })

	pts := make(plotter.XYs, len(points))
	for i, pt := range points {
		pts[i].X = float64(pt.t.Unix())
		pts[i].Y = pt.v
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s over Time", valueCol)
	p.X.Label.Text = dateCol
	p.Y.Label.Text = valueCol
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return "", fmt.Errorf("failed to build line: %w", err)
	}
	p.Add(line)

	out := r.path(stem, string(KindTimeSeries))
	if err := p.Save(chartWidth, chartHeight, out); err != nil {
		return "", fmt.Errorf("failed to save time series: %w", err)
	}
	return out, nil
}

// Heatmap draws the pairwise Pearson correlation matrix over the first ten
// numeric columns.
func (r *Renderer) Heatmap(d *dataset.Dataset, stem string) (string, error) {
	var numeric []string
	for _, col := range d.Columns {
		if col.Kind == dataset.KindNumeric {
			numeric = append(numeric, col.Name)
		}
	}
	if len(numeric) < 2 {
		return "", fmt.Errorf("need at least two numeric columns for a correlation heatmap")
	}
	if len(numeric) > maxHeatmapColumns {
		numeric = numeric[:maxHeatmapColumns]
	}

	n := len(numeric)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		matrix[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			xs, ys := d.NumericPairs(numeric[i], numeric[j])
			var r float64
			if len(xs) >= 2 {
				r = stat.Correlation(xs, ys, nil)
			}
			matrix[i][j] = r
			matrix[j][i] = r
		}
	}

	p := plot.New()
	p.Title.Text = "Correlation Matrix of Numeric Variables"

	heat := plotter.NewHeatMap(corrGrid{names: numeric, m: matrix}, palette.Heat(12, 1))
	p.Add(heat)
	p.NominalX(numeric...)
	p.NominalY(numeric...)

	out := r.path(stem, string(KindHeatmap))
	if err := p.Save(chartWidth, chartWidth, out); err != nil {
		return "", fmt.Errorf("failed to save heatmap: %w", err)
	}
	return out, nil
}

// corrGrid adapts a correlation matrix to the plotter grid interface.
type corrGrid struct {
	names []string
	m     [][]float64
}

func (g corrGrid) Dims() (c, r int)   { return len(g.names), len(g.names) }
func (g corrGrid) Z(c, r int) float64 { return g.m[r][c] }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(r) }
