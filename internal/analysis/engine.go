package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/csvchat/backend/internal/dataset"
	"github.com/csvchat/backend/internal/metrics"
	"github.com/csvchat/backend/internal/storage/models"
	"github.com/csvchat/backend/internal/viz"
	"github.com/csvchat/backend/pkg/logger"
	"github.com/csvchat/backend/pkg/utils"
)

// TabularQuerier is the external dataframe-query service, consulted only
// when no local rule produced an answer.
type TabularQuerier interface {
	Available() bool
	Query(ctx context.Context, d *dataset.Dataset, query string) (string, error)
}

// Recorder persists query history. Best effort: failures are logged.
type Recorder interface {
	InsertQueryRecord(rec *models.QueryRecord) error
}

// Cache is an optional response cache keyed by dataset id + query text.
type Cache interface {
	GetResponse(ctx context.Context, key string, v interface{}) (bool, error)
	SetResponse(ctx context.Context, key string, v interface{}, ttl time.Duration) error
}

type Engine struct {
	renderer *viz.Renderer
	tabular  TabularQuerier
	recorder Recorder
	cache    Cache
	cacheTTL time.Duration
}

type Result struct {
	QueryID       string `json:"id"`
	Response      string `json:"response"`
	Visualization string `json:"visualization,omitempty"`
	ChartCount    int    `json:"chart_count"`
	LatencyMS     int    `json:"latency_ms"`
}

const errorProcessingQuery = "## Error Processing Query\n\nI encountered an error while analyzing your data. Please try a simpler query or different data format."

func NewEngine(renderer *viz.Renderer, tabular TabularQuerier, recorder Recorder, cache Cache, cacheTTL time.Duration) *Engine {
	return &Engine{
		renderer: renderer,
		tabular:  tabular,
		recorder: recorder,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// ProcessQuery runs the full pipeline: classify columns, match the intent,
// bind columns, compose the answer, then attach charts. It never fails a
// request; the worst case is an error message with no charts.
func (e *Engine) ProcessQuery(ctx context.Context, datasetID string, d *dataset.Dataset, query string) *Result {
	start := time.Now()
	queryID := uuid.New().String()

	logger.Info("Processing dataset query",
		zap.String("query_id", queryID),
		zap.String("dataset_id", datasetID),
		zap.String("query", query),
	)

	cacheKey := utils.HashString(datasetID + "|" + query)
	if e.cache != nil {
		var cached Result
		if hit, err := e.cache.GetResponse(ctx, cacheKey, &cached); err == nil && hit {
			metrics.CacheHits.WithLabelValues("query").Inc()
			return &cached
		}
		metrics.CacheMisses.WithLabelValues("query").Inc()
	}

	result := e.process(ctx, queryID, datasetID, d, query)
	result.LatencyMS = int(time.Since(start).Milliseconds())

	metrics.QueryDuration.WithLabelValues("dataset").Observe(time.Since(start).Seconds())
	metrics.QueryTotal.WithLabelValues("success").Inc()
	metrics.ChartsGenerated.Add(float64(result.ChartCount))

	if e.recorder != nil {
		if err := e.recorder.InsertQueryRecord(&models.QueryRecord{
			ID:         queryID,
			DatasetID:  datasetID,
			QueryText:  query,
			Response:   result.Response,
			Intent:     DetectIntent(strings.ToLower(query)).String(),
			ChartCount: result.ChartCount,
			LatencyMS:  result.LatencyMS,
			CreatedAt:  time.Now(),
		}); err != nil {
			logger.Warn("Failed to record query history", zap.Error(err))
		}
	}

	if e.cache != nil {
		if err := e.cache.SetResponse(ctx, cacheKey, result, e.cacheTTL); err != nil {
			logger.Warn("Failed to cache response", zap.Error(err))
		}
	}

	logger.Info("Query processed",
		zap.String("query_id", queryID),
		zap.Int("charts", result.ChartCount),
		zap.Int("latency_ms", result.LatencyMS),
	)

	return result
}

func (e *Engine) process(ctx context.Context, queryID, datasetID string, d *dataset.Dataset, query string) (result *Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic while processing query",
				zap.String("query_id", queryID),
				zap.Any("panic", r),
			)
			metrics.QueryTotal.WithLabelValues("panic").Inc()
			result = &Result{QueryID: queryID, Response: errorProcessingQuery}
		}
	}()

	lower := strings.ToLower(query)
	stem := fmt.Sprintf("%s_%s", datasetID, queryID[:8])
	cls := dataset.Classify(d)
	intro := composeIntro(d.Filename)
	wantsChart := WantsChart(lower)

	var answer string
	var charts []string

	switch DetectIntent(lower) {
	case IntentAverage:
		answer, charts = e.answerAverage(lower, d, cls, intro, stem)
	case IntentStatistics:
		answer, charts = e.answerStatistics(d, cls, intro, stem)
	case IntentScatter:
		answer, charts = e.answerScatter(lower, d, cls, intro, stem)
	case IntentTopN:
		answer = e.answerTopN(query, d, intro)
	}

	if answer == "" && e.tabular != nil && e.tabular.Available() {
		external, err := e.tabular.Query(ctx, d, query)
		if err != nil {
			logger.Warn("Dataframe-query service failed, falling back",
				zap.String("query_id", queryID),
				zap.Error(err),
			)
		} else {
			answer = intro + external
		}
	}

	if answer == "" {
		var generic []string
		answer, generic = e.answerGeneric(lower, wantsChart, d, cls, intro, stem)
		charts = append(charts, generic...)
	}

	// Chart selection is decoupled from the textual intent: run it when the
	// query asks for visuals or when nothing has been drawn yet, unless the
	// query explicitly opts out.
	if (wantsChart || len(charts) == 0) && !RefusesChart(lower) {
		specs := viz.SelectCharts(lower, d, cls)
		charts = append(charts, e.renderer.RenderAll(specs, d, stem)...)
	}

	answer = closeFraming(answer, intro)

	payloads := viz.EncodeAll(charts)
	answer = chartTrailer(answer, intro, len(payloads))

	return &Result{
		QueryID:       queryID,
		Response:      answer,
		Visualization: strings.Join(payloads, viz.Separator),
		ChartCount:    len(payloads),
	}
}

func (e *Engine) answerAverage(lower string, d *dataset.Dataset, cls dataset.Classification, intro, stem string) (string, []string) {
	col := BindAverageColumn(lower, d)

	if col != "" {
		mean := Mean(d.NumericValues(col))
		answer := intro + fmt.Sprintf("1. **Average %s**: The average %s of the dataset is approximately **$%.2f**.\n\n", col, col, mean)

		var charts []string
		if path, err := e.renderer.MeanHistogram(d, col, mean, stem); err != nil {
			logger.Error("Failed to render mean histogram", zap.Error(err))
		} else {
			charts = append(charts, path)
		}
		return answer, charts
	}

	if len(cls.Numeric) == 0 {
		return intro + "1. **No Numeric Data**: The dataset doesn't contain any numeric columns to calculate averages.\n\n", nil
	}

	answer := intro + "Here are the average values across different metrics in the dataset:\n\n"
	for i, name := range cls.Numeric {
		answer += fmt.Sprintf("%d. **Average %s**: The average %s is **%.2f**.\n\n", i+1, name, name, Mean(d.NumericValues(name)))
	}
	return answer, nil
}

func (e *Engine) answerStatistics(d *dataset.Dataset, cls dataset.Classification, intro, stem string) (string, []string) {
	if len(cls.Numeric) == 0 {
		return intro + "1. **No Numeric Data**: The dataset doesn't contain any numeric columns to calculate statistics.\n\n", nil
	}

	answer := intro
	for i, name := range cls.Numeric {
		s := Summarize(d.NumericValues(name))
		answer += fmt.Sprintf("%d. **%s Statistics**: Values range from $%.2f to $%.2f, with an average of $%.2f.\n\n", i+1, name, s.Min, s.Max, s.Mean)
	}

	var charts []string
	if path, err := e.renderer.Boxplot(d, cls.Numeric, stem); err != nil {
		logger.Error("Failed to render boxplot", zap.Error(err))
	} else {
		charts = append(charts, path)
	}
	return answer, charts
}

func (e *Engine) answerScatter(lower string, d *dataset.Dataset, cls dataset.Classification, intro, stem string) (string, []string) {
	if len(cls.Numeric) < 2 {
		return intro + "1. **Insufficient Numeric Data**: The dataset needs at least two numeric columns to create a scatter plot.\n\n", nil
	}

	x, y := BindScatterColumns(lower, d, cls.Numeric)
	if !isNumericColumn(x, cls) || !isNumericColumn(y, cls) {
		return intro + "1. **Column Error**: Could not identify appropriate numeric columns for the scatter plot. Please specify column names in your query.\n\n", nil
	}

	wantsTrend := strings.Contains(lower, "trend")

	var charts []string
	if path, err := e.renderer.RelationshipScatter(d, x, y, wantsTrend, stem); err != nil {
		logger.Error("Failed to render scatter", zap.Error(err))
	} else {
		charts = append(charts, path)
	}

	xs, ys := d.NumericPairs(x, y)
	r := Correlation(xs, ys)
	answer := intro + fmt.Sprintf("1. **Relationship Analysis**: The scatter plot reveals a %s correlation (r = %.4f) between %s and %s.\n\n",
		CorrelationStrength(r), r, x, y)

	if wantsTrend {
		slope, _ := Regression(xs, ys)
		direction := "increase"
		if slope < 0 {
			direction = "decrease"
		}
		answer += fmt.Sprintf("2. **Trend Analysis**: The red trendline shows the overall direction of the relationship. As %s increases, %s tends to %s.\n\n", x, y, direction)
	}

	return answer, charts
}

func (e *Engine) answerTopN(query string, d *dataset.Dataset, intro string) string {
	n := ExtractRowCount(query)

	var answer string
	if len(d.Columns) > 8 {
		answer = intro + fmt.Sprintf("1. **Top Rows Preview**: Here are the first %d rows of the dataset (showing only first 8 columns for readability):\n\n", n)
	} else {
		answer = intro + fmt.Sprintf("1. **Top Rows Preview**: Here are the first %d rows of the dataset:\n\n", n)
	}

	answer += markdownTable(d, n, 8) + "\n"
	answer += fmt.Sprintf("The dataset contains %d total rows and %d columns.\n\n", d.Rows(), len(d.Columns))
	return answer
}

func (e *Engine) answerGeneric(lower string, wantsChart bool, d *dataset.Dataset, cls dataset.Classification, intro, stem string) (string, []string) {
	if wantsChart {
		return intro + "1. **Data Visualization**: Here are visualizations based on your query about the dataset.\n\n", nil
	}

	mentioned := MentionedColumns(lower, d)
	if len(mentioned) > 0 {
		return e.answerColumnSummary(mentioned[0], d, cls, intro, stem)
	}

	answer := intro + fmt.Sprintf("1. **Dataset Overview**: The dataset contains %d records with %d columns.\n\n", d.Rows(), len(d.Columns))
	if len(cls.Numeric) > 0 {
		answer += fmt.Sprintf("2. **Numeric Columns**: There are %d numeric columns, including %s.\n\n", len(cls.Numeric), joinFirst(cls.Numeric, 3))
	}
	if len(cls.Categorical) > 0 {
		answer += fmt.Sprintf("3. **Categorical Columns**: There are %d categorical columns, including %s.\n\n", len(cls.Categorical), joinFirst(cls.Categorical, 3))
	}
	return answer, nil
}

func (e *Engine) answerColumnSummary(col string, d *dataset.Dataset, cls dataset.Classification, intro, stem string) (string, []string) {
	if isNumericColumn(col, cls) {
		s := Summarize(d.NumericValues(col))
		answer := intro + fmt.Sprintf("1. **%s Analysis**: This numeric column has the following characteristics:\n\n", col)
		answer += fmt.Sprintf("   - **Range**: From $%.2f to $%.2f\n", s.Min, s.Max)
		answer += fmt.Sprintf("   - **Average**: $%.2f\n", s.Mean)
		answer += fmt.Sprintf("   - **Median**: $%.2f\n", s.Median)
		answer += fmt.Sprintf("   - **Standard Deviation**: $%.2f\n\n", s.StdDev)

		var charts []string
		if path, err := e.renderer.ColumnHistogram(d, col, stem); err != nil {
			logger.Error("Failed to render column histogram", zap.Error(err))
		} else {
			charts = append(charts, path)
		}
		return answer, charts
	}

	counts := d.ValueCounts(col)
	if len(counts) > 10 {
		counts = counts[:10]
	}

	answer := intro + fmt.Sprintf("1. **%s Distribution**: This categorical column has the following distribution:\n\n", col)
	for _, vc := range counts {
		answer += fmt.Sprintf("   - **%s**: %d occurrences (%.1f%% of data)\n", vc.Value, vc.Count, float64(vc.Count)/float64(d.Rows())*100)
	}
	answer += "\n"

	var charts []string
	if path, err := e.renderer.ValueCountBar(d, col, stem); err != nil {
		logger.Error("Failed to render value-count bars", zap.Error(err))
	} else {
		charts = append(charts, path)
	}
	return answer, charts
}

func isNumericColumn(name string, cls dataset.Classification) bool {
	for _, n := range cls.Numeric {
		if n == name {
			return true
		}
	}
	return false
}
