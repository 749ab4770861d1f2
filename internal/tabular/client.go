package tabular

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/csvchat/backend/internal/dataset"
	"github.com/csvchat/backend/pkg/logger"
)

// Client talks to the external natural-language-over-dataframe service: a
// single request/response contract where the dataset's records and the
// query go out and an answer string comes back. An unset API key disables
// the client; callers check Available before use.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

type queryRequest struct {
	Query   string                   `json:"query"`
	Columns []string                 `json:"columns"`
	Records []map[string]interface{} `json:"records"`
}

type queryResponse struct {
	Answer string `json:"answer"`
	Error  string `json:"error,omitempty"`
}

func NewClient(endpoint, apiKey string, timeoutSec int) *Client {
	if timeoutSec == 0 {
		timeoutSec = 30
	}

	logger.Info("Tabular query client initialized",
		zap.String("endpoint", endpoint),
		zap.Bool("api_key_set", apiKey != ""),
	)

	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSec) * time.Second,
		},
	}
}

func (c *Client) Available() bool {
	return c != nil && c.apiKey != ""
}

// Query submits the dataset and query and returns the service's raw answer
// text. Errors are returned as-is; the engine degrades to local fallbacks.
func (c *Client) Query(ctx context.Context, d *dataset.Dataset, query string) (string, error) {
	body, err := json.Marshal(queryRequest{
		Query:   query,
		Columns: d.ColumnNames(),
		Records: d.Records(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal query request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("dataframe query failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("dataframe query returned status %d", resp.StatusCode)
	}

	var parsed queryResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("dataframe query error: %s", parsed.Error)
	}

	logger.Debug("Dataframe query answered", zap.Int("answer_length", len(parsed.Answer)))
	return parsed.Answer, nil
}
