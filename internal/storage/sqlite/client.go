package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/csvchat/backend/internal/storage/models"
	"github.com/csvchat/backend/pkg/logger"
)

// Client persists the audit trail: which datasets were uploaded and which
// queries ran against them. The served datasets themselves live only in
// memory; this store is never read on the query path.
type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS datasets (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		columns INTEGER NOT NULL,
		rows INTEGER NOT NULL,
		uploaded_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_datasets_uploaded ON datasets(uploaded_at);

	CREATE TABLE IF NOT EXISTS query_history (
		id TEXT PRIMARY KEY,
		dataset_id TEXT,
		query_text TEXT NOT NULL,
		response TEXT,
		intent TEXT,
		chart_count INTEGER,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_history_dataset ON query_history(dataset_id);
	CREATE INDEX IF NOT EXISTS idx_history_created ON query_history(created_at);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

func (c *Client) InsertDatasetRecord(rec *models.DatasetRecord) error {
	_, err := c.db.Exec(
		`INSERT INTO datasets (id, filename, columns, rows, uploaded_at) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Filename, rec.Columns, rec.Rows, rec.UploadedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert dataset record: %w", err)
	}
	return nil
}

func (c *Client) InsertQueryRecord(rec *models.QueryRecord) error {
	_, err := c.db.Exec(
		`INSERT INTO query_history (id, dataset_id, query_text, response, intent, chart_count, latency_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.DatasetID, rec.QueryText, rec.Response, rec.Intent, rec.ChartCount, rec.LatencyMS, rec.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert query record: %w", err)
	}
	return nil
}

func (c *Client) ListQueryHistory(limit int) ([]models.QueryRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := c.db.Query(
		`SELECT id, dataset_id, query_text, intent, chart_count, latency_ms, created_at
		 FROM query_history ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list query history: %w", err)
	}
	defer rows.Close()

	var records []models.QueryRecord
	for rows.Next() {
		var rec models.QueryRecord
		var createdAt int64
		if err := rows.Scan(&rec.ID, &rec.DatasetID, &rec.QueryText, &rec.Intent, &rec.ChartCount, &rec.LatencyMS, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan query record: %w", err)
		}
		rec.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, rec)
	}
	return records, rows.Err()
}
