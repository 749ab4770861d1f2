package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csvchat/backend/internal/storage/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	require.NoError(t, c.InitSchema())
	return c
}

func TestInitSchemaIdempotent(t *testing.T) {
	c := newTestClient(t)
	assert.NoError(t, c.InitSchema())
}

func TestInsertDatasetRecord(t *testing.T) {
	c := newTestClient(t)

	err := c.InsertDatasetRecord(&models.DatasetRecord{
		ID:         "ds1",
		Filename:   "sales.csv",
		Columns:    4,
		Rows:       100,
		UploadedAt: time.Now(),
	})
	assert.NoError(t, err)

	// duplicate id violates the primary key
	err = c.InsertDatasetRecord(&models.DatasetRecord{
		ID:         "ds1",
		Filename:   "other.csv",
		UploadedAt: time.Now(),
	})
	assert.Error(t, err)
}

func TestQueryHistoryRoundTrip(t *testing.T) {
	c := newTestClient(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		require.NoError(t, c.InsertQueryRecord(&models.QueryRecord{
			ID:         string(rune('a' + i)),
			DatasetID:  "ds1",
			QueryText:  "average revenue",
			Intent:     "average",
			ChartCount: 1,
			LatencyMS:  10 + i,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	records, err := c.ListQueryHistory(10)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// newest first
	assert.Equal(t, "c", records[0].ID)
	assert.Equal(t, "a", records[2].ID)
	assert.Equal(t, "average", records[0].Intent)
	assert.Equal(t, 12, records[0].LatencyMS)
}

func TestQueryHistoryLimit(t *testing.T) {
	c := newTestClient(t)

	base := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, c.InsertQueryRecord(&models.QueryRecord{
			ID:        string(rune('a' + i)),
			QueryText: "q",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	records, err := c.ListQueryHistory(2)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	// non-positive limits fall back to the default
	records, err = c.ListQueryHistory(0)
	require.NoError(t, err)
	assert.Len(t, records, 5)
}

func TestQueryHistoryEmpty(t *testing.T) {
	c := newTestClient(t)
	records, err := c.ListQueryHistory(10)
	require.NoError(t, err)
	assert.Empty(t, records)
}
