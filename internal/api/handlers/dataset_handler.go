package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/csvchat/backend/internal/dataset"
	"github.com/csvchat/backend/internal/metrics"
	"github.com/csvchat/backend/internal/storage/models"
	"github.com/csvchat/backend/internal/storage/sqlite"
	"github.com/csvchat/backend/pkg/logger"
)

const previewRows = 5

type DatasetHandler struct {
	store *dataset.Store
	db    *sqlite.Client
}

func NewDatasetHandler(store *dataset.Store, db *sqlite.Client) *DatasetHandler {
	return &DatasetHandler{
		store: store,
		db:    db,
	}
}

// Upload accepts a multipart CSV file, parses it into the in-memory store
// and returns the new dataset's id with a short preview. Bad extensions
// and parse failures are the only hard errors the dataset surface returns.
func (h *DatasetHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "A file upload is required",
		})
	}

	logger.Info("Received file upload", zap.String("filename", fileHeader.Filename))

	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".csv") {
		logger.Warn("Rejected non-CSV file", zap.String("filename", fileHeader.Filename))
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Only CSV files are supported",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("Error processing CSV: %v", err),
		})
	}
	defer file.Close()

	ds, err := dataset.Parse(fileHeader.Filename, file)
	if err != nil {
		logger.Error("Failed to parse CSV", zap.String("filename", fileHeader.Filename), zap.Error(err))
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("Error processing CSV: %v", err),
		})
	}

	id := h.store.Add(ds)
	metrics.UploadsTotal.WithLabelValues("success").Inc()
	metrics.DatasetRows.Observe(float64(ds.Rows()))

	if h.db != nil {
		if err := h.db.InsertDatasetRecord(&models.DatasetRecord{
			ID:         id,
			Filename:   ds.Filename,
			Columns:    len(ds.Columns),
			Rows:       ds.Rows(),
			UploadedAt: time.Now(),
		}); err != nil {
			logger.Warn("Failed to record dataset upload", zap.Error(err))
		}
	}

	logger.Info("Dataset uploaded",
		zap.String("dataset_id", id),
		zap.String("filename", ds.Filename),
		zap.Int("rows", ds.Rows()),
		zap.Int("columns", len(ds.Columns)),
	)

	return c.JSON(fiber.Map{
		"dataset_id": id,
		"filename":   ds.Filename,
		"columns":    ds.ColumnNames(),
		"rows":       ds.Rows(),
		"preview":    ds.Preview(previewRows),
	})
}
