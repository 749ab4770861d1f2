package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/csvchat/backend/internal/analysis"
	"github.com/csvchat/backend/internal/dataset"
	"github.com/csvchat/backend/internal/storage/sqlite"
	"github.com/csvchat/backend/pkg/logger"
)

type QueryHandler struct {
	store  *dataset.Store
	engine *analysis.Engine
	db     *sqlite.Client
}

func NewQueryHandler(store *dataset.Store, engine *analysis.Engine, db *sqlite.Client) *QueryHandler {
	return &QueryHandler{
		store:  store,
		engine: engine,
		db:     db,
	}
}

// HandleQuery answers a natural-language question about one dataset. Apart
// from the unknown-id case the endpoint always returns a success-shaped
// payload; analysis failures surface inside the response text.
func (h *QueryHandler) HandleQuery(c *fiber.Ctx) error {
	datasetID := c.Params("id")

	var req struct {
		Query string `json:"query"`
	}
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query is required",
		})
	}

	ds, ok := h.store.Get(datasetID)
	if !ok {
		logger.Warn("Dataset not found", zap.String("dataset_id", datasetID))
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Dataset not found",
		})
	}

	result := h.engine.ProcessQuery(c.Context(), datasetID, ds, req.Query)

	return c.JSON(fiber.Map{
		"id":            result.QueryID,
		"response":      result.Response,
		"visualization": result.Visualization,
		"chart_count":   result.ChartCount,
		"latency_ms":    result.LatencyMS,
	})
}

func (h *QueryHandler) GetQueryHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)

	if h.db == nil {
		return c.JSON(fiber.Map{"history": []interface{}{}})
	}

	records, err := h.db.ListQueryHistory(limit)
	if err != nil {
		logger.Error("Failed to list query history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load query history",
		})
	}

	history := make([]fiber.Map, 0, len(records))
	for _, rec := range records {
		history = append(history, fiber.Map{
			"id":          rec.ID,
			"dataset_id":  rec.DatasetID,
			"query":       rec.QueryText,
			"intent":      rec.Intent,
			"chart_count": rec.ChartCount,
			"latency_ms":  rec.LatencyMS,
			"created_at":  rec.CreatedAt.Unix(),
		})
	}

	return c.JSON(fiber.Map{"history": history})
}
