package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/csvchat/backend/internal/llm"
	"github.com/csvchat/backend/pkg/logger"
)

type ChatHandler struct {
	llmClient *llm.Client
}

func NewChatHandler(llmClient *llm.Client) *ChatHandler {
	return &ChatHandler{
		llmClient: llmClient,
	}
}

// HandleChat forwards a free-text message, unrelated to any dataset, to
// the LLM chat service and returns its markdown answer verbatim.
func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
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

	logger.Info("Received chat message", zap.Int("query_length", len(req.Query)))

	return c.JSON(fiber.Map{
		"response": h.llmClient.ChatOrApology(c.Context(), req.Query),
	})
}
