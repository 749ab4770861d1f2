package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/csvchat/backend/internal/metrics"
	"github.com/csvchat/backend/pkg/circuitbreaker"
	"github.com/csvchat/backend/pkg/logger"
	"github.com/csvchat/backend/pkg/retry"
)

const chatSystemPrompt = "You are an AI assistant that provides clear, concise, and helpful responses. Format your answers with proper markdown when appropriate."

const chatErrorResponse = "## Error\n\nI encountered an error processing your request. Please try again later."

// Client wraps the OpenAI chat API behind a circuit breaker and retries.
// It backs the generic-chat endpoint only; dataset queries never reach it.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

func NewClient(apiKey, model string, temperature float32, maxTokens, timeoutSec int) *Client {
	cb := circuitbreaker.NewCircuitBreaker("llm", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:    3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
	}

	logger.Info("LLM client initialized",
		zap.String("model", model),
		zap.Bool("api_key_set", apiKey != ""),
	)

	return &Client{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     time.Duration(timeoutSec) * time.Second,
		cb:          cb,
		retryConfig: retryConfig,
	}
}

// Chat forwards a free-text query and returns the model's markdown answer.
func (c *Client) Chat(ctx context.Context, query string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: chatSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: query},
	}

	var content string

	err := c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
				Model:       c.model,
				Messages:    messages,
				Temperature: c.temperature,
				MaxTokens:   c.maxTokens,
			})
			if err != nil {
				return fmt.Errorf("failed to create completion: %w", err)
			}
			if len(resp.Choices) == 0 {
				return fmt.Errorf("completion returned no choices")
			}

			content = resp.Choices[0].Message.Content
			metrics.LLMTokensUsed.WithLabelValues(c.model, "prompt").Add(float64(resp.Usage.PromptTokens))
			metrics.LLMTokensUsed.WithLabelValues(c.model, "completion").Add(float64(resp.Usage.CompletionTokens))
			return nil
		})
	})
	if err != nil {
		return "", err
	}

	logger.Info("Chat response generated", zap.Int("response_length", len(content)))
	return content, nil
}

// ChatOrApology is Chat with the error path mapped to the user-facing
// markdown apology block, so the chat endpoint never surfaces a failure.
func (c *Client) ChatOrApology(ctx context.Context, query string) string {
	content, err := c.Chat(ctx, query)
	if err != nil {
		logger.Error("LLM chat failed", zap.Error(err))
		return fmt.Sprintf("%s\n\nDetails: %v", chatErrorResponse, err)
	}
	return content
}
