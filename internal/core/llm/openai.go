package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	apperrors "github.com/econbrief/news-enricher/internal/core/errors"
)

const rateLimiterBurst = 5

type openaiClient struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	rateLimiter *rate.Limiter
	logger      *zerolog.Logger
}

// OpenAIConfig holds configuration for the OpenAI chat client.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
	RateLimit   int // requests per second
}

// NewOpenAI creates a chat completion client with JSON-object response
// format and low-temperature decoding.
func NewOpenAI(cfg OpenAIConfig, logger *zerolog.Logger) Client {
	rps := cfg.RateLimit
	if rps <= 0 {
		rps = 1
	}

	return &openaiClient{
		client:      openai.NewClient(cfg.APIKey),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		rateLimiter: rate.NewLimiter(rate.Limit(float64(rps)), rateLimiterBurst),
		logger:      logger,
	}
}

func (c *openaiClient) Complete(ctx context.Context, systemPrompt, userContent string) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("llm rate limiter wait: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userContent},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: chat completion: %w", apperrors.ErrExternalService, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", apperrors.ErrMalformedResponse)
	}

	content := resp.Choices[0].Message.Content
	c.logger.Debug().Int("len", len(content)).Msg("llm response received")

	return content, nil
}
