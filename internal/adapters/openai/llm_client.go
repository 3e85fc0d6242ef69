package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mikey/llm-mail-extractor/internal/config"
	"github.com/mikey/llm-mail-extractor/internal/core"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const providerName = "openai"

// OpenAIClient is an implementation of the ModelClient interface using OpenAI
type OpenAIClient struct {
	client      *openai.Client
	modelName   string
	maxTokens   int
	temperature float32
	topP        float32
	logger      *zap.Logger
}

// NewOpenAIClient creates a new OpenAI client. An empty BaseURL uses the public API.
func NewOpenAIClient(cfg config.OpenAIConfig, logger *zap.Logger) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, core.NewMissingConfigError("openai.api_key")
	}
	if strings.TrimSpace(cfg.ModelName) == "" {
		return nil, core.NewMissingConfigError("openai.model_name")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(clientCfg),
		modelName:   cfg.ModelName,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		logger:      logger,
	}, nil
}

// Complete sends the prompt as a single user message and returns the first choice
func (c *OpenAIClient) Complete(ctx context.Context, prompt string, modelID string) (*core.Completion, error) {
	model := strings.TrimSpace(modelID)
	if model == "" {
		model = c.modelName
	}

	c.logger.Info("Invoking OpenAI model",
		zap.String("model", model),
		zap.Int("prompt_size", len(prompt)))

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return c.failed(model, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)), nil
	}

	if len(resp.Choices) == 0 {
		return c.failed(model, errors.New("empty response from OpenAI")), nil
	}

	if resp.Model != "" && resp.Model != model {
		c.logger.Debug("OpenAI resolved model alias",
			zap.String("requested", model),
			zap.String("resolved", resp.Model))
	}

	return &core.Completion{
		ExtractedData: strings.TrimSpace(resp.Choices[0].Message.Content),
		ModelID:       model,
		Provider:      providerName,
	}, nil
}

func (c *OpenAIClient) failed(model string, err error) *core.Completion {
	c.logger.Error("OpenAI call failed", zap.String("model", model), zap.Error(err))
	return core.FailedCompletion(providerName, model, err)
}
