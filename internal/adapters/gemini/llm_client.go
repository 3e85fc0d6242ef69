package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/llm-mail-extractor/internal/config"
	"github.com/mikey/llm-mail-extractor/internal/core"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const providerName = "gemini"

// GeminiClient is an implementation of the ModelClient interface using Google Gemini
type GeminiClient struct {
	client      *genai.Client
	modelName   string
	maxTokens   int
	temperature float32
	topP        float32
	logger      *zap.Logger
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(cfg config.GeminiConfig, logger *zap.Logger) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, core.NewMissingConfigError("gemini.api_key")
	}
	if strings.TrimSpace(cfg.ModelName) == "" {
		return nil, core.NewMissingConfigError("gemini.model_name")
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:      client,
		modelName:   cfg.ModelName,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		logger:      logger,
	}, nil
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Complete sends the prompt to Gemini and returns the text of the first candidate
func (c *GeminiClient) Complete(ctx context.Context, prompt string, modelID string) (*core.Completion, error) {
	modelName := strings.TrimSpace(modelID)
	if modelName == "" {
		modelName = c.modelName
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(c.temperature)
	model.SetTopP(c.topP)
	if c.maxTokens > 0 {
		model.SetMaxOutputTokens(int32(c.maxTokens))
	}

	c.logger.Info("Invoking Gemini model",
		zap.String("model", modelName),
		zap.Int("prompt_size", len(prompt)))

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return c.failed(modelName, fmt.Errorf("failed to generate content with Gemini: %w", err)), nil
	}

	text, err := responseText(resp)
	if err != nil {
		return c.failed(modelName, err), nil
	}

	return &core.Completion{
		ExtractedData: text,
		ModelID:       modelName,
		Provider:      providerName,
	}, nil
}

func (c *GeminiClient) failed(model string, err error) *core.Completion {
	c.logger.Error("Gemini call failed", zap.String("model", model), zap.Error(err))
	return core.FailedCompletion(providerName, model, err)
}

// responseText concatenates the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("empty response from Gemini")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("empty response from Gemini")
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", errors.New("Gemini response contained no text parts")
	}
	return strings.TrimSpace(b.String()), nil
}
