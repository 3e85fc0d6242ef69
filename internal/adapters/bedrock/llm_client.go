package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/llm-mail-extractor/internal/config"
	"github.com/mikey/llm-mail-extractor/internal/core"
	"go.uber.org/zap"
)

const providerName = "bedrock"

// InvokeModelAPI is the subset of the Bedrock runtime client used for extraction
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type modelFamily int

const (
	familyGeneric modelFamily = iota
	familyAnthropic
	familyTitan
)

// BedrockClient is an implementation of the ModelClient interface using Amazon Bedrock
type BedrockClient struct {
	api               InvokeModelAPI
	defaultModelID    string
	inferenceProfiles map[string]string
	maxTokens         int
	temperature       float32
	topP              float32
	anthropicVersion  string
	logger            *zap.Logger
}

// NewBedrockClient creates a new Bedrock client. Region and default model are
// required; a missing value is reported as a *core.ConfigError.
func NewBedrockClient(api InvokeModelAPI, cfg config.BedrockConfig, logger *zap.Logger) (*BedrockClient, error) {
	if strings.TrimSpace(cfg.Region) == "" {
		return nil, core.NewMissingConfigError("bedrock.region")
	}
	if strings.TrimSpace(cfg.ModelID) == "" {
		return nil, core.NewMissingConfigError("bedrock.model_id")
	}
	if api == nil {
		return nil, errors.New("bedrock runtime client is nil")
	}

	profiles := make(map[string]string, len(cfg.InferenceProfiles))
	for logical, effective := range cfg.InferenceProfiles {
		profiles[strings.ToLower(logical)] = effective
	}

	return &BedrockClient{
		api:               api,
		defaultModelID:    cfg.ModelID,
		inferenceProfiles: profiles,
		maxTokens:         cfg.MaxTokens,
		temperature:       cfg.Temperature,
		topP:              cfg.TopP,
		anthropicVersion:  cfg.AnthropicVersion,
		logger:            logger,
	}, nil
}

// ResolveModelID maps a logical model identifier to the identifier sent on the wire.
// An empty identifier selects the configured default.
func (c *BedrockClient) ResolveModelID(modelID string) string {
	logical := strings.TrimSpace(modelID)
	if logical == "" {
		logical = c.defaultModelID
	}
	// viper lower-cases map keys
	if effective, ok := c.inferenceProfiles[strings.ToLower(logical)]; ok && effective != "" {
		return effective
	}
	return logical
}

// Complete sends the prompt to Bedrock and returns the raw completion text
func (c *BedrockClient) Complete(ctx context.Context, prompt string, modelID string) (*core.Completion, error) {
	logical := strings.TrimSpace(modelID)
	if logical == "" {
		logical = c.defaultModelID
	}
	effective := c.ResolveModelID(logical)
	if effective == "" {
		return nil, core.NewMissingConfigError("bedrock.model_id")
	}

	family := familyOf(logical)
	if family == familyGeneric {
		family = familyOf(effective)
	}

	c.logger.Info("Invoking Bedrock model",
		zap.String("logical_model", logical),
		zap.String("model", effective),
		zap.Int("prompt_size", len(prompt)))

	payload, err := c.requestBody(family, prompt)
	if err != nil {
		return c.failed(effective, fmt.Errorf("failed to marshal request payload: %w", err)), nil
	}

	resp, err := c.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(effective),
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return c.failed(effective, fmt.Errorf("failed to invoke Bedrock model: %w", err)), nil
	}

	text, err := responseText(family, resp.Body)
	if err != nil {
		return c.failed(effective, err), nil
	}

	c.logger.Debug("Bedrock responded",
		zap.String("model", effective),
		zap.Int("response_size", len(text)))

	return &core.Completion{
		ExtractedData: text,
		ModelID:       effective,
		Provider:      providerName,
	}, nil
}

func (c *BedrockClient) failed(modelID string, err error) *core.Completion {
	c.logger.Error("Bedrock call failed", zap.String("model", modelID), zap.Error(err))
	return core.FailedCompletion(providerName, modelID, err)
}

func (c *BedrockClient) requestBody(family modelFamily, prompt string) ([]byte, error) {
	switch family {
	case familyAnthropic:
		return json.Marshal(map[string]interface{}{
			"anthropic_version": c.anthropicVersion,
			"messages": []map[string]string{
				{"role": "user", "content": prompt},
			},
			"max_tokens":  c.maxTokens,
			"temperature": c.temperature,
			"top_p":       c.topP,
		})
	case familyTitan:
		return json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": c.maxTokens,
				"temperature":   c.temperature,
				"topP":          c.topP,
			},
		})
	default:
		return json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  c.maxTokens,
			"temperature": c.temperature,
			"top_p":       c.topP,
		})
	}
}

func responseText(family modelFamily, body []byte) (string, error) {
	switch family {
	case familyAnthropic:
		var claudeResp struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Anthropic response: %w", err)
		}
		if len(claudeResp.Content) == 0 {
			return "", errors.New("unexpected Anthropic response format: no content blocks")
		}
		return strings.TrimSpace(claudeResp.Content[0].Text), nil
	case familyTitan:
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", errors.New("empty response from Titan model")
		}
		return strings.TrimSpace(titanResp.Results[0].OutputText), nil
	default:
		var genericResp struct {
			Output     string `json:"output"`
			Text       string `json:"text"`
			Response   string `json:"response"`
			Generation string `json:"generation"`
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(body, &genericResp); err != nil {
			// Not JSON at all, hand the raw body to the normalizer
			return string(body), nil
		}
		for _, candidate := range []string{
			genericResp.Output,
			genericResp.Text,
			genericResp.Response,
			genericResp.Generation,
			genericResp.Completion,
		} {
			if candidate != "" {
				return strings.TrimSpace(candidate), nil
			}
		}
		return string(body), nil
	}
}

// familyOf picks the request shape from a model id, profile id or ARN
func familyOf(modelID string) modelFamily {
	id := strings.ToLower(modelID)
	switch {
	case strings.Contains(id, "anthropic.") || strings.Contains(id, "claude"):
		return familyAnthropic
	case strings.Contains(id, "amazon.titan"):
		return familyTitan
	default:
		return familyGeneric
	}
}
