package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/llm-mail-extractor/internal/config"
	"github.com/mikey/llm-mail-extractor/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockInvokeModelAPI struct {
	mock.Mock
}

func (m *mockInvokeModelAPI) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*bedrockruntime.InvokeModelOutput)
	return out, args.Error(1)
}

func testConfig() config.BedrockConfig {
	return config.BedrockConfig{
		Region:           "us-east-1",
		ModelID:          "anthropic.claude-3-haiku-20240307-v1:0",
		MaxTokens:        1024,
		Temperature:      0.2,
		TopP:             0.9,
		AnthropicVersion: "bedrock-2023-05-31",
		InferenceProfiles: map[string]string{
			"Anthropic.Claude-3-Sonnet": "arn:aws:bedrock:us-east-1:123456789012:inference-profile/us.sonnet",
		},
	}
}

func withModel(id string) interface{} {
	return mock.MatchedBy(func(in *bedrockruntime.InvokeModelInput) bool {
		return aws.ToString(in.ModelId) == id
	})
}

func output(body string) *bedrockruntime.InvokeModelOutput {
	return &bedrockruntime.InvokeModelOutput{Body: []byte(body)}
}

func TestNewBedrockClientRequiresConfig(t *testing.T) {
	api := &mockInvokeModelAPI{}

	cfg := testConfig()
	cfg.Region = ""
	_, err := NewBedrockClient(api, cfg, zap.NewNop())
	var cfgErr *core.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "bedrock.region", cfgErr.Key)

	cfg = testConfig()
	cfg.ModelID = "  "
	_, err = NewBedrockClient(api, cfg, zap.NewNop())
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "bedrock.model_id", cfgErr.Key)
}

func TestResolveModelID(t *testing.T) {
	client, err := NewBedrockClient(&mockInvokeModelAPI{}, testConfig(), zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "anthropic.claude-3-haiku-20240307-v1:0", client.ResolveModelID(""))
	assert.Equal(t, "amazon.titan-text-express-v1", client.ResolveModelID("amazon.titan-text-express-v1"))
	assert.Equal(t,
		"arn:aws:bedrock:us-east-1:123456789012:inference-profile/us.sonnet",
		client.ResolveModelID("anthropic.claude-3-sonnet"))
}

func TestCompleteAnthropic(t *testing.T) {
	api := &mockInvokeModelAPI{}
	api.On("InvokeModel", mock.Anything, mock.MatchedBy(func(in *bedrockruntime.InvokeModelInput) bool {
		var body map[string]interface{}
		if err := json.Unmarshal(in.Body, &body); err != nil {
			return false
		}
		messages, _ := body["messages"].([]interface{})
		if len(messages) != 1 {
			return false
		}
		first, _ := messages[0].(map[string]interface{})
		return aws.ToString(in.ModelId) == "anthropic.claude-3-haiku-20240307-v1:0" &&
			body["anthropic_version"] == "bedrock-2023-05-31" &&
			body["max_tokens"] == float64(1024) &&
			first["role"] == "user" &&
			first["content"] == "extract this"
	})).Return(output(`{"content":[{"type":"text","text":" {\"invoice_number\":\"INV-1\"} "}]}`), nil)

	client, err := NewBedrockClient(api, testConfig(), zap.NewNop())
	require.NoError(t, err)

	completion, err := client.Complete(context.Background(), "extract this", "")
	require.NoError(t, err)

	assert.Equal(t, `{"invoice_number":"INV-1"}`, completion.ExtractedData)
	assert.Equal(t, "anthropic.claude-3-haiku-20240307-v1:0", completion.ModelID)
	assert.Equal(t, "bedrock", completion.Provider)
	assert.False(t, completion.Failed())
	api.AssertExpectations(t)
}

func TestCompleteRoutesThroughInferenceProfile(t *testing.T) {
	profile := "arn:aws:bedrock:us-east-1:123456789012:inference-profile/us.sonnet"
	api := &mockInvokeModelAPI{}
	api.On("InvokeModel", mock.Anything, withModel(profile)).
		Return(output(`{"content":[{"type":"text","text":"{}"}]}`), nil)

	client, err := NewBedrockClient(api, testConfig(), zap.NewNop())
	require.NoError(t, err)

	completion, err := client.Complete(context.Background(), "p", "anthropic.claude-3-sonnet")
	require.NoError(t, err)

	assert.Equal(t, "{}", completion.ExtractedData)
	assert.Equal(t, profile, completion.ModelID)
	api.AssertExpectations(t)
}

func TestCompleteTitan(t *testing.T) {
	api := &mockInvokeModelAPI{}
	api.On("InvokeModel", mock.Anything, mock.MatchedBy(func(in *bedrockruntime.InvokeModelInput) bool {
		var body map[string]interface{}
		if err := json.Unmarshal(in.Body, &body); err != nil {
			return false
		}
		return body["inputText"] == "p"
	})).Return(output(`{"results":[{"outputText":"titan says hi"}]}`), nil)

	client, err := NewBedrockClient(api, testConfig(), zap.NewNop())
	require.NoError(t, err)

	completion, err := client.Complete(context.Background(), "p", "amazon.titan-text-express-v1")
	require.NoError(t, err)
	assert.Equal(t, "titan says hi", completion.ExtractedData)
}

func TestCompleteGenericResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"generation field", `{"generation":"llama output"}`, "llama output"},
		{"completion field", `{"completion":"legacy output"}`, "legacy output"},
		{"unknown shape", `{"foo":"bar"}`, `{"foo":"bar"}`},
		{"not json", `plain words`, "plain words"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockInvokeModelAPI{}
			api.On("InvokeModel", mock.Anything, withModel("meta.llama3-8b-instruct-v1:0")).
				Return(output(tt.body), nil)

			client, err := NewBedrockClient(api, testConfig(), zap.NewNop())
			require.NoError(t, err)

			completion, err := client.Complete(context.Background(), "p", "meta.llama3-8b-instruct-v1:0")
			require.NoError(t, err)
			assert.Equal(t, tt.want, completion.ExtractedData)
		})
	}
}

func TestCompleteTransportFailure(t *testing.T) {
	api := &mockInvokeModelAPI{}
	api.On("InvokeModel", mock.Anything, mock.Anything).
		Return(nil, errors.New("AccessDeniedException: not allowed"))

	client, err := NewBedrockClient(api, testConfig(), zap.NewNop())
	require.NoError(t, err)

	completion, err := client.Complete(context.Background(), "p", "")
	require.NoError(t, err)

	assert.True(t, completion.Failed())
	assert.Contains(t, completion.Error, "AccessDeniedException")
	assert.Contains(t, completion.ExtractedData, "[bedrock error]")
	assert.Equal(t, "bedrock", completion.Provider)
}

func TestCompleteAnthropicWithoutContent(t *testing.T) {
	api := &mockInvokeModelAPI{}
	api.On("InvokeModel", mock.Anything, mock.Anything).Return(output(`{"content":[]}`), nil)

	client, err := NewBedrockClient(api, testConfig(), zap.NewNop())
	require.NoError(t, err)

	completion, err := client.Complete(context.Background(), "p", "")
	require.NoError(t, err)
	assert.True(t, completion.Failed())
}

func TestFamilyOf(t *testing.T) {
	assert.Equal(t, familyAnthropic, familyOf("anthropic.claude-3-haiku-20240307-v1:0"))
	assert.Equal(t, familyAnthropic, familyOf("us.anthropic.claude-3-5-sonnet-20240620-v1:0"))
	assert.Equal(t, familyAnthropic, familyOf("my-claude-profile"))
	assert.Equal(t, familyTitan, familyOf("amazon.titan-text-lite-v1"))
	assert.Equal(t, familyGeneric, familyOf("arn:aws:bedrock:us-east-1:1:inference-profile/x"))
	assert.Equal(t, familyGeneric, familyOf("mistral.mistral-7b-instruct-v0:2"))
}
