package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mikey/llm-mail-extractor/internal/config"
	"github.com/mikey/llm-mail-extractor/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(baseURL string) config.OpenAIConfig {
	return config.OpenAIConfig{
		APIKey:      "sk-test",
		ModelName:   "gpt-4o-mini",
		BaseURL:     baseURL,
		MaxTokens:   512,
		Temperature: 0.1,
		TopP:        1,
	}
}

func TestNewOpenAIClientRequiresConfig(t *testing.T) {
	cfg := testConfig("")
	cfg.APIKey = ""
	_, err := NewOpenAIClient(cfg, zap.NewNop())
	var cfgErr *core.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "openai.api_key", cfgErr.Key)

	cfg = testConfig("")
	cfg.ModelName = ""
	_, err = NewOpenAIClient(cfg, zap.NewNop())
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "openai.model_name", cfgErr.Key)
}

func TestComplete(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini-2024-07-18",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": " {\"total\": 5} "}, "finish_reason": "stop"}]
		}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient(testConfig(server.URL+"/v1/"), zap.NewNop())
	require.NoError(t, err)

	completion, err := client.Complete(context.Background(), "extract", "")
	require.NoError(t, err)

	assert.Equal(t, `{"total": 5}`, completion.ExtractedData)
	// the requested id is reported even when the server names a snapshot
	assert.Equal(t, "gpt-4o-mini", completion.ModelID)
	assert.Equal(t, "openai", completion.Provider)
	assert.False(t, completion.Failed())

	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "extract", got.Messages[0].Content)
}

func TestCompleteKeepsRequestedModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"model": "gpt-4o-2024-08-06",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{}"}, "finish_reason": "stop"}]
		}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient(testConfig(server.URL+"/v1"), zap.NewNop())
	require.NoError(t, err)

	completion, err := client.Complete(context.Background(), "extract", "gpt-4o")
	require.NoError(t, err)

	assert.False(t, completion.Failed())
	assert.Equal(t, "gpt-4o", completion.ModelID)
}

func TestCompleteServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "upstream exploded", "type": "server_error"}}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient(testConfig(server.URL+"/v1"), zap.NewNop())
	require.NoError(t, err)

	completion, err := client.Complete(context.Background(), "extract", "gpt-4o")
	require.NoError(t, err)

	assert.True(t, completion.Failed())
	assert.Contains(t, completion.Error, "upstream exploded")
	assert.Contains(t, completion.ExtractedData, "[openai error]")
	assert.Equal(t, "gpt-4o", completion.ModelID)
}

func TestCompleteNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "chatcmpl-2", "object": "chat.completion", "choices": []}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient(testConfig(server.URL+"/v1"), zap.NewNop())
	require.NoError(t, err)

	completion, err := client.Complete(context.Background(), "extract", "")
	require.NoError(t, err)
	assert.True(t, completion.Failed())
	assert.Equal(t, "empty response from OpenAI", completion.Error)
}
