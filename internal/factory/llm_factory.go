package factory

import (
	"fmt"
	"strings"

	"github.com/mikey/llm-mail-extractor/internal/adapters/bedrock"
	"github.com/mikey/llm-mail-extractor/internal/adapters/gemini"
	"github.com/mikey/llm-mail-extractor/internal/adapters/openai"
	"github.com/mikey/llm-mail-extractor/internal/config"
	"github.com/mikey/llm-mail-extractor/internal/core"
	"go.uber.org/zap"
)

// LLMFactory creates LLM clients
type LLMFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger) *LLMFactory {
	return &LLMFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateLLMClient creates a new LLM client based on the configuration
func (f *LLMFactory) CreateLLMClient() (core.ModelClient, error) {
	provider := strings.ToLower(strings.TrimSpace(f.cfg.GetLLM().Provider))

	switch provider {
	case "bedrock", "":
		return bedrock.NewFactory(f.cfg, f.logger).CreateLLMClient()
	case "gemini":
		return gemini.NewFactory(f.cfg, f.logger).CreateLLMClient()
	case "openai":
		return openai.NewFactory(f.cfg, f.logger).CreateLLMClient()
	default:
		return nil, &core.ConfigError{
			Key:    "llm.provider",
			Reason: fmt.Sprintf("unsupported LLM provider %q", provider),
		}
	}
}
