package gemini

import (
	"github.com/mikey/llm-mail-extractor/internal/config"
	"github.com/mikey/llm-mail-extractor/internal/core"
	"go.uber.org/zap"
)

// Factory creates new instances of GeminiClient
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new factory for GeminiClient instances
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateLLMClient creates a new GeminiClient
func (f *Factory) CreateLLMClient() (core.ModelClient, error) {
	return NewGeminiClient(f.cfg.GetGemini(), f.logger)
}
