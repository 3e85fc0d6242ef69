package bedrock

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/llm-mail-extractor/internal/config"
	"github.com/mikey/llm-mail-extractor/internal/core"
	"go.uber.org/zap"
)

// Factory creates Bedrock clients
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new Bedrock factory
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateLLMClient creates a new Bedrock client backed by the AWS SDK
func (f *Factory) CreateLLMClient() (core.ModelClient, error) {
	bedrockCfg := f.cfg.GetBedrock()

	// Validate before touching the credential chain
	if strings.TrimSpace(bedrockCfg.Region) == "" {
		return nil, core.NewMissingConfigError("bedrock.region")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(bedrockCfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client, err := NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg), bedrockCfg, f.logger)
	if err != nil {
		return nil, err
	}

	f.logger.Info("Created Bedrock client",
		zap.String("region", bedrockCfg.Region),
		zap.String("default_model", bedrockCfg.ModelID),
		zap.Int("inference_profiles", len(bedrockCfg.InferenceProfiles)))

	return client, nil
}
