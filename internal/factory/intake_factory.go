package factory

import (
	"fmt"
	"os"

	"github.com/mikey/llm-mail-extractor/internal/adapters/intake"
	"github.com/mikey/llm-mail-extractor/internal/allowlist"
	"github.com/mikey/llm-mail-extractor/internal/config"
	"github.com/mikey/llm-mail-extractor/internal/core"
	"github.com/mikey/llm-mail-extractor/internal/ports"
	"github.com/mikey/llm-mail-extractor/internal/utils"
	"go.uber.org/zap"
)

// IntakeFactory creates message intakes based on configuration
type IntakeFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	service       *core.ExtractionService
	settings      PromptSettings
	textProcessor *utils.TextProcessor
}

// NewIntakeFactory creates a new intake factory
func NewIntakeFactory(
	cfg *config.Config,
	logger *zap.Logger,
	service *core.ExtractionService,
	settings PromptSettings,
	textProcessor *utils.TextProcessor,
) *IntakeFactory {
	return &IntakeFactory{
		cfg:           cfg,
		logger:        logger,
		service:       service,
		settings:      settings,
		textProcessor: textProcessor,
	}
}

// CreateIntake creates an intake based on the configuration
func (f *IntakeFactory) CreateIntake() (ports.Intake, error) {
	intakeCfg := f.cfg.GetIntake()

	switch intakeCfg.Type {
	case "smtp":
		return intake.NewSMTPIntake(
			f.service,
			allowlist.NewChecker(intakeCfg.AllowedDomains, f.logger),
			f.logger,
			intakeCfg,
			f.settings.Template,
			f.settings.ModelID,
		), nil
	case "cli":
		return intake.NewCliIntake(
			f.service,
			f.textProcessor,
			f.logger,
			os.Stdout,
			f.settings.Template,
			f.settings.ModelID,
			f.cfg.GetBool("cli.verbose"),
		), nil
	default:
		return nil, fmt.Errorf("unsupported intake type: %s", intakeCfg.Type)
	}
}
