package di

import (
	"go.uber.org/dig"

	"github.com/mikey/llm-mail-extractor/internal/adapters/ocr"
	"github.com/mikey/llm-mail-extractor/internal/config"
	"github.com/mikey/llm-mail-extractor/internal/core"
	"github.com/mikey/llm-mail-extractor/internal/factory"
	"github.com/mikey/llm-mail-extractor/internal/logging"
	"github.com/mikey/llm-mail-extractor/internal/ports"
	"github.com/mikey/llm-mail-extractor/internal/utils"
)

// BuildContainer creates and configures a dependency injection container for the daemon.
// An empty configFile searches the default locations.
func BuildContainer(configFile string) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(func() (*config.Config, error) {
		return config.NewFromFile(configFile)
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := providePipeline(container); err != nil {
		return nil, err
	}

	return container, nil
}

// providePipeline registers everything between configuration and the intake
func providePipeline(container *dig.Container) error {
	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewPipelineFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewIntakeFactory); err != nil {
		return err
	}

	// Register LLM client
	if err := container.Provide(func(f *factory.LLMFactory) (core.ModelClient, error) {
		return f.CreateLLMClient()
	}); err != nil {
		return err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.PipelineFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}

	// Register OCR engine and MIME parser
	if err := container.Provide(func(f *factory.PipelineFactory) *ocr.Engine {
		return f.CreateOCREngine()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.PipelineFactory, engine *ocr.Engine) core.EmailParser {
		return f.CreateParser(engine)
	}); err != nil {
		return err
	}

	// Register prompt composer and settings
	if err := container.Provide(func(f *factory.PipelineFactory, tp *utils.TextProcessor) *core.PromptComposer {
		return f.CreatePromptComposer(tp)
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.PipelineFactory) (factory.PromptSettings, error) {
		return f.CreatePromptSettings()
	}); err != nil {
		return err
	}

	// Register extraction service
	if err := container.Provide(core.NewExtractionService); err != nil {
		return err
	}

	// Register intake
	if err := container.Provide(func(f *factory.IntakeFactory) (ports.Intake, error) {
		return f.CreateIntake()
	}); err != nil {
		return err
	}

	return nil
}
