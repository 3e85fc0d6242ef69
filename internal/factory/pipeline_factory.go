package factory

import (
	"github.com/mikey/llm-mail-extractor/internal/adapters/attachment"
	"github.com/mikey/llm-mail-extractor/internal/adapters/email"
	"github.com/mikey/llm-mail-extractor/internal/adapters/ocr"
	"github.com/mikey/llm-mail-extractor/internal/config"
	"github.com/mikey/llm-mail-extractor/internal/core"
	"github.com/mikey/llm-mail-extractor/internal/utils"
	"go.uber.org/zap"
)

// PromptSettings is the template and model every extraction of a run uses
type PromptSettings struct {
	Template string
	ModelID  string
}

// PipelineFactory creates the parsing side of the extraction pipeline
type PipelineFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewPipelineFactory creates a new pipeline factory
func NewPipelineFactory(cfg *config.Config, logger *zap.Logger) *PipelineFactory {
	return &PipelineFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateOCREngine creates the OCR engine backed by external commands
func (f *PipelineFactory) CreateOCREngine() *ocr.Engine {
	ocrCfg := f.cfg.GetOCR()
	if ocrCfg.TesseractCmd == "" {
		f.logger.Warn("ocr.tesseract_cmd is not set, OCR is disabled")
	}
	return ocr.NewEngine(ocrCfg, ocr.NewExecRunner(f.logger), f.logger)
}

// CreateParser creates the MIME decomposer wired to attachment and image extraction
func (f *PipelineFactory) CreateParser(engine *ocr.Engine) *email.Parser {
	extractor := attachment.NewExtractor(engine, f.logger)
	return email.NewParser(extractor, engine, f.logger)
}

// CreateTextProcessor creates the text cleaner shared by prompt composition
func (f *PipelineFactory) CreateTextProcessor() *utils.TextProcessor {
	return utils.NewTextProcessor(f.logger)
}

// CreatePromptComposer creates the prompt composer from the prompt settings
func (f *PipelineFactory) CreatePromptComposer(textProcessor *utils.TextProcessor) *core.PromptComposer {
	promptCfg := f.cfg.GetPrompt()
	return core.NewPromptComposer(promptCfg.Placeholder, promptCfg.MaxSectionSize, textProcessor)
}

// CreatePromptSettings resolves the template: inline text first, then the
// template file, then the built-in default
func (f *PipelineFactory) CreatePromptSettings() (PromptSettings, error) {
	promptCfg := f.cfg.GetPrompt()
	modelID := f.cfg.GetString("llm.model_id")
	if promptCfg.Template != "" {
		return PromptSettings{Template: promptCfg.Template, ModelID: modelID}, nil
	}

	template, err := core.LoadTemplate(promptCfg.TemplateFile, promptCfg.Placeholder)
	if err != nil {
		return PromptSettings{}, err
	}
	if promptCfg.TemplateFile != "" {
		f.logger.Info("Loaded prompt template", zap.String("file", promptCfg.TemplateFile))
	}
	return PromptSettings{
		Template: template,
		ModelID:  modelID,
	}, nil
}
