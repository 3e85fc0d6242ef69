package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const promptPreviewSize = 1000

// ExtractionService is the core service for email content extraction
type ExtractionService struct {
	parser   EmailParser
	client   ModelClient
	composer *PromptComposer
	logger   *zap.Logger
}

// NewExtractionService creates a new extraction service
func NewExtractionService(
	parser EmailParser,
	client ModelClient,
	composer *PromptComposer,
	logger *zap.Logger,
) *ExtractionService {
	return &ExtractionService{
		parser:   parser,
		client:   client,
		composer: composer,
		logger:   logger,
	}
}

// ParseEmail decomposes a raw message into an EmailRecord
func (s *ExtractionService) ParseEmail(ctx context.Context, r io.Reader) (*EmailRecord, error) {
	record, err := s.parser.Parse(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse email: %w", err)
	}
	return record, nil
}

// Extract composes the prompt for a record and runs it through the model
func (s *ExtractionService) Extract(ctx context.Context, record *EmailRecord, template string, modelID string) (*ExtractionResult, error) {
	if !s.composer.HasPlaceholder(template) {
		s.logger.Warn("Prompt template has no placeholder, email content will not be sent",
			zap.String("placeholder", s.composer.Placeholder()))
	}

	prompt := s.composer.Compose(template, record)
	return s.ExtractPrompt(ctx, prompt, modelID)
}

// ExtractPrompt sends an already finished prompt to the model and normalizes the answer.
// The returned error is non-nil only for configuration problems.
func (s *ExtractionService) ExtractPrompt(ctx context.Context, prompt string, modelID string) (*ExtractionResult, error) {
	requestID := uuid.NewString()

	s.logger.Info("Starting LLM extraction",
		zap.String("request_id", requestID),
		zap.String("requested_model", modelID),
		zap.Int("prompt_size", len(prompt)))
	s.logger.Debug("Prompt preview",
		zap.String("request_id", requestID),
		zap.String("prompt", s.preview(prompt)))

	completion, err := s.client.Complete(ctx, prompt, modelID)
	if err != nil {
		return nil, err
	}

	result := &ExtractionResult{
		RequestID:   requestID,
		RawText:     completion.ExtractedData,
		ModelID:     completion.ModelID,
		ExtractedAt: time.Now(),
	}

	if completion.Failed() {
		s.logger.Error("LLM extraction failed",
			zap.String("request_id", requestID),
			zap.String("provider", completion.Provider),
			zap.String("model", completion.ModelID),
			zap.String("error", completion.Error))
		result.ExtractedData = map[string]any{}
		result.Error = completion.Error
		result.ParseMode = ParseModeNone
		return result, nil
	}

	result.ExtractedData, result.ParseMode = NormalizeOutput(completion.ExtractedData)
	if result.ParseMode == ParseModeNone {
		s.logger.Warn("Model output contained no usable JSON",
			zap.String("request_id", requestID),
			zap.String("output", s.preview(completion.ExtractedData)))
	}

	s.logger.Info("LLM extraction complete",
		zap.String("request_id", requestID),
		zap.String("model", completion.ModelID),
		zap.String("parse_mode", string(result.ParseMode)),
		zap.Int("fields", len(result.ExtractedData)))

	return result, nil
}

// Process parses a raw message and extracts data from it in one pass
func (s *ExtractionService) Process(ctx context.Context, r io.Reader, template string, modelID string) (*Report, error) {
	record, err := s.ParseEmail(ctx, r)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Parsed email",
		zap.String("from", record.FromAddress),
		zap.String("to", record.ToAddress),
		zap.Int("attachments", len(record.Attachments)),
		zap.Int("embedded_images", len(record.EmbeddedImages)))

	result, err := s.Extract(ctx, record, template, modelID)
	if err != nil {
		return nil, err
	}

	return &Report{Record: record, Result: result}, nil
}

// preview cuts text for logging without splitting a UTF-8 sequence
func (s *ExtractionService) preview(text string) string {
	return s.composer.textProcessor.TruncateText(text, promptPreviewSize)
}
