package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/mikey/llm-mail-extractor/internal/core"
	"github.com/mikey/llm-mail-extractor/internal/utils"
	"go.uber.org/zap"
)

const bodyPreviewSize = 500

// CliIntake processes a single message and writes a human readable report
type CliIntake struct {
	service       *core.ExtractionService
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
	out      io.Writer
	template string
	modelID  string
	verbose  bool
}

// NewCliIntake creates a new CLI intake writing to out
func NewCliIntake(
	service *core.ExtractionService,
	textProcessor *utils.TextProcessor,
	logger *zap.Logger,
	out io.Writer,
	template string,
	modelID string,
	verbose bool,
) *CliIntake {
	return &CliIntake{
		service:       service,
		textProcessor: textProcessor,
		logger:        logger,
		out:           out,
		template:      template,
		modelID:       modelID,
		verbose:       verbose,
	}
}

// ProcessMessage parses the message, runs the extraction and prints the results
func (c *CliIntake) ProcessMessage(ctx context.Context, r io.Reader) (*core.Report, error) {
	record, err := c.service.ParseEmail(ctx, r)
	if err != nil {
		c.logger.Error("Failed to parse email", zap.Error(err))
		return nil, err
	}

	c.printSummary(record)

	fmt.Fprintf(c.out, "=== Extraction ===\n")
	fmt.Fprintf(c.out, "Sending prompt to the model...\n")
	startTime := time.Now()
	result, err := c.service.Extract(ctx, record, c.template, c.modelID)
	if err != nil {
		c.logger.Error("Failed to extract data", zap.Error(err))
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return nil, err
	}
	duration := time.Since(startTime)

	fmt.Fprintf(c.out, "\n=== Results ===\n")
	fmt.Fprintf(c.out, "Model used: %s\n", result.ModelID)
	fmt.Fprintf(c.out, "Parse mode: %s\n", result.ParseMode)
	fmt.Fprintf(c.out, "Processing time: %v\n", duration)
	if result.Error != "" {
		fmt.Fprintf(c.out, "Model error: %s\n", result.Error)
	}
	if result.ParseMode == core.ParseModeNone {
		fmt.Fprintf(c.out, "\nRaw model output:\n%s\n", result.RawText)
	}

	data, err := json.MarshalIndent(result.ExtractedData, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode extracted data: %w", err)
	}
	fmt.Fprintf(c.out, "\nExtracted data:\n%s\n", data)

	return &core.Report{Record: record, Result: result}, nil
}

func (c *CliIntake) printSummary(record *core.EmailRecord) {
	fmt.Fprintf(c.out, "\n=== Email Summary ===\n")
	fmt.Fprintf(c.out, "From: %s\n", record.FromAddress)
	fmt.Fprintf(c.out, "To: %s\n", record.ToAddress)
	fmt.Fprintf(c.out, "Subject: %s\n", record.Subject)
	fmt.Fprintf(c.out, "Date: %s\n", record.Date)
	fmt.Fprintf(c.out, "Body length: %d bytes\n", len(record.Text))
	fmt.Fprintf(c.out, "Attachments: %d\n", len(record.Attachments))
	for _, a := range record.Attachments {
		fmt.Fprintf(c.out, "  - %s (%s)\n", a.Filename, a.ContentType)
	}
	fmt.Fprintf(c.out, "Embedded images: %d\n", len(record.EmbeddedImages))

	if c.verbose {
		preview := c.textProcessor.TruncateText(record.Text, bodyPreviewSize)
		fmt.Fprintf(c.out, "\nBody preview:\n%s\n", preview)
		if record.AttachmentTextSummary != "" {
			fmt.Fprintf(c.out, "\nAttachment text:\n%s\n", record.AttachmentTextSummary)
		}
	}

	fmt.Fprintf(c.out, "\n")
}

// Start is a no-op for the CLI intake
func (c *CliIntake) Start() error {
	return nil
}

// Stop is a no-op for the CLI intake
func (c *CliIntake) Stop() error {
	return nil
}
