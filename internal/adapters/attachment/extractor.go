package attachment

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// PDFRecognizer renders a PDF and runs OCR over its pages
type PDFRecognizer interface {
	RecognizePDF(ctx context.Context, data []byte) string
}

type extractFunc func(data []byte) (string, error)

var defaultExtractors = map[Format]extractFunc{
	FormatPDF:  pdfText,
	FormatDOCX: docxText,
	FormatXLSX: xlsxText,
	FormatText: plainText,
}

// Extractor produces best-effort text for attachment payloads
type Extractor struct {
	extractors map[Format]extractFunc
	ocr        PDFRecognizer
	logger     *zap.Logger
}

// NewExtractor creates a new attachment extractor. ocr may be nil, which
// disables the image-only PDF fallback.
func NewExtractor(ocr PDFRecognizer, logger *zap.Logger) *Extractor {
	extractors := make(map[Format]extractFunc, len(defaultExtractors))
	for format, fn := range defaultExtractors {
		extractors[format] = fn
	}
	return &Extractor{
		extractors: extractors,
		ocr:        ocr,
		logger:     logger,
	}
}

// ExtractText returns the text of one attachment, or an empty string when the
// format is unsupported or extraction fails
func (e *Extractor) ExtractText(ctx context.Context, filename string, data []byte) (text string) {
	format := FormatFromFilename(filename)
	extract, ok := e.extractors[format]
	if !ok {
		e.logger.Debug("Unsupported attachment format",
			zap.String("filename", filename))
		return ""
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("Attachment extraction panicked",
				zap.String("filename", filename),
				zap.String("format", format.String()),
				zap.String("panic", fmt.Sprint(r)))
			text = ""
		}
	}()

	text, err := extract(data)
	if err != nil {
		e.logger.Warn("Could not extract attachment text",
			zap.String("filename", filename),
			zap.String("format", format.String()),
			zap.Error(err))
		return ""
	}

	if format == FormatPDF && strings.TrimSpace(text) == "" {
		e.logger.Info("No text layer in PDF, trying OCR fallback",
			zap.String("filename", filename))
		if e.ocr == nil {
			return ""
		}
		return e.ocr.RecognizePDF(ctx, data)
	}

	e.logger.Debug("Extracted attachment text",
		zap.String("filename", filename),
		zap.String("format", format.String()),
		zap.Int("size", len(text)))

	return text
}
