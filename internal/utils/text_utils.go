package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

var (
	reANSIEscape    = regexp.MustCompile(`\x1b[^m]*m`)
	reControlChars  = regexp.MustCompile(`[\x00-\x08\x0B-\x1F\x7F\x{80}-\x{9F}]`)
	reManyNewlines  = regexp.MustCompile(`\n{3,}`)
	reManyBlanks    = regexp.MustCompile(`[ \t]{2,}`)
	zeroWidthSpaces = strings.NewReplacer("\u200b", "", "\ufeff", "")
)

// TextProcessor provides utilities for processing text
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// TruncateText safely truncates text to the specified maximum size
// and ensures the result is valid UTF-8
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]

	// Drop trailing bytes of a split multi-byte sequence
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}

	tp.logger.Debug("Text truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)),
		zap.Int("max_size", maxSize))

	return truncated + "\n[... Content truncated due to size limits ...]"
}

// SanitizeUTF8 ensures the string contains only valid UTF-8 characters
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	sanitized := strings.ToValidUTF8(text, "")

	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(sanitized)))

	return sanitized
}

// CleanText removes terminal escapes, control characters and zero-width
// spaces, normalizes line endings and collapses runs of blank lines and spaces.
func (tp *TextProcessor) CleanText(text string) string {
	if text == "" {
		return ""
	}

	text = reANSIEscape.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = reControlChars.ReplaceAllString(text, "")
	text = zeroWidthSpaces.Replace(text)
	text = reManyNewlines.ReplaceAllString(text, "\n\n")
	text = reManyBlanks.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

// ProcessText cleans, truncates and sanitizes text in one operation
func (tp *TextProcessor) ProcessText(text string, maxSize int) string {
	cleaned := tp.CleanText(tp.SanitizeUTF8(text))
	truncated := tp.TruncateText(cleaned, maxSize)
	return tp.SanitizeUTF8(truncated)
}
