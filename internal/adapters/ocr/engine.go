package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/mikey/llm-mail-extractor/internal/config"
	"go.uber.org/zap"
)

// Engine recognizes text in images and rendered PDF pages using tesseract.
// Every failure degrades to an empty string.
type Engine struct {
	cfg    config.OCRConfig
	runner Runner
	logger *zap.Logger
}

// NewEngine creates a new OCR engine. An empty TesseractCmd leaves the engine
// unavailable; recognition then returns empty text.
func NewEngine(cfg config.OCRConfig, runner Runner, logger *zap.Logger) *Engine {
	if cfg.PdftoppmCmd == "" {
		cfg.PdftoppmCmd = "pdftoppm"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Engine{
		cfg:    cfg,
		runner: runner,
		logger: logger,
	}
}

// Available reports whether an OCR engine location is configured
func (e *Engine) Available() bool {
	return strings.TrimSpace(e.cfg.TesseractCmd) != ""
}

// RecognizeImage runs OCR over raw image bytes
func (e *Engine) RecognizeImage(ctx context.Context, data []byte) string {
	if !e.Available() {
		e.logger.Warn("OCR engine not configured, skipping image")
		return ""
	}
	if len(data) == 0 {
		return ""
	}

	tmpDir, err := os.MkdirTemp("", "mail-extractor-ocr-*")
	if err != nil {
		e.logger.Warn("Failed to create OCR temp dir", zap.Error(err))
		return ""
	}
	defer e.cleanup(tmpDir)

	path := filepath.Join(tmpDir, "image")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		e.logger.Warn("Failed to write image for OCR", zap.Error(err))
		return ""
	}

	text, err := e.tesseract(ctx, path)
	if err != nil {
		e.logger.Warn("Image OCR failed", zap.Error(err))
		return ""
	}
	return text
}

// RecognizePDF renders each page of a PDF and runs OCR over the pages,
// joining the per-page text with newlines
func (e *Engine) RecognizePDF(ctx context.Context, data []byte) string {
	if !e.Available() {
		e.logger.Warn("OCR engine not configured, skipping PDF OCR fallback")
		return ""
	}
	if len(data) == 0 {
		return ""
	}

	tmpDir, err := os.MkdirTemp("", "mail-extractor-pdf-*")
	if err != nil {
		e.logger.Warn("Failed to create OCR temp dir", zap.Error(err))
		return ""
	}
	defer e.cleanup(tmpDir)

	input := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(input, data, 0o600); err != nil {
		e.logger.Warn("Failed to write PDF for OCR", zap.Error(err))
		return ""
	}

	prefix := filepath.Join(tmpDir, "page")
	args := []string{"-r", strconv.Itoa(e.cfg.DPI), "-png"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(e.cfg.MaxPages))
	}
	args = append(args, input, prefix)

	if _, errb, err := e.runner.Run(ctx, e.cfg.PdftoppmCmd, args...); err != nil {
		e.logger.Warn("PDF rendering failed",
			zap.String("stderr", truncate(string(errb), 1024)),
			zap.Error(err))
		return ""
	}

	// pdftoppm writes prefix-1.png, prefix-2.png, ... zero padded for longer documents
	pages, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(pages)
	if e.cfg.MaxPages > 0 && len(pages) > e.cfg.MaxPages {
		pages = pages[:e.cfg.MaxPages]
	}
	if len(pages) == 0 {
		e.logger.Warn("PDF rendering produced no pages")
		return ""
	}

	var texts []string
	for i, page := range pages {
		text, err := e.tesseract(ctx, page)
		if err != nil {
			e.logger.Warn("Page OCR failed", zap.Int("page", i+1), zap.Error(err))
			continue
		}
		if text != "" {
			texts = append(texts, text)
		}
	}

	e.logger.Debug("PDF OCR complete",
		zap.Int("pages", len(pages)),
		zap.Int("pages_with_text", len(texts)))

	return strings.Join(texts, "\n")
}

func (e *Engine) tesseract(ctx context.Context, path string) (string, error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.TesseractCmd, path, "stdout", "-l", e.cfg.Language)
	if err != nil {
		return "", fmt.Errorf("tesseract failed: %w: %s", err, truncate(string(errb), 1024))
	}
	return strings.TrimSpace(string(out)), nil
}

func (e *Engine) cleanup(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		e.logger.Warn("Failed to remove OCR temp dir", zap.String("dir", dir), zap.Error(err))
	}
}
