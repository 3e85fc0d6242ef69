package core

import (
	"context"
	"io"
)

// ModelClient defines the interface for interacting with LLM services
type ModelClient interface {
	// Complete sends a finished prompt to the model and returns its completion.
	// Backend failures are reported inside the Completion; only configuration
	// problems are returned as an error.
	Complete(ctx context.Context, prompt string, modelID string) (*Completion, error)
}

// EmailParser decomposes a raw message into an EmailRecord
type EmailParser interface {
	Parse(ctx context.Context, r io.Reader) (*EmailRecord, error)
}

// AttachmentTextExtractor produces best-effort text for an attachment payload
type AttachmentTextExtractor interface {
	ExtractText(ctx context.Context, filename string, data []byte) string
}

// ImageTextExtractor produces best-effort OCR text for an image payload
type ImageTextExtractor interface {
	RecognizeImage(ctx context.Context, data []byte) string
}
