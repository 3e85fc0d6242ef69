package ports

import (
	"context"
	"io"

	"github.com/mikey/llm-mail-extractor/internal/core"
)

// Intake defines how raw messages enter the extractor
type Intake interface {
	// ProcessMessage parses a raw message and returns its extraction report
	ProcessMessage(ctx context.Context, r io.Reader) (*core.Report, error)

	// Start starts the intake service
	Start() error

	// Stop stops the intake service
	Stop() error
}
