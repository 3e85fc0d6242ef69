package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mikey/llm-mail-extractor/internal/core"
	"github.com/mikey/llm-mail-extractor/internal/di"
	"github.com/mikey/llm-mail-extractor/internal/factory"
	"github.com/mikey/llm-mail-extractor/internal/ports"
	"go.uber.org/dig"
	"go.uber.org/zap"
)

func main() {
	flags, err := di.ParseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Invalid arguments: %v\n", err)
		os.Exit(2)
	}

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		var cfgErr *core.ConfigError
		if errors.As(dig.RootCause(err), &cfgErr) {
			fmt.Fprintf(os.Stderr, "%v\n", cfgErr)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	flags *di.CLIFlags,
	logger *zap.Logger,
	intake ports.Intake,
	service *core.ExtractionService,
	settings factory.PromptSettings,
	client core.ModelClient,
) error {
	defer logger.Sync()
	defer closeClient(client, logger)

	var emailReader io.Reader
	if flags.InputFile != "" {
		file, err := os.Open(flags.InputFile)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()
		emailReader = file
		logger.Info("Reading email from file", zap.String("file", flags.InputFile))
	} else {
		emailReader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	ctx := context.Background()

	if !flags.JSONOutput {
		_, err := intake.ProcessMessage(ctx, emailReader)
		return err
	}

	report, err := service.Process(ctx, emailReader, settings.Template, settings.ModelID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func closeClient(client core.ModelClient, logger *zap.Logger) {
	if closer, ok := client.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close LLM client", zap.Error(err))
		}
	}
}
