package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/llm-mail-extractor/internal/core"
	"github.com/mikey/llm-mail-extractor/internal/di"
	"github.com/mikey/llm-mail-extractor/internal/ports"
	"go.uber.org/dig"
	"go.uber.org/zap"
)

func main() {
	configFile := flag.String("config", "", "Path to config file (default search path if empty)")
	flag.Parse()

	// Build the dependency injection container
	container, err := di.BuildContainer(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
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
	logger *zap.Logger,
	intake ports.Intake,
	client core.ModelClient,
) error {
	defer logger.Sync()

	if err := intake.Start(); err != nil {
		logger.Error("Failed to start intake", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	if err := intake.Stop(); err != nil {
		logger.Error("Failed to stop intake", zap.Error(err))
	}

	if closer, ok := client.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close LLM client", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
