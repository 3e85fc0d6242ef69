package di

import (
	"flag"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/llm-mail-extractor/internal/config"
	"github.com/mikey/llm-mail-extractor/internal/logging"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// LLM provider flags
	Provider    string
	ModelID     string
	MaxTokens   int
	Temperature float64
	TopP        float64

	// Bedrock flags
	BedrockRegion  string
	BedrockModelID string

	// Gemini flags
	GeminiAPIKey    string
	GeminiModelName string

	// OpenAI flags
	OpenAIAPIKey    string
	OpenAIModelName string
	OpenAIBaseURL   string

	// Prompt flags
	Prompt         string
	PromptFile     string
	MaxSectionSize int

	// OCR flags
	TesseractCmd string

	// Input and output flags
	InputFile  string
	JSONOutput bool
	Verbose    bool
	JSONLog    bool
	ConfigFile string

	// names of the flags given on the command line
	set map[string]bool
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags(args []string) (*CLIFlags, error) {
	flags := &CLIFlags{set: map[string]bool{}}
	fs := flag.NewFlagSet("mail-extractor", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	// LLM provider flags
	fs.StringVar(&flags.Provider, "provider", "bedrock", "LLM provider (bedrock, gemini, openai)")
	fs.StringVar(&flags.ModelID, "model", "", "Logical model identifier for this run (defaults to the provider's configured model)")
	fs.IntVar(&flags.MaxTokens, "max-tokens", 4096, "Maximum tokens for the model response")
	fs.Float64Var(&flags.Temperature, "temperature", 0.3, "Temperature for generation")
	fs.Float64Var(&flags.TopP, "top-p", 1.0, "Top-p for generation")

	// Bedrock flags
	fs.StringVar(&flags.BedrockRegion, "bedrock-region", "", "AWS region for Bedrock (default from AWS_REGION)")
	fs.StringVar(&flags.BedrockModelID, "bedrock-model", "", "Default Bedrock model ID (default from BEDROCK_MODEL_ID)")

	// Gemini flags
	fs.StringVar(&flags.GeminiAPIKey, "gemini-api-key", "", "API key for Google Gemini")
	fs.StringVar(&flags.GeminiModelName, "gemini-model", "", "Gemini model name")

	// OpenAI flags
	fs.StringVar(&flags.OpenAIAPIKey, "openai-api-key", "", "API key for OpenAI")
	fs.StringVar(&flags.OpenAIModelName, "openai-model", "", "OpenAI model name")
	fs.StringVar(&flags.OpenAIBaseURL, "openai-base-url", "", "Base URL of an OpenAI compatible API")

	// Prompt flags
	fs.StringVar(&flags.Prompt, "prompt", "", "Prompt template text containing the placeholder")
	fs.StringVar(&flags.PromptFile, "prompt-file", "", "File holding the prompt template")
	fs.IntVar(&flags.MaxSectionSize, "max-section-size", 0, "Maximum size of each email section in the prompt (0 = unlimited)")

	// OCR flags
	fs.StringVar(&flags.TesseractCmd, "tesseract", "", "Path to the tesseract executable (default from TESSERACT_CMD)")

	// Input and output flags
	fs.StringVar(&flags.InputFile, "file", "", "Input .eml file (use stdin if not specified)")
	fs.BoolVar(&flags.JSONOutput, "json", false, "Print the full report as JSON instead of a summary")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file (command line flags take precedence)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { flags.set[f.Name] = true })

	if flags.Prompt != "" && flags.PromptFile != "" {
		return nil, fmt.Errorf("-prompt and -prompt-file are mutually exclusive")
	}

	return flags, nil
}

// IsSet reports whether the named flag was given on the command line
func (f *CLIFlags) IsSet(name string) bool {
	return f.set[name]
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		v := config.NewEmptyViper()
		if flags.ConfigFile != "" {
			cfg, err := config.NewFromFile(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			v = cfg.GetViper()
		}
		return applyFlags(v, flags), nil
	}); err != nil {
		return nil, err
	}

	if err := providePipeline(container); err != nil {
		return nil, err
	}

	return container, nil
}

// applyFlags overlays the command line onto the configuration
func applyFlags(v *viper.Viper, flags *CLIFlags) *config.Config {
	// The CLI always reports to the terminal
	v.Set("intake.type", "cli")
	v.Set("cli.verbose", flags.Verbose)

	if flags.ConfigFile == "" || flags.IsSet("provider") {
		v.Set("llm.provider", flags.Provider)
	}

	setString := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	setString("llm.model_id", flags.ModelID)
	setString("bedrock.region", flags.BedrockRegion)
	setString("bedrock.model_id", flags.BedrockModelID)
	setString("gemini.api_key", flags.GeminiAPIKey)
	setString("gemini.model_name", flags.GeminiModelName)
	setString("openai.api_key", flags.OpenAIAPIKey)
	setString("openai.model_name", flags.OpenAIModelName)
	setString("openai.base_url", flags.OpenAIBaseURL)
	setString("ocr.tesseract_cmd", flags.TesseractCmd)
	setString("prompt.template", flags.Prompt)
	setString("prompt.template_file", flags.PromptFile)
	if flags.PromptFile != "" {
		// an inline template from a config file would otherwise win
		v.Set("prompt.template", "")
	}

	for _, provider := range []string{"bedrock", "gemini", "openai"} {
		if flags.IsSet("max-tokens") {
			v.Set(provider+".max_tokens", flags.MaxTokens)
		}
		if flags.IsSet("temperature") {
			v.Set(provider+".temperature", flags.Temperature)
		}
		if flags.IsSet("top-p") {
			v.Set(provider+".top_p", flags.TopP)
		}
	}
	if flags.IsSet("max-section-size") {
		v.Set("prompt.max_section_size", flags.MaxSectionSize)
	}

	return config.NewFromViper(v)
}
