package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	return NewFromFile("")
}

// NewFromFile creates a configuration instance reading the given file.
// An empty path searches the default locations.
func NewFromFile(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/llm-mail-extractor/")
		v.AddConfigPath("$HOME/.llm-mail-extractor")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults and environment
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults and environment bindings
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	bindEnv(v)
	return v
}

// bindEnv wires the prefixed environment plus the variable names the
// extractor has historically been deployed with.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("MAIL_EXTRACTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("bedrock.region", "MAIL_EXTRACTOR_BEDROCK_REGION", "AWS_REGION", "AWS_DEFAULT_REGION")
	_ = v.BindEnv("bedrock.model_id", "MAIL_EXTRACTOR_BEDROCK_MODEL_ID", "BEDROCK_MODEL_ID")
	_ = v.BindEnv("ocr.tesseract_cmd", "MAIL_EXTRACTOR_OCR_TESSERACT_CMD", "TESSERACT_CMD")
	_ = v.BindEnv("openai.api_key", "MAIL_EXTRACTOR_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("gemini.api_key", "MAIL_EXTRACTOR_GEMINI_API_KEY", "GEMINI_API_KEY")
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// LLM provider defaults
	v.SetDefault("llm.provider", "bedrock")
	v.SetDefault("llm.model_id", "")

	// Bedrock defaults. Region and model id are required and deliberately have none.
	v.SetDefault("bedrock.inference_profiles", map[string]string{})
	v.SetDefault("bedrock.max_tokens", 4096)
	v.SetDefault("bedrock.temperature", 0.3)
	v.SetDefault("bedrock.top_p", 1.0)
	v.SetDefault("bedrock.anthropic_version", "bedrock-2023-05-31")

	// OpenAI defaults
	v.SetDefault("openai.model_name", "gpt-4o-mini")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.max_tokens", 4096)
	v.SetDefault("openai.temperature", 0.3)
	v.SetDefault("openai.top_p", 1.0)

	// Gemini defaults
	v.SetDefault("gemini.model_name", "gemini-1.5-flash")
	v.SetDefault("gemini.max_tokens", 4096)
	v.SetDefault("gemini.temperature", 0.3)
	v.SetDefault("gemini.top_p", 1.0)

	// OCR defaults
	v.SetDefault("ocr.pdftoppm_cmd", "pdftoppm")
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.dpi", 300)
	v.SetDefault("ocr.max_pages", 0)

	// Prompt defaults
	v.SetDefault("prompt.placeholder", "{email_data}")
	v.SetDefault("prompt.template", "")
	v.SetDefault("prompt.template_file", "")
	v.SetDefault("prompt.max_section_size", 0)

	// Intake defaults
	v.SetDefault("intake.type", "smtp")
	v.SetDefault("intake.listen_address", "0.0.0.0:10026")
	v.SetDefault("intake.allowed_domains", []string{})
	v.SetDefault("intake.max_message_bytes", 30*1024*1024)
	v.SetDefault("intake.relay.enabled", false)
	v.SetDefault("intake.relay.address", "127.0.0.1")
	v.SetDefault("intake.relay.port", 10025)
	v.SetDefault("intake.headers.status", "X-Extraction-Status")
	v.SetDefault("intake.headers.fields", "X-Extracted-Fields")

	// CLI defaults
	v.SetDefault("cli.verbose", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetStringMapString gets a string map value from the configuration
func (c *Config) GetStringMapString(key string) map[string]string {
	return c.v.GetStringMapString(key)
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
