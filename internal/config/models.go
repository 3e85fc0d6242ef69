package config

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region            string
	ModelID           string
	InferenceProfiles map[string]string
	MaxTokens         int
	Temperature       float32
	TopP              float32
	AnthropicVersion  string
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// OCRConfig represents the configuration of the external OCR tools
type OCRConfig struct {
	TesseractCmd string
	PdftoppmCmd  string
	Language     string
	DPI          int
	MaxPages     int
}

// PromptConfig represents the configuration of the prompt composer
type PromptConfig struct {
	Template       string
	Placeholder    string
	TemplateFile   string
	MaxSectionSize int
}

// RelayConfig represents the next hop messages are forwarded to after extraction
type RelayConfig struct {
	Enabled bool
	Address string
	Port    int
}

// IntakeConfig represents the configuration of the message intake
type IntakeConfig struct {
	Type            string
	ListenAddress   string
	AllowedDomains  []string
	MaxMessageBytes int64
	Relay           RelayConfig
	StatusHeader    string
	FieldsHeader    string
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:            c.GetString("bedrock.region"),
		ModelID:           c.GetString("bedrock.model_id"),
		InferenceProfiles: c.GetStringMapString("bedrock.inference_profiles"),
		MaxTokens:         c.GetInt("bedrock.max_tokens"),
		Temperature:       float32(c.GetFloat64("bedrock.temperature")),
		TopP:              float32(c.GetFloat64("bedrock.top_p")),
		AnthropicVersion:  c.GetString("bedrock.anthropic_version"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		BaseURL:     c.GetString("openai.base_url"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
	}
}

// GetOCR returns the OCR configuration
func (c *Config) GetOCR() OCRConfig {
	return OCRConfig{
		TesseractCmd: c.GetString("ocr.tesseract_cmd"),
		PdftoppmCmd:  c.GetString("ocr.pdftoppm_cmd"),
		Language:     c.GetString("ocr.language"),
		DPI:          c.GetInt("ocr.dpi"),
		MaxPages:     c.GetInt("ocr.max_pages"),
	}
}

// GetPrompt returns the prompt composer configuration
func (c *Config) GetPrompt() PromptConfig {
	return PromptConfig{
		Template:       c.GetString("prompt.template"),
		Placeholder:    c.GetString("prompt.placeholder"),
		TemplateFile:   c.GetString("prompt.template_file"),
		MaxSectionSize: c.GetInt("prompt.max_section_size"),
	}
}

// GetIntake returns the intake configuration
func (c *Config) GetIntake() IntakeConfig {
	return IntakeConfig{
		Type:            c.GetString("intake.type"),
		ListenAddress:   c.GetString("intake.listen_address"),
		AllowedDomains:  c.GetStringSlice("intake.allowed_domains"),
		MaxMessageBytes: int64(c.GetInt("intake.max_message_bytes")),
		Relay: RelayConfig{
			Enabled: c.GetBool("intake.relay.enabled"),
			Address: c.GetString("intake.relay.address"),
			Port:    c.GetInt("intake.relay.port"),
		},
		StatusHeader: c.GetString("intake.headers.status"),
		FieldsHeader: c.GetString("intake.headers.fields"),
	}
}
