package core

import (
	"fmt"
	"time"
)

// Attachment describes one attachment part of an email
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// EmailRecord is the normalized content of a single email message
type EmailRecord struct {
	FromAddress           string       `json:"from_address"`
	ToAddress             string       `json:"to_address"`
	Subject               string       `json:"subject"`
	Date                  string       `json:"date"`
	Text                  string       `json:"text"`
	HTML                  string       `json:"html"`
	Attachments           []Attachment `json:"attachments"`
	AttachmentTextSummary string       `json:"attachment_text_summary"`
	EmbeddedImages        []string     `json:"embedded_images"`
	EmbeddedImageText     string       `json:"embedded_image_text"`
}

// ParseMode records which strategy produced the structured data of a result
type ParseMode string

const (
	ParseModeDirect ParseMode = "direct"
	ParseModeBlock  ParseMode = "block"
	ParseModeNone   ParseMode = "none"
)

// Completion is the outcome of a single model call.
// ExtractedData holds the completion text, or a human-readable placeholder when the call failed.
type Completion struct {
	ExtractedData string
	Error         string
	ModelID       string
	Provider      string
}

// Failed reports whether the model call itself failed
func (c *Completion) Failed() bool {
	return c.Error != ""
}

// FailedCompletion builds the placeholder completion returned when a backend call fails
func FailedCompletion(provider, modelID string, err error) *Completion {
	detail := "unknown error"
	if err != nil {
		detail = err.Error()
	}
	return &Completion{
		ExtractedData: fmt.Sprintf("[%s error] %s", provider, detail),
		Error:         detail,
		ModelID:       modelID,
		Provider:      provider,
	}
}

// ExtractionResult represents the structured outcome of one extraction
type ExtractionResult struct {
	RequestID     string         `json:"request_id"`
	ExtractedData map[string]any `json:"extracted_data"`
	RawText       string         `json:"raw_text"`
	Error         string         `json:"error,omitempty"`
	ModelID       string         `json:"model_id"`
	ParseMode     ParseMode      `json:"parse_mode"`
	ExtractedAt   time.Time      `json:"extracted_at"`
}

// Report bundles a parsed email with the extraction run against it
type Report struct {
	Record *EmailRecord      `json:"email"`
	Result *ExtractionResult `json:"result"`
}
