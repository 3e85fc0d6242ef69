package core

import (
	"fmt"
	"os"
	"strings"

	"github.com/mikey/llm-mail-extractor/internal/utils"
)

// DefaultPlaceholder is the token replaced by the composed email content
const DefaultPlaceholder = "{email_data}"

// DefaultTemplate asks for the invoice and payment fields as a single JSON object
const DefaultTemplate = `You are an intelligent document parser.

Extract structured data from the email below. The email may contain several
invoices. Field names and formats vary between senders, so be flexible.

Always extract these fields, normalizing their names:
- buyer_name
- supplier_name
- payment_amount
- credit_card_number
- card_last_four
- from_email_address
- to_email_address

For every invoice extract invoice_number, invoice_date and invoice_amount and
return them as a list called "invoices".

Respond with one JSON object and nothing else. Use null for missing values.

{email_data}
`

const (
	sectionBody        = "--- EMAIL BODY ---"
	sectionAttachments = "--- ATTACHMENT TEXT ---"
	sectionImages      = "--- EMBEDDED IMAGE TEXT ---"
)

// PromptComposer renders an EmailRecord into a user supplied template
type PromptComposer struct {
	placeholder    string
	maxSectionSize int
	textProcessor  *utils.TextProcessor
}

// NewPromptComposer creates a new prompt composer.
// An empty placeholder falls back to DefaultPlaceholder; maxSectionSize <= 0 disables truncation.
func NewPromptComposer(placeholder string, maxSectionSize int, textProcessor *utils.TextProcessor) *PromptComposer {
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	return &PromptComposer{
		placeholder:    placeholder,
		maxSectionSize: maxSectionSize,
		textProcessor:  textProcessor,
	}
}

// Placeholder returns the token the composer substitutes
func (p *PromptComposer) Placeholder() string {
	return p.placeholder
}

// HasPlaceholder reports whether the template will receive the email content
func (p *PromptComposer) HasPlaceholder(template string) bool {
	return strings.Contains(template, p.placeholder)
}

// Compose substitutes the placeholder in template with the record content.
// A template without the placeholder is returned unchanged.
func (p *PromptComposer) Compose(template string, record *EmailRecord) string {
	if !p.HasPlaceholder(template) {
		return template
	}
	return strings.ReplaceAll(template, p.placeholder, p.EmailContent(record))
}

// EmailContent renders the labeled sections of a record in a fixed order:
// headers, body, attachment text, embedded image text. Empty attachment and
// image sections are left out.
func (p *PromptComposer) EmailContent(record *EmailRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\n", record.FromAddress)
	fmt.Fprintf(&b, "To: %s\n", record.ToAddress)
	fmt.Fprintf(&b, "Subject: %s\n", record.Subject)
	fmt.Fprintf(&b, "Date: %s\n", record.Date)

	b.WriteString("\n")
	b.WriteString(sectionBody)
	b.WriteString("\n")
	b.WriteString(p.section(record.Text))
	b.WriteString("\n")

	if attachments := p.section(record.AttachmentTextSummary); attachments != "" {
		b.WriteString("\n")
		b.WriteString(sectionAttachments)
		b.WriteString("\n")
		b.WriteString(attachments)
		b.WriteString("\n")
	}

	if images := p.section(record.EmbeddedImageText); images != "" {
		b.WriteString("\n")
		b.WriteString(sectionImages)
		b.WriteString("\n")
		b.WriteString(images)
		b.WriteString("\n")
	}

	return b.String()
}

func (p *PromptComposer) section(text string) string {
	return p.textProcessor.ProcessText(text, p.maxSectionSize)
}

// LoadTemplate reads a prompt template from path. An empty path yields
// DefaultTemplate carrying the given placeholder.
func LoadTemplate(path string, placeholder string) (string, error) {
	if path == "" {
		if placeholder == "" {
			return DefaultTemplate, nil
		}
		return strings.ReplaceAll(DefaultTemplate, DefaultPlaceholder, placeholder), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt template: %w", err)
	}
	return string(data), nil
}
