package intake

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/mikey/llm-mail-extractor/internal/core"
	"github.com/mikey/llm-mail-extractor/internal/utils"
	"go.uber.org/zap"
)

type stubParser struct {
	record *core.EmailRecord
	err    error
}

func (p *stubParser) Parse(_ context.Context, r io.Reader) (*core.EmailRecord, error) {
	if _, err := io.ReadAll(r); err != nil {
		return nil, err
	}
	return p.record, p.err
}

type stubClient struct {
	completion *core.Completion
	err        error
	prompts    []string
}

func (c *stubClient) Complete(_ context.Context, prompt string, _ string) (*core.Completion, error) {
	c.prompts = append(c.prompts, prompt)
	return c.completion, c.err
}

func testRecord() *core.EmailRecord {
	return &core.EmailRecord{
		FromAddress:    "billing@supplier.example",
		ToAddress:      "ap@buyer.example",
		Subject:        "Invoice INV-42",
		Date:           "Mon, 2 Sep 2024 10:00:00 +0000",
		Text:           strings.Repeat("x", 20),
		Attachments:    []core.Attachment{{Filename: "inv.pdf", ContentType: "application/pdf"}},
		EmbeddedImages: []string{},
	}
}

func newTestService(parser core.EmailParser, client core.ModelClient) *core.ExtractionService {
	composer := core.NewPromptComposer("", 0, utils.NewTextProcessor(zap.NewNop()))
	return core.NewExtractionService(parser, client, composer, zap.NewNop())
}

var errParse = errors.New("header block unreadable")
