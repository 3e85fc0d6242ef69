package email

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/mikey/llm-mail-extractor/internal/core"
	"go.uber.org/zap"
)

const defaultContentType = "text/plain"

// Parser decomposes raw RFC 5322 messages into EmailRecords
type Parser struct {
	attachments core.AttachmentTextExtractor
	images      core.ImageTextExtractor
	logger      *zap.Logger
}

// NewParser creates a new MIME decomposer
func NewParser(attachments core.AttachmentTextExtractor, images core.ImageTextExtractor, logger *zap.Logger) *Parser {
	return &Parser{
		attachments: attachments,
		images:      images,
		logger:      logger,
	}
}

// ParseFile parses the message stored at path
func (p *Parser) ParseFile(ctx context.Context, path string) (*core.EmailRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open email file: %w", err)
	}
	defer f.Close()

	return p.Parse(ctx, f)
}

// Parse walks every MIME part of the message once, in serialized order.
// Only an unreadable header block is an error; everything else degrades to empty values.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (*core.EmailRecord, error) {
	entity, err := message.Read(r)
	if err != nil && !isRecoverable(err) {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}
	if err != nil {
		p.logger.Warn("Message uses an unknown charset or encoding, body left undecoded", zap.Error(err))
	}

	header := mail.Header{Header: entity.Header}
	record := &core.EmailRecord{
		FromAddress:    firstAddress(header, "From"),
		ToAddress:      firstAddress(header, "To"),
		Subject:        subject(header),
		Date:           header.Get("Date"),
		Attachments:    []core.Attachment{},
		EmbeddedImages: []string{},
	}

	var (
		attachmentTexts []string
		imageTexts      []string
		haveText        bool
		haveHTML        bool
	)

	walkErr := entity.Walk(func(path []int, part *message.Entity, err error) error {
		if err != nil && !isRecoverable(err) {
			return err
		}
		contentType := partContentType(part.Header)
		if strings.HasPrefix(contentType, "multipart/") {
			return nil
		}

		disposition, _, _ := part.Header.ContentDisposition()
		isAttachment := strings.EqualFold(disposition, "attachment")

		switch {
		case isAttachment:
			filename := partFilename(part.Header)
			if filename == "" {
				p.logger.Debug("Attachment without filename ignored",
					zap.String("content_type", contentType))
				return nil
			}
			record.Attachments = append(record.Attachments, core.Attachment{
				Filename:    filename,
				ContentType: contentType,
			})
			p.logger.Info("Found attachment",
				zap.String("filename", filename),
				zap.String("content_type", contentType))

			data, err := io.ReadAll(part.Body)
			if err != nil {
				p.logger.Warn("Failed to read attachment payload",
					zap.String("filename", filename), zap.Error(err))
				return nil
			}
			if text := p.attachments.ExtractText(ctx, filename, data); strings.TrimSpace(text) != "" {
				attachmentTexts = append(attachmentTexts, fmt.Sprintf("[%s]\n%s", filename, text))
			}
		case contentType == "text/plain":
			if haveText {
				return nil
			}
			haveText = true
			body, err := readBody(part)
			if err != nil {
				p.logger.Warn("Failed to read text part", zap.Error(err))
				return nil
			}
			record.Text = body
		case contentType == "text/html":
			if haveHTML {
				return nil
			}
			haveHTML = true
			body, err := readBody(part)
			if err != nil {
				p.logger.Warn("Failed to read HTML part", zap.Error(err))
				return nil
			}
			record.HTML = body
		case strings.HasPrefix(contentType, "image/"):
			record.EmbeddedImages = append(record.EmbeddedImages, contentType)
			data, err := io.ReadAll(part.Body)
			if err != nil {
				p.logger.Warn("Failed to read embedded image",
					zap.String("content_type", contentType), zap.Error(err))
				return nil
			}
			if text := p.images.RecognizeImage(ctx, data); strings.TrimSpace(text) != "" {
				imageTexts = append(imageTexts, text)
			}
		}
		return nil
	})
	if walkErr != nil {
		p.logger.Warn("Stopped walking malformed message, keeping parts read so far", zap.Error(walkErr))
	}

	if strings.TrimSpace(record.Text) == "" && record.HTML != "" {
		record.Text = HTMLToText(record.HTML)
	}

	record.AttachmentTextSummary = strings.Join(attachmentTexts, "\n\n")
	record.EmbeddedImageText = strings.Join(imageTexts, "\n\n")

	p.logger.Debug("Decomposed message",
		zap.String("from", record.FromAddress),
		zap.String("to", record.ToAddress),
		zap.Int("attachments", len(record.Attachments)),
		zap.Int("embedded_images", len(record.EmbeddedImages)))

	return record, nil
}

func isRecoverable(err error) bool {
	return message.IsUnknownCharset(err) || message.IsUnknownEncoding(err)
}

func readBody(part *message.Entity) (string, error) {
	data, err := io.ReadAll(part.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// partContentType returns the lowercased media type, defaulting to text/plain
func partContentType(h message.Header) string {
	t, _, err := h.ContentType()
	if err != nil || t == "" {
		return defaultContentType
	}
	return strings.ToLower(t)
}

// partFilename reads the disposition filename, falling back to the content-type name
func partFilename(h message.Header) string {
	ah := mail.AttachmentHeader{Header: h}
	filename, err := ah.Filename()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(filename)
}

func subject(h mail.Header) string {
	s, err := h.Subject()
	if err != nil {
		return h.Get("Subject")
	}
	return s
}

// firstAddress returns the address of the first entry of an address list header
func firstAddress(h mail.Header, key string) string {
	addrs, err := h.AddressList(key)
	if err == nil {
		if len(addrs) > 0 {
			return addrs[0].Address
		}
		return ""
	}

	// A later malformed entry should not hide a valid first one
	addr, err := mail.ParseAddress(firstListEntry(h.Get(key)))
	if err != nil {
		return ""
	}
	return addr.Address
}

// firstListEntry cuts an address list at its first top-level comma, ignoring
// commas inside quoted strings, comments and angle brackets
func firstListEntry(list string) string {
	var (
		quoted  bool
		escaped bool
		comment int
		angle   bool
	)
	for i := 0; i < len(list); i++ {
		ch := list[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\' && (quoted || comment > 0):
			escaped = true
		case quoted:
			if ch == '"' {
				quoted = false
			}
		case comment > 0:
			if ch == '(' {
				comment++
			} else if ch == ')' {
				comment--
			}
		case ch == '"':
			quoted = true
		case ch == '(':
			comment = 1
		case ch == '<':
			angle = true
		case ch == '>':
			angle = false
		case ch == ',' && !angle:
			return strings.TrimSpace(list[:i])
		}
	}
	return strings.TrimSpace(list)
}
