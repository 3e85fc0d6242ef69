package intake

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/llm-mail-extractor/internal/allowlist"
	"github.com/mikey/llm-mail-extractor/internal/config"
	"github.com/mikey/llm-mail-extractor/internal/core"
	"go.uber.org/zap"
)

const (
	statusOK    = "ok"
	statusEmpty = "empty"
	statusError = "error"
)

// SMTPIntake accepts messages over SMTP, runs the extraction on each one and
// optionally relays the message onward with the outcome in its headers
type SMTPIntake struct {
	service   *core.ExtractionService
	allowlist *allowlist.Checker
	logger    *zap.Logger
	cfg       config.IntakeConfig
	template  string
	modelID   string
	server    *smtp.Server

	// one message is fully processed before the next
	mu sync.Mutex
}

// NewSMTPIntake creates a new SMTP intake
func NewSMTPIntake(
	service *core.ExtractionService,
	allow *allowlist.Checker,
	logger *zap.Logger,
	cfg config.IntakeConfig,
	template string,
	modelID string,
) *SMTPIntake {
	if cfg.StatusHeader == "" {
		cfg.StatusHeader = "X-Extraction-Status"
	}
	if cfg.FieldsHeader == "" {
		cfg.FieldsHeader = "X-Extracted-Fields"
	}
	return &SMTPIntake{
		service:   service,
		allowlist: allow,
		logger:    logger,
		cfg:       cfg,
		template:  template,
		modelID:   modelID,
	}
}

// Start starts the SMTP listener in the background
func (s *SMTPIntake) Start() error {
	s.server = smtp.NewServer(&smtpBackend{intake: s})

	s.server.Addr = s.cfg.ListenAddress
	s.server.Domain = "localhost"
	s.server.ReadTimeout = 30 * time.Second
	s.server.WriteTimeout = 30 * time.Second
	s.server.MaxMessageBytes = s.cfg.MaxMessageBytes
	s.server.MaxRecipients = 50

	s.logger.Info("SMTP intake starting",
		zap.String("address", s.cfg.ListenAddress),
		zap.Bool("relay", s.cfg.Relay.Enabled))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != smtp.ErrServerClosed {
			s.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the SMTP listener
func (s *SMTPIntake) Stop() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}

// ProcessMessage runs the extraction pipeline over one raw message
func (s *SMTPIntake) ProcessMessage(ctx context.Context, r io.Reader) (*core.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.service.Process(ctx, r, s.template, s.modelID)
}

// extractionHeaders describes the outcome of a run as header name/value pairs
func (s *SMTPIntake) extractionHeaders(report *core.Report, runErr error) [][2]string {
	status := statusOK
	var fields []string

	switch {
	case runErr != nil:
		status = statusError + ": " + runErr.Error()
	case report.Result.Error != "":
		status = statusError + ": " + report.Result.Error
	case report.Result.ParseMode == core.ParseModeNone:
		status = statusEmpty
	default:
		for key := range report.Result.ExtractedData {
			fields = append(fields, key)
		}
		sort.Strings(fields)
	}

	headers := [][2]string{{s.cfg.StatusHeader, headerValue(status)}}
	if len(fields) > 0 {
		headers = append(headers, [2]string{s.cfg.FieldsHeader, headerValue(strings.Join(fields, ", "))})
	}
	return headers
}

// withHeaders prepends header fields to a raw message
func withHeaders(raw []byte, headers [][2]string) []byte {
	var buf bytes.Buffer
	for _, h := range headers {
		fmt.Fprintf(&buf, "%s: %s\r\n", h[0], h[1])
	}
	buf.Write(raw)
	return buf.Bytes()
}

// headerValue keeps a value on a single header line
func headerValue(v string) string {
	v = strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
	if len(v) > 900 {
		v = v[:900]
	}
	return strings.TrimSpace(v)
}

// relay forwards the message to the configured next hop
func (s *SMTPIntake) relay(sender string, recipients []string, data []byte) error {
	addr := net.JoinHostPort(s.cfg.Relay.Address, fmt.Sprintf("%d", s.cfg.Relay.Port))

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			s.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			continue
		}
		recipientOK = true
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send message data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		// already delivered
		s.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	intake *SMTPIntake
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{intake: b.intake}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	intake     *SMTPIntake
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

// Mail checks the sender against the allow-list
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	if !s.intake.allowlist.IsAllowed(from) {
		s.intake.logger.Info("Rejecting sender outside the allow-list", zap.String("sender", from))
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 7, 1},
			Message:      "Sender domain not allowed",
		}
	}
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data runs the extraction over the message and relays it when configured.
// Extraction problems never cause the message to be refused.
func (s *smtpSession) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		s.intake.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	report, runErr := s.intake.ProcessMessage(context.Background(), bytes.NewReader(raw))
	if runErr != nil {
		s.intake.logger.Error("Extraction failed",
			zap.String("sender", s.sender),
			zap.Error(runErr))
	} else {
		s.intake.logger.Info("Processed message",
			zap.String("sender", s.sender),
			zap.String("from", report.Record.FromAddress),
			zap.String("subject", report.Record.Subject),
			zap.Int("attachments", len(report.Record.Attachments)),
			zap.String("request_id", report.Result.RequestID),
			zap.String("model", report.Result.ModelID),
			zap.String("parse_mode", string(report.Result.ParseMode)),
			zap.Any("extracted_data", report.Result.ExtractedData))
	}

	if !s.intake.cfg.Relay.Enabled {
		return nil
	}

	data := withHeaders(raw, s.intake.extractionHeaders(report, runErr))
	if err := s.intake.relay(s.sender, s.recipients, data); err != nil {
		s.intake.logger.Error("Failed to relay message",
			zap.String("sender", s.sender),
			zap.Error(err))
		return err
	}

	return nil
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}
