package allowlist

import (
	"strings"

	"go.uber.org/zap"
)

// Checker decides whether a sender domain may submit messages for extraction
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a new allow-list checker. An empty list allows every sender.
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalized := make([]string, 0, len(domains))
	for _, domain := range domains {
		domain = strings.Trim(strings.ToLower(strings.TrimSpace(domain)), ".")
		if domain != "" {
			normalized = append(normalized, domain)
		}
	}

	if len(normalized) > 0 {
		logger.Info("Initialized sender allow-list", zap.Strings("domains", normalized))
	}

	return &Checker{
		domains: normalized,
		logger:  logger,
	}
}

// Enabled reports whether any domain restriction is configured
func (c *Checker) Enabled() bool {
	return len(c.domains) > 0
}

// IsAllowed checks the sender's domain against the list. Subdomains of a
// listed domain are allowed.
func (c *Checker) IsAllowed(from string) bool {
	if !c.Enabled() {
		return true
	}

	at := strings.LastIndex(from, "@")
	if at < 0 || at == len(from)-1 {
		c.logger.Debug("Sender has no domain", zap.String("sender", from))
		return false
	}
	domain := strings.ToLower(strings.TrimSuffix(from[at+1:], ">"))

	for _, allowed := range c.domains {
		if domain == allowed || strings.HasSuffix(domain, "."+allowed) {
			c.logger.Debug("Sender domain allowed",
				zap.String("domain", domain),
				zap.String("sender", from))
			return true
		}
	}

	return false
}
