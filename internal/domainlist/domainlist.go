package domainlist

import (
	"strings"

	"go.uber.org/zap"
)

// Checker reports hosts that belong to blocked domains
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a new blocked-domain checker
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	// Normalize domains (lowercase, no leading dot or www.)
	normalized := make([]string, 0, len(domains))
	for _, domain := range domains {
		domain = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), ".")
		domain = strings.TrimPrefix(domain, "www.")
		if domain != "" {
			normalized = append(normalized, domain)
		}
	}

	if len(normalized) > 0 && logger != nil {
		logger.Debug("Initialized domain blocklist", zap.Strings("domains", normalized))
	}

	return &Checker{
		domains: normalized,
		logger:  logger,
	}
}

// IsBlocked checks if host is a blocked domain or one of its subdomains
func (c *Checker) IsBlocked(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	if host == "" {
		return false
	}

	for _, blocked := range c.domains {
		if host == blocked || strings.HasSuffix(host, "."+blocked) {
			if c.logger != nil {
				c.logger.Debug("Domain is blocked",
					zap.String("host", host),
					zap.String("rule", blocked))
			}
			return true
		}
	}

	return false
}
