package core

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"
)

// GuardResult is the outcome of a duplicate check
type GuardResult struct {
	Decision Decision
	// Match is the most recent record inside the window, if any
	Match *SendRecord
}

// DuplicateGuard suppresses onboarding sends that repeat a recent one
type DuplicateGuard struct {
	log    SendLog
	window time.Duration
	logger *zap.Logger
}

// NewDuplicateGuard creates a new duplicate guard
func NewDuplicateGuard(log SendLog, window time.Duration, logger *zap.Logger) *DuplicateGuard {
	return &DuplicateGuard{
		log:    log,
		window: window,
		logger: logger,
	}
}

// Window returns the suppression window
func (g *DuplicateGuard) Window() time.Duration {
	return g.window
}

// Check decides whether a send to recipient with templateVersion may go out at now.
// The guard fails closed: any problem reading the log is returned as an error.
func (g *DuplicateGuard) Check(ctx context.Context, recipient, templateVersion string, now time.Time, override bool) (*GuardResult, error) {
	if override {
		g.logger.Info("Duplicate check overridden",
			zap.String("recipient", recipient),
			zap.String("template_version", templateVersion))
		return &GuardResult{Decision: Allow}, nil
	}

	records, err := g.log.Records(ctx, NormalizeRecipient(recipient), now.Add(-g.window))
	if err != nil {
		if errors.Is(err, ErrSendLogCorrupt) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read send log: %w", err)
	}

	decision, match := Evaluate(records, recipient, templateVersion, now, g.window)
	g.logger.Debug("Duplicate check",
		zap.String("recipient", recipient),
		zap.String("template_version", templateVersion),
		zap.Int("records", len(records)),
		zap.Stringer("decision", decision))

	return &GuardResult{Decision: decision, Match: match}, nil
}

// Evaluate applies the duplicate rule to a set of records. A record matches when
// its recipient equals recipient ignoring case, its template version is equal, and
// its timestamp lies in [now-window, now].
func Evaluate(records []SendRecord, recipient, templateVersion string, now time.Time, window time.Duration) (Decision, *SendRecord) {
	recipient = NormalizeRecipient(recipient)
	since := now.Add(-window)

	var match *SendRecord
	for i := range records {
		rec := &records[i]
		if NormalizeRecipient(rec.Recipient) != recipient || rec.TemplateVersion != templateVersion {
			continue
		}
		if rec.Timestamp.Before(since) || rec.Timestamp.After(now) {
			continue
		}
		if match == nil || rec.Timestamp.After(match.Timestamp) {
			match = rec
		}
	}

	if match != nil {
		return Suppress, match
	}
	return Allow, nil
}

// NormalizeRecipient returns the form of an address used for comparisons. A
// display-name form such as "Jane <jane@x.com>" reduces to its bare address.
func NormalizeRecipient(addr string) string {
	if parsed, err := mail.ParseAddress(addr); err == nil {
		return strings.ToLower(parsed.Address)
	}
	return strings.ToLower(strings.TrimSpace(addr))
}
