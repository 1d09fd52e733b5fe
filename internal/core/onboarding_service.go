package core

import (
	"context"
	"fmt"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/mikey/coach-ops/internal/resilience"
	"go.uber.org/zap"
)

// OnboardingService is the core service for onboarding emails
type OnboardingService struct {
	mailer          Mailer
	sendLog         SendLog
	guard           *DuplicateGuard
	logger          *zap.Logger
	templateVersion string
	defaultSubject  string
	retry           resilience.RetryConfig
	now             func() time.Time
}

// NewOnboardingService creates a new onboarding service
func NewOnboardingService(
	mailer Mailer,
	sendLog SendLog,
	logger *zap.Logger,
	window time.Duration,
	templateVersion string,
	defaultSubject string,
	retry resilience.RetryConfig,
) *OnboardingService {
	return &OnboardingService{
		mailer:          mailer,
		sendLog:         sendLog,
		guard:           NewDuplicateGuard(sendLog, window, logger),
		logger:          logger,
		templateVersion: templateVersion,
		defaultSubject:  defaultSubject,
		retry:           retry,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the service's time source
func (s *OnboardingService) SetClock(now func() time.Time) {
	s.now = now
}

// Send validates, renders, deduplicates, sends and logs one onboarding email
func (s *OnboardingService) Send(ctx context.Context, req *OnboardingRequest) (*OnboardingOutcome, error) {
	recipient, err := validateRequest(req)
	if err != nil {
		return nil, err
	}

	body, err := s.buildBody(req)
	if err != nil {
		return nil, err
	}

	subject := req.Subject
	if subject == "" {
		subject = s.defaultSubject
	}

	result, err := s.guard.Check(ctx, recipient, s.templateVersion, s.now(), req.AllowDuplicate)
	if err != nil {
		return nil, err
	}
	if result.Decision == Suppress {
		s.logger.Info("Skipped: recent matching send found in log",
			zap.String("recipient", recipient),
			zap.String("template_version", s.templateVersion),
			zap.Time("previous_send", result.Match.Timestamp),
			zap.Duration("window", s.guard.Window()))
		return &OnboardingOutcome{Status: StatusSuppressed, Prior: result.Match}, nil
	}

	msg := &Message{
		From:     req.From,
		FromName: req.SenderName,
		To:       recipient,
		Subject:  subject,
		Body:     body,
	}

	attempts := 0
	retry := s.retry
	retry.OnRetry = func(attempt int, err error) {
		s.logger.Warn("Retrying send",
			zap.String("recipient", recipient),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}
	sent, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (*SendResult, error) {
		attempts++
		return s.mailer.Send(ctx, msg)
	})
	if err != nil {
		if resilience.IsTransient(err) {
			return nil, &NetworkError{Op: "send email to", Target: recipient, Attempts: attempts, Err: err}
		}
		return nil, err
	}

	record := SendRecord{
		Timestamp:       s.now(),
		Recipient:       recipient,
		Subject:         subject,
		TemplateVersion: s.templateVersion,
		Sender:          req.From,
		MessageID:       sent.MessageID,
	}
	if err := s.sendLog.Append(ctx, record); err != nil {
		return nil, fmt.Errorf("email sent (message id %s) but failed to append send log: %w", sent.MessageID, err)
	}

	s.logger.Info("Onboarding email sent",
		zap.String("recipient", recipient),
		zap.String("provider", sent.Provider),
		zap.String("message_id", sent.MessageID),
		zap.String("template_version", s.templateVersion))

	return &OnboardingOutcome{Status: StatusSent, MessageID: sent.MessageID, Record: &record}, nil
}

// buildBody picks the body file, the raw body, or the rendered template in that order
func (s *OnboardingService) buildBody(req *OnboardingRequest) (string, error) {
	if req.BodyFile != "" {
		data, err := os.ReadFile(req.BodyFile)
		if err != nil {
			return "", &InputValidationError{Field: "body-file", Reason: err.Error()}
		}
		return string(data), nil
	}
	if req.Body != "" {
		return req.Body, nil
	}

	tmpl := req.Template
	if tmpl == "" {
		tmpl = DefaultTemplate
	}
	return Render(tmpl, map[string]string{
		FieldFirstName:      req.FirstName,
		FieldSenderName:     req.SenderName,
		FieldSchedulingLink: req.SchedulingLink,
	})
}

// validateRequest checks required inputs and returns the bare recipient address
func validateRequest(req *OnboardingRequest) (string, error) {
	required := []struct {
		field string
		value string
	}{
		{"to", req.To},
		{"from", req.From},
		{"first-name", req.FirstName},
		{"sender-name", req.SenderName},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return "", &InputValidationError{Field: r.field, Reason: "is required"}
		}
	}
	to, err := mail.ParseAddress(req.To)
	if err != nil {
		return "", &InputValidationError{Field: "to", Reason: err.Error()}
	}
	if _, err := mail.ParseAddress(req.From); err != nil {
		return "", &InputValidationError{Field: "from", Reason: err.Error()}
	}
	return to.Address, nil
}
