package mailer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mikey/coach-ops/internal/core"
	"github.com/mikey/coach-ops/internal/resilience"
	"go.uber.org/zap"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GmailScope is the OAuth scope needed to send mail
const GmailScope = gmail.GmailSendScope

// ClientSource yields an authorized HTTP client
type ClientSource interface {
	Client(ctx context.Context) (*http.Client, error)
}

// GmailMailer sends mail through the Gmail API as the authorized user
type GmailMailer struct {
	clients ClientSource
	opts    []option.ClientOption
	logger  *zap.Logger
}

// NewGmailMailer creates a new Gmail mailer
func NewGmailMailer(clients ClientSource, logger *zap.Logger, opts ...option.ClientOption) *GmailMailer {
	return &GmailMailer{
		clients: clients,
		opts:    opts,
		logger:  logger,
	}
}

// Send implements core.Mailer
func (m *GmailMailer) Send(ctx context.Context, msg *core.Message) (*core.SendResult, error) {
	client, err := m.clients.Client(ctx)
	if err != nil {
		return nil, err
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, m.opts...)
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	now := time.Now()
	raw, _, err := BuildMessage(msg, now)
	if err != nil {
		return nil, err
	}

	sent, err := svc.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	if err != nil {
		return nil, classifyGmail(err)
	}

	m.logger.Debug("Gmail accepted message", zap.String("id", sent.Id), zap.String("thread", sent.ThreadId))
	return &core.SendResult{MessageID: sent.Id, Provider: "gmail", SentAt: now}, nil
}

func classifyGmail(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
			return &core.AuthError{Provider: "gmail", Err: err}
		case resilience.IsTransientHTTPStatus(apiErr.Code):
			return resilience.NewTransientError(fmt.Errorf("gmail send failed: %w", err), apiErr.Code)
		}
	}
	return fmt.Errorf("gmail send failed: %w", err)
}
