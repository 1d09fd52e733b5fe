package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/mikey/coach-ops/internal/core"
	"github.com/mikey/coach-ops/internal/resilience"
	"go.uber.org/zap"
)

// SMTPOptions configures the SMTP mailer
type SMTPOptions struct {
	Host     string
	Port     int
	Username string
	Password string
	StartTLS bool
	Timeout  time.Duration
	// TLSConfig overrides the STARTTLS configuration
	TLSConfig *tls.Config
}

// SMTPMailer submits mail to an SMTP relay
type SMTPMailer struct {
	opts   SMTPOptions
	logger *zap.Logger
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(opts SMTPOptions, logger *zap.Logger) *SMTPMailer {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &SMTPMailer{
		opts:   opts,
		logger: logger,
	}
}

// Send implements core.Mailer
func (m *SMTPMailer) Send(ctx context.Context, msg *core.Message) (*core.SendResult, error) {
	now := time.Now()
	raw, id, err := BuildMessage(msg, now)
	if err != nil {
		return nil, err
	}

	addr := net.JoinHostPort(m.opts.Host, strconv.Itoa(m.opts.Port))
	dialer := &net.Dialer{Timeout: m.opts.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, resilience.NewTransientError(fmt.Errorf("failed to connect to %s: %w", addr, err), 0)
	}

	if deadline, ok := ctx.Deadline(); ok {
		err = conn.SetDeadline(deadline)
	} else {
		err = conn.SetDeadline(time.Now().Add(m.opts.Timeout))
	}
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	if err := c.Hello(hostname); err != nil {
		return nil, classifySMTP("EHLO", err)
	}

	if m.opts.StartTLS {
		if ok, _ := c.Extension("STARTTLS"); !ok {
			return nil, fmt.Errorf("server %s does not support STARTTLS", addr)
		}
		tlsConfig := m.opts.TLSConfig
		if tlsConfig == nil {
			tlsConfig = &tls.Config{ServerName: m.opts.Host}
		}
		if err := c.StartTLS(tlsConfig); err != nil {
			return nil, classifySMTP("STARTTLS", err)
		}
	}

	if m.opts.Username != "" {
		if err := c.Auth(sasl.NewPlainClient("", m.opts.Username, m.opts.Password)); err != nil {
			return nil, &core.AuthError{Provider: "smtp", Err: err}
		}
	}

	if err := c.Mail(msg.From, nil); err != nil {
		return nil, classifySMTP("MAIL FROM", err)
	}
	if err := c.Rcpt(msg.To, nil); err != nil {
		return nil, classifySMTP("RCPT TO", err)
	}

	wc, err := c.Data()
	if err != nil {
		return nil, classifySMTP("DATA", err)
	}
	if _, err := wc.Write(raw); err != nil {
		wc.Close()
		return nil, fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return nil, classifySMTP("DATA", err)
	}

	// The message is accepted once DATA completes
	if err := c.Quit(); err != nil {
		m.logger.Warn("QUIT command failed", zap.Error(err))
	}

	m.logger.Debug("SMTP relay accepted message", zap.String("relay", addr), zap.String("message_id", id))
	return &core.SendResult{MessageID: id, Provider: "smtp", SentAt: now}, nil
}

// classifySMTP marks 4xx replies as transient
func classifySMTP(stage string, err error) error {
	wrapped := fmt.Errorf("%s failed: %w", stage, err)
	var smtpErr *smtp.SMTPError
	if errors.As(err, &smtpErr) {
		if smtpErr.Temporary() {
			return resilience.NewTransientError(wrapped, smtpErr.Code)
		}
		if smtpErr.Code == 530 || smtpErr.Code == 535 {
			return &core.AuthError{Provider: "smtp", Err: wrapped}
		}
	}
	return wrapped
}
