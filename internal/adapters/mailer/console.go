package mailer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mikey/coach-ops/internal/core"
	"go.uber.org/zap"
)

// ConsoleMailer prints messages instead of sending them
type ConsoleMailer struct {
	out    io.Writer
	logger *zap.Logger
}

// NewConsoleMailer creates a new console mailer writing to out
func NewConsoleMailer(out io.Writer, logger *zap.Logger) *ConsoleMailer {
	return &ConsoleMailer{
		out:    out,
		logger: logger,
	}
}

// Send implements core.Mailer
func (m *ConsoleMailer) Send(_ context.Context, msg *core.Message) (*core.SendResult, error) {
	now := time.Now()
	_, id, err := BuildMessage(msg, now)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(m.out, "\n=== Email (not sent) ===\n")
	fmt.Fprintf(m.out, "Message-Id: %s\n", id)
	fmt.Fprintf(m.out, "From: %s <%s>\n", msg.FromName, msg.From)
	fmt.Fprintf(m.out, "To: %s\n", msg.To)
	fmt.Fprintf(m.out, "Subject: %s\n\n", msg.Subject)
	fmt.Fprintf(m.out, "%s\n", msg.Body)
	fmt.Fprintf(m.out, "=== End ===\n")

	m.logger.Debug("Message printed", zap.String("message_id", id))
	return &core.SendResult{MessageID: id, Provider: "console", SentAt: now}, nil
}
