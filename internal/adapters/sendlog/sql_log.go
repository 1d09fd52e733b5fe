package sendlog

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mikey/coach-ops/internal/core"
	"go.uber.org/zap"
)

// dialect holds the per-driver differences of the SQL send logs
type dialect struct {
	name        string
	driver      string
	schema      []string
	placeholder func(n int) string
}

func dollarPlaceholder(n int) string { return "$" + strconv.Itoa(n) }

// SQLLog is a send log stored in a relational database. Timestamps are kept
// as Unix nanoseconds so range queries behave the same on every driver.
type SQLLog struct {
	db      *sql.DB
	dialect dialect
	logger  *zap.Logger
}

func openSQLLog(ctx context.Context, d dialect, dsn string, logger *zap.Logger) (*SQLLog, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", d.name, err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", d.name, err)
	}

	for _, stmt := range d.schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create send log schema: %w", err)
		}
	}

	return &SQLLog{db: db, dialect: d, logger: logger}, nil
}

// rebind rewrites ? placeholders for the dialect
func (l *SQLLog) rebind(query string) string {
	if l.dialect.placeholder == nil {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(l.dialect.placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Records implements core.SendLog
func (l *SQLLog) Records(ctx context.Context, recipient string, since time.Time) ([]core.SendRecord, error) {
	rows, err := l.db.QueryContext(ctx, l.rebind(`
		SELECT sent_at, recipient, subject, template_version, sender, message_id
		FROM onboarding_sends
		WHERE recipient_key = ? AND sent_at >= ?
		ORDER BY sent_at
	`), core.NormalizeRecipient(recipient), since.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("failed to query send log: %w", err)
	}
	defer rows.Close()

	var records []core.SendRecord
	for rows.Next() {
		var sentAt int64
		var rec core.SendRecord
		if err := rows.Scan(&sentAt, &rec.Recipient, &rec.Subject, &rec.TemplateVersion, &rec.Sender, &rec.MessageID); err != nil {
			return nil, fmt.Errorf("%w: %s row: %v", core.ErrSendLogCorrupt, l.dialect.name, err)
		}
		rec.Timestamp = time.Unix(0, sentAt).UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read send log: %w", err)
	}

	return records, nil
}

// Append implements core.SendLog
func (l *SQLLog) Append(ctx context.Context, record core.SendRecord) error {
	_, err := l.db.ExecContext(ctx, l.rebind(`
		INSERT INTO onboarding_sends (sent_at, recipient_key, recipient, subject, template_version, sender, message_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), record.Timestamp.UnixNano(), core.NormalizeRecipient(record.Recipient), record.Recipient,
		record.Subject, record.TemplateVersion, record.Sender, record.MessageID)
	if err != nil {
		return fmt.Errorf("failed to insert send log entry: %w", err)
	}

	l.logger.Debug("Send log appended",
		zap.String("backend", l.dialect.name),
		zap.String("recipient", record.Recipient))
	return nil
}

// Close closes the database connection
func (l *SQLLog) Close() error {
	if err := l.db.Close(); err != nil {
		return fmt.Errorf("failed to close %s database: %w", l.dialect.name, err)
	}
	return nil
}
