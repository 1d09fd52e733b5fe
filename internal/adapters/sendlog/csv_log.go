package sendlog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/mikey/coach-ops/internal/core"
	"go.uber.org/zap"
)

// lockRetryDelay is how often a contended lock is retried
const lockRetryDelay = 100 * time.Millisecond

// legacyColumns maps older header names to current ones
var legacyColumns = map[string]string{
	"timestamp_utc": "timestamp",
}

// timestampLayouts are accepted when reading the log
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
}

// CSVLog is a send log kept in a CSV file. The first call takes an exclusive
// lock on a sibling .lock file that is held until Close.
type CSVLog struct {
	path   string
	lock   *flock.Flock
	locked bool
	mu     sync.Mutex
	logger *zap.Logger
}

// NewCSVLog creates a new CSV send log
func NewCSVLog(path string, logger *zap.Logger) *CSVLog {
	return &CSVLog{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger,
	}
}

// Records implements core.SendLog
func (l *CSVLog) Records(ctx context.Context, recipient string, since time.Time) ([]core.SendRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.acquire(ctx); err != nil {
		return nil, err
	}

	all, _, err := l.readAll()
	if err != nil {
		return nil, err
	}

	recipient = core.NormalizeRecipient(recipient)
	var out []core.SendRecord
	for _, rec := range all {
		if core.NormalizeRecipient(rec.Recipient) == recipient && !rec.Timestamp.Before(since) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Append implements core.SendLog. Rows follow the column order of an existing
// header; a new file gets the current header.
func (l *CSVLog) Append(ctx context.Context, record core.SendRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.acquire(ctx); err != nil {
		return err
	}

	_, header, err := l.readAll()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(l.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open send log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if header == nil {
		header = core.SendLogColumns
		if err := w.Write(header); err != nil {
			return fmt.Errorf("failed to write send log header: %w", err)
		}
	}

	values := map[string]string{
		"timestamp":        record.Timestamp.UTC().Format(time.RFC3339),
		"recipient":        record.Recipient,
		"subject":          record.Subject,
		"template_version": record.TemplateVersion,
		"sender":           record.Sender,
		"message_id":       record.MessageID,
	}
	row := make([]string, len(header))
	for i, name := range header {
		row[i] = values[canonicalColumn(name)]
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to write send log row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush send log: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync send log: %w", err)
	}

	l.logger.Debug("Send log appended", zap.String("path", l.path), zap.String("recipient", record.Recipient))
	return nil
}

// Close releases the file lock
func (l *CSVLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.locked {
		return nil
	}
	l.locked = false
	return l.lock.Unlock()
}

func (l *CSVLog) acquire(ctx context.Context) error {
	if l.locked {
		return nil
	}
	if dir := filepath.Dir(l.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	ok, err := l.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to lock send log %s: %w", l.path, err)
	}
	if !ok {
		return fmt.Errorf("send log %s is locked by another process", l.path)
	}
	l.locked = true
	return nil
}

// readAll parses the whole log. A missing or empty file has no records and a
// nil header. Any unparsable row makes the whole log corrupt.
func (l *CSVLog) readAll() ([]core.SendRecord, []string, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to open send log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: header: %v", core.ErrSendLogCorrupt, l.path, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[canonicalColumn(name)] = i
	}
	for _, required := range []string{"timestamp", "recipient", "template_version"} {
		if _, ok := index[required]; !ok {
			return nil, nil, fmt.Errorf("%w: %s: missing column %q", core.ErrSendLogCorrupt, l.path, required)
		}
	}

	field := func(row []string, name string) string {
		if i, ok := index[name]; ok && i < len(row) {
			return row[i]
		}
		return ""
	}

	var records []core.SendRecord
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s: line %d: %v", core.ErrSendLogCorrupt, l.path, line, err)
		}
		if len(row) < len(header) {
			return nil, nil, fmt.Errorf("%w: %s: line %d: expected %d fields, got %d", core.ErrSendLogCorrupt, l.path, line, len(header), len(row))
		}

		ts, err := parseTimestamp(field(row, "timestamp"))
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s: line %d: %v", core.ErrSendLogCorrupt, l.path, line, err)
		}
		recipient := field(row, "recipient")
		if strings.TrimSpace(recipient) == "" {
			return nil, nil, fmt.Errorf("%w: %s: line %d: empty recipient", core.ErrSendLogCorrupt, l.path, line)
		}

		records = append(records, core.SendRecord{
			Timestamp:       ts,
			Recipient:       recipient,
			Subject:         field(row, "subject"),
			TemplateVersion: field(row, "template_version"),
			Sender:          field(row, "sender"),
			MessageID:       field(row, "message_id"),
		})
	}

	return records, header, nil
}

func canonicalColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if current, ok := legacyColumns[name]; ok {
		return current
	}
	return name
}

// parseTimestamp accepts RFC 3339 and naive timestamps, treating the latter as UTC
func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}
