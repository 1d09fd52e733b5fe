package sendlog

import (
	"context"
	"sync"
	"time"

	"github.com/mikey/coach-ops/internal/core"
	"go.uber.org/zap"
)

// MemoryLog is an in-memory send log keyed by normalized recipient
type MemoryLog struct {
	entries map[string][]core.SendRecord
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewMemoryLog creates a new in-memory send log
func NewMemoryLog(logger *zap.Logger) *MemoryLog {
	return &MemoryLog{
		entries: make(map[string][]core.SendRecord),
		logger:  logger,
	}
}

// Records implements core.SendLog
func (l *MemoryLog) Records(_ context.Context, recipient string, since time.Time) ([]core.SendRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []core.SendRecord
	for _, rec := range l.entries[core.NormalizeRecipient(recipient)] {
		if !rec.Timestamp.Before(since) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Append implements core.SendLog
func (l *MemoryLog) Append(_ context.Context, record core.SendRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := core.NormalizeRecipient(record.Recipient)
	l.entries[key] = append(l.entries[key], record)
	l.logger.Debug("Send log appended", zap.String("backend", "memory"), zap.String("recipient", record.Recipient))
	return nil
}

// Close is a no-op
func (l *MemoryLog) Close() error {
	return nil
}
