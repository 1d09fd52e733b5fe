package leadcsv

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/coach-ops/internal/core"
	"go.uber.org/zap"
)

// Writer writes leads to a CSV file, replacing any previous run's file
type Writer struct {
	path   string
	logger *zap.Logger
}

// NewWriter creates a new lead CSV writer
func NewWriter(path string, logger *zap.Logger) *Writer {
	return &Writer{
		path:   path,
		logger: logger,
	}
}

// WriteLeads writes the header and one row per lead, returning the file path
func (w *Writer) WriteLeads(_ context.Context, leads []core.Lead) (string, error) {
	if dir := filepath.Dir(w.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// Rows go to a temp file that replaces path once complete
	tmp, err := os.CreateTemp(filepath.Dir(w.path), ".leads-*.csv")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	cw := csv.NewWriter(tmp)
	if err := cw.Write(core.LeadColumns); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write header: %w", err)
	}
	for _, lead := range leads {
		if err := cw.Write(lead.Row()); err != nil {
			tmp.Close()
			return "", fmt.Errorf("failed to write lead %s: %w", lead.WebsiteURL, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return "", fmt.Errorf("failed to move leads into %s: %w", w.path, err)
	}

	w.logger.Debug("Lead CSV written", zap.String("path", w.path), zap.Int("rows", len(leads)))
	return w.path, nil
}
