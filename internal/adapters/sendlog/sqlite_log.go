package sendlog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var sqliteDialect = dialect{
	name:   "sqlite",
	driver: "sqlite3",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS onboarding_sends (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sent_at INTEGER NOT NULL,
			recipient_key TEXT NOT NULL,
			recipient TEXT NOT NULL,
			subject TEXT NOT NULL,
			template_version TEXT NOT NULL,
			sender TEXT NOT NULL,
			message_id TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_onboarding_sends_recipient ON onboarding_sends(recipient_key, sent_at)`,
	},
}

// NewSQLiteLog opens a send log in a SQLite database file
func NewSQLiteLog(ctx context.Context, dbPath string, logger *zap.Logger) (*SQLLog, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return openSQLLog(ctx, sqliteDialect, dbPath, logger)
}
