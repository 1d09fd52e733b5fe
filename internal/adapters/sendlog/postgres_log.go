package sendlog

import (
	"context"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

var postgresDialect = dialect{
	name:   "postgres",
	driver: "postgres",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS onboarding_sends (
			id BIGSERIAL PRIMARY KEY,
			sent_at BIGINT NOT NULL,
			recipient_key TEXT NOT NULL,
			recipient TEXT NOT NULL,
			subject TEXT NOT NULL,
			template_version TEXT NOT NULL,
			sender TEXT NOT NULL,
			message_id TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_onboarding_sends_recipient ON onboarding_sends(recipient_key, sent_at)`,
	},
	placeholder: dollarPlaceholder,
}

// NewPostgresLog opens a send log in a PostgreSQL database
func NewPostgresLog(ctx context.Context, dsn string, logger *zap.Logger) (*SQLLog, error) {
	return openSQLLog(ctx, postgresDialect, dsn, logger)
}
