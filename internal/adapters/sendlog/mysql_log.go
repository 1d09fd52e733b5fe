package sendlog

import (
	"context"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

var mysqlDialect = dialect{
	name:   "mysql",
	driver: "mysql",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS onboarding_sends (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			sent_at BIGINT NOT NULL,
			recipient_key VARCHAR(320) NOT NULL,
			recipient VARCHAR(320) NOT NULL,
			subject TEXT NOT NULL,
			template_version VARCHAR(128) NOT NULL,
			sender VARCHAR(320) NOT NULL,
			message_id VARCHAR(512) NOT NULL,
			INDEX idx_onboarding_sends_recipient (recipient_key, sent_at)
		)`,
	},
}

// NewMySQLLog opens a send log in a MySQL database
func NewMySQLLog(ctx context.Context, dsn string, logger *zap.Logger) (*SQLLog, error) {
	return openSQLLog(ctx, mysqlDialect, dsn, logger)
}
