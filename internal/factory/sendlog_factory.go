package factory

import (
	"context"
	"fmt"

	"github.com/mikey/coach-ops/internal/adapters/sendlog"
	"github.com/mikey/coach-ops/internal/config"
	"go.uber.org/zap"
)

// SendLogFactory creates send logs based on configuration
type SendLogFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewSendLogFactory creates a new send log factory
func NewSendLogFactory(cfg *config.Config, logger *zap.Logger) *SendLogFactory {
	return &SendLogFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSendLog creates a send log based on the configuration
func (f *SendLogFactory) CreateSendLog(ctx context.Context) (sendlog.Log, error) {
	logCfg := f.cfg.GetSendLog()

	switch logCfg.Type {
	case "csv", "":
		return sendlog.NewCSVLog(logCfg.CSVPath, f.logger), nil
	case "memory":
		return sendlog.NewMemoryLog(f.logger), nil
	case "sqlite":
		return sendlog.NewSQLiteLog(ctx, logCfg.SQLitePath, f.logger)
	case "mysql":
		return sendlog.NewMySQLLog(ctx, logCfg.MySQLDSN, f.logger)
	case "postgres":
		return sendlog.NewPostgresLog(ctx, logCfg.PostgresDSN, f.logger)
	default:
		return nil, fmt.Errorf("unsupported send log type: %s", logCfg.Type)
	}
}
