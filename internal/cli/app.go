// Package cli holds the cobra plumbing shared by the coach-ops binaries.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey/coach-ops/internal/config"
	"github.com/mikey/coach-ops/internal/logging"
)

// App carries the state loaded before any command runs
type App struct {
	ConfigFile string
	Verbose    bool
	JSONLog    bool

	Config *config.Config
	Logger *zap.Logger
	RunID  string

	// bindings maps viper keys to flag names
	bindings map[string]string
}

// NewApp creates an App and registers the persistent flags on root
func NewApp(root *cobra.Command) *App {
	app := &App{bindings: make(map[string]string)}

	root.PersistentFlags().StringVar(&app.ConfigFile, "config", "", "Path to config file")
	root.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&app.JSONLog, "json-log", false, "Output logs in JSON format")

	root.SilenceUsage = true
	root.SilenceErrors = true
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return app.Load(cmd)
	}
	root.PersistentPostRun = func(*cobra.Command, []string) {
		if app.Logger != nil {
			_ = app.Logger.Sync()
		}
	}
	return app
}

// Bind records that flag overrides the configuration key when set
func (a *App) Bind(key, flag string) {
	a.bindings[key] = flag
}

// Load reads configuration, applies bound flags and builds the run logger
func (a *App) Load(cmd *cobra.Command) error {
	cfg, err := config.New(a.ConfigFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	v := cfg.GetViper()
	for key, name := range a.bindings {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}
	if a.JSONLog {
		v.Set("logging.format", "json")
	}

	var logger *zap.Logger
	if a.Verbose {
		logger, err = logging.InitConsoleLogger(true, a.JSONLog)
	} else {
		logger, err = logging.InitLogger(cfg)
	}
	if err != nil {
		return err
	}

	a.RunID = uuid.NewString()
	a.Config = cfg
	a.Logger = logger.With(zap.String("run_id", a.RunID))
	if used := v.ConfigFileUsed(); used != "" {
		a.Logger.Debug("Loaded configuration from file", zap.String("file", used))
	}
	return nil
}

// Execute runs root under a signal-aware context, prints a failure as a single
// error line on stderr and returns the process exit code
func Execute(root *cobra.Command, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
