package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/coach-ops/internal/cli"
	"github.com/mikey/coach-ops/internal/core"
	"github.com/mikey/coach-ops/internal/di"
	"github.com/mikey/coach-ops/internal/factory"
)

func main() {
	os.Exit(cli.Execute(newRootCommand(os.Stdout), os.Stderr))
}

func newRootCommand(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "lead-sourcer",
		Short: "Collect executive coach leads into a CSV file and a Google Sheet",
		Long: `Searches the web for executive coaches in Eastern-time locations, keeps
the non-technical practices, writes them to a CSV file and publishes the
same rows to a new Google Sheet unless --skip-sheet is given.`,
		Args: cobra.NoArgs,
	}
	app := cli.NewApp(root)

	flags := root.Flags()
	flags.Int("limit", 0, "Number of leads to collect")
	flags.String("csv-path", "", "CSV output path")
	flags.String("credentials", "", "Path to the Google OAuth client credentials JSON")
	flags.String("token", "", "Path to the Google OAuth token JSON")
	flags.Bool("skip-sheet", false, "Write the CSV only")

	app.Bind("sourcing.limit", "limit")
	app.Bind("sourcing.csv_path", "csv-path")
	app.Bind("sheets.credentials_path", "credentials")
	app.Bind("sheets.token_path", "token")
	app.Bind("sourcing.skip_sheet", "skip-sheet")

	root.RunE = func(cmd *cobra.Command, _ []string) error {
		return runSourcing(cmd.Context(), app, out)
	}

	root.AddCommand(&cobra.Command{
		Use:   "authorize",
		Short: "Run the Google Sheets OAuth consent flow and save the token file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			auth := factory.NewGoogleFactory(app.Config, app.Logger).CreateSheetsAuthenticator()
			return auth.Authorize(cmd.Context(), out)
		},
	})
	return root
}

func runSourcing(ctx context.Context, app *cli.App, out io.Writer) error {
	logger := app.Logger
	sourcing := app.Config.GetSourcing()
	logger.Info("Starting lead sourcing", zap.Int("limit", sourcing.Limit))

	container, err := di.BuildSourcerContainer(app.Config, logger)
	if err != nil {
		return fmt.Errorf("build dependency container: %w", err)
	}

	err = container.Invoke(func(service *core.SourcingService) error {
		report, err := service.Run(ctx)
		if report != nil && report.CSVPath != "" {
			fmt.Fprintf(out, "Wrote CSV to %s\n", report.CSVPath)
		}
		if err != nil {
			return err
		}

		if report.SheetURL != "" {
			fmt.Fprintf(out, "Google Sheet: %s\n", report.SheetURL)
		} else {
			fmt.Fprintln(out, "Skipping Google Sheet creation.")
		}
		logger.Info("Lead sourcing complete",
			zap.Int("leads", len(report.Leads)),
			zap.Int("queries", report.Queries),
			zap.Int("pages_fetched", report.PagesFetched),
			zap.Int("excluded", report.Excluded))
		return nil
	})
	return dig.RootCause(err)
}
