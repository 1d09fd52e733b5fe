package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/coach-ops/internal/adapters/secrets"
	"github.com/mikey/coach-ops/internal/adapters/sendlog"
	"github.com/mikey/coach-ops/internal/cli"
	"github.com/mikey/coach-ops/internal/config"
	"github.com/mikey/coach-ops/internal/core"
	"github.com/mikey/coach-ops/internal/di"
	"github.com/mikey/coach-ops/internal/factory"
)

// requestFlags are the per-send inputs that never come from configuration
type requestFlags struct {
	to             string
	from           string
	firstName      string
	senderName     string
	schedulingLink string
	body           string
	bodyFile       string
	allowDuplicate bool
}

func main() {
	os.Exit(cli.Execute(newRootCommand(os.Stdout), os.Stderr))
}

func newRootCommand(out io.Writer) *cobra.Command {
	req := &requestFlags{}

	root := &cobra.Command{
		Use:   "onboarding-sender",
		Short: "Send the onboarding email to a new coaching client",
		Long: `Fills the onboarding template and sends it through the configured mail
provider. A matching send inside the duplicate window is skipped unless
--allow-duplicate is given. Every successful send is appended to the send log.`,
		Args: cobra.NoArgs,
	}
	app := cli.NewApp(root)

	flags := root.Flags()
	flags.StringVar(&req.to, "to", "", "Recipient email address")
	flags.StringVar(&req.from, "from", "", "Sender email address")
	flags.StringVar(&req.firstName, "first-name", "", "Recipient first name")
	flags.StringVar(&req.senderName, "sender-name", "", "Sender name for the signature")
	flags.StringVar(&req.schedulingLink, "scheduling-link", "", "Scheduling link to include")
	flags.StringVar(&req.body, "body", "", "Raw email body to send instead of the template")
	flags.StringVar(&req.bodyFile, "body-file", "", "Path to a text file containing the email body")
	flags.BoolVar(&req.allowDuplicate, "allow-duplicate", false, "Send even if a matching email was recently logged")

	flags.String("subject", "", "Email subject")
	flags.String("template-file", "", "Path to the email template file")
	flags.String("template-version", "", "Template version label")
	flags.Int("duplicate-window-hours", 0, "Skip the send if a matching email was sent within this many hours")
	flags.String("log-path", "", "CSV send log path")
	flags.String("provider", "", "Mail provider (gmail, smtp, console)")
	flags.String("credentials", "", "Path to the OAuth client credentials JSON")
	flags.String("token", "", "Path to the OAuth token JSON")

	app.Bind("onboarding.subject", "subject")
	app.Bind("onboarding.template_path", "template-file")
	app.Bind("onboarding.template_version", "template-version")
	app.Bind("onboarding.duplicate_window_hours", "duplicate-window-hours")
	app.Bind("sendlog.csv_path", "log-path")
	app.Bind("mailer.provider", "provider")
	app.Bind("gmail.credentials_path", "credentials")
	app.Bind("gmail.token_path", "token")

	root.RunE = func(cmd *cobra.Command, _ []string) error {
		return runSend(cmd.Context(), app, req, out)
	}

	root.AddCommand(newAuthorizeCommand(app, out))
	root.AddCommand(newKeyringCommand(app, out))
	return root
}

func runSend(ctx context.Context, app *cli.App, flags *requestFlags, out io.Writer) error {
	logger := app.Logger
	logger.Info("Starting onboarding email send", zap.String("recipient", flags.to))

	container, err := di.BuildSenderContainer(ctx, app.Config, logger)
	if err != nil {
		return fmt.Errorf("build dependency container: %w", err)
	}

	err = container.Invoke(func(
		service *core.OnboardingService,
		log sendlog.Log,
		onboarding config.OnboardingConfig,
	) error {
		defer func() {
			if err := log.Close(); err != nil {
				logger.Warn("Failed to close send log", zap.Error(err))
			}
		}()

		req := &core.OnboardingRequest{
			To:             flags.to,
			From:           flags.from,
			FirstName:      flags.firstName,
			SenderName:     flags.senderName,
			SchedulingLink: flags.schedulingLink,
			Body:           flags.body,
			BodyFile:       flags.bodyFile,
			AllowDuplicate: flags.allowDuplicate,
		}
		if req.Body == "" && req.BodyFile == "" {
			tmpl, err := core.LoadTemplate(onboarding.TemplatePath)
			if err != nil {
				return err
			}
			req.Template = tmpl
		}

		outcome, err := service.Send(ctx, req)
		if err != nil {
			return err
		}

		switch outcome.Status {
		case core.StatusSuppressed:
			fmt.Fprintln(out, "Skipped: recent matching send found in log.")
		default:
			logger.Info("Completed successfully", zap.String("message_id", outcome.MessageID))
			fmt.Fprintf(out, "Sent message id: %s\n", outcome.MessageID)
		}
		return nil
	})
	return dig.RootCause(err)
}

func newAuthorizeCommand(app *cli.App, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "authorize",
		Short: "Run the Gmail OAuth consent flow and save the token file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			auth := factory.NewGoogleFactory(app.Config, app.Logger).CreateGmailAuthenticator()
			return auth.Authorize(cmd.Context(), out)
		},
	}
}

func newKeyringCommand(app *cli.App, out io.Writer) *cobra.Command {
	keyringCmd := &cobra.Command{
		Use:   "smtp-password",
		Short: "Manage the SMTP password stored in the OS keyring",
	}

	account := func() (string, error) {
		smtpCfg, err := app.Config.GetSMTP()
		if err != nil {
			return "", err
		}
		if smtpCfg.KeyringAccount != "" {
			return smtpCfg.KeyringAccount, nil
		}
		if smtpCfg.Username == "" {
			return "", errors.New("smtp.username is not configured")
		}
		return secrets.SMTPKeyringAccount(smtpCfg.Username, smtpCfg.Host), nil
	}

	keyringCmd.AddCommand(&cobra.Command{
		Use:   "set",
		Short: "Read the SMTP password from stdin and store it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, err := account()
			if err != nil {
				return err
			}
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("read password: %w", err)
			}
			if err := secrets.SetSMTPPassword(name, strings.TrimRight(line, "\r\n")); err != nil {
				return err
			}
			fmt.Fprintf(out, "Stored SMTP password for %s\n", name)
			return nil
		},
	})
	keyringCmd.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: "Remove the stored SMTP password",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			name, err := account()
			if err != nil {
				return err
			}
			if err := secrets.DeleteSMTPPassword(name); err != nil {
				return err
			}
			fmt.Fprintf(out, "Removed SMTP password for %s\n", name)
			return nil
		},
	})
	return keyringCmd
}
