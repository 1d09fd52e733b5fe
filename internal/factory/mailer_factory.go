package factory

import (
	"fmt"
	"os"

	"github.com/mikey/coach-ops/internal/adapters/mailer"
	"github.com/mikey/coach-ops/internal/adapters/secrets"
	"github.com/mikey/coach-ops/internal/config"
	"github.com/mikey/coach-ops/internal/core"
	"go.uber.org/zap"
)

// MailerFactory creates mail providers based on configuration
type MailerFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	google  *GoogleFactory
	secrets func(account string) (string, error)
}

// NewMailerFactory creates a new mailer factory
func NewMailerFactory(cfg *config.Config, logger *zap.Logger, google *GoogleFactory) *MailerFactory {
	return &MailerFactory{
		cfg:     cfg,
		logger:  logger,
		google:  google,
		secrets: secrets.GetSMTPPassword,
	}
}

// CreateMailer creates a mail provider based on the configuration
func (f *MailerFactory) CreateMailer() (core.Mailer, error) {
	provider := f.cfg.GetMailer().Provider

	switch provider {
	case "gmail":
		auth := f.google.CreateGmailAuthenticator()
		// fail before any duplicate check runs rather than at send time
		if _, err := auth.Config(); err != nil {
			return nil, err
		}
		return mailer.NewGmailMailer(auth, f.logger), nil
	case "smtp":
		opts, err := f.smtpOptions()
		if err != nil {
			return nil, err
		}
		return mailer.NewSMTPMailer(opts, f.logger), nil
	case "console":
		return mailer.NewConsoleMailer(os.Stdout, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported mail provider: %s", provider)
	}
}

func (f *MailerFactory) smtpOptions() (mailer.SMTPOptions, error) {
	smtpCfg, err := f.cfg.GetSMTP()
	if err != nil {
		return mailer.SMTPOptions{}, err
	}

	password := smtpCfg.Password
	if password == "" && smtpCfg.Username != "" {
		account := smtpCfg.KeyringAccount
		if account == "" {
			account = secrets.SMTPKeyringAccount(smtpCfg.Username, smtpCfg.Host)
		}
		password, err = f.secrets(account)
		if err != nil {
			return mailer.SMTPOptions{}, &core.AuthError{Provider: "smtp", Err: err}
		}
		f.logger.Debug("Loaded SMTP password from keyring", zap.String("account", account))
	}

	return mailer.SMTPOptions{
		Host:     smtpCfg.Host,
		Port:     smtpCfg.Port,
		Username: smtpCfg.Username,
		Password: password,
		StartTLS: smtpCfg.StartTLS,
		Timeout:  smtpCfg.Timeout,
	}, nil
}
