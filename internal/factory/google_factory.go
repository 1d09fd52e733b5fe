package factory

import (
	"github.com/mikey/coach-ops/internal/adapters/googleauth"
	"github.com/mikey/coach-ops/internal/adapters/mailer"
	"github.com/mikey/coach-ops/internal/adapters/sheets"
	"github.com/mikey/coach-ops/internal/config"
	"go.uber.org/zap"
)

// GoogleFactory creates OAuth authenticators and Google API adapters
type GoogleFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewGoogleFactory creates a new Google factory
func NewGoogleFactory(cfg *config.Config, logger *zap.Logger) *GoogleFactory {
	return &GoogleFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSheetsAuthenticator returns the authenticator for the Sheets scope
func (f *GoogleFactory) CreateSheetsAuthenticator() *googleauth.Authenticator {
	sheetsCfg := f.cfg.GetSheets()
	return googleauth.New("sheets", sheetsCfg.CredentialsPath, sheetsCfg.TokenPath, []string{sheets.Scope}, f.logger)
}

// CreateGmailAuthenticator returns the authenticator for the Gmail send scope
func (f *GoogleFactory) CreateGmailAuthenticator() *googleauth.Authenticator {
	gmailCfg := f.cfg.GetGmail()
	return googleauth.New("gmail", gmailCfg.CredentialsPath, gmailCfg.TokenPath, []string{mailer.GmailScope}, f.logger)
}

// CreateSheetPublisher creates the Google Sheets publisher
func (f *GoogleFactory) CreateSheetPublisher() *sheets.Publisher {
	return sheets.NewPublisher(f.CreateSheetsAuthenticator(), f.logger)
}
