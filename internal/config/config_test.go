package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestNewDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := New("")
	require.NoError(t, err)

	onboarding, err := cfg.GetOnboarding()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, onboarding.DuplicateWindow)
	assert.Equal(t, "default-v1", onboarding.TemplateVersion)
	assert.Equal(t, ".tmp/onboarding_email_template.txt", onboarding.TemplatePath)

	httpCfg, err := cfg.GetHTTP()
	require.NoError(t, err)
	assert.Equal(t, time.Second, httpCfg.RequestDelay)
	assert.Equal(t, 3, httpCfg.MaxAttempts)
	assert.Equal(t, 2*time.Second, httpCfg.RetryDelay)

	sourcing := cfg.GetSourcing()
	assert.Equal(t, 3, sourcing.Limit)
	assert.Equal(t, ".tmp/lead_candidates.csv", sourcing.CSVPath)
	assert.Equal(t, DefaultSeeds, sourcing.Seeds)
	assert.Len(t, sourcing.Targets, len(DefaultTargets))

	assert.Equal(t, "csv", cfg.GetSendLog().Type)
	assert.Equal(t, "gmail", cfg.GetMailer().Provider)
	assert.Equal(t, "credentials.json", cfg.GetSheets().CredentialsPath)
	assert.Equal(t, "token_sheets.json", cfg.GetSheets().TokenPath)
}

func TestNewLegacyEnvNames(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ONBOARDING_DUPLICATE_WINDOW_HOURS", "48")
	t.Setenv("ONBOARDING_LOG_PATH", "/var/log/sends.csv")
	t.Setenv("SHEETS_CREDENTIALS_PATH", "/secrets/sheets.json")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := New("")
	require.NoError(t, err)

	onboarding, err := cfg.GetOnboarding()
	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, onboarding.DuplicateWindow)
	assert.Equal(t, "/var/log/sends.csv", cfg.GetSendLog().CSVPath)
	assert.Equal(t, "/secrets/sheets.json", cfg.GetSheets().CredentialsPath)
	assert.Equal(t, "debug", cfg.GetString("logging.level"))
}

func TestNewPrefixedEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)
	yaml := `
mailer:
  provider: smtp
smtp:
  host: mail.example.com
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	t.Setenv("COACHOPS_SMTP_HOST", "relay.example.com")

	cfg, err := New("")
	require.NoError(t, err)

	assert.Equal(t, "smtp", cfg.GetMailer().Provider)
	smtpCfg, err := cfg.GetSMTP()
	require.NoError(t, err)
	assert.Equal(t, "relay.example.com", smtpCfg.Host)
	assert.Equal(t, 587, smtpCfg.Port)
}

func TestNewDotEnvFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ONBOARDING_TEMPLATE_VERSION=v7\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("ONBOARDING_TEMPLATE_VERSION") })

	cfg, err := New("")
	require.NoError(t, err)

	onboarding, err := cfg.GetOnboarding()
	require.NoError(t, err)
	assert.Equal(t, "v7", onboarding.TemplateVersion)
}

func TestNewExplicitFileMissing(t *testing.T) {
	chdirTemp(t)

	_, err := New("does-not-exist.yaml")
	require.Error(t, err)
}

func TestGetOnboardingNegativeWindow(t *testing.T) {
	v := NewEmptyViper()
	v.Set("onboarding.duplicate_window_hours", -1)

	_, err := NewFromViper(v).GetOnboarding()
	require.Error(t, err)
}

func TestGetOnboardingInvalidWindow(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
	}{
		{"word", "abc"},
		{"duration", "24h"},
		{"fraction string", "1.5"},
		{"fraction", 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewEmptyViper()
			v.Set("onboarding.duplicate_window_hours", tt.value)

			_, err := NewFromViper(v).GetOnboarding()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "onboarding.duplicate_window_hours")
		})
	}
}

func TestGetOnboardingWindowFromString(t *testing.T) {
	v := NewEmptyViper()
	v.Set("onboarding.duplicate_window_hours", " 48 ")

	cfg, err := NewFromViper(v).GetOnboarding()
	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, cfg.DuplicateWindow)
}

func TestGetHTTPInvalidDuration(t *testing.T) {
	v := NewEmptyViper()
	v.Set("http.request_delay", "soon")

	_, err := NewFromViper(v).GetHTTP()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http.request_delay")
}
