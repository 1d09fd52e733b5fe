package config

import (
	"fmt"
	"time"
)

// DefaultSeeds are the search phrases combined with every target location
var DefaultSeeds = []string{
	"executive coach",
	"leadership coach",
	"executive coaching",
}

// DefaultTargets are the Eastern-time-zone cities and states searched in order
var DefaultTargets = []string{
	"New York, NY",
	"Boston, MA",
	"Philadelphia, PA",
	"Washington, DC",
	"Baltimore, MD",
	"Richmond, VA",
	"Raleigh, NC",
	"Charlotte, NC",
	"Atlanta, GA",
	"Miami, FL",
	"Orlando, FL",
	"Tampa, FL",
	"Maine",
	"New Hampshire",
	"Vermont",
	"Massachusetts",
	"Rhode Island",
	"Connecticut",
	"New York",
	"New Jersey",
	"Pennsylvania",
	"Delaware",
	"Maryland",
	"District of Columbia",
	"Virginia",
	"North Carolina",
	"South Carolina",
	"Georgia",
	"Florida",
}

// DefaultExcludeKeywords mark technical coaching practices that are out of scope
var DefaultExcludeKeywords = []string{
	"software",
	"engineering",
	"technical",
	"developer",
	"devops",
	"product manager",
	"cto",
	"cio",
	"it",
}

// DefaultSpecialtyKeywords are reported in the specialty column when found
var DefaultSpecialtyKeywords = []string{
	"leadership",
	"c-suite",
	"ceo",
	"founder",
	"team",
	"organizational",
	"career",
	"communication",
	"strategy",
	"performance",
	"women leaders",
	"executive presence",
	"succession",
}

// DefaultBlockedDomains are never treated as a coach's own website
var DefaultBlockedDomains = []string{
	"linkedin.com",
	"bing.com",
	"microsoft.com",
	"facebook.com",
	"instagram.com",
	"youtube.com",
	"wikipedia.org",
	"yelp.com",
	"indeed.com",
	"glassdoor.com",
}

// HTTPConfig represents the configuration for outbound web requests
type HTTPConfig struct {
	UserAgent    string
	Timeout      time.Duration
	RequestDelay time.Duration
	MaxAttempts  int
	RetryDelay   time.Duration
}

// SourcingConfig represents the configuration for the lead sourcing run
type SourcingConfig struct {
	Limit            int
	CSVPath          string
	SearchURL        string
	ResultsPerQuery  int
	LinkedInResults  int
	Seeds            []string
	Targets          []string
	SheetTitlePrefix string
	SkipSheet        bool
}

// FilterConfig represents the lead filter keyword lists
type FilterConfig struct {
	ExcludeKeywords   []string
	SpecialtyKeywords []string
	BlockedDomains    []string
}

// GoogleConfig represents OAuth file locations for one Google API
type GoogleConfig struct {
	CredentialsPath string
	TokenPath       string
}

// OnboardingConfig represents the configuration for the onboarding email
type OnboardingConfig struct {
	Subject         string
	TemplatePath    string
	TemplateVersion string
	DuplicateWindow time.Duration
}

// MailerConfig represents the choice of mail provider
type MailerConfig struct {
	Provider string
}

// SMTPConfig represents the configuration for the SMTP provider
type SMTPConfig struct {
	Host           string
	Port           int
	Username       string
	Password       string
	KeyringAccount string
	StartTLS       bool
	Timeout        time.Duration
}

// SendLogConfig represents the configuration for the send log backend
type SendLogConfig struct {
	Type        string
	CSVPath     string
	SQLitePath  string
	MySQLDSN    string
	PostgresDSN string
}

// GetHTTP returns the HTTP configuration
func (c *Config) GetHTTP() (HTTPConfig, error) {
	timeout, err := c.GetDuration("http.timeout")
	if err != nil {
		return HTTPConfig{}, err
	}
	delay, err := c.GetDuration("http.request_delay")
	if err != nil {
		return HTTPConfig{}, err
	}
	retryDelay, err := c.GetDuration("http.retry_delay")
	if err != nil {
		return HTTPConfig{}, err
	}
	return HTTPConfig{
		UserAgent:    c.GetString("http.user_agent"),
		Timeout:      timeout,
		RequestDelay: delay,
		MaxAttempts:  c.GetInt("http.max_attempts"),
		RetryDelay:   retryDelay,
	}, nil
}

// GetSourcing returns the sourcing configuration
func (c *Config) GetSourcing() SourcingConfig {
	return SourcingConfig{
		Limit:            c.GetInt("sourcing.limit"),
		CSVPath:          c.GetString("sourcing.csv_path"),
		SearchURL:        c.GetString("sourcing.search_url"),
		ResultsPerQuery:  c.GetInt("sourcing.results_per_query"),
		LinkedInResults:  c.GetInt("sourcing.linkedin_results"),
		Seeds:            c.GetStringSlice("sourcing.seeds"),
		Targets:          c.GetStringSlice("sourcing.targets"),
		SheetTitlePrefix: c.GetString("sourcing.sheet_title_prefix"),
		SkipSheet:        c.GetBool("sourcing.skip_sheet"),
	}
}

// GetFilter returns the lead filter configuration
func (c *Config) GetFilter() FilterConfig {
	return FilterConfig{
		ExcludeKeywords:   c.GetStringSlice("filter.exclude_keywords"),
		SpecialtyKeywords: c.GetStringSlice("filter.specialty_keywords"),
		BlockedDomains:    c.GetStringSlice("filter.blocked_domains"),
	}
}

// GetSheets returns the Google Sheets OAuth configuration
func (c *Config) GetSheets() GoogleConfig {
	return GoogleConfig{
		CredentialsPath: c.GetString("sheets.credentials_path"),
		TokenPath:       c.GetString("sheets.token_path"),
	}
}

// GetGmail returns the Gmail OAuth configuration
func (c *Config) GetGmail() GoogleConfig {
	return GoogleConfig{
		CredentialsPath: c.GetString("gmail.credentials_path"),
		TokenPath:       c.GetString("gmail.token_path"),
	}
}

// GetOnboarding returns the onboarding configuration
func (c *Config) GetOnboarding() (OnboardingConfig, error) {
	hours, err := c.GetWholeNumber("onboarding.duplicate_window_hours")
	if err != nil {
		return OnboardingConfig{}, err
	}
	if hours < 0 {
		return OnboardingConfig{}, fmt.Errorf("duplicate window must not be negative, got %d hours", hours)
	}
	return OnboardingConfig{
		Subject:         c.GetString("onboarding.subject"),
		TemplatePath:    c.GetString("onboarding.template_path"),
		TemplateVersion: c.GetString("onboarding.template_version"),
		DuplicateWindow: time.Duration(hours) * time.Hour,
	}, nil
}

// GetMailer returns the mail provider configuration
func (c *Config) GetMailer() MailerConfig {
	return MailerConfig{
		Provider: c.GetString("mailer.provider"),
	}
}

// GetSMTP returns the SMTP configuration
func (c *Config) GetSMTP() (SMTPConfig, error) {
	timeout, err := c.GetDuration("smtp.timeout")
	if err != nil {
		return SMTPConfig{}, err
	}
	return SMTPConfig{
		Host:           c.GetString("smtp.host"),
		Port:           c.GetInt("smtp.port"),
		Username:       c.GetString("smtp.username"),
		Password:       c.GetString("smtp.password"),
		KeyringAccount: c.GetString("smtp.keyring_account"),
		StartTLS:       c.GetBool("smtp.starttls"),
		Timeout:        timeout,
	}, nil
}

// GetSendLog returns the send log configuration
func (c *Config) GetSendLog() SendLogConfig {
	return SendLogConfig{
		Type:        c.GetString("sendlog.type"),
		CSVPath:     c.GetString("sendlog.csv_path"),
		SQLitePath:  c.GetString("sendlog.sqlite_path"),
		MySQLDSN:    c.GetString("sendlog.mysql_dsn"),
		PostgresDSN: c.GetString("sendlog.postgres_dsn"),
	}
}
