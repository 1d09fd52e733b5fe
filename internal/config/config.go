package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// legacyEnv maps configuration keys to their unprefixed environment variable names
var legacyEnv = map[string]string{
	"sheets.credentials_path":           "SHEETS_CREDENTIALS_PATH",
	"sheets.token_path":                 "SHEETS_TOKEN_PATH",
	"gmail.credentials_path":            "GMAIL_CREDENTIALS_PATH",
	"gmail.token_path":                  "GMAIL_TOKEN_PATH",
	"sendlog.csv_path":                  "ONBOARDING_LOG_PATH",
	"onboarding.template_path":          "ONBOARDING_TEMPLATE_PATH",
	"onboarding.template_version":       "ONBOARDING_TEMPLATE_VERSION",
	"onboarding.duplicate_window_hours": "ONBOARDING_DUPLICATE_WINDOW_HOURS",
	"logging.level":                     "LOG_LEVEL",
}

// New creates a new configuration instance. An empty configFile searches the
// default locations; a missing file there is not an error.
func New(configFile string) (*Config, error) {
	// .env never overrides variables already set in the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/coach-ops/")
		v.AddConfigPath("$HOME/.coach-ops")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("COACHOPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, "COACHOPS_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// HTTP defaults
	v.SetDefault("http.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0")
	v.SetDefault("http.timeout", "20s")
	v.SetDefault("http.request_delay", "1s")
	v.SetDefault("http.max_attempts", 3)
	v.SetDefault("http.retry_delay", "2s")

	// Sourcing defaults
	v.SetDefault("sourcing.limit", 3)
	v.SetDefault("sourcing.csv_path", ".tmp/lead_candidates.csv")
	v.SetDefault("sourcing.search_url", "https://www.bing.com/search")
	v.SetDefault("sourcing.results_per_query", 10)
	v.SetDefault("sourcing.linkedin_results", 5)
	v.SetDefault("sourcing.seeds", DefaultSeeds)
	v.SetDefault("sourcing.targets", DefaultTargets)
	v.SetDefault("sourcing.sheet_title_prefix", "Executive Coach Leads")
	v.SetDefault("sourcing.skip_sheet", false)

	// Filter defaults
	v.SetDefault("filter.exclude_keywords", DefaultExcludeKeywords)
	v.SetDefault("filter.specialty_keywords", DefaultSpecialtyKeywords)
	v.SetDefault("filter.blocked_domains", DefaultBlockedDomains)

	// Google defaults
	v.SetDefault("sheets.credentials_path", "credentials.json")
	v.SetDefault("sheets.token_path", "token_sheets.json")
	v.SetDefault("gmail.credentials_path", "credentials.json")
	v.SetDefault("gmail.token_path", "token.json")

	// Onboarding defaults
	v.SetDefault("onboarding.subject", "Welcome — next steps for our work together")
	v.SetDefault("onboarding.template_path", ".tmp/onboarding_email_template.txt")
	v.SetDefault("onboarding.template_version", "default-v1")
	v.SetDefault("onboarding.duplicate_window_hours", 24)

	// Mailer defaults
	v.SetDefault("mailer.provider", "gmail")
	v.SetDefault("smtp.host", "localhost")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.keyring_account", "")
	v.SetDefault("smtp.starttls", true)
	v.SetDefault("smtp.timeout", "30s")

	// Send log defaults
	v.SetDefault("sendlog.type", "csv")
	v.SetDefault("sendlog.csv_path", ".tmp/onboarding_sends.csv")
	v.SetDefault("sendlog.sqlite_path", ".tmp/onboarding_sends.db")
	v.SetDefault("sendlog.mysql_dsn", "user:password@tcp(localhost:3306)/coach_ops?parseTime=true")
	v.SetDefault("sendlog.postgres_dsn", "postgres://localhost:5432/coach_ops?sslmode=disable")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetWholeNumber gets an integer value, rejecting anything that is not a whole
// number instead of coercing it to zero
func (c *Config) GetWholeNumber(key string) (int, error) {
	switch raw := c.v.Get(key).(type) {
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return 0, fmt.Errorf("invalid whole number for %s: %q", key, raw)
		}
		return n, nil
	case float64:
		if raw != math.Trunc(raw) {
			return 0, fmt.Errorf("invalid whole number for %s: %v", key, raw)
		}
		return int(raw), nil
	case float32:
		if float64(raw) != math.Trunc(float64(raw)) {
			return 0, fmt.Errorf("invalid whole number for %s: %v", key, raw)
		}
		return int(raw), nil
	default:
		n, err := cast.ToIntE(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid whole number for %s: %w", key, err)
		}
		return n, nil
	}
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	d, err := time.ParseDuration(c.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return d, nil
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
