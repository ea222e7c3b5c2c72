// Package config loads the settings shared by every browser suite and the
// suites CLI. Values come from an optional YAML file, a .env file and
// SUITES_-prefixed environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kuitang/e2e-suites/internal/urlutil"
)

// DefaultFile is the config file read when no path is given.
const DefaultFile = "suites.yaml"

// EnvPrefix prefixes every environment override (SUITES_SEED_DSN, ...).
const EnvPrefix = "SUITES"

// Suite names one of the application surfaces under test.
type Suite string

const (
	SuiteContact   Suite = "contact"
	SuiteTakeaways Suite = "takeaways"
	SuiteLocation  Suite = "location"
)

// Suites lists every suite in a stable order.
var Suites = []Suite{SuiteContact, SuiteTakeaways, SuiteLocation}

// Seed drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all suite configuration.
type Config struct {
	// Application base URLs, one per suite
	ContactBaseURL   string
	TakeawaysBaseURL string
	LocationBaseURL  string

	// Browser
	Browser  string // chromium, firefox or webkit
	Headless bool
	SlowMo   time.Duration

	// CommandTimeout bounds every retrying query and assertion.
	CommandTimeout time.Duration

	TestIDAttribute string
	SessionCookie   string

	// Credentials used by the login command
	LoginEmail    string
	LoginPassword string

	FixturesDir string
	Probe       bool // skip suites whose app does not answer
	LogLevel    string

	Seed      SeedConfig
	Artifacts ArtifactsConfig
}

// SeedConfig points the seedDatabase task at the app's database.
type SeedConfig struct {
	Driver     string
	DSN        string
	Fixture    string
	BcryptCost int
}

// Enabled reports whether a database has been configured for seeding.
func (s SeedConfig) Enabled() bool {
	return strings.TrimSpace(s.DSN) != ""
}

// ArtifactsConfig controls where failure screenshots are kept.
type ArtifactsConfig struct {
	Dir string
	S3  S3Config
}

// S3Config is used instead of Dir when Bucket is set.
type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Prefix          string
	UsePathStyle    bool
}

// Enabled reports whether artifacts go to S3.
func (s S3Config) Enabled() bool {
	return strings.TrimSpace(s.Bucket) != ""
}

// ValidationError represents a configuration validation error with multiple issues.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("contact_base_url", "http://localhost:5173")
	v.SetDefault("takeaways_base_url", "http://localhost:3000")
	v.SetDefault("location_base_url", "http://localhost:5173")
	v.SetDefault("browser", "chromium")
	v.SetDefault("headless", true)
	v.SetDefault("slow_mo", "0s")
	v.SetDefault("command_timeout", "4s")
	v.SetDefault("test_id_attribute", "data-cy")
	v.SetDefault("session_cookie", "__session")
	v.SetDefault("login_email", "test@example.com")
	v.SetDefault("login_password", "testpassword")
	v.SetDefault("fixtures_dir", "")
	v.SetDefault("probe", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("seed.driver", DriverSQLite)
	v.SetDefault("seed.dsn", "")
	v.SetDefault("seed.fixture", "seed.json")
	v.SetDefault("seed.bcrypt_cost", 10)
	v.SetDefault("artifacts.dir", "test-results")
	v.SetDefault("artifacts.s3.endpoint", "")
	v.SetDefault("artifacts.s3.region", "us-east-1")
	v.SetDefault("artifacts.s3.access_key_id", "")
	v.SetDefault("artifacts.s3.secret_access_key", "")
	v.SetDefault("artifacts.s3.bucket", "")
	v.SetDefault("artifacts.s3.prefix", "")
	v.SetDefault("artifacts.s3.use_path_style", false)
}

// Load reads configuration from path (DefaultFile when empty), .env and the
// environment, then validates it. A missing config file is not an error;
// a missing explicit path is.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	cfg := &Config{
		ContactBaseURL:   trimURL(v.GetString("contact_base_url")),
		TakeawaysBaseURL: trimURL(v.GetString("takeaways_base_url")),
		LocationBaseURL:  trimURL(v.GetString("location_base_url")),
		Browser:          strings.ToLower(strings.TrimSpace(v.GetString("browser"))),
		Headless:         v.GetBool("headless"),
		SlowMo:           v.GetDuration("slow_mo"),
		CommandTimeout:   v.GetDuration("command_timeout"),
		TestIDAttribute:  strings.TrimSpace(v.GetString("test_id_attribute")),
		SessionCookie:    strings.TrimSpace(v.GetString("session_cookie")),
		LoginEmail:       strings.TrimSpace(v.GetString("login_email")),
		LoginPassword:    v.GetString("login_password"),
		FixturesDir:      strings.TrimSpace(v.GetString("fixtures_dir")),
		Probe:            v.GetBool("probe"),
		LogLevel:         strings.TrimSpace(v.GetString("log_level")),
		Seed: SeedConfig{
			Driver:     strings.ToLower(strings.TrimSpace(v.GetString("seed.driver"))),
			DSN:        strings.TrimSpace(v.GetString("seed.dsn")),
			Fixture:    strings.TrimSpace(v.GetString("seed.fixture")),
			BcryptCost: v.GetInt("seed.bcrypt_cost"),
		},
		Artifacts: ArtifactsConfig{
			Dir: strings.TrimSpace(v.GetString("artifacts.dir")),
			S3: S3Config{
				Endpoint:        strings.TrimSpace(v.GetString("artifacts.s3.endpoint")),
				Region:          strings.TrimSpace(v.GetString("artifacts.s3.region")),
				AccessKeyID:     strings.TrimSpace(v.GetString("artifacts.s3.access_key_id")),
				SecretAccessKey: strings.TrimSpace(v.GetString("artifacts.s3.secret_access_key")),
				Bucket:          strings.TrimSpace(v.GetString("artifacts.s3.bucket")),
				Prefix:          strings.Trim(strings.TrimSpace(v.GetString("artifacts.s3.prefix")), "/"),
				UsePathStyle:    v.GetBool("artifacts.s3.use_path_style"),
			},
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that all configuration is present and consistent.
func (c *Config) Validate() error {
	var errs []string

	for _, s := range Suites {
		if msg := validateBaseURL(c.BaseURL(s)); msg != "" {
			errs = append(errs, fmt.Sprintf("%s_base_url %s", s, msg))
		}
	}

	switch c.Browser {
	case "chromium", "firefox", "webkit":
	default:
		errs = append(errs, fmt.Sprintf("browser must be chromium, firefox or webkit (got %q)", c.Browser))
	}

	if c.CommandTimeout <= 0 {
		errs = append(errs, "command_timeout must be positive")
	}
	if c.SlowMo < 0 {
		errs = append(errs, "slow_mo must not be negative")
	}
	if c.TestIDAttribute == "" {
		errs = append(errs, "test_id_attribute is required")
	}
	if c.SessionCookie == "" {
		errs = append(errs, "session_cookie is required")
	}

	switch c.Seed.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		errs = append(errs, fmt.Sprintf("seed.driver must be %s or %s (got %q)", DriverSQLite, DriverPostgres, c.Seed.Driver))
	}
	if c.Seed.Fixture == "" {
		errs = append(errs, "seed.fixture is required")
	}
	// bcrypt accepts costs 4..31.
	if c.Seed.BcryptCost < 4 || c.Seed.BcryptCost > 31 {
		errs = append(errs, "seed.bcrypt_cost must be between 4 and 31")
	}

	if c.Artifacts.S3.Enabled() && c.Artifacts.S3.Region == "" {
		errs = append(errs, "artifacts.s3.region is required when artifacts.s3.bucket is set")
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// BaseURL returns the application base URL for a suite.
func (c *Config) BaseURL(s Suite) string {
	switch s {
	case SuiteContact:
		return c.ContactBaseURL
	case SuiteTakeaways:
		return c.TakeawaysBaseURL
	case SuiteLocation:
		return c.LocationBaseURL
	default:
		return ""
	}
}

// CommandTimeoutMS returns CommandTimeout in the float milliseconds Playwright expects.
func (c *Config) CommandTimeoutMS() float64 {
	return float64(c.CommandTimeout.Milliseconds())
}

func validateBaseURL(raw string) string {
	if raw == "" {
		return "is required"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Sprintf("is not a valid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Sprintf("must use http or https (got %q)", raw)
	}
	if u.Host == "" {
		return fmt.Sprintf("must include a host (got %q)", raw)
	}
	return ""
}

func trimURL(raw string) string {
	return urlutil.NormalizeBaseURL(raw)
}

// MustLoad loads configuration and panics if validation fails.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			panic(fmt.Sprintf("Configuration validation failed:\n  - %s", strings.Join(validationErr.Errors, "\n  - ")))
		}
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}
	return cfg
}
