// Package config handles runtime configuration for chirp: defaults, an
// optional JSON file, the environment (optionally seeded from a .env file)
// and finally command-line flags. Later stages override earlier ones.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/chirp/internal/common"
)

// Config holds runtime settings.
//
// DatabaseDriver is a database/sql driver name: sqlite, pgx or mysql.
// MySQL DSNs must carry parseTime=true.
type Config struct {
	DatabaseDriver string
	DatabaseDSN    string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	ActivationCodeTTL        time.Duration
	EmailVerificationCodeTTL time.Duration
	PasswordResetCodeTTL     time.Duration

	BcryptCost int

	LogLevel  string
	LogFormat string
	LogFile   string
}

// LoadDefaults populates Config with development defaults. SMTP is left
// unconfigured so mail goes to the log until credentials are supplied.
func (c *Config) LoadDefaults() {
	c.DatabaseDriver = "sqlite"
	c.DatabaseDSN = "file:chirp.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
	c.SMTPHost = "smtp.gmail.com"
	c.SMTPPort = 587
	c.ActivationCodeTTL = 24 * time.Hour
	c.EmailVerificationCodeTTL = 24 * time.Hour
	c.PasswordResetCodeTTL = time.Hour
	c.BcryptCost = 12
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// LoadConfig builds a Config from os.Args and the process environment.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

func load(args []string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrConfiguration, err)
	}
	if err := parseEnv(cfg, args, lookup); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrConfiguration, err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would make the whole application unusable.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "sqlite", "pgx", "mysql":
	default:
		return fmt.Errorf("%w: unsupported database driver %q", common.ErrConfiguration, c.DatabaseDriver)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("%w: database DSN is empty", common.ErrConfiguration)
	}
	if c.ActivationCodeTTL <= 0 || c.EmailVerificationCodeTTL <= 0 || c.PasswordResetCodeTTL <= 0 {
		return fmt.Errorf("%w: code TTLs must be positive", common.ErrConfiguration)
	}
	return nil
}

// MailConfigured reports whether every setting needed for SMTP delivery
// is present.
func (c *Config) MailConfigured() bool {
	return c.SMTPHost != "" && c.SMTPPort > 0 && c.SMTPUsername != "" && c.SMTPPassword != ""
}

// MailFrom is the sender address, falling back to the SMTP login.
func (c *Config) MailFrom() string {
	if c.SMTPFrom != "" {
		return c.SMTPFrom
	}
	return c.SMTPUsername
}
