package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/chirp/internal/flagx"
)

const defaultEnvFile = ".env"

// parseEnv overlays cfg with environment variables. Values from a .env file
// (given by -e/-env, or ./.env when present) are used only for variables the
// real environment does not set.
func parseEnv(cfg *Config, args []string, lookup func(string) (string, bool)) error {
	file := flagx.EnvFileFlags(args)
	explicit := file != ""
	if !explicit {
		file = defaultEnvFile
	}

	fromFile, err := godotenv.Read(file)
	if err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read env file %s: %w", file, err)
		}
		fromFile = map[string]string{}
	}

	get := func(key string) (string, bool) {
		if v, ok := lookup(key); ok && v != "" {
			return v, true
		}
		v, ok := fromFile[key]
		return v, ok && v != ""
	}

	if v, ok := get("CHIRP_DATABASE_DRIVER"); ok {
		cfg.DatabaseDriver = v
	}
	if v, ok := get("CHIRP_DATABASE_DSN"); ok {
		cfg.DatabaseDSN = v
	}
	if v, ok := get("CHIRP_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := get("SMTP_SERVER"); ok {
		cfg.SMTPHost = v
	}
	if v, ok := get("SMTP_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SMTP_PORT: %w", err)
		}
		cfg.SMTPPort = port
	}
	if v, ok := get("SMTP_USERNAME"); ok {
		cfg.SMTPUsername = v
	}
	if v, ok := get("SMTP_PASSWORD"); ok {
		cfg.SMTPPassword = v
	}
	if v, ok := get("SMTP_FROM"); ok {
		cfg.SMTPFrom = v
	}
	return nil
}
