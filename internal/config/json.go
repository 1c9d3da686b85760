package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/chirp/internal/flagx"
	"github.com/dmitrijs2005/chirp/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// either strings like "24h" or integer nanoseconds.
type JsonConfig struct {
	DatabaseDriver string `json:"database_driver"`
	DatabaseDSN    string `json:"database_dsn"`

	SMTPHost     string `json:"smtp_host"`
	SMTPPort     int    `json:"smtp_port"`
	SMTPUsername string `json:"smtp_username"`
	SMTPPassword string `json:"smtp_password"`
	SMTPFrom     string `json:"smtp_from"`

	ActivationCodeTTL        timex.Duration `json:"activation_code_ttl"`
	EmailVerificationCodeTTL timex.Duration `json:"email_verification_code_ttl"`
	PasswordResetCodeTTL     timex.Duration `json:"password_reset_code_ttl"`

	BcryptCost int `json:"bcrypt_cost"`

	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
	LogFile   string `json:"log_file"`
}

// parseJson overlays cfg with the file named by -c/-config. Keys absent
// from the file keep their current values.
func parseJson(cfg *Config, args []string) error {
	path := flagx.JsonConfigFlags(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}

	setString(&cfg.DatabaseDriver, jc.DatabaseDriver)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.SMTPHost, jc.SMTPHost)
	setString(&cfg.SMTPUsername, jc.SMTPUsername)
	setString(&cfg.SMTPPassword, jc.SMTPPassword)
	setString(&cfg.SMTPFrom, jc.SMTPFrom)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.LogFile, jc.LogFile)

	if jc.SMTPPort != 0 {
		cfg.SMTPPort = jc.SMTPPort
	}
	if jc.BcryptCost != 0 {
		cfg.BcryptCost = jc.BcryptCost
	}
	if jc.ActivationCodeTTL.Duration != 0 {
		cfg.ActivationCodeTTL = jc.ActivationCodeTTL.Duration
	}
	if jc.EmailVerificationCodeTTL.Duration != 0 {
		cfg.EmailVerificationCodeTTL = jc.EmailVerificationCodeTTL.Duration
	}
	if jc.PasswordResetCodeTTL.Duration != 0 {
		cfg.PasswordResetCodeTTL = jc.PasswordResetCodeTTL.Duration
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
