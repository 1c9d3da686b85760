package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParseEnv_FileAndEnvironment(t *testing.T) {
	path := writeEnvFile(t, `
SMTP_SERVER=smtp.example.com
SMTP_PORT=465
SMTP_USERNAME=file-user
SMTP_PASSWORD=file-pass
CHIRP_DATABASE_DRIVER=pgx
`)
	env := map[string]string{"SMTP_USERNAME": "env-user"}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, parseEnv(cfg, []string{"-e", path}, lookup))

	assert.Equal(t, "smtp.example.com", cfg.SMTPHost)
	assert.Equal(t, 465, cfg.SMTPPort)
	assert.Equal(t, "env-user", cfg.SMTPUsername, "real environment wins over the file")
	assert.Equal(t, "file-pass", cfg.SMTPPassword)
	assert.Equal(t, "pgx", cfg.DatabaseDriver)
}

func TestParseEnv_MissingDefaultFileIsFine(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := &Config{}
	require.NoError(t, parseEnv(cfg, nil, noEnv))
	assert.Empty(t, cfg.SMTPHost)
}

func TestParseEnv_MissingExplicitFile(t *testing.T) {
	cfg := &Config{}
	err := parseEnv(cfg, []string{"-e", filepath.Join(t.TempDir(), "absent.env")}, noEnv)
	require.Error(t, err)
}

func TestParseEnv_BadPort(t *testing.T) {
	lookup := func(k string) (string, bool) {
		if k == "SMTP_PORT" {
			return "smtp", true
		}
		return "", false
	}
	require.Error(t, parseEnv(&Config{}, nil, lookup))
}
