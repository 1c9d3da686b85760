package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/dmitrijs2005/chirp/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()
	c.DatabaseDSN = "file:" + filepath.Join(t.TempDir(), "chirp.db") + "?_pragma=foreign_keys(1)&_time_format=sqlite"
	c.BcryptCost = 4
	return c
}

func TestApp_RunUntilExit(t *testing.T) {
	c := testConfig(t)
	c.LogFile = filepath.Join(t.TempDir(), "logs", "chirp.log")

	var out, stderr bytes.Buffer
	in := strings.NewReader("help\nwhoami\nexit\n")

	app, err := NewApp(context.Background(), c, in, &out, &stderr)
	require.NoError(t, err)
	app.Run(context.Background())

	assert.Contains(t, out.String(), "Welcome to chirp")
	assert.Contains(t, out.String(), "register")
	assert.Contains(t, out.String(), "Please log in first.")
	assert.Contains(t, out.String(), "Bye!")
	assert.Empty(t, stderr.String(), "log records go to the log file")

	logs, err := os.ReadFile(c.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(logs), "Starting app...")
	assert.Contains(t, string(logs), "Stopped")
}

func TestApp_RunUntilEndOfInput(t *testing.T) {
	var out, stderr bytes.Buffer
	app, err := NewApp(context.Background(), testConfig(t), strings.NewReader("help"), &out, &stderr)
	require.NoError(t, err)
	app.Run(context.Background())

	assert.Contains(t, out.String(), "Welcome to chirp")
	assert.NotContains(t, out.String(), "Bye!")
	assert.Contains(t, stderr.String(), "Starting app...")
}

func TestNewApp_BadLogFormat(t *testing.T) {
	c := testConfig(t)
	c.LogFormat = "xml"

	_, err := NewApp(context.Background(), c, strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	assert.ErrorIs(t, err, common.ErrConfiguration)
}

func TestNewApp_DatabaseUnavailable(t *testing.T) {
	c := testConfig(t)
	c.DatabaseDSN = "file:" + filepath.Join(t.TempDir(), "missing", "dir", "chirp.db") + "?mode=ro"

	_, err := NewApp(context.Background(), c, strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db init error")
}
