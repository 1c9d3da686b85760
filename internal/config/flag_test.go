package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected *Config
		name     string
		args     []string
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"-D", "pgx", "-d", "postgres://u:p@db:5432/chirp", "-l", "debug", "-f", "json", "-o", "chirp.log", "-b", "10"},
			expected: &Config{
				DatabaseDriver: "pgx",
				DatabaseDSN:    "postgres://u:p@db:5432/chirp",
				LogLevel:       "debug",
				LogFormat:      "json",
				LogFile:        "chirp.log",
				BcryptCost:     10,
			},
		},
		{
			name:     "unrelated flags are ignored",
			args:     []string{"-c", "conf.json", "-e", "prod.env", "-d", "x.db"},
			expected: &Config{DatabaseDSN: "x.db"},
		},
		{
			name:    "bad int",
			args:    []string{"-b", "many"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}
			err := parseFlags(config, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
