package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/chirp/internal/flagx"
)

// parseFlags overlays cfg with command-line flags.
//
//	-D string   database driver (sqlite, pgx, mysql)
//	-d string   database DSN
//	-l string   log level
//	-f string   log format (text, json)
//	-o string   log file (stderr when empty)
//	-b int      bcrypt cost
//
// -c and -e are consumed earlier by parseJson and parseEnv.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-D", "-d", "-l", "-f", "-o", "-b"})

	fs := flag.NewFlagSet("chirp", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.DatabaseDriver, "D", config.DatabaseDriver, "database driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format")
	fs.StringVar(&config.LogFile, "o", config.LogFile, "log file")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")

	return fs.Parse(args)
}
