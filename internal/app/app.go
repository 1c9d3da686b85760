// Package app wires configuration, storage, mail delivery and the
// services behind the interactive shell.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/chirp/internal/cli"
	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/dmitrijs2005/chirp/internal/config"
	"github.com/dmitrijs2005/chirp/internal/cryptox"
	"github.com/dmitrijs2005/chirp/internal/filex"
	"github.com/dmitrijs2005/chirp/internal/logging"
	"github.com/dmitrijs2005/chirp/internal/notify"
	"github.com/dmitrijs2005/chirp/internal/services"
	"github.com/dmitrijs2005/chirp/internal/session"
	"github.com/dmitrijs2005/chirp/internal/storage"
	"github.com/dmitrijs2005/chirp/internal/timex"
	"github.com/dmitrijs2005/chirp/internal/verification"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	store   *storage.Store
	shell   *cli.App
	logFile io.Closer
}

// NewApp opens the log output and the database and builds the shell over
// in and out. stderr receives log records when no log file is configured.
func NewApp(ctx context.Context, c *config.Config, in io.Reader, out, stderr io.Writer) (*App, error) {
	app := &App{config: c}

	logOut := stderr
	if c.LogFile != "" {
		f, err := filex.OpenAppend(c.LogFile)
		if err != nil {
			return nil, fmt.Errorf("log file error: %w", err)
		}
		app.logFile = f
		logOut = f
	}

	logger, err := logging.New(logOut, c.LogLevel, c.LogFormat)
	if err != nil {
		app.closeLog()
		return nil, fmt.Errorf("%w: %w", common.ErrConfiguration, err)
	}
	app.logger = logger

	store, err := storage.Open(ctx, c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		app.closeLog()
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app.store = store

	clock := timex.SystemClock{}
	sessions := session.NewManager(clock)
	deps := services.Dependencies{
		DB:     store.DB,
		Repos:  store.Repos,
		Hasher: cryptox.NewPasswordHasher(c.BcryptCost),
		Codes: verification.NewManager(store.DB, store.Repos, clock, verification.TTLs{
			Activation:        c.ActivationCodeTTL,
			EmailVerification: c.EmailVerificationCodeTTL,
			PasswordReset:     c.PasswordResetCodeTTL,
		}),
		Sessions: sessions,
		Mailer:   notify.New(ctx, c, logger),
		Clock:    clock,
		Logger:   logger,
	}

	app.shell = cli.NewApp(services.NewAccountService(deps), services.NewSocialService(deps), sessions, logger, in, out)
	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) func() {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigs:
			cancelFunc()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

// Run drives the shell until the user exits, input ends or a termination
// signal arrives, then releases the database and log file.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	stop := app.initSignalHandler(cancelFunc)
	defer stop()

	app.logger.Info(ctx, "Starting app...", "driver", app.config.DatabaseDriver)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		app.shell.Run(ctx)
	}()

	select {
	case <-finished:
	case <-ctx.Done():
		// The shell may be blocked reading input; leave it behind.
		app.logger.Info(context.Background(), "Interrupted")
	}

	app.Close()
}

func (app *App) Close() {
	if app.store != nil {
		if err := app.store.Close(); err != nil {
			app.logger.Error(context.Background(), "db close error", "error", err)
		}
		app.store = nil
	}
	app.logger.Info(context.Background(), "Stopped")
	app.closeLog()
}

func (app *App) closeLog() {
	if app.logFile != nil {
		_ = app.logFile.Close()
		app.logFile = nil
	}
}
