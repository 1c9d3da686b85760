package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/dmitrijs2005/chirp/internal/logging"
	"github.com/dmitrijs2005/chirp/internal/models"
	"github.com/dmitrijs2005/chirp/internal/services"
)

// Accounts is the part of services.AccountService the client uses.
type Accounts interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.RegistrationResult, error)
	Login(ctx context.Context, username, password string) (*services.LoginResult, error)
	Logout(ctx context.Context)
	ActivateAccount(ctx context.Context, username, code string) (*services.Notice, error)
	ResendActivation(ctx context.Context, username string) (*services.Notice, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, in services.ResetPasswordInput) error
	RequestEmailVerification(ctx context.Context) (*services.Notice, error)
	VerifyEmail(ctx context.Context, code string) error
	ChangePassword(ctx context.Context, in services.ChangePasswordInput) error
	ChangeUsername(ctx context.Context, username string) error
	ChangeEmail(ctx context.Context, email string) error
	DeleteAccount(ctx context.Context, password string) error
	Me(ctx context.Context) (*models.User, error)
	ProfileByUsername(ctx context.Context, username string) (*models.User, error)
}

// Social is the part of services.SocialService the client uses.
type Social interface {
	CreatePost(ctx context.Context, content string) (*models.Post, error)
	UpdatePost(ctx context.Context, postID, content string) error
	Timeline(ctx context.Context) ([]*models.Post, error)
	UserPosts(ctx context.Context, userID string) ([]*models.Post, error)
	SearchPosts(ctx context.Context, term string) ([]*models.Post, error)
	SearchUsers(ctx context.Context, term string) ([]*models.User, error)
	Follow(ctx context.Context, userID string) (*services.Notice, error)
	Unfollow(ctx context.Context, userID string) error
	IsFollowing(ctx context.Context, userID string) (bool, error)
	Followers(ctx context.Context, userID string) ([]*models.FollowEntry, error)
	Following(ctx context.Context, userID string) ([]*models.FollowEntry, error)
	FollowCounts(ctx context.Context, userID string) (models.FollowCounts, error)
	ToggleLike(ctx context.Context, postID string) (bool, error)
	AddComment(ctx context.Context, postID, content string) (*models.Comment, error)
	Comments(ctx context.Context, postID string) ([]*models.Comment, error)
}

// Sessions reports who is logged in.
type Sessions interface {
	Current() (models.Identity, bool)
	SessionID() string
}

// getSimpleText, getPassword and getMultiline are indirections used to
// facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
)

type App struct {
	accounts Accounts
	social   Social
	sessions Sessions

	reader *bufio.Reader
	out    io.Writer

	baseLog logging.Logger
	log     logging.Logger
}

func NewApp(accounts Accounts, social Social, sessions Sessions, logger logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		accounts: accounts,
		social:   social,
		sessions: sessions,
		reader:   bufio.NewReader(in),
		out:      out,
		baseLog:  logger,
		log:      logger,
	}
}

// Run prints the banner and runs the REPL until exit or end of input.
func (a *App) Run(ctx context.Context) {
	a.println("Welcome to chirp (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
	a.accounts.Logout(ctx)
}

func (a *App) isLoggedIn() bool {
	_, ok := a.sessions.Current()
	return ok
}

func (a *App) getStatus() string {
	if id, ok := a.sessions.Current(); ok {
		return fmt.Sprintf("(%s)", id.DisplayName)
	}
	return ""
}

// bindSessionLogger tags log lines with the current session id.
func (a *App) bindSessionLogger() {
	if id := a.sessions.SessionID(); id != "" {
		a.log = a.baseLog.With("session_id", id)
		return
	}
	a.log = a.baseLog
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// arg returns args[i] when given, otherwise prompts for it.
func (a *App) arg(args []string, i int, prompt string) (string, error) {
	if i < len(args) {
		return args[i], nil
	}
	return getSimpleText(a.reader, prompt, a.out)
}

// rest joins args from i on, or prompts when there are none.
func (a *App) rest(args []string, i int, prompt string) (string, error) {
	if i < len(args) {
		return strings.Join(args[i:], " "), nil
	}
	return getSimpleText(a.reader, prompt, a.out)
}

// password reads a password as the string the services expect.
func (a *App) password(prompt string) (string, error) {
	pw, err := getPassword(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// resolveUser turns a username argument into a user id. Without an
// argument it resolves to the logged in user.
func (a *App) resolveUser(ctx context.Context, args []string) (*models.User, error) {
	if len(args) == 0 {
		return a.accounts.Me(ctx)
	}
	return a.accounts.ProfileByUsername(ctx, strings.TrimPrefix(args[0], "@"))
}

// report prints err for the user and logs it. It returns err unchanged.
func (a *App) report(ctx context.Context, cmd string, err error) error {
	if err == nil {
		return nil
	}
	a.println(describeError(err))
	a.log.Debug(ctx, "command failed", "command", cmd, "kind", kindName(err))
	return err
}

// warn prints a non-fatal problem attached to a successful operation.
func (a *App) warn(w error) {
	if w == nil {
		return
	}
	a.println("Warning:", describeWarning(w))
}

// describeError maps an error from the services to a message that is safe
// to show. Validation and authentication messages are already user safe;
// everything else gets a fixed sentence.
func describeError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, common.ErrValidation):
		return capitalize(strings.TrimPrefix(err.Error(), common.ErrValidation.Error()+": "))
	case errors.Is(err, common.ErrAuthentication):
		return capitalize(strings.TrimPrefix(err.Error(), common.ErrAuthentication.Error()+": "))
	case errors.Is(err, common.ErrMailNotConfigured):
		return "Email is not configured, so this feature is unavailable."
	case errors.Is(err, common.ErrConfiguration):
		return "This feature is unavailable because of a configuration problem. See the log for details."
	case errors.Is(err, common.ErrStorage):
		return "The database could not complete the request. Please try again."
	case errors.Is(err, common.ErrNotification):
		return "The email could not be sent."
	case errors.Is(err, io.EOF):
		return "Input closed."
	}
	return "Unexpected error. See the log for details."
}

func describeWarning(err error) string {
	if errors.Is(err, common.ErrMailNotConfigured) {
		return "email is not configured, no message was sent."
	}
	return "the email could not be sent, please try again later."
}

func kindName(err error) string {
	if k := common.Kind(err); k != nil {
		return k.Error()
	}
	return "unknown"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:] + "."
}
