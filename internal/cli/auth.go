package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/chirp/internal/services"
)

const timeLayout = "2006-01-02 15:04 MST"

// Register prompts for the new account's details and creates it. The
// activation code arrives by email.
func (a *App) Register(ctx context.Context, _ []string) error {
	username, err := getSimpleText(a.reader, "Choose a username", a.out)
	if err != nil {
		return a.report(ctx, "register", err)
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return a.report(ctx, "register", err)
	}
	password, err := a.password("Enter password")
	if err != nil {
		return a.report(ctx, "register", err)
	}
	confirm, err := a.password("Repeat password")
	if err != nil {
		return a.report(ctx, "register", err)
	}

	res, err := a.accounts.Register(ctx, services.RegisterInput{
		Username: username, Email: email, Password: password, Confirm: confirm,
	})
	if err != nil {
		return a.report(ctx, "register", err)
	}

	a.printf("Account %s created. Activate it with the code sent to %s (valid until %s).\n",
		res.User.Username, res.User.Email, res.ExpiresAt.Format(timeLayout))
	a.warn(res.Warning)
	return nil
}

func (a *App) Login(ctx context.Context, args []string) error {
	username, err := a.arg(args, 0, "Enter username")
	if err != nil {
		return a.report(ctx, "login", err)
	}
	password, err := a.password("Enter password")
	if err != nil {
		return a.report(ctx, "login", err)
	}

	res, err := a.accounts.Login(ctx, username, password)
	if err != nil {
		return a.report(ctx, "login", err)
	}
	a.bindSessionLogger()
	a.log.Debug(ctx, "session started", "user_id", res.User.ID)

	a.printf("Logged in as %s.\n", res.User.Username)
	if !res.User.IsActive {
		a.println("Your account is not activated yet. Use 'activate' with the code from your email.")
	}
	return nil
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	a.accounts.Logout(ctx)
	a.bindSessionLogger()
	a.println("Logged out.")
	return nil
}

func (a *App) WhoAmI(ctx context.Context, _ []string) error {
	me, err := a.accounts.Me(ctx)
	if err != nil {
		return a.report(ctx, "whoami", err)
	}
	a.printf("%s <%s>\n", me.Username, me.Email)
	a.printf("  active: %s, email verified: %s, member since %s\n",
		yesNo(me.IsActive), yesNo(me.IsEmailVerified), me.CreatedAt.Format(timeLayout))
	a.printf("  session: %s\n", a.sessions.SessionID())
	return nil
}

func (a *App) Activate(ctx context.Context, args []string) error {
	username, err := a.arg(args, 0, "Enter username")
	if err != nil {
		return a.report(ctx, "activate", err)
	}
	code, err := a.arg(args, 1, "Enter activation code")
	if err != nil {
		return a.report(ctx, "activate", err)
	}

	notice, err := a.accounts.ActivateAccount(ctx, username, code)
	if err != nil {
		return a.report(ctx, "activate", err)
	}
	a.println("Account activated. Welcome to chirp!")
	a.warn(notice.Warning)
	return nil
}

func (a *App) ResendActivation(ctx context.Context, args []string) error {
	username, err := a.arg(args, 0, "Enter username")
	if err != nil {
		return a.report(ctx, "resend", err)
	}
	notice, err := a.accounts.ResendActivation(ctx, username)
	if err != nil {
		return a.report(ctx, "resend", err)
	}
	a.println("If the account exists and is not active yet, a new activation code was sent.")
	a.warn(notice.Warning)
	return nil
}

func (a *App) ForgotPassword(ctx context.Context, args []string) error {
	email, err := a.arg(args, 0, "Enter the email of your account")
	if err != nil {
		return a.report(ctx, "forgot", err)
	}
	if err := a.accounts.RequestPasswordReset(ctx, email); err != nil {
		return a.report(ctx, "forgot", err)
	}
	a.println("If the address is registered, a reset code valid for one hour was sent. Use 'reset' to set a new password.")
	return nil
}

func (a *App) ResetPassword(ctx context.Context, args []string) error {
	email, err := a.arg(args, 0, "Enter the email of your account")
	if err != nil {
		return a.report(ctx, "reset", err)
	}
	code, err := getSimpleText(a.reader, "Enter reset code", a.out)
	if err != nil {
		return a.report(ctx, "reset", err)
	}
	password, err := a.password("New password")
	if err != nil {
		return a.report(ctx, "reset", err)
	}
	confirm, err := a.password("Repeat new password")
	if err != nil {
		return a.report(ctx, "reset", err)
	}

	err = a.accounts.ResetPassword(ctx, services.ResetPasswordInput{
		Email: email, Code: code, Password: password, Confirm: confirm,
	})
	if err != nil {
		return a.report(ctx, "reset", err)
	}
	a.println("Password updated. You can log in now.")
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func confirmed(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
