package cli

import (
	"context"

	"github.com/dmitrijs2005/chirp/internal/services"
)

func (a *App) RequestEmailVerification(ctx context.Context, _ []string) error {
	notice, err := a.accounts.RequestEmailVerification(ctx)
	if err != nil {
		return a.report(ctx, "verify-email", err)
	}
	a.printf("A verification code was sent (valid until %s). Use 'confirm-email' to enter it.\n",
		notice.ExpiresAt.Format(timeLayout))
	a.warn(notice.Warning)
	return nil
}

func (a *App) ConfirmEmail(ctx context.Context, args []string) error {
	code, err := a.arg(args, 0, "Enter verification code")
	if err != nil {
		return a.report(ctx, "confirm-email", err)
	}
	if err := a.accounts.VerifyEmail(ctx, code); err != nil {
		return a.report(ctx, "confirm-email", err)
	}
	a.println("Email address verified.")
	return nil
}

func (a *App) ChangePassword(ctx context.Context, _ []string) error {
	current, err := a.password("Current password")
	if err != nil {
		return a.report(ctx, "passwd", err)
	}
	password, err := a.password("New password")
	if err != nil {
		return a.report(ctx, "passwd", err)
	}
	confirm, err := a.password("Repeat new password")
	if err != nil {
		return a.report(ctx, "passwd", err)
	}

	err = a.accounts.ChangePassword(ctx, services.ChangePasswordInput{
		Current: current, Password: password, Confirm: confirm,
	})
	if err != nil {
		return a.report(ctx, "passwd", err)
	}
	a.println("Password changed.")
	return nil
}

func (a *App) Rename(ctx context.Context, args []string) error {
	name, err := a.arg(args, 0, "New username")
	if err != nil {
		return a.report(ctx, "rename", err)
	}
	if err := a.accounts.ChangeUsername(ctx, name); err != nil {
		return a.report(ctx, "rename", err)
	}
	a.printf("You are now %s.\n", name)
	return nil
}

func (a *App) ChangeEmail(ctx context.Context, args []string) error {
	email, err := a.arg(args, 0, "New email address")
	if err != nil {
		return a.report(ctx, "email", err)
	}
	if err := a.accounts.ChangeEmail(ctx, email); err != nil {
		return a.report(ctx, "email", err)
	}
	a.println("Email updated. Run 'verify-email' to verify the new address.")
	return nil
}

// DeleteAccount asks for confirmation and the password, then removes the
// account with all its posts, likes, comments and follows.
func (a *App) DeleteAccount(ctx context.Context, _ []string) error {
	answer, err := getSimpleText(a.reader, "This deletes your account and everything you posted. Continue? (yes/no)", a.out)
	if err != nil {
		return a.report(ctx, "delete-account", err)
	}
	if !confirmed(answer) {
		a.println("Cancelled.")
		return nil
	}

	password, err := a.password("Enter password")
	if err != nil {
		return a.report(ctx, "delete-account", err)
	}
	if err := a.accounts.DeleteAccount(ctx, password); err != nil {
		return a.report(ctx, "delete-account", err)
	}
	a.bindSessionLogger()
	a.println("Your account was deleted.")
	return nil
}

func (a *App) Profile(ctx context.Context, args []string) error {
	user, err := a.resolveUser(ctx, args)
	if err != nil {
		return a.report(ctx, "profile", err)
	}
	counts, err := a.social.FollowCounts(ctx, user.ID)
	if err != nil {
		return a.report(ctx, "profile", err)
	}

	a.printf("@%s, joined %s\n", user.Username, user.CreatedAt.Format(timeLayout))
	a.printf("  followers: %d, following: %d\n", counts.Followers, counts.Following)

	if me, ok := a.sessions.Current(); ok && me.UserID != user.ID {
		following, err := a.social.IsFollowing(ctx, user.ID)
		if err != nil {
			return a.report(ctx, "profile", err)
		}
		if following {
			a.println("  you follow this user")
		}
	}
	return nil
}
