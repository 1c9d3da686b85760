package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// command is one REPL verb. Handlers print their own results and return
// the error they reported, if any.
type command struct {
	name  string
	usage string
	auth  bool
	run   func(ctx context.Context, args []string) error
}

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	commands() []command
	println(args ...any)
}

// runREPL starts a simple read-eval-print loop.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to the matching handler with the remaining tokens. Commands
// that need a session are refused while logged out. The loop exits on end
// of input or when the user types "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		a.println(fmt.Sprintf("chirp %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		name, args := parts[0], parts[1:]

		switch name {
		case "exit", "quit":
			a.println("Bye!")
			return
		case "help":
			a.println(helpText(a.commands(), a.isLoggedIn()))
			continue
		}

		cmd, ok := find(a.commands(), name)
		if !ok {
			a.println("Unknown command:", name)
			continue
		}
		if cmd.auth && !a.isLoggedIn() {
			a.println("Please log in first.")
			continue
		}
		_ = cmd.run(ctx, args)
	}
}

func find(cmds []command, name string) (command, bool) {
	for _, c := range cmds {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func helpText(cmds []command, loggedIn bool) string {
	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, c := range cmds {
		if c.auth != loggedIn {
			continue
		}
		fmt.Fprintf(&b, "  %s\n", c.usage)
	}
	b.WriteString("  help\n  exit | quit")
	return b.String()
}

func (a *App) commands() []command {
	return []command{
		{"register", "register", false, a.Register},
		{"login", "login [username]", false, a.Login},
		{"activate", "activate [username] [code]", false, a.Activate},
		{"resend", "resend [username]", false, a.ResendActivation},
		{"forgot", "forgot [email]", false, a.ForgotPassword},
		{"reset", "reset [email]", false, a.ResetPassword},

		{"whoami", "whoami", true, a.WhoAmI},
		{"logout", "logout", true, a.Logout},
		{"verify-email", "verify-email", true, a.RequestEmailVerification},
		{"confirm-email", "confirm-email [code]", true, a.ConfirmEmail},
		{"passwd", "passwd", true, a.ChangePassword},
		{"rename", "rename [new-username]", true, a.Rename},
		{"email", "email [new-address]", true, a.ChangeEmail},
		{"delete-account", "delete-account", true, a.DeleteAccount},
		{"profile", "profile [username]", true, a.Profile},
		{"post", "post [text]", true, a.Post},
		{"edit", "edit <post-id> [text]", true, a.EditPost},
		{"timeline", "timeline", true, a.Timeline},
		{"posts", "posts [username]", true, a.Posts},
		{"search", "search <text or #tag>", true, a.Search},
		{"users", "users <text>", true, a.Users},
		{"follow", "follow <username>", true, a.Follow},
		{"unfollow", "unfollow <username>", true, a.Unfollow},
		{"followers", "followers [username]", true, a.Followers},
		{"following", "following [username]", true, a.Following},
		{"like", "like <post-id>", true, a.Like},
		{"comment", "comment <post-id> [text]", true, a.Comment},
		{"comments", "comments <post-id>", true, a.Comments},
	}
}
