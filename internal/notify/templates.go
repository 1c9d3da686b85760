package notify

import (
	"bytes"
	"text/template"
	"time"
)

const expiryLayout = "2006-01-02 15:04:05 UTC"

var templates = template.Must(template.New("mail").Funcs(template.FuncMap{
	"expiry": func(t time.Time) string { return t.UTC().Format(expiryLayout) },
}).Parse(`
{{define "activation"}}Thank you for signing up.

Use the following code to activate your account:

    {{.Code}}

The code expires at {{expiry .ExpiresAt}}.

If you did not create an account, you can ignore this email.
{{end}}

{{define "password_reset"}}We received a request to reset your password.

Use the following code to choose a new one:

    {{.Code}}

The code expires at {{expiry .ExpiresAt}}.

If you did not ask for a reset, ignore this email. Your password stays unchanged.
{{end}}

{{define "verification"}}Please confirm your email address.

Verification code:

    {{.Code}}

The code expires at {{expiry .ExpiresAt}}. Do not share it with anyone.
{{end}}

{{define "follower"}}{{.Follower}} started following you.

Log in to chirp to see their profile.
{{end}}

{{define "welcome"}}Hi {{.Username}},

Your account is now active. A few things to try first:

  - write your first post
  - search for people you know and follow them
  - like and comment on posts in your timeline
{{end}}
`))

type message struct {
	subject  string
	template string
}

var (
	msgActivation    = message{"Activate your chirp account", "activation"}
	msgPasswordReset = message{"Reset your chirp password", "password_reset"}
	msgVerification  = message{"Confirm your email address", "verification"}
	msgFollower      = message{"You have a new follower", "follower"}
	msgWelcome       = message{"Welcome to chirp!", "welcome"}
)

type codeData struct {
	Code      string
	ExpiresAt time.Time
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
