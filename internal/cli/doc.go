// Package cli provides the interactive chirp terminal client.
//
// It is presentation only: every command reads its arguments (from the
// command line or by prompting), calls AccountService or SocialService and
// prints the outcome. Errors are mapped to short user-facing messages by
// describeError; details stay in the log.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits
// or input ends.
package cli
