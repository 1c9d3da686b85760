// Package common defines the error taxonomy and small helpers shared by the
// chirp core and its front end. Callers should use errors.Is to match the
// kind sentinels; specific errors wrap exactly one kind.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Error kinds. Every error leaving a service matches one of these.
	ErrValidation     = errors.New("validation error")
	ErrAuthentication = errors.New("authentication failed")
	ErrStorage        = errors.New("storage error")
	ErrNotification   = errors.New("notification error")
	ErrConfiguration  = errors.New("configuration error")

	// Validation errors.
	ErrRequiredField    = fmt.Errorf("%w: required field is empty", ErrValidation)
	ErrPasswordMismatch = fmt.Errorf("%w: passwords do not match", ErrValidation)
	ErrPasswordTooLong  = fmt.Errorf("%w: password is longer than 72 bytes", ErrValidation)
	ErrUsernameTaken    = fmt.Errorf("%w: username is already taken", ErrValidation)
	ErrEmailTaken       = fmt.Errorf("%w: email is already registered", ErrValidation)
	ErrInvalidEmail     = fmt.Errorf("%w: invalid email address", ErrValidation)
	ErrSelfFollow       = fmt.Errorf("%w: cannot follow yourself", ErrValidation)
	ErrNotOwner         = fmt.Errorf("%w: not the owner of this post", ErrValidation)
	ErrUnknownPurpose   = fmt.Errorf("%w: unknown verification purpose", ErrValidation)
	ErrFieldTooLong     = fmt.Errorf("%w: value is too long", ErrValidation)
	ErrInvalidID        = fmt.Errorf("%w: malformed id", ErrValidation)
	ErrUnknownUser      = fmt.Errorf("%w: no such user", ErrValidation)
	ErrUnknownPost      = fmt.Errorf("%w: no such post", ErrValidation)

	// Authentication errors. Messages stay generic on purpose.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", ErrAuthentication)
	ErrInvalidCode        = fmt.Errorf("%w: invalid or expired code", ErrAuthentication)
	ErrNotLoggedIn        = fmt.Errorf("%w: not logged in", ErrAuthentication)

	// Configuration errors.
	ErrMalformedHash     = fmt.Errorf("%w: malformed stored password hash", ErrConfiguration)
	ErrMailNotConfigured = fmt.Errorf("%w: outbound mail is not configured", ErrConfiguration)
)

// Failure pairs a user-safe kind with the underlying cause. Error returns only
// the kind message so raw driver or SMTP errors never reach the user, while
// errors.Is and errors.As still see the cause for logging.
type Failure struct {
	Kind  error
	Cause error
}

func (f *Failure) Error() string {
	return f.Kind.Error()
}

func (f *Failure) Unwrap() []error {
	if f.Cause == nil {
		return []error{f.Kind}
	}
	return []error{f.Kind, f.Cause}
}

// StorageFailure wraps a database error as ErrStorage.
func StorageFailure(err error) error {
	return &Failure{Kind: ErrStorage, Cause: err}
}

// NotificationFailure wraps a mail delivery error as ErrNotification.
func NotificationFailure(err error) error {
	return &Failure{Kind: ErrNotification, Cause: err}
}

// Kind reports which taxonomy kind err belongs to, or nil if none.
func Kind(err error) error {
	for _, k := range []error{ErrValidation, ErrAuthentication, ErrStorage, ErrNotification, ErrConfiguration} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
