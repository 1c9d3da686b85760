package models

import (
	"fmt"
	"time"
)

// Purpose selects which of a user's verification codes is addressed.
type Purpose string

const (
	PurposeActivation        Purpose = "activation"
	PurposeEmailVerification Purpose = "email_verification"
	PurposePasswordReset     Purpose = "password_reset"
)

func (p Purpose) Valid() bool {
	switch p {
	case PurposeActivation, PurposeEmailVerification, PurposePasswordReset:
		return true
	}
	return false
}

func (p Purpose) String() string { return string(p) }

// Verification is the persisted code state for one (user, purpose) pair.
// Code is empty when nothing is pending. Satisfied mirrors the flag the
// purpose gates (is_active, is_email_verified, password_reset_done).
type Verification struct {
	Code      string
	ExpiresAt time.Time
	Satisfied bool
}

// Pending reports whether a code is stored.
func (v *Verification) Pending() bool { return v.Code != "" }

// State is the lifecycle position of a verification code.
type State int

const (
	StateNone State = iota
	StatePending
	StateExpired
	StateConsumed
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "NONE"
	case StatePending:
		return "PENDING"
	case StateExpired:
		return "EXPIRED"
	case StateConsumed:
		return "CONSUMED"
	}
	return fmt.Sprintf("State(%d)", int(s))
}
