package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_Sanitized(t *testing.T) {
	u := &User{ID: "u1", Username: "alice", Email: "alice@example.com", PasswordHash: "$2a$...", Salt: "$2a$12$abc"}
	s := u.Sanitized()

	assert.Empty(t, s.PasswordHash)
	assert.Empty(t, s.Salt)
	assert.Equal(t, "alice", s.Username)
	assert.Equal(t, "$2a$...", u.PasswordHash, "the receiver must stay untouched")

	var nilUser *User
	assert.Nil(t, nilUser.Sanitized())
}

func TestUser_Identity(t *testing.T) {
	u := &User{ID: "u1", Username: "alice"}
	assert.Equal(t, Identity{UserID: "u1", DisplayName: "alice"}, u.Identity())
}

func TestPurpose_Valid(t *testing.T) {
	assert.True(t, PurposeActivation.Valid())
	assert.True(t, PurposeEmailVerification.Valid())
	assert.True(t, PurposePasswordReset.Valid())
	assert.False(t, Purpose("login").Valid())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "NONE", StateNone.String())
	assert.Equal(t, "PENDING", StatePending.String())
	assert.Equal(t, "EXPIRED", StateExpired.String())
	assert.Equal(t, "CONSUMED", StateConsumed.String())
	assert.Equal(t, "State(9)", State(9).String())
}
