package models

import "time"

// User is a row of the users table. PasswordHash and Salt are only filled
// when read through the directory for credential checks; anything handed to
// the session or the front end goes through Sanitized first.
type User struct {
	ID              string
	Username        string
	Email           string
	PasswordHash    string
	Salt            string
	IsActive        bool
	IsEmailVerified bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Sanitized returns a copy with the credential fields cleared.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.PasswordHash = ""
	c.Salt = ""
	return &c
}

// Identity returns the session identity for u.
func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, DisplayName: u.Username}
}

// Identity is what the session keeps about the logged in user.
type Identity struct {
	UserID      string
	DisplayName string
}
