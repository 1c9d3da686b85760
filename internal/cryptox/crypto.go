// Package cryptox is the credential store: it turns passwords into salted
// bcrypt hashes and checks candidates against them. Plaintext is never kept.
package cryptox

import (
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/chirp/internal/common"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 12

// saltPrefixLen covers "$2a$12$" plus the 22-char encoded salt.
const saltPrefixLen = 29

// Credential is what gets persisted for a password. Salt is the salt
// section of Hash, kept separately for the users.salt column.
type Credential struct {
	Hash string
	Salt string
}

// PasswordHasher hashes and verifies passwords with bcrypt.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher using cost, clamped to bcrypt's range.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash derives a new credential with a fresh random salt.
func (h *PasswordHasher) Hash(password string) (Credential, error) {
	if password == "" {
		return Credential{}, fmt.Errorf("%w: password", common.ErrRequiredField)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return Credential{}, common.ErrPasswordTooLong
		}
		return Credential{}, err
	}

	s := string(hash)
	return Credential{Hash: s, Salt: s[:saltPrefixLen]}, nil
}

// Verify reports whether password matches storedHash. A mismatch is
// (false, nil). A stored hash that bcrypt cannot parse yields
// common.ErrMalformedHash, since it means the user table is corrupt.
func (h *PasswordHasher) Verify(password, storedHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password))
	if err == nil {
		return true, nil
	}
	if isMalformed(err) {
		return false, fmt.Errorf("%w: %w", common.ErrMalformedHash, err)
	}
	return false, nil
}

// Cost returns the work factor embedded in storedHash.
func Cost(storedHash string) (int, error) {
	c, err := bcrypt.Cost([]byte(storedHash))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", common.ErrMalformedHash, err)
	}
	return c, nil
}

// NeedsRehash reports whether storedHash was made with a lower work factor
// than h uses. Unparseable hashes are left to Verify to report.
func (h *PasswordHasher) NeedsRehash(storedHash string) bool {
	c, err := Cost(storedHash)
	return err == nil && c < h.cost
}

func isMalformed(err error) bool {
	if errors.Is(err, bcrypt.ErrHashTooShort) {
		return true
	}
	var prefix bcrypt.InvalidHashPrefixError
	var version bcrypt.HashVersionTooNewError
	var cost bcrypt.InvalidCostError
	// a bad salt section only shows up when bcrypt decodes it during the compare
	var corrupt base64.CorruptInputError
	return errors.As(err, &prefix) || errors.As(err, &version) || errors.As(err, &cost) ||
		errors.As(err, &corrupt)
}
