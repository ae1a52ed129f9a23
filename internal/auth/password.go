package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrPasswordTooLong = errors.New("password exceeds maximum length of 72 bytes")
)

// CredentialKind classifies a stored credential.
//
// Databases migrated from the original deployment contain a handful of user
// records with plaintext passwords. Those records keep working: VerifyPassword
// falls back to direct comparison for them. The plaintext branch is a
// compatibility shim, not a supported way to store credentials.
// TODO: drop CredentialPlaintext once the migrated records have re-registered.
type CredentialKind int

const (
	CredentialBcrypt CredentialKind = iota
	CredentialPlaintext
)

// bcrypt digests start with a version marker like $2a$ or $2b$.
var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// CredentialKindOf reports whether a stored credential is a bcrypt digest or a
// legacy plaintext password.
func CredentialKindOf(stored string) CredentialKind {
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(stored, prefix) {
			return CredentialBcrypt
		}
	}
	return CredentialPlaintext
}

// HashPassword creates a bcrypt hash of the password.
func HashPassword(password string, cost int) (string, error) {
	// bcrypt has a 72-byte limit
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a password against a stored credential, handling
// both bcrypt digests and legacy plaintext records.
func VerifyPassword(password, stored string) error {
	switch CredentialKindOf(stored) {
	case CredentialBcrypt:
		err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password))
		if err != nil {
			if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
				return ErrInvalidPassword
			}
			return err
		}
		return nil
	default:
		if subtle.ConstantTimeCompare([]byte(password), []byte(stored)) != 1 {
			return ErrInvalidPassword
		}
		return nil
	}
}

// GenerateSecret creates a random 32-byte secret, hex-encoded.
// Used for session signing and the JWT key when none is configured.
func GenerateSecret() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
