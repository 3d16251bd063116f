package identity

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Passwords hashes and checks stored credentials.
type Passwords interface {
	Hash(plain string) (string, error)
	Matches(stored, plain string) bool
}

// PlainPasswords stores passwords verbatim and compares them byte for byte.
// This is the legacy behaviour the existing portal data relies on; it is not
// constant time and should be replaced by BcryptPasswords once stored
// credentials are migrated.
type PlainPasswords struct{}

func (PlainPasswords) Hash(plain string) (string, error) { return plain, nil }

func (PlainPasswords) Matches(stored, plain string) bool { return stored == plain }

// BcryptPasswords stores bcrypt hashes.
type BcryptPasswords struct {
	Cost int
}

func (b BcryptPasswords) Hash(plain string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (BcryptPasswords) Matches(stored, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
}

// PasswordsFor resolves the PASSWORD_SCHEME setting.
func PasswordsFor(scheme string) (Passwords, error) {
	switch scheme {
	case "", "plain":
		return PlainPasswords{}, nil
	case "bcrypt":
		return BcryptPasswords{Cost: 12}, nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}
}
