package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost matches the cost used for every stored credential.
const DefaultBcryptCost = 10

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// ErrHashing reports a failure of the underlying hash function, i.e.
// entropy or resource exhaustion.  Callers reject over-long input first.
var ErrHashing = errors.New("hashing failed")

// PasswordHasher hashes and verifies passwords and one-time codes.  New
// digests are always bcrypt; argon2id digests are accepted on Verify so
// credentials imported from other systems keep working.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher using cost, or DefaultBcryptCost when
// cost is outside bcrypt's accepted range.
func NewPasswordHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return PasswordHasher{cost: cost}
}

// Hash returns a salted bcrypt digest of plain.
func (h PasswordHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrHashing, err)
	}
	return string(b), nil
}

// Verify safely compares a digest and a plain value.  Malformed digests
// simply do not match.
func (h PasswordHasher) Verify(digest, plain string) bool {
	if strings.HasPrefix(digest, "$argon2id$") {
		ok, err := argon2id.ComparePasswordAndHash(plain, digest)
		return err == nil && ok
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
