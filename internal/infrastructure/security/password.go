// Package security holds the credential primitives: bcrypt password hashing
// and HS256 bearer tokens.
package security

import (
	"time"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"

	"github.com/carelink/auth-server/internal/core/domain"
	"github.com/carelink/auth-server/internal/pkg/metrics"
)

// DefaultCost is the bcrypt work factor used for every stored password.
// Cost 12 targets tens of milliseconds per hash on a modern server core.
const DefaultCost = 12

// maxPasswordBytes is bcrypt's input limit.
const maxPasswordBytes = 72

// BcryptHasher implements ports.PasswordHasher with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher with the given cost, or DefaultCost when
// cost is outside bcrypt's accepted range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Cost returns the configured work factor.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash returns a salted bcrypt digest of password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", domain.Validation("password is required")
	}
	if len(password) > maxPasswordBytes {
		return "", domain.Validation("password must be at most 72 bytes")
	}

	start := time.Now()
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	metrics.PasswordHashDuration.WithLabelValues("hash").Observe(time.Since(start).Seconds())
	if err != nil {
		return "", oops.In("security").Code(string(domain.KindInternal)).Wrapf(err, "hash password")
	}
	return string(digest), nil
}

// Verify reports whether password matches digest. bcrypt compares in constant
// time; a malformed digest simply does not match.
func (h *BcryptHasher) Verify(password, digest string) bool {
	if digest == "" {
		return false
	}
	start := time.Now()
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	metrics.PasswordHashDuration.WithLabelValues("verify").Observe(time.Since(start).Seconds())
	return err == nil
}
