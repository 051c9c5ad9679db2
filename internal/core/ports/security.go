package ports

import "github.com/carelink/auth-server/internal/core/domain"

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	// Hash returns a salted digest; two calls on the same input differ.
	Hash(password string) (string, error)
	// Verify reports whether password matches digest. Malformed digests never match.
	Verify(password, digest string) bool
}

// TokenClaims is what a bearer token proves about its holder.
type TokenClaims struct {
	ID   string
	Role domain.Role
}

// TokenIssuer signs bearer tokens.
type TokenIssuer interface {
	Issue(id string, role domain.Role) (string, error)
}

// TokenVerifier checks a bearer token's signature and decodes its claims.
type TokenVerifier interface {
	Verify(token string) (*TokenClaims, error)
}
