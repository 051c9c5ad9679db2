package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/carelink/auth-server/internal/core/domain"
	"github.com/carelink/auth-server/internal/core/ports"
)

// Claims is the payload of a bearer token.
type Claims struct {
	AccountID string      `json:"id"`
	Role      domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTIssuer signs and verifies HS256 bearer tokens with a process-wide secret.
// It implements both ports.TokenIssuer and ports.TokenVerifier.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTIssuer builds an issuer. An empty secret is a configuration error.
// A zero ttl issues tokens without an exp claim.
func NewJWTIssuer(secret string, ttl time.Duration) (*JWTIssuer, error) {
	if secret == "" {
		return nil, domain.ErrEmptySecret
	}
	if ttl < 0 {
		ttl = 0
	}
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for the given account id and role.
func (i *JWTIssuer) Issue(id string, role domain.Role) (string, error) {
	if len(i.secret) == 0 {
		return "", domain.ErrEmptySecret
	}

	now := i.now()
	claims := Claims{
		AccountID: id,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       ulid.Make().String(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", oops.In("security").Code(string(domain.KindInternal)).Wrapf(err, "sign token")
	}
	return signed, nil
}

// Verify checks the signature, the algorithm and the time claims, then
// decodes the payload. Every failure is reported as domain.ErrInvalidToken.
func (i *JWTIssuer) Verify(token string) (*ports.TokenClaims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return nil, oops.In("security").
			Code(string(domain.KindUnauthorized)).
			With("cause", causeOf(err)).
			Wrap(domain.ErrInvalidToken)
	}
	if claims.AccountID == "" {
		return nil, oops.In("security").
			Code(string(domain.KindUnauthorized)).
			With("cause", "missing id claim").
			Wrap(domain.ErrInvalidToken)
	}

	return &ports.TokenClaims{ID: claims.AccountID, Role: claims.Role}, nil
}

func causeOf(err error) string {
	switch {
	case err == nil:
		return "invalid"
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "signature"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return "unverifiable"
	}
	return err.Error()
}
