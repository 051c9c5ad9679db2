package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carelink/auth-server/internal/core/domain"
	"github.com/carelink/auth-server/internal/pkg/metrics"
)

// IdentityKey is the echo context key holding the authorized domain.Identity.
const IdentityKey = "identity"

const (
	reasonMissingToken    = "missing_token"
	reasonMalformedHeader = "malformed_header"
	reasonInvalidToken    = "invalid_token"
	reasonAccountNotFound = "account_not_found"
)

// Authorizer resolves a bearer token to a live identity.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (*domain.Identity, error)
}

// Auth is the authorization gate. Every rejection surfaces to the client as
// the same 401; the reason is only logged and counted.
func Auth(authz Authorizer, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, reason := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if reason != "" {
				return reject(c, log, reason, nil)
			}

			identity, err := authz.Authorize(c.Request().Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrTokenAccountGone):
					return reject(c, log, reasonAccountNotFound, err)
				case errors.Is(err, domain.ErrInvalidToken):
					return reject(c, log, reasonInvalidToken, err)
				default:
					return err
				}
			}

			c.Set(IdentityKey, *identity)
			return next(c)
		}
	}
}

// IdentityFrom returns the identity stored by Auth.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	identity, ok := c.Get(IdentityKey).(domain.Identity)
	return identity, ok
}

func bearerToken(header string) (string, string) {
	if header == "" {
		return "", reasonMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", reasonMalformedHeader
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", reasonMalformedHeader
	}
	return token, ""
}

func reject(c echo.Context, log zerolog.Logger, reason string, err error) error {
	metrics.GateRejectionsTotal.WithLabelValues(reason).Inc()
	log.Debug().
		Err(err).
		Str("reason", reason).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("request rejected by authorization gate")
	return domain.ErrInvalidToken
}
