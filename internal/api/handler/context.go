package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/carelink/auth-server/internal/api/middleware"
	"github.com/carelink/auth-server/internal/core/domain"
)

// identityFrom returns the caller resolved by the Auth middleware. A route
// mounted without the gate gets ErrInvalidToken rather than a zero identity.
func identityFrom(c echo.Context) (domain.Identity, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok || identity.ID == "" {
		return domain.Identity{}, domain.ErrInvalidToken
	}
	return identity, nil
}

// bindAndValidate decodes the request body into req and runs the registered validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.Validation("invalid request body")
	}
	return c.Validate(req)
}

// ErrorResponse is the body of every error reply. Stack is omitted in production.
type ErrorResponse struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}
