package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/samber/oops"

	"github.com/carelink/auth-server/internal/api/handler"
	"github.com/carelink/auth-server/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps errors to
// their status by kind and renders {"message", "stack"}. Authentication
// failures collapse to one message per surface so callers cannot tell which
// check failed. Stacks are only rendered outside production.
func NewHTTPErrorHandler(log zerolog.Logger, production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)

		body := handler.ErrorResponse{Message: msg}
		if !production {
			body.Stack = stackOf(err)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (router 404/405, oversized bodies, ...)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code == http.StatusNotFound {
			return http.StatusNotFound, "Not Found - " + c.Request().RequestURI
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest, err.Error()
	case domain.KindUnauthorized:
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return http.StatusUnauthorized, "Invalid credentials"
		}
		return http.StatusUnauthorized, "Invalid token"
	case domain.KindForbidden:
		return http.StatusForbidden, "Forbidden"
	case domain.KindNotFound:
		return http.StatusNotFound, "User not found"
	}

	// Unexpected error: log the real cause, return a generic message.
	event := log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID))
	if oopsErr, ok := oops.AsOops(err); ok {
		event = event.Str("domain", oopsErr.Domain()).Interface("context", oopsErr.Context())
	}
	event.Msg("unhandled error")

	return http.StatusInternalServerError, "Internal server error"
}

func stackOf(err error) string {
	if oopsErr, ok := oops.AsOops(err); ok {
		if st := oopsErr.Stacktrace(); st != "" {
			return st
		}
	}
	return err.Error()
}
