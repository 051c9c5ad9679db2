package domain

import (
	"errors"
	"fmt"

	"github.com/samber/oops"
)

// Kind classifies a failure for the transport layer.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindInternal     Kind = "internal"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrAccountNotFound    = errors.New("user not found")
	ErrForbidden          = errors.New("forbidden")
	ErrEmptySecret        = errors.New("token signing secret is empty")

	// ErrTokenAccountGone is a validly signed token whose account no longer exists.
	ErrTokenAccountGone = fmt.Errorf("%w: account no longer exists", ErrInvalidToken)
)

// Validation builds a validation error carrying a client-facing message.
func Validation(msg string) error {
	return oops.In("validation").Code(string(KindValidation)).Errorf("%s", msg)
}

// KindOf resolves the kind of err. Sentinels win over oops codes; anything
// unrecognised is internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidToken):
		return KindUnauthorized
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrAccountNotFound):
		return KindNotFound
	}

	if oopsErr, ok := oops.AsOops(err); ok {
		switch Kind(fmt.Sprint(oopsErr.Code())) {
		case KindValidation:
			return KindValidation
		case KindUnauthorized:
			return KindUnauthorized
		case KindForbidden:
			return KindForbidden
		case KindNotFound:
			return KindNotFound
		}
	}
	return KindInternal
}
