package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation")   // 400
	ErrNotFound     = errors.New("not found")    // 404
	ErrForbidden    = errors.New("forbidden")    // 403
	ErrUnauthorized = errors.New("unauthorized") // 401

	// ErrBadCredentials is a failed login. It is an ErrUnauthorized but is answered inside the
	// envelope rather than with HTTP 401.
	ErrBadCredentials = fmt.Errorf("%w: invalid username or password", ErrUnauthorized)
)

// NotFoundError reports an entity that is absent or outside the caller's website.
type NotFoundError struct {
	Entity string
	ID     any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %v not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func NotFound(entity string, id any) error {
	return &NotFoundError{Entity: entity, ID: id}
}

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func Validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func Forbidden(msg string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, msg)
}

func Unauthorized(msg string) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
}

// Message strips the sentinel prefix from errors built with Forbidden or Unauthorized.
func Message(err error) string {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf.Error()
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	for _, s := range []error{ErrForbidden, ErrUnauthorized} {
		if errors.Is(err, s) {
			if msg, ok := trimPrefix(err.Error(), s.Error()+": "); ok {
				return msg
			}
			return s.Error()
		}
	}
	return err.Error()
}

func trimPrefix(s, prefix string) (string, bool) {
	if len(s) > len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):], true
	}
	return "", false
}
