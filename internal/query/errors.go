package query

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ValidationError reports malformed or out-of-range caller input. The
// reason is safe to surface verbatim.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports that a direct lookup by exact code matched no
// airport.
type NotFoundError struct {
	Ident string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("airport %q not found", e.Ident)
}

// UpstreamError wraps a data-store failure. The message is deliberately
// generic; the cause is logged here and retrievable via Unwrap but never
// rendered to callers.
type UpstreamError struct {
	cause error
}

func upstream(op string, cause error) error {
	zap.L().Error("store query failed", zap.String("op", op), zap.Error(cause))
	return &UpstreamError{cause: cause}
}

func (e *UpstreamError) Error() string { return "airport data store unavailable" }

func (e *UpstreamError) Unwrap() error { return e.cause }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
