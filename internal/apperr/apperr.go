package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies a class of failure that callers can branch on.
type Kind string

const (
	KindValidation          Kind = "VALIDATION"
	KindAuthExpired         Kind = "AUTH_EXPIRED"
	KindProviderRateLimited Kind = "PROVIDER_RATE_LIMITED"
	KindProviderUnavailable Kind = "PROVIDER_UNAVAILABLE"
	KindEmbeddingFailed     Kind = "EMBEDDING_FAILED"
	KindIndexWriteFailed    Kind = "INDEX_WRITE_FAILED"
	KindDimMismatch         Kind = "DIM_MISMATCH"
	KindLengthExceeded      Kind = "LENGTH_EXCEEDED"
	KindParsingFailed       Kind = "PARSING_FAILED"
	KindRequestTimeout      Kind = "REQUEST_TIMEOUT"
)

// Error carries a failure kind plus a human-readable message and an
// optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Is lets errors.Is match on kind when the target is a bare *Error
// created by New with an empty message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf extracts the failure kind, or empty string for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Sentinels for errors.Is checks.
var (
	ErrValidation          = &Error{Kind: KindValidation}
	ErrAuthExpired         = &Error{Kind: KindAuthExpired}
	ErrProviderRateLimited = &Error{Kind: KindProviderRateLimited}
	ErrProviderUnavailable = &Error{Kind: KindProviderUnavailable}
	ErrEmbeddingFailed     = &Error{Kind: KindEmbeddingFailed}
	ErrIndexWriteFailed    = &Error{Kind: KindIndexWriteFailed}
	ErrDimMismatch         = &Error{Kind: KindDimMismatch}
	ErrLengthExceeded      = &Error{Kind: KindLengthExceeded}
	ErrParsingFailed       = &Error{Kind: KindParsingFailed}
	ErrRequestTimeout      = &Error{Kind: KindRequestTimeout}
)

// HTTPStatus maps a failure kind to the status class surfaced by the
// REST adapter.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return 400
	case KindAuthExpired:
		return 401
	case KindProviderRateLimited:
		return 429
	case KindRequestTimeout:
		return 504
	case KindProviderUnavailable:
		return 502
	case KindDimMismatch, KindIndexWriteFailed, KindEmbeddingFailed:
		return 500
	default:
		return 500
	}
}
