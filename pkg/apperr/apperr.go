package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindAuthentication
	KindAuthorization
	KindConflict
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindNotFound:
		return "NOT_FOUND"
	case KindAuthentication:
		return "AUTHENTICATION_ERROR"
	case KindAuthorization:
		return "AUTHORIZATION_ERROR"
	case KindConflict:
		return "CONFLICT"
	case KindTransient:
		return "TRANSIENT_ERROR"
	default:
		return "INTERNAL"
	}
}

// Error is a failure with a stable kind that transports map to status codes.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to err. A nil err stays nil.
func Wrap(kind Kind, err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(format string, args ...interface{}) error {
	return New(KindValidation, format, args...)
}

func NotFound(format string, args ...interface{}) error {
	return New(KindNotFound, format, args...)
}

func Authentication(format string, args ...interface{}) error {
	return New(KindAuthentication, format, args...)
}

func Authorization(format string, args ...interface{}) error {
	return New(KindAuthorization, format, args...)
}

func Conflict(format string, args ...interface{}) error {
	return New(KindConflict, format, args...)
}

func Transient(format string, args ...interface{}) error {
	return New(KindTransient, format, args...)
}

// KindOf reports the kind of the outermost *Error in the chain. Context
// deadlines and cancellations count as transient.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTransient
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Retryable reports whether the caller may safely repeat the request.
func Retryable(err error) bool {
	return Is(err, KindTransient)
}

// Message returns the client-facing message for err. Internal errors are not
// echoed verbatim.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == KindInternal {
			return "internal error"
		}
		if e.Message != "" {
			return e.Message
		}
		return e.Err.Error()
	}
	if KindOf(err) == KindTransient {
		return "temporarily unavailable, retry later"
	}
	return "internal error"
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func GRPCCode(err error) codes.Code {
	switch KindOf(err) {
	case KindValidation:
		return codes.InvalidArgument
	case KindNotFound:
		return codes.NotFound
	case KindAuthentication:
		return codes.Unauthenticated
	case KindAuthorization:
		return codes.PermissionDenied
	case KindConflict:
		return codes.FailedPrecondition
	case KindTransient:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// FromGRPCCode is the inverse of GRPCCode, used by RPC clients.
func FromGRPCCode(code codes.Code) Kind {
	switch code {
	case codes.InvalidArgument:
		return KindValidation
	case codes.NotFound:
		return KindNotFound
	case codes.Unauthenticated:
		return KindAuthentication
	case codes.PermissionDenied:
		return KindAuthorization
	case codes.FailedPrecondition, codes.AlreadyExists, codes.Aborted:
		return KindConflict
	case codes.Unavailable, codes.DeadlineExceeded:
		return KindTransient
	default:
		return KindInternal
	}
}
