package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	CodeValidation      = "validation_error"
	CodeInvalidURL      = "invalid_url"
	CodeForbiddenDomain = "forbidden_domain"
	CodeNotFound        = "not_found"
	CodeUpstream        = "upstream_error"
	CodeTimeout         = "timeout"
	CodeInternal        = "internal_error"
)

// Common errors
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidURL      = errors.New("invalid url")
	ErrForbiddenDomain = errors.New("domain not allowed")
	ErrNotFound        = errors.New("not found")
	ErrUpstream        = errors.New("upstream error")
	ErrTimeout         = errors.New("timeout")
	ErrInternalServer  = errors.New("internal server error")
)

// Error represents a custom error type
type Error struct {
	Code    string
	Message string
	// Status is the HTTP status the error maps to. Zero means "derive from Code".
	Status int
	Err    error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(message string) error {
	return &Error{Code: CodeValidation, Message: message, Status: http.StatusBadRequest, Err: ErrInvalidInput}
}

func InvalidURL(message string, cause error) error {
	return &Error{Code: CodeInvalidURL, Message: message, Status: http.StatusBadRequest, Err: errors.Join(ErrInvalidURL, cause)}
}

func ForbiddenDomain(host string) error {
	return &Error{Code: CodeForbiddenDomain, Message: "domain not allowed: " + host, Status: http.StatusForbidden, Err: ErrForbiddenDomain}
}

func NotFound(message string) error {
	return &Error{Code: CodeNotFound, Message: message, Status: http.StatusNotFound, Err: ErrNotFound}
}

// Upstream reports a non-2xx answer from the provider. The provider's status
// is kept so handlers can pass it through.
func Upstream(status int, message string) error {
	return &Error{Code: CodeUpstream, Message: message, Status: status, Err: ErrUpstream}
}

func Timeout(message string, cause error) error {
	return &Error{Code: CodeTimeout, Message: message, Status: http.StatusGatewayTimeout, Err: errors.Join(ErrTimeout, cause)}
}

func Internal(message string, cause error) error {
	return &Error{Code: CodeInternal, Message: message, Status: http.StatusInternalServerError, Err: errors.Join(ErrInternalServer, cause)}
}

// GetCode returns the error code if it exists
func GetCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetMessage returns the error message
func GetMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps err onto the status a handler should answer with.
// Anything unclassified is a 500.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	if e.Status != 0 {
		return e.Status
	}
	switch e.Code {
	case CodeValidation, CodeInvalidURL:
		return http.StatusBadRequest
	case CodeForbiddenDomain:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeUpstream:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// IsNotFound returns true if the error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsForbidden returns true if the error is a forbidden domain error
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbiddenDomain)
}

// IsInvalidURL returns true if the error is a URL validation error
func IsInvalidURL(err error) bool {
	return errors.Is(err, ErrInvalidURL)
}

// IsBadRequest returns true if the error is a validation error
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrInvalidURL)
}

// IsUpstream returns true if the error came from a non-2xx provider answer
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream)
}

// IsTimeout returns true if the error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsInternalServer returns true if the error is an internal server error
func IsInternalServer(err error) bool {
	return errors.Is(err, ErrInternalServer)
}
