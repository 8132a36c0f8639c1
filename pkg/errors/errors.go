package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors matched with errors.Is.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInternal            = errors.New("internal error")
	ErrConflict            = errors.New("conflict")
	ErrServiceUnavail      = errors.New("service unavailable")
	ErrMissingParameter    = errors.New("missing request parameter")
	ErrLanguageNotFound    = errors.New("language not found")
	ErrReviewNotActive     = errors.New("reviews not active")
	ErrCustomerNotLoggedIn = errors.New("customer not logged in")
)

// AppError is an error carrying a machine code, a client-safe message and
// the HTTP status it maps to.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// MissingParameter creates a 400 error for a required request field that was not sent.
func MissingParameter(name string) *AppError {
	return &AppError{
		Code:    "MISSING_PARAMETER",
		Message: fmt.Sprintf("parameter %q is missing", name),
		Status:  http.StatusBadRequest,
		Err:     ErrMissingParameter,
	}
}

// LanguageNotFound creates a 400 error for a language that cannot be switched to.
func LanguageNotFound(languageID string) *AppError {
	return &AppError{
		Code:    "LANGUAGE_NOT_FOUND",
		Message: fmt.Sprintf("language %q not found", languageID),
		Status:  http.StatusBadRequest,
		Err:     ErrLanguageNotFound,
	}
}

// ReviewNotActive creates a 403 error returned when reviews are disabled for a sales channel.
func ReviewNotActive() *AppError {
	return &AppError{
		Code:    "REVIEW_NOT_ACTIVE",
		Message: "reviews are not active for this sales channel",
		Status:  http.StatusForbidden,
		Err:     ErrReviewNotActive,
	}
}

// CustomerNotLoggedIn creates a 403 error for actions that need a customer session.
func CustomerNotLoggedIn() *AppError {
	return &AppError{
		Code:    "CUSTOMER_NOT_LOGGED_IN",
		Message: "customer is not logged in",
		Status:  http.StatusForbidden,
		Err:     ErrCustomerNotLoggedIn,
	}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// Forbidden creates a 403 error.
func Forbidden(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// Conflict creates a 409 error.
func Conflict(message string) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: message,
		Status:  http.StatusConflict,
		Err:     ErrConflict,
	}
}

// ServiceUnavailable creates a 503 error.
func ServiceUnavailable(message string) *AppError {
	return &AppError{
		Code:    "SERVICE_UNAVAILABLE",
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Err:     ErrServiceUnavail,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrMissingParameter), errors.Is(err, ErrLanguageNotFound):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrReviewNotActive), errors.Is(err, ErrCustomerNotLoggedIn):
		return http.StatusForbidden
	case errors.Is(err, ErrServiceUnavail):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
