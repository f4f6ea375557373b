package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrInvalidRequest ErrorType = "INVALID_REQUEST"
	ErrAuthFailed     ErrorType = "AUTH_FAILED"
	ErrNotFound       ErrorType = "NOT_FOUND"
	ErrUpstream       ErrorType = "UPSTREAM_ERROR"
	ErrExhausted      ErrorType = "RESILIENCE_EXHAUSTED"
	ErrAnalysis       ErrorType = "ANALYSIS_FAILED"
	ErrInternal       ErrorType = "INTERNAL_ERROR"
)

// AppError is the standard error struct for the application
type AppError struct {
	Type       ErrorType `json:"code"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion,omitempty"`
	HTTPStatus int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(errType ErrorType, msg string, cause error) *AppError {
	return &AppError{
		Type:       errType,
		Message:    msg,
		Cause:      cause,
		HTTPStatus: mapTypeToStatus(errType),
		Suggestion: mapTypeToSuggestion(errType),
	}
}

func NewInvalidRequest(msg string) *AppError {
	return New(ErrInvalidRequest, msg, nil)
}

// NewUpstream marks a transient provider failure: the call itself failed, a
// retry may succeed.
func NewUpstream(service string, cause error) *AppError {
	return New(ErrUpstream, fmt.Sprintf("upstream call to %s failed", service), cause)
}

// NewExhausted marks a call the resilience layer refused to place: the
// service is rate limited or its circuit is open and no stale cache exists.
// Distinct from ErrUpstream so callers can tell "try later" from "failed".
func NewExhausted(service string) *AppError {
	return New(ErrExhausted, fmt.Sprintf("service %s is rate limited or unhealthy", service), nil)
}

func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return New(ErrInternal, err.Error(), err)
}

// IsExhausted reports whether err originated from the resilience layer
// refusing to place a call.
func IsExhausted(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ErrExhausted
}

func mapTypeToStatus(t ErrorType) int {
	switch t {
	case ErrInvalidRequest:
		return http.StatusBadRequest
	case ErrAuthFailed:
		return http.StatusUnauthorized
	case ErrNotFound:
		return http.StatusNotFound
	case ErrUpstream:
		return http.StatusBadGateway
	case ErrExhausted:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func mapTypeToSuggestion(t ErrorType) string {
	switch t {
	case ErrAuthFailed:
		return "Check the API key."
	case ErrUpstream:
		return "Retry the request."
	case ErrExhausted:
		return "Wait for the provider window or circuit to reset."
	case ErrInvalidRequest:
		return "Check the wallet address and token payload."
	default:
		return ""
	}
}
