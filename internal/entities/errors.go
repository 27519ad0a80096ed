package entities

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies every failure the gateway can report.
type ErrorKind string

const (
	ErrValidation          ErrorKind = "validation"
	ErrAuthRequired        ErrorKind = "auth_required"
	ErrAuthExpired         ErrorKind = "auth_expired"
	ErrInsufficientCredits ErrorKind = "insufficient_credits"
	ErrNotFound            ErrorKind = "not_found"
	ErrConflict            ErrorKind = "conflict"
	ErrUpstream            ErrorKind = "upstream"
	ErrTimeout             ErrorKind = "timeout"
	ErrConnection          ErrorKind = "connection"
	ErrInternal            ErrorKind = "internal"
)

// APIError is the single error type crossing the gateway boundary.
// Message/Detail/Code map straight onto the caller-facing JSON contract;
// Status is the HTTP status the handler writes.
type APIError struct {
	Kind    ErrorKind
	Message string
	Detail  string
	Code    string
	Status  int
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NewValidationError(msg string) *APIError {
	return &APIError{Kind: ErrValidation, Message: msg, Status: http.StatusBadRequest}
}

func NewAuthRequiredError() *APIError {
	return &APIError{Kind: ErrAuthRequired, Message: "Not authenticated", Status: http.StatusUnauthorized}
}

func NewAuthExpiredError() *APIError {
	return &APIError{Kind: ErrAuthExpired, Message: "QuickBooks authentication failed. Please re-authenticate.", Status: http.StatusUnauthorized}
}

func NewInsufficientCreditsError() *APIError {
	return &APIError{Kind: ErrInsufficientCredits, Message: "Insufficient credits or no active subscription", Status: http.StatusForbidden}
}

func NewNotFoundError(entity EntityType) *APIError {
	return &APIError{Kind: ErrNotFound, Message: fmt.Sprintf("%s not found", entity), Status: http.StatusNotFound}
}

func NewConflictError(msg string) *APIError {
	return &APIError{Kind: ErrConflict, Message: msg, Status: http.StatusBadRequest}
}

func NewUpstreamError(message, detail, code string, status int) *APIError {
	return &APIError{
		Kind:    ErrUpstream,
		Message: fmt.Sprintf("QuickBooks API Error: %s", message),
		Detail:  detail,
		Code:    code,
		Status:  status,
	}
}

func NewTimeoutError() *APIError {
	return &APIError{Kind: ErrTimeout, Message: "Request to QuickBooks API timed out", Status: http.StatusGatewayTimeout}
}

func NewConnectionError() *APIError {
	return &APIError{Kind: ErrConnection, Message: "Could not connect to QuickBooks API", Status: http.StatusServiceUnavailable}
}

func NewInternalError() *APIError {
	return &APIError{Kind: ErrInternal, Message: "An unexpected error occurred", Status: http.StatusInternalServerError}
}

// AuthError reports an OAuth token exchange or refresh failure,
// carrying the upstream response for diagnostics.
type AuthError struct {
	Op     string // "exchange" or "refresh"
	Status int
	Body   string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("token %s failed: %d - %s", e.Op, e.Status, e.Body)
}

func (e *AuthError) Unwrap() error { return e.Err }
