package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation        ErrorType = "VALIDATION_ERROR"
	ErrorTypeUnauthorized      ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden         ErrorType = "FORBIDDEN"
	ErrorTypeNotFound          ErrorType = "NOT_FOUND"
	ErrorTypeInvalidState      ErrorType = "INVALID_STATE"
	ErrorTypeInvalidTransition ErrorType = "INVALID_TRANSITION"
	ErrorTypeNoCandidate       ErrorType = "NO_CANDIDATE"
	ErrorTypeConflict          ErrorType = "CONCURRENCY_CONFLICT"
	ErrorTypeStorage           ErrorType = "STORAGE_ERROR"
	ErrorTypeInternal          ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed     ErrorCode = "VALIDATION_FAILED"
	ErrCodeMissingField         ErrorCode = "MISSING_FIELD"
	ErrCodeInvalidStatusValue   ErrorCode = "INVALID_STATUS_VALUE"
	ErrCodeInvalidMeterReadings ErrorCode = "INVALID_METER_READINGS"

	ErrCodeOrderNotFound    ErrorCode = "ORDER_NOT_FOUND"
	ErrCodeUserNotFound     ErrorCode = "USER_NOT_FOUND"
	ErrCodeTruckNotFound    ErrorCode = "TRUCK_NOT_FOUND"
	ErrCodeAircraftNotFound ErrorCode = "AIRCRAFT_NOT_FOUND"
	ErrCodeCustomerNotFound ErrorCode = "CUSTOMER_NOT_FOUND"
	ErrCodeRoleNotFound     ErrorCode = "ROLE_NOT_FOUND"

	ErrCodeNotOrderAssignee  ErrorCode = "NOT_ORDER_ASSIGNEE"
	ErrCodeMissingPermission ErrorCode = "MISSING_PERMISSION"

	ErrCodeOrderNotInState       ErrorCode = "ORDER_NOT_IN_REQUIRED_STATE"
	ErrCodeTransitionNotAllowed  ErrorCode = "TRANSITION_NOT_ALLOWED"
	ErrCodeNoTechnicianAvailable ErrorCode = "NO_TECHNICIAN_AVAILABLE"
	ErrCodeNoTruckAvailable      ErrorCode = "NO_TRUCK_AVAILABLE"
	ErrCodeStatusChanged         ErrorCode = "STATUS_CHANGED_CONCURRENTLY"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"

	ErrCodeStorageFailure ErrorCode = "STORAGE_FAILURE"
)

// AppError is the error shape every service returns to the transport layer.
// Type carries the machine-readable kind used for HTTP status mapping.
type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
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

func (e *AppError) WithCause(cause error) *AppError {
	copied := *e
	copied.Cause = cause
	return &copied
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	copied := *e
	copied.Details = details
	return &copied
}

// Retryable reports whether a boundary layer may reasonably retry the call.
// Only storage failures and lost optimistic writes qualify.
func (e *AppError) Retryable() bool {
	return e.Type == ErrorTypeStorage || e.Type == ErrorTypeConflict
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewInvalidStateError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidState,
		Code:       ErrCodeOrderNotInState,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInvalidTransitionError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidTransition,
		Code:       ErrCodeTransitionNotAllowed,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNoCandidateError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNoCandidate,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       ErrCodeStatusChanged,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewStorageError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeStorage,
		Code:       ErrCodeStorageFailure,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
