package error

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode string

// Error codes for different categories
const (
	// Storage Errors (1xxx)
	ErrCodeStorageOpen      ErrorCode = "STORAGE_1001"
	ErrCodeStorageAppend    ErrorCode = "STORAGE_1002"
	ErrCodeStorageDelete    ErrorCode = "STORAGE_1003"
	ErrCodeStorageRead      ErrorCode = "STORAGE_1004"
	ErrCodeStorageDestroyed ErrorCode = "STORAGE_1005"
	ErrCodeStorageClosed    ErrorCode = "STORAGE_1006"

	// Lookup Errors (2xxx)
	ErrCodeNotFound      ErrorCode = "LOOKUP_2001"
	ErrCodeAlreadyExists ErrorCode = "LOOKUP_2002"

	// Validation Errors (3xxx)
	ErrCodeInvalidArgument ErrorCode = "VALID_3001"

	// Configuration Errors (4xxx)
	ErrCodeConfiguration ErrorCode = "CONFIG_4001"
)

// AppError represents a structured application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Details != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Details)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// Storage errors

func ErrStorageOpen(name string, cause error) *AppError {
	return NewAppError(ErrCodeStorageOpen, "Failed to open archive storage", fmt.Sprintf("Storage: %s", name), cause)
}

func ErrStorageAppend(name string, cause error) *AppError {
	return NewAppError(ErrCodeStorageAppend, "Failed to append archive entry", fmt.Sprintf("Storage: %s", name), cause)
}

func ErrStorageDelete(name string, cause error) *AppError {
	return NewAppError(ErrCodeStorageDelete, "Failed to delete archive storage", fmt.Sprintf("Storage: %s", name), cause)
}

func ErrStorageRead(name string, cause error) *AppError {
	return NewAppError(ErrCodeStorageRead, "Failed to read archive storage", fmt.Sprintf("Storage: %s", name), cause)
}

func ErrStorageDestroyed(name string) *AppError {
	return NewAppError(ErrCodeStorageDestroyed, "Archive storage has been destroyed", fmt.Sprintf("Storage: %s", name), nil)
}

func ErrStorageClosed(name string) *AppError {
	return NewAppError(ErrCodeStorageClosed, "Archive is closed", fmt.Sprintf("Storage: %s", name), nil)
}

func ErrStorageRelease(name string, cause error) *AppError {
	return NewAppError(ErrCodeStorageClosed, "Failed to release archive storage", fmt.Sprintf("Storage: %s", name), cause)
}

// Lookup errors

func ErrNotFound(kind, label string) *AppError {
	return NewAppError(ErrCodeNotFound, fmt.Sprintf("%s not found", kind), fmt.Sprintf("Label: %s", label), nil)
}

func ErrAlreadyExists(kind, label string) *AppError {
	return NewAppError(ErrCodeAlreadyExists, fmt.Sprintf("%s already exists", kind), fmt.Sprintf("Label: %s", label), nil)
}

// Validation errors

func ErrInvalidArgument(details string) *AppError {
	return NewAppError(ErrCodeInvalidArgument, "Invalid argument", details, nil)
}

func ErrConfigurationError(config string, cause error) *AppError {
	return NewAppError(ErrCodeConfiguration, "Configuration error", fmt.Sprintf("Config: %s", config), cause)
}

// IsStorageError reports whether err is a storage failure of any kind
func IsStorageError(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	switch appErr.Code {
	case ErrCodeStorageOpen, ErrCodeStorageAppend, ErrCodeStorageDelete,
		ErrCodeStorageRead, ErrCodeStorageDestroyed, ErrCodeStorageClosed:
		return true
	}
	return false
}

// IsNotFound reports whether err is a failed lookup
func IsNotFound(err error) bool {
	return HasCode(err, ErrCodeNotFound)
}

// HasCode reports whether err carries the given code
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetHTTPStatusCode maps an error to an HTTP status code
func GetHTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch {
		case appErr.Code == ErrCodeNotFound:
			return 404
		case appErr.Code == ErrCodeAlreadyExists:
			return 409
		case appErr.Code == ErrCodeInvalidArgument:
			return 400
		case appErr.Code == ErrCodeStorageDestroyed:
			return 410 // Gone
		case IsStorageError(appErr):
			return 503 // Service Unavailable
		}
	}
	return 500
}

// ErrorResponse is the error payload of API responses
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *AppError `json:"error"`
	TraceID string    `json:"trace_id,omitempty"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(err *AppError, traceID string) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		Error:   err,
		TraceID: traceID,
	}
}
