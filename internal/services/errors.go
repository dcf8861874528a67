package services

import (
	"errors"
	"fmt"

	"gatehouse/internal/constants"
)

// ServiceError represents a service-level error with an error code
type ServiceError struct {
	Code    string
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new service error
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{Code: code, Message: message}
}

// WrapServiceError wraps an existing error with a service error
func WrapServiceError(code, message string, err error) *ServiceError {
	return &ServiceError{Code: code, Message: message, Err: err}
}

// IsServiceError checks if an error is a ServiceError and returns its code
func IsServiceError(err error) (string, bool) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Code, true
	}
	return "", false
}

// Pre-defined service errors for common cases
var (
	// Auth errors
	ErrAuthRequired           = NewServiceError(constants.ErrCodeAuthRequired, "authentication required")
	ErrAuthInvalidCredentials = NewServiceError(constants.ErrCodeAuthInvalidCredentials, "invalid credentials")
	ErrAuthForbidden          = NewServiceError(constants.ErrCodeAuthForbidden, "access denied")
	ErrAuthUserNotFound       = NewServiceError(constants.ErrCodeAuthUserNotFound, "user not found")
	ErrAuthUserExists         = NewServiceError(constants.ErrCodeAuthUserExists, "user already exists")
	ErrAuthPasswordTooWeak    = NewServiceError(constants.ErrCodeAuthPasswordTooWeak, "password does not meet requirements")

	// Upload errors
	ErrFileTooLarge    = NewServiceError(constants.ErrCodeFileTooLarge, "file exceeds maximum size")
	ErrUnsupportedType = NewServiceError(constants.ErrCodeUnsupportedType, "file type not allowed")
	ErrInvalidFilename = NewServiceError(constants.ErrCodeInvalidFilename, "invalid filename")
	ErrFileNotFound    = NewServiceError(constants.ErrCodeFileNotFound, "file not found")
	ErrInvalidKey      = NewServiceError(constants.ErrCodeInvalidKey, "invalid storage key")

	// Request errors
	ErrInvalidRequest = NewServiceError(constants.ErrCodeInvalidRequest, "invalid request")

	// Internal errors
	ErrInternal = NewServiceError(constants.ErrCodeInternalError, "internal server error")
)

// Wrap internal errors
func WrapInternalError(err error) *ServiceError {
	return WrapServiceError(constants.ErrCodeInternalError, "internal error", err)
}

func WrapBackendError(err error) *ServiceError {
	return WrapServiceError(constants.ErrCodeBackendFailure, "storage backend failure", err)
}
