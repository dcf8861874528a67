package server

import (
	"encoding/json"
	"net/http"

	"gatehouse/internal/constants"
	"gatehouse/internal/services"
)

// APIError represents a standard error response
type APIError struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes a standard error response
func WriteError(w http.ResponseWriter, status int, message string, code string) {
	WriteJSON(w, status, APIError{
		Success: false,
		Message: message,
		Code:    code,
	})
}

// WriteSuccess writes a simple success response
func WriteSuccess(w http.ResponseWriter, data interface{}) {
	WriteJSON(w, http.StatusOK, data)
}

// handleServiceError maps service errors to HTTP responses.
// It extracts the error code from ServiceError and maps it to the appropriate HTTP status.
func (s *Server) handleServiceError(w http.ResponseWriter, err error) {
	code, isServiceErr := services.IsServiceError(err)
	if !isServiceErr {
		WriteError(w, http.StatusInternalServerError, err.Error(), constants.ErrCodeInternalError)
		return
	}

	// Map error codes to HTTP status codes
	status := http.StatusInternalServerError
	switch code {
	case constants.ErrCodeAuthRequired, constants.ErrCodeAuthInvalidCredentials:
		status = http.StatusUnauthorized
	case constants.ErrCodeAuthForbidden:
		status = http.StatusForbidden
	case constants.ErrCodeAuthUserNotFound, constants.ErrCodeFileNotFound:
		status = http.StatusNotFound
	case constants.ErrCodeAuthUserExists:
		status = http.StatusConflict
	// Upload policy violations are client errors, all surfaced as 400
	case constants.ErrCodeFileTooLarge, constants.ErrCodeUnsupportedType,
		constants.ErrCodeInvalidRequest, constants.ErrCodeInvalidFilename,
		constants.ErrCodeInvalidKey, constants.ErrCodeAuthPasswordTooWeak:
		status = http.StatusBadRequest
	case constants.ErrCodeBackendFailure, constants.ErrCodeInternalError:
		status = http.StatusInternalServerError
	}

	WriteError(w, status, err.Error(), code)
}
