package constants

// API Error Codes
const (
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeInternalError  = "INTERNAL_ERROR"

	// Upload pipeline
	ErrCodeFileTooLarge    = "FILE_TOO_LARGE"
	ErrCodeUnsupportedType = "UNSUPPORTED_TYPE"
	ErrCodeInvalidFilename = "INVALID_FILENAME"

	// Storage backends
	ErrCodeBackendFailure = "BACKEND_FAILURE"
	ErrCodeFileNotFound   = "FILE_NOT_FOUND"
	ErrCodeInvalidKey     = "INVALID_KEY"
)
