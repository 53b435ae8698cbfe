package pkg

import (
	"errors"
	"fmt"
	"net/http"
)

// Application errors. Every service failure surfaces as one of these so
// handlers can map it to a status code without inspecting strings.
var (
	// Authentication / authorization
	ErrInvalidToken = NewAppError("INVALID_TOKEN", "Invalid or expired token", http.StatusUnauthorized)
	ErrForbidden    = NewAppError("FORBIDDEN", "Access denied", http.StatusForbidden)

	// User errors
	ErrUserNotFound      = NewAppError("USER_NOT_FOUND", "User not found", http.StatusNotFound)
	ErrEmailAlreadyTaken = NewAppError("EMAIL_ALREADY_TAKEN", "Email address already taken", http.StatusConflict)

	// Folder errors
	ErrFolderNotFound      = NewAppError("FOLDER_NOT_FOUND", "Folder not found", http.StatusNotFound)
	ErrFolderAlreadyExists = NewAppError("FOLDER_ALREADY_EXISTS", "A folder with this name already exists in this location", http.StatusConflict)
	ErrInvalidFolderMove   = NewAppError("INVALID_FOLDER_MOVE", "Cannot move folder into itself or its descendants", http.StatusBadRequest)
	ErrFolderTooDeep       = NewAppError("FOLDER_TOO_DEEP", "Maximum folder depth exceeded", http.StatusBadRequest)

	// File errors
	ErrFileNotFound     = NewAppError("FILE_NOT_FOUND", "File not found", http.StatusNotFound)
	ErrFileTooLarge     = NewAppError("FILE_TOO_LARGE", "File size exceeds limit", http.StatusRequestEntityTooLarge)
	ErrFileUploadFailed = NewAppError("FILE_UPLOAD_FAILED", "File upload failed", http.StatusInternalServerError)

	// Sharing errors
	ErrShareNotFound         = NewAppError("SHARE_NOT_FOUND", "Share not found", http.StatusNotFound)
	ErrShareAlreadyExists    = NewAppError("SHARE_ALREADY_EXISTS", "Resource is already shared with this user", http.StatusConflict)
	ErrSelfShare             = NewAppError("SELF_SHARE", "Cannot share with yourself", http.StatusConflict)
	ErrShareAlreadyResponded = NewAppError("SHARE_ALREADY_RESPONDED", "Share request has already been responded to", http.StatusConflict)
	ErrShareExpired          = NewAppError("SHARE_EXPIRED", "Share has expired", http.StatusGone)
	ErrSharePasswordRequired = NewAppError("SHARE_PASSWORD_REQUIRED", "Share password required", http.StatusUnauthorized)
	ErrInvalidSharePassword  = NewAppError("INVALID_SHARE_PASSWORD", "Invalid share password", http.StatusUnauthorized)

	// Verification errors
	ErrInvalidVerificationCode = NewAppError("INVALID_VERIFICATION_CODE", "Verification code is invalid or expired", http.StatusBadRequest)
	ErrEmailAlreadyVerified    = NewAppError("EMAIL_ALREADY_VERIFIED", "Email address is already verified", http.StatusConflict)
	ErrEmailSendFailed         = NewAppError("EMAIL_SEND_FAILED", "Failed to send email", http.StatusInternalServerError)

	// Storage errors
	ErrStorageProviderError = NewAppError("STORAGE_PROVIDER_ERROR", "Storage provider error", http.StatusInternalServerError)

	// Validation errors
	ErrValidationFailed = NewAppError("VALIDATION_FAILED", "Validation failed", http.StatusBadRequest)
	ErrInvalidInput     = NewAppError("INVALID_INPUT", "Invalid input data", http.StatusBadRequest)

	// Rate limiting
	ErrRateLimitExceeded = NewAppError("RATE_LIMIT_EXCEEDED", "Rate limit exceeded", http.StatusTooManyRequests)

	// System errors
	ErrInternalServer = NewAppError("INTERNAL_SERVER_ERROR", "Internal server error", http.StatusInternalServerError)
	ErrDatabaseError  = NewAppError("DATABASE_ERROR", "Database error", http.StatusInternalServerError)
)

// AppError represents an application-specific error
type AppError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"status_code"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %s)", e.Code, e.Message, e.Cause.Error())
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is lets errors.Is match two AppErrors by code, so sentinel comparisons
// survive WithDetails/WithCause copies.
func (e *AppError) Is(target error) bool {
	var appErr *AppError
	if errors.As(target, &appErr) {
		return e.Code == appErr.Code
	}
	return false
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails returns a copy of the error carrying extra details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

// WithCause returns a copy of the error wrapping an underlying cause
func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

// WithMessage returns a copy of the error with a more specific message
func (e *AppError) WithMessage(message string) *AppError {
	clone := *e
	clone.Message = message
	return &clone
}

// NewAppError creates a new application error
func NewAppError(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// ValidationError represents a single field validation failure
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", ve[0].Message)
}

// IsAppError checks if error is an AppError
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
