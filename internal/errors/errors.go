// Package errors carries the failure vocabulary shared by the CLI and
// the local staging server. AppError pairs a stable code with the HTTP
// status a handler should answer with.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is an error with a stable code and an HTTP status attached.
type AppError struct {
	// Code identifies the failure class for errors.Is comparisons
	Code string
	// Message is shown to the user as-is
	Message string
	// StatusCode is what an HTTP handler answers with
	StatusCode int
	// Cause keeps the underlying error reachable for unwrapping
	Cause error
}

// Error renders the message, appending the cause when one exists.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches AppErrors by code alone, so two errors of the same class
// compare equal no matter how their messages differ. Code-less errors
// never match.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Code != "" && e.Code == t.Code
	}
	return false
}

// Predefined error codes.
const (
	// Client error codes.
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeExportBusy        = "EXPORT_BUSY"
	ErrCodeExportFailed      = "EXPORT_FAILED"
	ErrCodeFormatUnsupported = "FORMAT_UNSUPPORTED"
	ErrCodeAppNotFound       = "APP_NOT_FOUND"

	// Server error codes.
	ErrCodeInternalError       = "INTERNAL_ERROR"
	ErrCodeFetchOriginalFailed = "FETCH_ORIGINAL_FAILED"
	ErrCodeStagingFailed       = "STAGING_FAILED"
	ErrCodeLaunchFailed        = "LAUNCH_FAILED"
)

// NewClientError builds a 4xx AppError and panics on any other status.
func NewClientError(statusCode int, code, message string, cause error) *AppError {
	if statusCode < 400 || statusCode >= 500 {
		panic(fmt.Sprintf("NewClientError called with non-client status code: %d", statusCode))
	}
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// NewServerError builds a 5xx AppError and panics on any other status.
func NewServerError(statusCode int, code, message string, cause error) *AppError {
	if statusCode < 500 || statusCode >= 600 {
		panic(fmt.Sprintf("NewServerError called with non-server status code: %d", statusCode))
	}
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// Shorthand constructors for the failures the handlers raise.

// ErrBadRequest reports a malformed request (400).
func ErrBadRequest(message string, cause error) *AppError {
	return NewClientError(http.StatusBadRequest, ErrCodeInvalidRequest, message, cause)
}

// ErrNotFound reports a missing resource (404).
func ErrNotFound(message string, cause error) *AppError {
	return NewClientError(http.StatusNotFound, ErrCodeNotFound, message, cause)
}

// ErrConflict reports a request that clashes with current state (409).
func ErrConflict(message string, cause error) *AppError {
	return NewClientError(http.StatusConflict, ErrCodeConflict, message, cause)
}

// ErrExportBusy creates an error for a second export started while one is active (409).
func ErrExportBusy(cause error) *AppError {
	return NewClientError(http.StatusConflict, ErrCodeExportBusy, "An export is already in progress", cause)
}

// ErrExportFailed creates an error for a model conversion failure (422).
// Terminal for the request: the user dismisses the message and retries with a fresh request.
func ErrExportFailed(message string, cause error) *AppError {
	return NewClientError(http.StatusUnprocessableEntity, ErrCodeExportFailed, message, cause)
}

// ErrFormatUnsupported creates an error for an unknown export format (400).
func ErrFormatUnsupported(format string) *AppError {
	return NewClientError(http.StatusBadRequest, ErrCodeFormatUnsupported,
		fmt.Sprintf("Unsupported export format: %s", format), nil)
}

// ErrAppNotFound creates an error for a target application missing from the catalog (404).
func ErrAppNotFound(appID string) *AppError {
	return NewClientError(http.StatusNotFound, ErrCodeAppNotFound,
		fmt.Sprintf("Unknown target application: %s", appID), nil)
}

// ErrFetchOriginalFailed creates an error for a failed passthrough fetch (502).
// Terminal for the request, like ErrExportFailed.
func ErrFetchOriginalFailed(message string, cause error) *AppError {
	return NewServerError(http.StatusBadGateway, ErrCodeFetchOriginalFailed, message, cause)
}

// ErrStagingFailed creates an error for a failed or malformed staging upload (502).
// Recovered locally: the coordinator falls back to a direct download of the blob.
func ErrStagingFailed(message string, cause error) *AppError {
	return NewServerError(http.StatusBadGateway, ErrCodeStagingFailed, message, cause)
}

// ErrLaunchFailed creates an error for a heuristic-detected handoff rejection (503).
// Recovered locally: the coordinator falls back to downloading the staged URL.
func ErrLaunchFailed(message string, cause error) *AppError {
	return NewServerError(http.StatusServiceUnavailable, ErrCodeLaunchFailed, message, cause)
}

// ErrInternalError reports an unexpected server-side failure (500).
func ErrInternalError(message string, cause error) *AppError {
	return NewServerError(http.StatusInternalServerError, ErrCodeInternalError, message, cause)
}

// GetStatusCode pulls the HTTP status out of err, unwrapping as needed.
// Anything that is not an AppError counts as a 500.
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// GetErrorCode pulls the code out of err; non-AppErrors have none.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetErrorMessage prefers the AppError message over the raw error text.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// GetErrorDetails digs out the cause text for verbose output, falling
// back to the message when there is no separate cause.
func GetErrorDetails(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Cause != nil {
			return appErr.Cause.Error()
		}
		return appErr.Message
	}
	return err.Error()
}
