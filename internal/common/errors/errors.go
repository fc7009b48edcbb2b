// Package errors provides the standardized error taxonomy for the pipeline.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidatorUnavailable ErrorCode = "VALIDATOR_UNAVAILABLE"
	ErrCodeGenerationFailed     ErrorCode = "GENERATION_FAILED"
	ErrCodeRetriesExhausted     ErrorCode = "RETRIES_EXHAUSTED"

	ErrCodePersistenceFailed        ErrorCode = "PERSISTENCE_FAILED"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeCacheStoreFailed         ErrorCode = "CACHE_STORE_FAILED"

	ErrCodeInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrCodeInvalidContentType ErrorCode = "INVALID_CONTENT_TYPE"
	ErrCodeConfigInvalid      ErrorCode = "CONFIG_INVALID"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidatorUnavailableError marks one signal source as down. The pipeline
// continues with the remaining validators.
func NewValidatorUnavailableError(validator string, err error) *StandardError {
	details := "not configured"
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeValidatorUnavailable,
		Message:   fmt.Sprintf("Validator '%s' unavailable", validator),
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationFailedError wraps an invoker failure. The attempt is discarded
// and the loop continues if attempts remain.
func NewGenerationFailedError(modelID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationFailed,
		Message:   "Generation invoker error",
		Details:   fmt.Sprintf("model: %s, error: %s", modelID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRetriesExhaustedError is returned when every attempt failed and no
// usable best-effort result exists.
func NewRetriesExhaustedError(attempts int, bestScore float64) *StandardError {
	return &StandardError{
		Code:      ErrCodeRetriesExhausted,
		Message:   "All generation attempts failed quality validation",
		Details:   fmt.Sprintf("attempts: %d, bestScore: %.3f", attempts, bestScore),
		Retryable: false,
		Metadata: map[string]interface{}{
			"attempts":  attempts,
			"bestScore": bestScore,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewPersistenceFailedError wraps a durable store failure. Logged, never
// propagated to the caller.
func NewPersistenceFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePersistenceFailed,
		Message:   "Durable store operation failed",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheStoreFailedError wraps a cache tier failure. The in-memory tier
// stays authoritative for the current process lifetime.
func NewCacheStoreFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheStoreFailed,
		Message:   "Cache durable tier operation failed",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInputError creates a non-retryable request validation error.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidContentTypeError creates a non-retryable content type error.
func NewInvalidContentTypeError(contentType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidContentType,
		Message:   "Unsupported content type",
		Details:   fmt.Sprintf("contentType: %s", contentType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigInvalidError creates a non-retryable configuration error.
func NewConfigInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigInvalid,
		Message:   "Invalid pipeline configuration",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// Normalize ensures any error is a StandardError for uniform logging.
func Normalize(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeValidatorUnavailable,
		ErrCodeGenerationFailed,
		ErrCodePersistenceFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeCacheStoreFailed:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATOR"):
		return "VALIDATION"
	case strings.Contains(codeStr, "GENERATION") || strings.Contains(codeStr, "RETRIES"):
		return "GENERATION"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "PERSISTENCE") || strings.Contains(codeStr, "CACHE"):
		return "PERSISTENCE"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "CONFIG"):
		return "INPUT"
	default:
		return "OTHER"
	}
}
