// Package errors provides standardized error handling for the resolution pipeline.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Input errors: malformed or empty questions/entities. Normalized to
	// safe defaults at the call site; these codes only appear in logs.
	ErrCodeEmptyQuestion   ErrorCode = "EMPTY_QUESTION"
	ErrCodeInvalidEntities ErrorCode = "INVALID_ENTITIES"

	// Source errors: a knowledge source or the completion service failed.
	ErrCodeSourceQueryFailed  ErrorCode = "SOURCE_QUERY_FAILED"
	ErrCodeSourceTimeout      ErrorCode = "SOURCE_TIMEOUT"
	ErrCodeCompletionFailed   ErrorCode = "COMPLETION_FAILED"
	ErrCodeCompletionTimeout  ErrorCode = "COMPLETION_TIMEOUT"
	ErrCodeSearchQueryFailed  ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeIndexNotFound      ErrorCode = "INDEX_NOT_FOUND"

	// Data errors: tabular reference data failed validation or loading.
	ErrCodeDatasetLoadFailed ErrorCode = "DATASET_LOAD_FAILED"
	ErrCodeDatasetInvalid    ErrorCode = "DATASET_INVALID"
	ErrCodeNoPerfData        ErrorCode = "NO_PERF_DATA"

	// State errors: the session persistence layer misbehaved.
	ErrCodeSessionStoreUnavailable ErrorCode = "SESSION_STORE_UNAVAILABLE"
	ErrCodeSessionDecodeFailed     ErrorCode = "SESSION_DECODE_FAILED"

	// Startup errors: the only genuinely fatal category.
	ErrCodeInvalidConfiguration ErrorCode = "INVALID_CONFIGURATION"
	ErrCodeRegistryInvalid      ErrorCode = "REGISTRY_INVALID"
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

// NewSourceQueryFailedError creates a retryable source error.
func NewSourceQueryFailedError(sourceID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSourceQueryFailed,
		Message:   "Knowledge source query failed",
		Details:   fmt.Sprintf("source: %s, error: %s", sourceID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSourceTimeoutError creates a retryable per-source timeout error.
func NewSourceTimeoutError(sourceID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSourceTimeout,
		Message:   "Knowledge source timed out",
		Details:   fmt.Sprintf("source: %s", sourceID),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCompletionFailedError creates a retryable completion-service error.
func NewCompletionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCompletionFailed,
		Message:   "Completion service call failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatasetLoadFailedError creates a retryable dataset load error.
func NewDatasetLoadFailedError(line string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatasetLoadFailed,
		Message:   "Performance dataset load failed",
		Details:   fmt.Sprintf("line: %s, error: %s", line, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatasetInvalidError creates a non-retryable dataset validation error.
// The lookup layer reports "no data" instead of surfacing this to callers.
func NewDatasetInvalidError(line, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatasetInvalid,
		Message:   "Performance dataset failed validation",
		Details:   fmt.Sprintf("line: %s, %s", line, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionStoreUnavailableError creates a retryable state error. The
// ContextStore treats the session as fresh rather than blocking the request.
func NewSessionStoreUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreUnavailable,
		Message:   "Session persistence layer unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRegistryInvalidError creates a fatal startup error for a bad intent
// registry file.
func NewRegistryInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRegistryInvalid,
		Message:   "Intent registry failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidConfigurationError creates a fatal startup error.
func NewInvalidConfigurationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidConfiguration,
		Message:   "Invalid configuration",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Categories
// ==========================

// GetErrorCategory maps an error code to its taxonomy bucket (input,
// source, data, state, startup).
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeEmptyQuestion, ErrCodeInvalidEntities:
		return "input"
	case ErrCodeSourceQueryFailed, ErrCodeSourceTimeout,
		ErrCodeCompletionFailed, ErrCodeCompletionTimeout,
		ErrCodeSearchQueryFailed, ErrCodeIndexNotFound:
		return "source"
	case ErrCodeDatasetLoadFailed, ErrCodeDatasetInvalid, ErrCodeNoPerfData:
		return "data"
	case ErrCodeSessionStoreUnavailable, ErrCodeSessionDecodeFailed:
		return "state"
	case ErrCodeInvalidConfiguration, ErrCodeRegistryInvalid:
		return "startup"
	default:
		return "unknown"
	}
}
