// Package errors provides standardized error handling for the discovery pipeline.
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
	// Request boundary
	ErrCodeConfigurationInvalid ErrorCode = "CONFIGURATION_INVALID"
	ErrCodeRequestInvalid       ErrorCode = "REQUEST_INVALID"

	// Template store (fatal at pipeline initialization and final counter flush)
	ErrCodeTemplateStoreUnavailable ErrorCode = "TEMPLATE_STORE_UNAVAILABLE"
	ErrCodeTemplateSeedFailed       ErrorCode = "TEMPLATE_SEED_FAILED"
	ErrCodeTemplateFlushFailed      ErrorCode = "TEMPLATE_FLUSH_FAILED"

	// AI enhancement (never fatal)
	ErrCodeEnhancementFailed  ErrorCode = "ENHANCEMENT_FAILED"
	ErrCodeEnhancementTimeout ErrorCode = "ENHANCEMENT_TIMEOUT"

	// Persistence
	ErrCodeQueryWriteFailed          ErrorCode = "QUERY_WRITE_FAILED"
	ErrCodePerformanceLogWriteFailed ErrorCode = "PERFORMANCE_LOG_WRITE_FAILED"
	ErrCodeContactIndexFailed        ErrorCode = "CONTACT_INDEX_FAILED"

	// Infrastructure
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeCacheUnavailable         ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeNotificationSendFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"
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
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewConfigurationError creates a non-retryable options/configuration error.
// Raised before the pipeline starts; the batch is rejected outright.
func NewConfigurationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigurationInvalid,
		Message:   "Invalid generation options",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRequestInvalidError creates a non-retryable request validation error.
func NewRequestInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequestInvalid,
		Message:   "Generation request failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateStoreError creates a retryable template store error.
// This is the one fatal error class inside the pipeline.
func NewTemplateStoreError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateStoreUnavailable,
		Message:   "Template store unreachable",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateSeedError creates a retryable seeding error.
func NewTemplateSeedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateSeedFailed,
		Message:   "Default template seeding failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateFlushError creates a retryable counter flush error.
func NewTemplateFlushError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateFlushFailed,
		Message:   "Template counter flush failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEnhancementError creates a non-fatal AI enhancement error.
// Recorded in the batch errors and the pipeline continues template-only.
func NewEnhancementError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEnhancementFailed,
		Message:   "AI query enhancement failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEnhancementTimeoutError creates a non-fatal enhancement timeout error.
func NewEnhancementTimeoutError(timeout time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeEnhancementTimeout,
		Message:   "AI query enhancement timed out",
		Details:   fmt.Sprintf("call exceeded %s timeout", timeout),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryWriteError creates a non-fatal per-query persistence error.
// The affected record is skipped; the batch continues.
func NewQueryWriteError(queryText string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryWriteFailed,
		Message:   "Generated query persistence failed",
		Details:   fmt.Sprintf("query: %q, error: %s", queryText, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPerformanceLogWriteError creates a log-only performance log error.
func NewPerformanceLogWriteError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePerformanceLogWriteFailed,
		Message:   "Performance log persistence failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewContactIndexError creates a retryable contact indexing error.
func NewContactIndexError(contactID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeContactIndexFailed,
		Message:   "Contact index write failed",
		Details:   fmt.Sprintf("contactId: %s, error: %s", contactID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a retryable cache error.
// Cache misses and cache outages are treated identically by callers.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Query cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Batch notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes (same as internal).
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeConfigurationInvalid:      "CONFIGURATION_INVALID",
	ErrCodeRequestInvalid:            "REQUEST_INVALID",
	ErrCodeTemplateStoreUnavailable:  "TEMPLATE_STORE_UNAVAILABLE",
	ErrCodeTemplateSeedFailed:        "TEMPLATE_SEED_FAILED",
	ErrCodeTemplateFlushFailed:       "TEMPLATE_FLUSH_FAILED",
	ErrCodeEnhancementFailed:         "ENHANCEMENT_FAILED",
	ErrCodeEnhancementTimeout:        "ENHANCEMENT_TIMEOUT",
	ErrCodeQueryWriteFailed:          "QUERY_WRITE_FAILED",
	ErrCodePerformanceLogWriteFailed: "PERFORMANCE_LOG_WRITE_FAILED",
	ErrCodeContactIndexFailed:        "CONTACT_INDEX_FAILED",
	ErrCodeDatabaseConnectionFailed:  "DATABASE_CONNECTION_FAILED",
	ErrCodeCacheUnavailable:          "CACHE_UNAVAILABLE",
	ErrCodeNotificationSendFailed:    "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count per error class.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeTemplateStoreUnavailable,
		ErrCodeTemplateSeedFailed,
		ErrCodeTemplateFlushFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryWriteFailed,
		ErrCodeContactIndexFailed,
		ErrCodeNotificationSendFailed:
		return 3 // Retryable technical errors

	case ErrCodePerformanceLogWriteFailed,
		ErrCodeCacheUnavailable:
		return 2 // Best-effort writes

	default:
		return 0 // Business / validation errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for the engine.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// IsFatal reports whether the error rejects the whole batch, as opposed to
// degrading it. Only configuration and template store failures are fatal.
func IsFatal(err error) bool {
	stdErr, ok := err.(*StandardError)
	if !ok {
		return true
	}
	switch stdErr.Code {
	case ErrCodeConfigurationInvalid,
		ErrCodeRequestInvalid,
		ErrCodeTemplateStoreUnavailable,
		ErrCodeTemplateSeedFailed,
		ErrCodeTemplateFlushFailed:
		return true
	}
	return false
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CONFIGURATION") || strings.Contains(codeStr, "REQUEST"):
		return "VALIDATION"
	case strings.Contains(codeStr, "TEMPLATE"):
		return "TEMPLATE_STORE"
	case strings.Contains(codeStr, "ENHANCEMENT"):
		return "AI"
	case strings.Contains(codeStr, "WRITE") || strings.Contains(codeStr, "INDEX") || strings.Contains(codeStr, "DATABASE"):
		return "PERSISTENCE"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}
