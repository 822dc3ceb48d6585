// Package errors provides standardized error handling for the proposal pipeline.
package errors

import (
	"errors"
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
	ErrCodeExtractionFailed    ErrorCode = "EXTRACTION_FAILED"
	ErrCodeExtractionTimeout   ErrorCode = "EXTRACTION_TIMEOUT"
	ErrCodeExtractionMalformed ErrorCode = "EXTRACTION_MALFORMED"
	ErrCodeExtractionEmpty     ErrorCode = "EXTRACTION_EMPTY"

	ErrCodeServiceRateLimited ErrorCode = "SERVICE_RATE_LIMITED"
	ErrCodeServiceOverloaded  ErrorCode = "SERVICE_OVERLOADED"
	ErrCodeServiceTimeout     ErrorCode = "SERVICE_TIMEOUT"
	ErrCodeRetryExhausted     ErrorCode = "RETRY_EXHAUSTED"

	ErrCodeCatalogUnavailable ErrorCode = "CATALOG_UNAVAILABLE"
	ErrCodeCatalogEmpty       ErrorCode = "CATALOG_EMPTY"

	ErrCodePricingFailed   ErrorCode = "PRICING_FAILED"
	ErrCodePipelineAborted ErrorCode = "PIPELINE_ABORTED"
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

// NewExtractionFailedError creates a retryable extraction service error.
func NewExtractionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionFailed,
		Message:   "Extraction service call failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewExtractionTimeoutError creates a retryable extraction timeout error.
func NewExtractionTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionTimeout,
		Message:   "Extraction service timeout",
		Details:   "call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewExtractionMalformedError creates a non-retryable schema violation error.
func NewExtractionMalformedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionMalformed,
		Message:   "Extraction response violates schema",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewExtractionEmptyError creates a non-retryable empty-result error.
func NewExtractionEmptyError(title string) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionEmpty,
		Message:   "Extraction returned zero requirements",
		Details:   fmt.Sprintf("request: %s", title),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateLimitedError creates a retryable rate-limit error.
func NewRateLimitedError(service string) *StandardError {
	return &StandardError{
		Code:      ErrCodeServiceRateLimited,
		Message:   fmt.Sprintf("Service '%s' rate limited the request", service),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewServiceOverloadedError creates a retryable overload error.
func NewServiceOverloadedError(service string, status int) *StandardError {
	return &StandardError{
		Code:      ErrCodeServiceOverloaded,
		Message:   fmt.Sprintf("Service '%s' overloaded", service),
		Details:   fmt.Sprintf("status: %d", status),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewServiceTimeoutError creates a retryable timeout error.
func NewServiceTimeoutError(service string) *StandardError {
	return &StandardError{
		Code:      ErrCodeServiceTimeout,
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRetryExhaustedError wraps the last error after the retry budget is spent.
func NewRetryExhaustedError(attempts int, last error) *StandardError {
	detail := ""
	if last != nil {
		detail = last.Error()
	}
	return &StandardError{
		Code:      ErrCodeRetryExhausted,
		Message:   fmt.Sprintf("Operation failed after %d attempts", attempts),
		Details:   detail,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogUnavailableError creates a retryable catalog store error.
func NewCatalogUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogUnavailable,
		Message:   "Catalog store unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogEmptyError creates a non-retryable empty-catalog error.
// Pricing cannot run without a catalog; matching degrades gracefully instead.
func NewCatalogEmptyError() *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogEmpty,
		Message:   "Catalog contains no items",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPricingFailedError creates a non-retryable pricing error.
func NewPricingFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodePricingFailed,
		Message:   "Bill-of-materials pricing failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPipelineAbortedError records which phase killed the run.
func NewPipelineAbortedError(phase string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePipelineAborted,
		Message:   fmt.Sprintf("Pipeline aborted during %s", phase),
		Details:   err.Error(),
		Retryable: false,
		Metadata:  map[string]interface{}{"phase": phase},
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Classification
// ==========================

// IsTransient reports whether an error should be retried by the resilience
// wrapper. StandardErrors carry the decision explicitly; anything else is fatal.
func IsTransient(err error) bool {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return false
}

// CodeOf extracts the error code, or empty for foreign errors.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "EXTRACTION"):
		return "EXTRACTION"
	case strings.Contains(codeStr, "CATALOG"):
		return "CATALOG"
	case strings.Contains(codeStr, "SERVICE") || strings.Contains(codeStr, "RETRY"):
		return "RESILIENCE"
	case strings.Contains(codeStr, "PRICING"):
		return "PRICING"
	case strings.Contains(codeStr, "PIPELINE"):
		return "PIPELINE"
	default:
		return "OTHER"
	}
}
