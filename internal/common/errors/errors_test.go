package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// 1. Classification
// ==========================

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "rate limited is transient", err: NewRateLimitedError("extraction"), want: true},
		{name: "overloaded is transient", err: NewServiceOverloadedError("extraction", 503), want: true},
		{name: "timeout is transient", err: NewServiceTimeoutError("extraction"), want: true},
		{name: "catalog unavailable is transient", err: NewCatalogUnavailableError(stderrors.New("conn refused")), want: true},
		{name: "malformed response is fatal", err: NewExtractionMalformedError("bad json"), want: false},
		{name: "empty extraction is fatal", err: NewExtractionEmptyError("RFP"), want: false},
		{name: "empty catalog is fatal", err: NewCatalogEmptyError(), want: false},
		{name: "retry exhausted is fatal", err: NewRetryExhaustedError(3, nil), want: false},
		{name: "foreign error is fatal", err: stderrors.New("plain"), want: false},
		{name: "nil is fatal", err: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransient_SurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("calling extraction: %w", NewRateLimitedError("extraction"))
	assert.True(t, IsTransient(wrapped))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeCatalogEmpty, CodeOf(NewCatalogEmptyError()))
	assert.Equal(t, ErrCodePipelineAborted, CodeOf(fmt.Errorf("run: %w", NewPipelineAbortedError("analysis", stderrors.New("boom")))))
	assert.Equal(t, ErrorCode(""), CodeOf(stderrors.New("plain")))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
}

// ==========================
// 2. Construction
// ==========================

func TestPipelineAbortedCarriesPhase(t *testing.T) {
	err := NewPipelineAbortedError("extraction", stderrors.New("no requirements"))

	require.NotNil(t, err.Metadata)
	assert.Equal(t, "extraction", err.Metadata["phase"])
	assert.Contains(t, err.Error(), "PIPELINE_ABORTED")
	assert.Contains(t, err.Message, "extraction")
}

func TestRetryExhaustedKeepsLastError(t *testing.T) {
	err := NewRetryExhaustedError(4, NewServiceTimeoutError("extraction"))

	assert.Contains(t, err.Message, "4 attempts")
	assert.Contains(t, err.Details, "SERVICE_TIMEOUT")
}

func TestErrorStringIncludesCode(t *testing.T) {
	err := NewCatalogUnavailableError(stderrors.New("dial tcp: refused"))
	assert.Equal(t, "StandardError[CATALOG_UNAVAILABLE]: Catalog store unavailable", err.Error())
}

// ==========================
// 3. Categories
// ==========================

func TestGetErrorCategory(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{code: ErrCodeExtractionFailed, want: "EXTRACTION"},
		{code: ErrCodeExtractionMalformed, want: "EXTRACTION"},
		{code: ErrCodeCatalogUnavailable, want: "CATALOG"},
		{code: ErrCodeServiceRateLimited, want: "RESILIENCE"},
		{code: ErrCodeRetryExhausted, want: "RESILIENCE"},
		{code: ErrCodePricingFailed, want: "PRICING"},
		{code: ErrCodePipelineAborted, want: "PIPELINE"},
		{code: ErrorCode("SOMETHING_ELSE"), want: "OTHER"},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, GetErrorCategory(tt.code))
		})
	}
}
