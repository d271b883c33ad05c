package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("analyze: %w", NewConfigurationError("unknown category"))

	assert.Equal(t, ErrCodeConfiguration, CodeOf(wrapped))
	assert.True(t, IsCode(wrapped, ErrCodeConfiguration))
	assert.Equal(t, ErrCodeInternal, CodeOf(stderrors.New("boom")))
	assert.False(t, IsCode(nil, ErrCodeInternal))
}

func TestNormalize(t *testing.T) {
	original := NewTimeoutError("assessment", stderrors.New("deadline exceeded"))
	assert.Same(t, original, Normalize(fmt.Errorf("wrapped: %w", original)))

	plain := Normalize(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "boom", plain.Details)
}

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantCode    string
		wantRetries int
	}{
		{
			name:     "configuration",
			err:      NewConfigurationError("duplicate category"),
			wantCode: "ASSESSMENT_CONFIGURATION_ERROR",
		},
		{
			name:     "invalid input",
			err:      NewInvalidInputError("blueprint is required"),
			wantCode: "ASSESSMENT_INVALID_INPUT",
		},
		{
			name:        "external service",
			err:         NewExternalServiceError("zeebe", stderrors.New("unavailable")),
			wantCode:    "EXTERNAL_SERVICE_ERROR",
			wantRetries: 3,
		},
		{
			name:        "timeout",
			err:         NewTimeoutError("assessment", stderrors.New("deadline exceeded")),
			wantCode:    "TIMEOUT_ERROR",
			wantRetries: 2,
		},
		{
			name:     "unmapped code passes through",
			err:      NewResourceNotFoundError("zeebe", "process"),
			wantCode: "RESOURCE_NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmnErr := ConvertToBPMNError(tt.err.WithMetadata("jobId", "job-a"))
			assert.Equal(t, tt.wantCode, bpmnErr.Code)
			assert.Equal(t, tt.wantRetries, bpmnErr.Retries)
			assert.Equal(t, tt.wantRetries > 0, IsRetryableErrorCode(tt.err.Code))

			vars := bpmnErr.ToErrorVariables()
			assert.Equal(t, tt.wantCode, vars["errorCode"])
			assert.Equal(t, string(tt.err.Code), vars["originalErrorCode"])
			assert.Equal(t, "job-a", vars["jobId"])
		})
	}
}

func TestConvertToBPMNError_NonRetryableGetsNoRetries(t *testing.T) {
	err := NewCacheUnavailableError(stderrors.New("refused"))
	err.Retryable = false

	bpmnErr := ConvertToBPMNError(err)
	require.NotNil(t, bpmnErr)
	assert.Zero(t, bpmnErr.Retries)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "CONFIGURATION", GetErrorCategory(ErrCodeConfiguration))
	assert.Equal(t, "GENERATION", GetErrorCategory(ErrCodePoolExhausted))
	assert.Equal(t, "GENERATION", GetErrorCategory(ErrCodeGenerationFailed))
	assert.Equal(t, "CACHE", GetErrorCategory(ErrCodeCacheUnavailable))
	assert.Equal(t, "INFRASTRUCTURE", GetErrorCategory(ErrCodeTimeout))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeParse))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestStandardError_Error(t *testing.T) {
	assert.Equal(t,
		"StandardError[INVALID_INPUT]: Invalid input: blueprint is required",
		NewInvalidInputError("blueprint is required").Error())
	assert.Equal(t,
		"StandardError[INVALID_INPUT]: Invalid input",
		NewInvalidInputError("").Error())
}
