package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vacancy-workers/internal/applications"
	"vacancy-workers/internal/vacancy"
	"vacancy-workers/internal/vacancy/apollo"
)

func TestFromServiceError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		code      ErrorCode
		retryable bool
	}{
		{
			name:      "compliance violation",
			err:       &applications.ServiceError{Kind: applications.KindCompliance, Err: &applications.ComplianceViolation{Kind: applications.ViolationIncompleteHousehold}},
			code:      ErrCodeComplianceViolation,
			retryable: false,
		},
		{
			name: "not found",
			err:  &applications.ServiceError{Kind: applications.KindRepository, Err: fmt.Errorf("%w: app-1", applications.ErrNotFound)},
			code: ErrCodeApplicationNotFound,
		},
		{
			name: "conflict",
			err:  applications.ErrConflict,
			code: ErrCodeDuplicateApplication,
		},
		{
			name:      "unavailable",
			err:       applications.Unavailable("postgres down", stderrors.New("dial")),
			code:      ErrCodeRepositoryUnavailable,
			retryable: true,
		},
		{
			name:      "alert transport",
			err:       &applications.ServiceError{Kind: applications.KindAlert, Err: applications.Transport("sns", nil)},
			code:      ErrCodeAlertTransportFailed,
			retryable: true,
		},
		{
			name: "task not found",
			err:  &vacancy.TaskNotFoundError{Key: "nope"},
			code: ErrCodeTaskNotFound,
		},
		{
			name: "import",
			err:  &apollo.ImportError{Op: apollo.OpParse, Err: stderrors.New("bad quote")},
			code: ErrCodeImportFailed,
		},
		{
			name: "unknown",
			err:  stderrors.New("boom"),
			code: ErrCodeInternal,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdErr := FromServiceError(tt.err)
			require.NotNil(t, stdErr)
			assert.Equal(t, tt.code, stdErr.Code)
			assert.Equal(t, tt.retryable, stdErr.Retryable)
			assert.False(t, stdErr.Timestamp.IsZero())
		})
	}

	assert.Nil(t, FromServiceError(nil))

	original := NewInvalidPayloadError("missing field")
	assert.Same(t, original, FromServiceError(fmt.Errorf("wrapped: %w", original)))
}

func TestConvertToBPMNError(t *testing.T) {
	bpmn := ConvertToBPMNError(NewAlertTransportFailedError("applicant_approved", stderrors.New("throttled")))

	assert.Equal(t, "ALERT_FAILED", bpmn.Code)
	assert.Equal(t, 2, bpmn.Retries)
	assert.True(t, bpmn.Retryable)

	vars := bpmn.ToErrorVariables()
	assert.Equal(t, "ALERT_FAILED", vars["errorCode"])
	assert.Equal(t, "ALERT_TRANSPORT_FAILED", vars["originalErrorCode"])
	assert.Equal(t, "template: applicant_approved, error: throttled", vars["errorDetails"])

	business := ConvertToBPMNError(NewComplianceViolationError("household composition incomplete"))
	assert.Equal(t, "COMPLIANCE_VIOLATION", business.Code)
	assert.Zero(t, business.Retries)

	unmapped := ConvertToBPMNError(&StandardError{Code: "SOMETHING_ELSE", Retryable: true})
	assert.Equal(t, "SOMETHING_ELSE", unmapped.Code)
	assert.Zero(t, unmapped.Retries)
}

func TestRetryDecisions(t *testing.T) {
	retryable := NewRepositoryUnavailableError(stderrors.New("timeout"))
	assert.True(t, ShouldRetry(retryable, 3))
	assert.False(t, ShouldRetry(retryable, 0))
	assert.False(t, ShouldRetry(NewTaskNotFoundError("x"), 3))

	assert.Equal(t, int32(0), RetriesToUse(1, 3))
	assert.Equal(t, int32(2), RetriesToUse(3, 3))
	assert.Equal(t, int32(3), RetriesToUse(5, 3))
	assert.Equal(t, int32(0), RetriesToUse(0, 3))
	assert.Equal(t, int32(0), RetriesToUse(4, 0))

	assert.True(t, IsRetryableErrorCode(ErrCodeDatabaseConnectionFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeInvalidPayload))
}

func TestRetriesRunOut(t *testing.T) {
	stdErr := NewRepositoryUnavailableError(stderrors.New("timeout"))
	maxRetries := GetRetryCount(stdErr.Code)

	remaining := int32(3)
	attempts := 0
	for ShouldRetry(stdErr, remaining) {
		remaining = RetriesToUse(remaining, maxRetries)
		attempts++
		require.LessOrEqual(t, attempts, 3)
	}

	assert.Equal(t, int32(0), remaining)
	assert.Equal(t, 3, attempts)
}

func TestGetErrorCategory(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrCodeComplianceViolation:      "COMPLIANCE",
		ErrCodeApplicationNotFound:      "APPLICATION",
		ErrCodeDuplicateApplication:     "APPLICATION",
		ErrCodeRepositoryUnavailable:    "DATABASE",
		ErrCodeDatabaseConnectionFailed: "DATABASE",
		ErrCodeIndexFailed:              "SEARCH",
		ErrCodeAlertTransportFailed:     "NOTIFICATION",
		ErrCodeTaskNotFound:             "WORKFLOW",
		ErrCodeImportFailed:             "WORKFLOW",
		ErrCodeInvalidPayload:           "VALIDATION",
		ErrCodeInternal:                 "OTHER",
	}
	for code, want := range tests {
		assert.Equal(t, want, GetErrorCategory(code), string(code))
	}
}

func TestStandardErrorMessage(t *testing.T) {
	err := NewApplicationNotFoundError("app-000002")
	assert.Equal(t, "StandardError[APPLICATION_NOT_FOUND]: Application not found", err.Error())
	assert.Equal(t, "applicationId: app-000002", err.Details)
}
