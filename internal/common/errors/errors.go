// internal/common/errors/errors.go

// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"vacancy-workers/internal/applications"
	"vacancy-workers/internal/vacancy"
	"vacancy-workers/internal/vacancy/apollo"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Applicant screening
	ErrCodeComplianceViolation   ErrorCode = "COMPLIANCE_VIOLATION"
	ErrCodeApplicationNotFound   ErrorCode = "APPLICATION_NOT_FOUND"
	ErrCodeDuplicateApplication  ErrorCode = "DUPLICATE_APPLICATION"
	ErrCodeRepositoryUnavailable ErrorCode = "REPOSITORY_UNAVAILABLE"
	ErrCodeAlertTransportFailed  ErrorCode = "ALERT_TRANSPORT_FAILED"

	// Vacancy workflow
	ErrCodeTaskNotFound ErrorCode = "TASK_NOT_FOUND"
	ErrCodeImportFailed ErrorCode = "IMPORT_FAILED"

	// Payloads and infrastructure
	ErrCodeInvalidPayload           ErrorCode = "INVALID_PAYLOAD"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeIndexFailed              ErrorCode = "INDEX_FAILED"
	ErrCodeInternal                 ErrorCode = "INTERNAL_ERROR"
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

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
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

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewComplianceViolationError creates a non-retryable intake rejection.
func NewComplianceViolationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeComplianceViolation,
		Message:   "Submission failed compliance screening",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewApplicationNotFoundError creates a non-retryable lookup error.
func NewApplicationNotFoundError(applicationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeApplicationNotFound,
		Message:   "Application not found",
		Details:   fmt.Sprintf("applicationId: %s", applicationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateApplicationError creates a non-retryable duplicate application error.
func NewDuplicateApplicationError(applicationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateApplication,
		Message:   "Application already exists",
		Details:   fmt.Sprintf("applicationId: %s", applicationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRepositoryUnavailableError creates a retryable storage error.
func NewRepositoryUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRepositoryUnavailable,
		Message:   "Application repository unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAlertTransportFailedError creates a retryable notification error.
func NewAlertTransportFailedError(template string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlertTransportFailed,
		Message:   "Alert delivery failed",
		Details:   fmt.Sprintf("template: %s, error: %s", template, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTaskNotFoundError creates a non-retryable workflow error.
func NewTaskNotFoundError(key string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTaskNotFound,
		Message:   "Workflow task not found",
		Details:   fmt.Sprintf("taskKey: %s", key),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewImportFailedError creates a non-retryable Apollo import error.
func NewImportFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeImportFailed,
		Message:   "Task export could not be imported",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidPayloadError creates a non-retryable validation error.
func NewInvalidPayloadError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidPayload,
		Message:   "Payload validation failed",
		Details:   details,
		Retryable: false,
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

// NewIndexFailedError creates a retryable Elasticsearch write error.
func NewIndexFailedError(index string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexFailed,
		Message:   "Elasticsearch index operation failed",
		Details:   fmt.Sprintf("index: %s, error: %s", index, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// FromServiceError maps domain errors onto StandardErrors. Anything already a
// StandardError passes through unchanged.
func FromServiceError(err error) *StandardError {
	if err == nil {
		return nil
	}

	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}

	var violation *applications.ComplianceViolation
	var taskErr *vacancy.TaskNotFoundError
	var importErr *apollo.ImportError

	switch {
	case stderrors.As(err, &violation):
		return NewComplianceViolationError(violation.Error())
	case stderrors.Is(err, applications.ErrNotFound):
		return withDetails(NewApplicationNotFoundError(""), err)
	case stderrors.Is(err, applications.ErrConflict):
		return withDetails(NewDuplicateApplicationError(""), err)
	case stderrors.Is(err, applications.ErrUnavailable):
		return NewRepositoryUnavailableError(err)
	case stderrors.Is(err, applications.ErrTransport):
		return NewAlertTransportFailedError("", err)
	case stderrors.As(err, &taskErr):
		return NewTaskNotFoundError(taskErr.Key)
	case stderrors.As(err, &importErr):
		return NewImportFailedError(err)
	default:
		return NewInternalError(err)
	}
}

func withDetails(stdErr *StandardError, err error) *StandardError {
	stdErr.Details = err.Error()
	return stdErr
}

// ==========================
// 4. BPMN Mapping
// ==========================

// BPMNErrorMapping maps internal error codes to the codes caught by boundary
// events in the vacancy processes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeComplianceViolation:      "COMPLIANCE_VIOLATION",
	ErrCodeApplicationNotFound:      "APPLICATION_NOT_FOUND",
	ErrCodeDuplicateApplication:     "DUPLICATE_APPLICATION",
	ErrCodeRepositoryUnavailable:    "REPOSITORY_UNAVAILABLE",
	ErrCodeAlertTransportFailed:     "ALERT_FAILED",
	ErrCodeTaskNotFound:             "TASK_NOT_FOUND",
	ErrCodeImportFailed:             "IMPORT_FAILED",
	ErrCodeInvalidPayload:           "INVALID_PAYLOAD",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeIndexFailed:              "INDEX_FAILED",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeRepositoryUnavailable,
		ErrCodeDatabaseConnectionFailed:
		return 3
	case ErrCodeAlertTransportFailed,
		ErrCodeIndexFailed:
		return 2
	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
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

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "COMPLIANCE"):
		return "COMPLIANCE"
	case strings.Contains(codeStr, "APPLICATION"):
		return "APPLICATION"
	case strings.Contains(codeStr, "REPOSITORY") || strings.Contains(codeStr, "DATABASE"):
		return "DATABASE"
	case strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "ALERT"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "TASK") || strings.Contains(codeStr, "IMPORT"):
		return "WORKFLOW"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
