// internal/workers/applications/submit-application/handler_test.go
package submitapplication

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vacancy-workers/internal/applications"
	apperrors "vacancy-workers/internal/common/errors"
	"vacancy-workers/internal/common/logger"
	"vacancy-workers/internal/common/validation"
	"vacancy-workers/pkg/registry"
)

// ==========================
// Test Helper Functions
// ==========================

const testVariables = `{
	"submission": {
		"listing": {"unit_id": "A-203", "property_code": "DSM-PARKVIEW", "listed_rent": 1180, "available_on": "2025-10-01", "deposit_required": 2100},
		"household": {"adults": 1, "children": 1, "bedrooms_required": 2},
		"screening_answers": {"requested_move_in": "2025-10-15"},
		"income": {"gross_monthly_income": 4300, "verified_income_sources": ["Employer paystub"], "housing_voucher_amount": 450},
		"rental_history": [{"property_name": "Maple Court", "paid_on_time": true}],
		"credit_score": 712,
		"criminal_history": []
	}
}`

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

func newTestHandler(t *testing.T) (*Handler, *applications.MemoryRepository) {
	t.Helper()
	repo := applications.NewMemoryRepository()
	svc := applications.NewService(repo, applications.NewMemoryAlerts(), applications.DefaultEvaluationConfig())

	validator, err := validation.NewValidator(registry.Default())
	require.NoError(t, err)

	return NewHandler(LoadConfig(), svc, validator, &testLogger{t: t}), repo
}

func decodeInput(t *testing.T, raw string) *Input {
	t.Helper()
	var input Input
	require.NoError(t, json.Unmarshal([]byte(raw), &input))
	return &input
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	handler, repo := newTestHandler(t)

	output, err := handler.Execute(context.Background(), decodeInput(t, testVariables))

	require.NoError(t, err)
	assert.Equal(t, "app-000001", output.ApplicationID)
	assert.Equal(t, "submitted", output.Status)
	assert.Equal(t, "pending evaluation", output.DecisionRationale)
	assert.Equal(t, 1, repo.Len())
}

func TestHandler_Execute_ComplianceViolation(t *testing.T) {
	handler, repo := newTestHandler(t)
	input := decodeInput(t, testVariables)
	input.Submission.Listing.DepositRequired = 2361

	output, err := handler.Execute(context.Background(), input)

	assert.Nil(t, output)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeComplianceViolation, apperrors.FromServiceError(err).Code)
	assert.Equal(t, 0, repo.Len())
}

func TestHandler_Execute_MissingSubmission(t *testing.T) {
	handler, _ := newTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, ErrInvalidPayload))
}

func TestHandler_Execute_RepositoryUnavailable(t *testing.T) {
	svc := applications.NewService(unavailableRepo{}, applications.NewMemoryAlerts(), applications.DefaultEvaluationConfig())
	handler := NewHandler(LoadConfig(), svc, nil, &testLogger{t: t})

	_, err := handler.Execute(context.Background(), decodeInput(t, testVariables))

	require.Error(t, err)
	stdErr := apperrors.FromServiceError(err)
	assert.Equal(t, apperrors.ErrCodeRepositoryUnavailable, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

// ==========================
// Payload Validation Tests
// ==========================

func TestHandler_Validate(t *testing.T) {
	handler, _ := newTestHandler(t)

	tests := []struct {
		name      string
		variables string
		wantErr   bool
	}{
		{name: "valid submission", variables: testVariables},
		{name: "missing submission", variables: `{}`, wantErr: true},
		{name: "negative rent", variables: `{"submission": {"listing": {"unit_id": "A-1", "listed_rent": -5, "deposit_required": 0}}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := handler.validate(tt.variables)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var stdErr *apperrors.StandardError
			require.True(t, errors.As(err, &stdErr))
			assert.Equal(t, apperrors.ErrCodeInvalidPayload, stdErr.Code)
			assert.NotEmpty(t, stdErr.Details)
		})
	}
}

func TestHandler_Validate_NoValidator(t *testing.T) {
	handler := NewHandler(LoadConfig(), nil, nil, &testLogger{t: t})
	assert.NoError(t, handler.validate(`{}`))
}

type unavailableRepo struct{ applications.Repository }

func (unavailableRepo) Insert(context.Context, applications.Record) (applications.Record, error) {
	return applications.Record{}, applications.Unavailable("insert failed", errors.New("connection reset"))
}
