// internal/applications/service_test.go
package applications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vacancy-workers/internal/common/logger"
	"vacancy-workers/internal/common/metrics"
	"vacancy-workers/internal/models"
)

func newTestService(t *testing.T, opts ...Option) (*Service, *MemoryRepository, *MemoryAlerts) {
	t.Helper()
	repo := NewMemoryRepository()
	alerts := NewMemoryAlerts()
	opts = append([]Option{WithLogger(logger.NewTestLogger(t))}, opts...)
	return NewService(repo, alerts, testConfig(), opts...), repo, alerts
}

func TestSubmitAssignsIDAndStoresSubmitted(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	record, err := svc.Submit(ctx, sampleSubmission())
	require.NoError(t, err)

	assert.Equal(t, ApplicationID("app-000001"), record.ID())
	assert.Equal(t, StatusSubmitted, record.Status)
	assert.Nil(t, record.Evaluation)
	assert.Equal(t, 1, repo.Len())

	view, err := svc.Status(ctx, record.ID())
	require.NoError(t, err)
	assert.Equal(t, PendingView(record.ID()), view)
}

func TestSubmitAfterRestartContinuesRepositorySequence(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	first := NewService(repo, NewMemoryAlerts(), testConfig())
	for i := 0; i < 3; i++ {
		_, err := first.Submit(ctx, sampleSubmission())
		require.NoError(t, err)
	}

	restarted := NewService(repo, NewMemoryAlerts(), testConfig())
	record, err := restarted.Submit(ctx, sampleSubmission())

	require.NoError(t, err)
	assert.Equal(t, ApplicationID("app-000004"), record.ID())
	assert.Equal(t, 4, repo.Len())
}

func TestConcurrentSubmitsGetDistinctIDs(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	const n = 32
	var wg sync.WaitGroup
	ids := make(chan ApplicationID, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			record, err := svc.Submit(ctx, sampleSubmission())
			if assert.NoError(t, err) {
				ids <- record.ID()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[ApplicationID]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
	assert.Equal(t, n, repo.Len())
}

func TestSubmitRejectsProhibitedPractice(t *testing.T) {
	svc, repo, _ := newTestService(t)

	_, err := svc.Submit(context.Background(), prohibitedSubmission())
	require.Error(t, err)

	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, KindCompliance, svcErr.Kind)
	assert.True(t, errors.Is(err, ErrComplianceViolation))
	assert.Zero(t, repo.Len())
}

func TestEvaluateApprovedPublishesAlert(t *testing.T) {
	svc, repo, alerts := newTestService(t)
	ctx := context.Background()

	record, err := svc.Submit(ctx, sampleSubmission())
	require.NoError(t, err)

	outcome, err := svc.Evaluate(ctx, record.ID())
	require.NoError(t, err)
	assert.Equal(t, DecisionApproved, outcome.Decision.Kind)
	assert.Equal(t, int16(70), outcome.TotalScore)

	stored, err := repo.Fetch(ctx, record.ID())
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, stored.Status)
	require.NotNil(t, stored.Evaluation)

	assert.Equal(t, []models.Alert{{
		Template:      models.TemplateApplicantApproved,
		ApplicationID: "app-000001",
		Details:       map[string]string{"decision": "approved"},
	}}, alerts.Events())

	view, err := svc.Status(ctx, record.ID())
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, view.Status)
	assert.Equal(t, "application approved", view.DecisionRationale)
	require.NotNil(t, view.TotalScore)
	assert.Equal(t, int16(70), *view.TotalScore)
}

func TestEvaluateManualReviewSendsNoAlert(t *testing.T) {
	svc, _, alerts := newTestService(t)
	ctx := context.Background()

	record, err := svc.Submit(ctx, manualReviewSubmission())
	require.NoError(t, err)

	outcome, err := svc.Evaluate(ctx, record.ID())
	require.NoError(t, err)
	assert.Equal(t, DecisionManualReview, outcome.Decision.Kind)
	assert.Empty(t, alerts.Events())

	got, err := svc.Get(ctx, record.ID())
	require.NoError(t, err)
	assert.Equal(t, StatusUnderReview, got.Status)

	pending, err := svc.Pending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, record.ID(), pending[0].ID())
}

func TestEvaluateAlertFailureKeepsStatus(t *testing.T) {
	svc, repo, alerts := newTestService(t)
	ctx := context.Background()
	alerts.Err = Transport("sns publish failed", errors.New("timeout"))

	record, err := svc.Submit(ctx, sampleSubmission())
	require.NoError(t, err)

	outcome, err := svc.Evaluate(ctx, record.ID())
	require.Error(t, err)
	assert.Equal(t, DecisionApproved, outcome.Decision.Kind)

	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, KindAlert, svcErr.Kind)
	assert.True(t, errors.Is(err, ErrTransport))
	assert.Equal(t, "alert transport unavailable: sns publish failed", err.Error())

	stored, err := repo.Fetch(ctx, record.ID())
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, stored.Status)
}

func TestEvaluateUnknownID(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Evaluate(context.Background(), "app-404")
	require.Error(t, err)

	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, KindRepository, svcErr.Kind)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = svc.Get(context.Background(), "app-404")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStatusUnknownIDIsSynthetic(t *testing.T) {
	svc, _, _ := newTestService(t)

	view, err := svc.Status(context.Background(), "app-777")
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, view.Status)
	assert.Equal(t, "pending evaluation", view.DecisionRationale)
	assert.Nil(t, view.TotalScore)
}

type fixedIDs struct{ id ApplicationID }

func (f fixedIDs) NextID(context.Context) (ApplicationID, error) { return f.id, nil }

type failingIDs struct{}

func (failingIDs) NextID(context.Context) (ApplicationID, error) {
	return "", errors.New("redis: connection refused")
}

func TestSubmitConflict(t *testing.T) {
	svc, _, _ := newTestService(t, WithIDGenerator(fixedIDs{id: "app-000042"}))
	ctx := context.Background()

	_, err := svc.Submit(ctx, sampleSubmission())
	require.NoError(t, err)

	_, err = svc.Submit(ctx, sampleSubmission())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestSubmitIDGeneratorFailure(t *testing.T) {
	svc, _, _ := newTestService(t, WithIDGenerator(failingIDs{}))

	_, err := svc.Submit(context.Background(), sampleSubmission())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

type recordingSink struct {
	mu      sync.Mutex
	records []Record
	err     error
}

func (s *recordingSink) RecordOutcome(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return s.err
}

type mapCache struct {
	mu    sync.Mutex
	views map[ApplicationID]StatusView
}

func (c *mapCache) GetStatus(_ context.Context, id ApplicationID) (*StatusView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	view, ok := c.views[id]
	if !ok {
		return nil, nil
	}
	return &view, nil
}

func (c *mapCache) PutStatus(_ context.Context, view StatusView) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[view.ApplicationID] = view
	return nil
}

func TestEvaluateFeedsSinkAndCache(t *testing.T) {
	sink := &recordingSink{err: errors.New("index closed")}
	cache := &mapCache{views: map[ApplicationID]StatusView{}}
	svc, _, _ := newTestService(t, WithOutcomeSink(sink), WithStatusCache(cache))
	ctx := context.Background()

	record, err := svc.Submit(ctx, manualReviewSubmission())
	require.NoError(t, err)

	_, err = svc.Evaluate(ctx, record.ID())
	require.NoError(t, err, "sink failures must not fail the evaluation")

	require.Len(t, sink.records, 1)
	assert.Equal(t, StatusUnderReview, sink.records[0].Status)

	cached, ok := cache.views[record.ID()]
	require.True(t, ok)
	assert.Equal(t, StatusUnderReview, cached.Status)

	// A cached view wins over the repository.
	cache.views[record.ID()] = StatusView{ApplicationID: record.ID(), Status: StatusWaitlisted}
	view, err := svc.Status(ctx, record.ID())
	require.NoError(t, err)
	assert.Equal(t, StatusWaitlisted, view.Status)
}

func TestPendingReviewAlert(t *testing.T) {
	record := Record{
		Profile: ApplicantProfile{ApplicationID: "app-000003"},
		Status:  StatusUnderReview,
		Evaluation: &EvaluationOutcome{
			Decision: ManualReview("Recent violent felony within 7 years: Assault"),
		},
	}
	now := time.Date(2025, 10, 1, 15, 0, 0, 0, time.UTC)

	alert := PendingReviewAlert(record, now)

	assert.Equal(t, models.TemplateManualReviewPending, alert.Template)
	assert.Equal(t, "app-000003", alert.ApplicationID)
	assert.Equal(t, map[string]string{
		"status":    "under_review",
		"rationale": "manual review required: Recent violent felony within 7 years: Assault",
		"checkedAt": "2025-10-01T15:00:00Z",
	}, alert.Details)
}

func TestServiceCountsDecisionsAndViolations(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	approved := metrics.ApplicationDecisions.WithLabelValues(string(DecisionApproved))
	prohibited := metrics.ComplianceViolations.WithLabelValues(string(ViolationProhibitedPractice))
	approvedBefore := testutil.ToFloat64(approved)
	prohibitedBefore := testutil.ToFloat64(prohibited)

	record, err := svc.Submit(ctx, sampleSubmission())
	require.NoError(t, err)
	_, err = svc.Evaluate(ctx, record.ID())
	require.NoError(t, err)
	_, err = svc.Submit(ctx, prohibitedSubmission())
	require.Error(t, err)

	assert.Equal(t, approvedBefore+1, testutil.ToFloat64(approved))
	assert.Equal(t, prohibitedBefore+1, testutil.ToFloat64(prohibited))
}
