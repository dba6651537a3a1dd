package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vacancy-workers/internal/applications"
	"vacancy-workers/internal/common/logger"
	"vacancy-workers/internal/common/metrics"
	"vacancy-workers/internal/models"
)

var sweepTime = time.Date(2025, 10, 3, 9, 15, 0, 0, time.UTC)

func seedRepository(t *testing.T, ids ...string) *applications.MemoryRepository {
	t.Helper()
	repo := applications.NewMemoryRepository()
	for _, id := range ids {
		outcome := &applications.EvaluationOutcome{
			ApplicationID: applications.ApplicationID(id),
			Decision:      applications.ManualReview("criminal history requires individualized assessment"),
		}
		_, err := repo.Insert(context.Background(), applications.Record{
			Profile:    applications.ApplicantProfile{ApplicationID: applications.ApplicationID(id)},
			Status:     applications.StatusUnderReview,
			Evaluation: outcome,
		})
		require.NoError(t, err)
	}
	_, err := repo.Insert(context.Background(), applications.Record{
		Profile: applications.ApplicantProfile{ApplicationID: "app-009999"},
		Status:  applications.StatusApproved,
	})
	require.NoError(t, err)
	return repo
}

type failingSource struct{ err error }

func (f failingSource) Pending(context.Context, int) ([]applications.Record, error) {
	return nil, f.err
}

// selectiveAlerts fails delivery for the listed application ids.
type selectiveAlerts struct {
	*applications.MemoryAlerts
	fail map[string]bool
}

func (s selectiveAlerts) Publish(ctx context.Context, alert models.Alert) error {
	if s.fail[alert.ApplicationID] {
		return applications.Transport("sns publish failed", errors.New("throttled"))
	}
	return s.MemoryAlerts.Publish(ctx, alert)
}

func TestRunOnce_PublishesReminderPerRecord(t *testing.T) {
	repo := seedRepository(t, "app-000002", "app-000001")
	alerts := applications.NewMemoryAlerts()
	sweep := NewPendingSweep(repo, alerts, "@every 1h", 0,
		WithClock(func() time.Time { return sweepTime }),
		WithLogger(logger.NewTestLogger(t)))

	before := testutil.ToFloat64(metrics.PendingSweepRuns.WithLabelValues(metrics.ResultSuccess))
	result := sweep.RunOnce(context.Background())

	assert.Equal(t, SweepResult{Checked: 2, Published: 2}, result)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.PendingSweepRuns.WithLabelValues(metrics.ResultSuccess)))

	events := alerts.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "app-000001", events[0].ApplicationID)
	assert.Equal(t, "app-000002", events[1].ApplicationID)
	for _, event := range events {
		assert.Equal(t, models.TemplateManualReviewPending, event.Template)
		assert.Equal(t, "under_review", event.Details["status"])
		assert.Equal(t, "2025-10-03T09:15:00Z", event.Details["checkedAt"])
		assert.Contains(t, event.Details["rationale"], "manual review required")
	}
}

func TestRunOnce_RespectsLimit(t *testing.T) {
	repo := seedRepository(t, "app-000001", "app-000002", "app-000003")
	alerts := applications.NewMemoryAlerts()
	sweep := NewPendingSweep(repo, alerts, "@every 1h", 2)

	result := sweep.RunOnce(context.Background())

	assert.Equal(t, 2, result.Checked)
	assert.Len(t, alerts.Events(), 2)
}

func TestRunOnce_EmptyQueue(t *testing.T) {
	sweep := NewPendingSweep(applications.NewMemoryRepository(), applications.NewMemoryAlerts(), "@every 1h", 10)

	assert.Equal(t, SweepResult{}, sweep.RunOnce(context.Background()))
}

func TestRunOnce_PublishFailuresAreCounted(t *testing.T) {
	repo := seedRepository(t, "app-000001", "app-000002")
	alerts := selectiveAlerts{MemoryAlerts: applications.NewMemoryAlerts(), fail: map[string]bool{"app-000001": true}}
	sweep := NewPendingSweep(repo, alerts, "@every 1h", 0, WithLogger(logger.NewTestLogger(t)))

	before := testutil.ToFloat64(metrics.PendingSweepRuns.WithLabelValues(metrics.ResultFailure))
	result := sweep.RunOnce(context.Background())

	assert.Equal(t, SweepResult{Checked: 2, Published: 1, Failed: 1}, result)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.PendingSweepRuns.WithLabelValues(metrics.ResultFailure)))

	events := alerts.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "app-000002", events[0].ApplicationID)
}

func TestRunOnce_SourceError(t *testing.T) {
	alerts := applications.NewMemoryAlerts()
	sweep := NewPendingSweep(failingSource{err: applications.Unavailable("query failed", errors.New("connection refused"))},
		alerts, "@every 1h", 0, WithLogger(logger.NewTestLogger(t)))

	before := testutil.ToFloat64(metrics.PendingSweepRuns.WithLabelValues(metrics.ResultFailure))
	result := sweep.RunOnce(context.Background())

	assert.Equal(t, SweepResult{}, result)
	assert.Empty(t, alerts.Events())
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.PendingSweepRuns.WithLabelValues(metrics.ResultFailure)))
}

func TestStart_InvalidSchedule(t *testing.T) {
	sweep := NewPendingSweep(applications.NewMemoryRepository(), applications.NewMemoryAlerts(), "every quarter hour", 0)

	err := sweep.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "every quarter hour")
	assert.True(t, sweep.Next().IsZero())
}

func TestStartStop(t *testing.T) {
	sweep := NewPendingSweep(applications.NewMemoryRepository(), applications.NewMemoryAlerts(), "0 */15 * * * *", 0)

	require.NoError(t, sweep.Start())
	assert.Error(t, sweep.Start())

	next := sweep.Next()
	assert.False(t, next.IsZero())
	assert.Equal(t, 0, next.Minute()%15)
	assert.Equal(t, 0, next.Second())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sweep.Stop(ctx)
	assert.True(t, sweep.Next().IsZero())

	// stopping twice is a no-op
	sweep.Stop(ctx)
}

func TestScheduledSweepFires(t *testing.T) {
	repo := seedRepository(t, "app-000001")
	alerts := applications.NewMemoryAlerts()
	sweep := NewPendingSweep(repo, alerts, "* * * * * *", 0)

	require.NoError(t, sweep.Start())
	defer sweep.Stop(context.Background())

	assert.Eventually(t, func() bool { return len(alerts.Events()) > 0 }, 3*time.Second, 50*time.Millisecond)
}
