// internal/scheduler/sweep.go
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"vacancy-workers/internal/applications"
	"vacancy-workers/internal/common/logger"
	"vacancy-workers/internal/common/metrics"
)

// PendingSource lists records waiting on manual review.
type PendingSource interface {
	Pending(ctx context.Context, limit int) ([]applications.Record, error)
}

// SweepResult summarises one pass over the review queue.
type SweepResult struct {
	Checked   int
	Published int
	Failed    int
}

type PendingSweep struct {
	source    PendingSource
	publisher applications.AlertPublisher
	schedule  string
	limit     int
	timeout   time.Duration
	now       func() time.Time
	log       logger.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
}

type Option func(*PendingSweep)

func WithClock(now func() time.Time) Option {
	return func(s *PendingSweep) { s.now = now }
}

func WithTimeout(timeout time.Duration) Option {
	return func(s *PendingSweep) { s.timeout = timeout }
}

func WithLogger(log logger.Logger) Option {
	return func(s *PendingSweep) { s.log = logger.Component(log, "scheduler") }
}

func NewPendingSweep(source PendingSource, publisher applications.AlertPublisher, schedule string, limit int, opts ...Option) *PendingSweep {
	s := &PendingSweep{
		source:    source,
		publisher: publisher,
		schedule:  schedule,
		limit:     limit,
		timeout:   time.Minute,
		now:       time.Now,
		log:       logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start registers the sweep and starts the cron loop. The schedule uses a
// leading seconds field.
func (s *PendingSweep) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return errors.New("pending sweep already started")
	}

	c := cron.New(cron.WithSeconds())
	id, err := c.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("error scheduling pending sweep %q: %w", s.schedule, err)
	}

	c.Start()
	s.cron = c
	s.entryID = id
	s.log.Info("pending sweep scheduled", map[string]interface{}{
		"schedule": s.schedule,
		"limit":    s.limit,
	})
	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish or ctx to
// expire.
func (s *PendingSweep) Stop(ctx context.Context) {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return
	}

	select {
	case <-c.Stop().Done():
		s.log.Info("pending sweep stopped", nil)
	case <-ctx.Done():
		s.log.Warn("pending sweep stop timed out", map[string]interface{}{"error": ctx.Err().Error()})
	}
}

// Next reports when the sweep fires next. The zero time means it is not running.
func (s *PendingSweep) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// RunOnce performs a single sweep.
func (s *PendingSweep) RunOnce(ctx context.Context) SweepResult {
	var result SweepResult

	records, err := s.source.Pending(ctx, s.limit)
	if err != nil {
		metrics.PendingSweepRuns.WithLabelValues(metrics.ResultFailure).Inc()
		s.log.Error("pending sweep failed to list records", map[string]interface{}{"error": err.Error()})
		return result
	}

	now := s.now()
	for _, record := range records {
		result.Checked++
		if err := s.publisher.Publish(ctx, applications.PendingReviewAlert(record, now)); err != nil {
			result.Failed++
			s.log.Warn("pending review alert failed", map[string]interface{}{
				"applicationId": record.ID().String(),
				"error":         err.Error(),
			})
			continue
		}
		result.Published++
	}

	label := metrics.ResultSuccess
	if result.Failed > 0 {
		label = metrics.ResultFailure
	}
	metrics.PendingSweepRuns.WithLabelValues(label).Inc()

	s.log.Info("pending sweep completed", map[string]interface{}{
		"checked":   result.Checked,
		"published": result.Published,
		"failed":    result.Failed,
	})
	return result
}
