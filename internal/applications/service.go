// internal/applications/service.go
package applications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vacancy-workers/internal/common/logger"
	"vacancy-workers/internal/common/metrics"
	"vacancy-workers/internal/models"
)

type ErrorKind string

const (
	KindCompliance ErrorKind = "compliance"
	KindRepository ErrorKind = "repository"
	KindAlert      ErrorKind = "alert"
)

// ServiceError is the single error union the service returns. The wrapped
// error is exposed unchanged through Unwrap.
type ServiceError struct {
	Kind ErrorKind
	Err  error
}

func (e *ServiceError) Error() string { return e.Err.Error() }
func (e *ServiceError) Unwrap() error { return e.Err }

func complianceError(err error) error { return &ServiceError{Kind: KindCompliance, Err: err} }
func repositoryError(err error) error { return &ServiceError{Kind: KindRepository, Err: err} }
func alertError(err error) error      { return &ServiceError{Kind: KindAlert, Err: err} }

// OutcomeSink receives every evaluation after it is persisted, e.g. an audit
// index. Sink failures are logged and never fail the evaluation.
type OutcomeSink interface {
	RecordOutcome(ctx context.Context, record Record) error
}

// StatusCache fronts Get with cached status views.
type StatusCache interface {
	GetStatus(ctx context.Context, id ApplicationID) (*StatusView, error)
	PutStatus(ctx context.Context, view StatusView) error
}

type Option func(*Service)

func WithIDGenerator(ids IDGenerator) Option   { return func(s *Service) { s.ids = ids } }
func WithOutcomeSink(sink OutcomeSink) Option  { return func(s *Service) { s.sink = sink } }
func WithStatusCache(cache StatusCache) Option { return func(s *Service) { s.cache = cache } }
func WithLogger(log logger.Logger) Option      { return func(s *Service) { s.log = log } }

// Service composes the compliance guard, the evaluation engine, storage and
// alerting.
type Service struct {
	guard  *ComplianceGuard
	engine *EvaluationEngine
	repo   Repository
	alerts AlertPublisher
	ids    IDGenerator
	sink   OutcomeSink
	cache  StatusCache
	log    logger.Logger
}

// NewService derives the guard's deposit policy from cfg so intake and
// scoring always agree on the multiplier. A repository that is also an
// IDGenerator issues the ids unless WithIDGenerator overrides it.
func NewService(repo Repository, alerts AlertPublisher, cfg EvaluationConfig, opts ...Option) *Service {
	s := &Service{
		guard:  ComplianceGuardFromConfig(cfg),
		engine: NewEvaluationEngine(cfg),
		repo:   repo,
		alerts: alerts,
		log:    logger.NewNoOpLogger(),
	}
	if ids, ok := repo.(IDGenerator); ok {
		s.ids = ids
	} else {
		s.ids = NewCounterIDGenerator(1)
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logger.Component(s.log, "application-service")
	return s
}

func (s *Service) Engine() *EvaluationEngine { return s.engine }
func (s *Service) Guard() *ComplianceGuard   { return s.guard }

// Submit screens the submission, assigns an id and stores it as Submitted.
func (s *Service) Submit(ctx context.Context, sub Submission) (Record, error) {
	profile, err := s.guard.ProfileFromSubmission(sub)
	if err != nil {
		var violation *ComplianceViolation
		if errors.As(err, &violation) {
			metrics.ComplianceViolations.WithLabelValues(string(violation.Kind)).Inc()
		}
		s.log.Info("submission rejected by compliance guard", map[string]interface{}{
			"reason": err.Error(),
		})
		return Record{}, complianceError(err)
	}

	id, err := s.ids.NextID(ctx)
	if err != nil {
		return Record{}, repositoryError(Unavailable("id generator failed", err))
	}
	profile.ApplicationID = id

	stored, err := s.repo.Insert(ctx, Record{Profile: *profile, Status: StatusSubmitted})
	if err != nil {
		return Record{}, repositoryError(err)
	}

	s.log.Info("application submitted", map[string]interface{}{
		"applicationId": string(id),
		"unitId":        sub.Listing.UnitID,
	})
	return stored, nil
}

// Evaluate scores the stored profile and persists the new status. An
// approval publishes an applicant_approved alert; if that fails the error is
// returned but the status change stays.
func (s *Service) Evaluate(ctx context.Context, id ApplicationID) (EvaluationOutcome, error) {
	record, err := s.fetch(ctx, id)
	if err != nil {
		return EvaluationOutcome{}, err
	}

	outcome := s.engine.Score(&record.Profile)
	record.Status = outcome.Decision.Status()
	record.Evaluation = &outcome

	if err := s.repo.Update(ctx, *record); err != nil {
		return EvaluationOutcome{}, repositoryError(err)
	}

	metrics.ApplicationDecisions.WithLabelValues(string(outcome.Decision.Kind)).Inc()
	s.log.Info("application evaluated", map[string]interface{}{
		"applicationId": string(id),
		"decision":      string(outcome.Decision.Kind),
		"totalScore":    outcome.TotalScore,
	})

	s.afterEvaluate(ctx, *record)

	if outcome.Decision.Kind == DecisionApproved {
		alert := models.Alert{
			Template:      models.TemplateApplicantApproved,
			ApplicationID: string(outcome.ApplicationID),
			Details:       map[string]string{"decision": "approved"},
		}
		if err := s.alerts.Publish(ctx, alert); err != nil {
			s.log.Error("failed to publish approval alert", map[string]interface{}{
				"applicationId": string(id),
				"error":         err.Error(),
			})
			return outcome, alertError(err)
		}
	}

	return outcome, nil
}

func (s *Service) afterEvaluate(ctx context.Context, record Record) {
	if s.sink != nil {
		if err := s.sink.RecordOutcome(ctx, record); err != nil {
			s.log.Warn("failed to record evaluation outcome", map[string]interface{}{
				"applicationId": string(record.ID()),
				"error":         err.Error(),
			})
		}
	}
	if s.cache != nil {
		if err := s.cache.PutStatus(ctx, record.StatusView()); err != nil {
			s.log.Warn("failed to cache status view", map[string]interface{}{
				"applicationId": string(record.ID()),
				"error":         err.Error(),
			})
		}
	}
}

// Get returns the stored record or a repository ErrNotFound.
func (s *Service) Get(ctx context.Context, id ApplicationID) (Record, error) {
	record, err := s.fetch(ctx, id)
	if err != nil {
		return Record{}, err
	}
	return *record, nil
}

// Status answers the public status lookup. Unknown ids yield the synthetic
// Submitted / "pending evaluation" view instead of an error.
func (s *Service) Status(ctx context.Context, id ApplicationID) (StatusView, error) {
	if s.cache != nil {
		view, err := s.cache.GetStatus(ctx, id)
		if err != nil {
			s.log.Debug("status cache lookup failed", map[string]interface{}{
				"applicationId": string(id),
				"error":         err.Error(),
			})
		} else if view != nil {
			return *view, nil
		}
	}

	record, err := s.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return PendingView(id), nil
	}
	if err != nil {
		return StatusView{}, err
	}
	return record.StatusView(), nil
}

// Pending lists up to limit records waiting on manual review.
func (s *Service) Pending(ctx context.Context, limit int) ([]Record, error) {
	records, err := s.repo.Pending(ctx, limit)
	if err != nil {
		return nil, repositoryError(err)
	}
	return records, nil
}

func (s *Service) fetch(ctx context.Context, id ApplicationID) (*Record, error) {
	record, err := s.repo.Fetch(ctx, id)
	if err != nil {
		return nil, repositoryError(err)
	}
	if record == nil {
		return nil, repositoryError(fmt.Errorf("%w: %s", ErrNotFound, id))
	}
	return record, nil
}

// PendingReviewAlert builds the reminder the scheduler sends for a record
// still under review.
func PendingReviewAlert(record Record, now time.Time) models.Alert {
	return models.Alert{
		Template:      models.TemplateManualReviewPending,
		ApplicationID: string(record.ID()),
		Details: map[string]string{
			"status":    record.Status.Label(),
			"rationale": record.DecisionRationale(),
			"checkedAt": now.UTC().Format(time.RFC3339),
		},
	}
}
