// internal/workers/applications/submit-application/handler.go
package submitapplication

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"vacancy-workers/internal/applications"
	apperrors "vacancy-workers/internal/common/errors"
	"vacancy-workers/internal/common/logger"
	"vacancy-workers/internal/common/metrics"
	"vacancy-workers/internal/common/validation"
	"vacancy-workers/pkg/registry"
)

const (
	TaskType = registry.TaskSubmitApplication
)

var (
	ErrInvalidPayload = errors.New("INVALID_PAYLOAD")
)

type Submitter interface {
	Submit(ctx context.Context, sub applications.Submission) (applications.Record, error)
}

type Handler struct {
	config    *Config
	service   Submitter
	validator *validation.Validator
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
}

// NewHandler wires the worker. validator may be nil, in which case only the
// compliance guard checks the payload.
func NewHandler(config *Config, service Submitter, validator *validation.Validator, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		service:   service,
		validator: validator,
		errors:    apperrors.NewErrorHandler(scoped),
		logger:    scoped,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "PARSE_ERROR").Inc()
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	if err := h.validate(job.Variables); err != nil {
		h.handleError(ctx, client, job, err)
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.handleError(ctx, client, job, err)
		return
	}

	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.completeJob(client, job, output)
}

func (h *Handler) validate(variables string) error {
	if h.validator == nil {
		return nil
	}
	result, err := h.validator.ValidateInput(TaskType, json.RawMessage(variables))
	if err != nil {
		return apperrors.NewInvalidPayloadError(err.Error())
	}
	if !result.Valid {
		return apperrors.NewInvalidPayloadError(result.Summary())
	}
	return nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Submission == nil {
		return nil, fmt.Errorf("%w: submission is required", ErrInvalidPayload)
	}

	record, err := h.service.Submit(ctx, *input.Submission)
	if err != nil {
		return nil, err
	}

	h.logger.Info("application submitted", map[string]interface{}{
		"applicationId": record.ID().String(),
		"unitId":        input.Submission.Listing.UnitID,
	})

	return &Output{
		ApplicationID:     record.ID().String(),
		Status:            record.Status.Label(),
		DecisionRationale: record.DecisionRationale(),
	}, nil
}

func (h *Handler) handleError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	if errors.Is(err, ErrInvalidPayload) {
		err = apperrors.NewInvalidPayloadError(err.Error())
	}
	stdErr := apperrors.FromServiceError(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errors.HandleJobError(ctx, client, job, stdErr)
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey":        job.Key,
		"applicationId": output.ApplicationID,
	})
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
