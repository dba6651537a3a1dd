// internal/workers/applications/evaluate-application/handler.go
package evaluateapplication

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"vacancy-workers/internal/applications"
	apperrors "vacancy-workers/internal/common/errors"
	"vacancy-workers/internal/common/logger"
	"vacancy-workers/internal/common/metrics"
	"vacancy-workers/pkg/registry"
)

const (
	TaskType = registry.TaskEvaluateApplication
)

var (
	ErrMissingApplicationID = errors.New("INVALID_PAYLOAD")
)

type Evaluator interface {
	Evaluate(ctx context.Context, id applications.ApplicationID) (applications.EvaluationOutcome, error)
}

type Handler struct {
	config  *Config
	service Evaluator
	errors  *apperrors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(config *Config, service Evaluator, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		service: service,
		errors:  apperrors.NewErrorHandler(scoped),
		logger:  scoped,
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

	output, err := h.execute(ctx, &input)
	if err != nil {
		if errors.Is(err, ErrMissingApplicationID) {
			err = apperrors.NewInvalidPayloadError(err.Error())
		}
		stdErr := apperrors.FromServiceError(err)
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
		h.errors.HandleJobError(ctx, client, job, stdErr)
		return
	}

	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	id := strings.TrimSpace(input.ApplicationID)
	if id == "" {
		return nil, fmt.Errorf("%w: applicationId is required", ErrMissingApplicationID)
	}

	outcome, err := h.service.Evaluate(ctx, applications.ApplicationID(id))
	alertSent := outcome.Decision.Kind == applications.DecisionApproved
	if err != nil {
		// a failed approval alert still returns the persisted outcome
		if outcome.ApplicationID == "" || h.config.FailOnAlertError {
			return nil, err
		}
		h.logger.Warn("approval alert not delivered", map[string]interface{}{
			"applicationId": id,
			"error":         err.Error(),
		})
		alertSent = false
	}

	return &Output{
		ApplicationID: string(outcome.ApplicationID),
		Status:        outcome.Decision.Status().Label(),
		Decision:      string(outcome.Decision.Kind),
		TotalScore:    outcome.TotalScore,
		Rationale:     outcome.Decision.Summary(),
		AlertSent:     alertSent,
		Components:    outcome.Components,
	}, nil
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
		"jobKey":   job.Key,
		"decision": output.Decision,
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
