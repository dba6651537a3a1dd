// internal/workers/applications/send-application-alert/handler.go
package sendapplicationalert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"vacancy-workers/internal/alerts"
	"vacancy-workers/internal/applications"
	apperrors "vacancy-workers/internal/common/errors"
	"vacancy-workers/internal/common/logger"
	"vacancy-workers/internal/common/metrics"
	"vacancy-workers/internal/models"
	"vacancy-workers/pkg/registry"
)

const (
	TaskType = registry.TaskSendApplicationAlert
)

var (
	ErrTemplateNotFound = errors.New("TEMPLATE_NOT_FOUND")
	ErrInvalidPayload   = errors.New("INVALID_PAYLOAD")
	ErrAlertSendFailed  = errors.New("ALERT_FAILED")
)

type Handler struct {
	config    *Config
	publisher applications.AlertPublisher
	logger    logger.Logger
	now       func() time.Time
}

func NewHandler(config *Config, publisher applications.AlertPublisher, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		publisher: publisher,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:       time.Now,
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
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "UNKNOWN_ERROR"
		retries := int32(0)
		switch {
		case errors.Is(err, ErrAlertSendFailed):
			errorCode = "ALERT_FAILED"
			retries = apperrors.RetriesToUse(job.Retries, h.config.MaxRetries)
		case errors.Is(err, ErrTemplateNotFound), errors.Is(err, ErrInvalidPayload):
			errorCode = "INVALID_PAYLOAD"
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.ApplicationID) == "" {
		return nil, fmt.Errorf("%w: applicationId is required", ErrInvalidPayload)
	}

	alert := models.Alert{
		Template:      input.Template,
		ApplicationID: input.ApplicationID,
		Details:       input.Details,
	}

	msg, err := alerts.Render(h.config.Templates, alert)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateNotFound, err)
	}

	if err := h.publisher.Publish(ctx, alert); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAlertSendFailed, err)
	}

	notificationID := uuid.New().String()
	h.logger.Info("application alert sent", map[string]interface{}{
		"notificationId": notificationID,
		"template":       input.Template,
		"applicationId":  input.ApplicationID,
	})

	sentAt := h.now().UTC().Format(time.RFC3339)
	return &Output{
		NotificationID: notificationID,
		Status:         StatusSent,
		Subject:        msg.Subject,
		SentAt:         sentAt,
		Notification: models.Notification{
			ID:            notificationID,
			Template:      input.Template,
			ApplicationID: input.ApplicationID,
			Channel:       channelsOf(h.publisher),
			Status:        StatusSent,
			SentAt:        sentAt,
		},
	}, nil
}

func channelsOf(publisher applications.AlertPublisher) string {
	if fanout, ok := publisher.(interface{ Channels() []string }); ok {
		if names := fanout.Channels(); len(names) > 0 {
			return strings.Join(names, ",")
		}
	}
	return ChannelDirect
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
		"jobKey": job.Key,
	})
}

// failJob hands transient failures back to the engine with retries left and
// throws a BPMN error otherwise.
func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

	var err error
	if retries > 0 {
		_, err = client.NewFailJobCommand().
			JobKey(job.Key).
			Retries(retries).
			ErrorMessage(errorMessage).
			Send(context.Background())
	} else {
		_, err = client.NewThrowErrorCommand().
			JobKey(job.Key).
			ErrorCode(errorCode).
			ErrorMessage(errorMessage).
			Send(context.Background())
	}
	if err != nil {
		h.logger.Error("failed to report job failure", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
