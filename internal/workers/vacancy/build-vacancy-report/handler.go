// internal/workers/vacancy/build-vacancy-report/handler.go
package buildvacancyreport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"vacancy-workers/internal/common/logger"
	"vacancy-workers/internal/common/metrics"
	"vacancy-workers/internal/common/observability"
	"vacancy-workers/internal/models"
	"vacancy-workers/internal/vacancy"
	"vacancy-workers/internal/vacancy/apollo"
	"vacancy-workers/pkg/registry"
)

const (
	TaskType = registry.TaskBuildVacancyReport
)

const (
	sourceStandard = "standard"
	sourceApollo   = "apollo"
)

var (
	ErrInvalidPayload = errors.New("INVALID_PAYLOAD")
	ErrTaskNotFound   = errors.New("TASK_NOT_FOUND")
	ErrImportFailed   = errors.New("IMPORT_FAILED")
)

type Handler struct {
	config  *Config
	catalog *vacancy.Catalog
	obs     *observability.Observability
	logger  logger.Logger
	today   func() models.Date
}

// NewHandler builds the report worker. obs may be nil.
func NewHandler(config *Config, catalog *vacancy.Catalog, obs *observability.Observability, log logger.Logger) *Handler {
	if catalog == nil {
		catalog = vacancy.StandardCatalog()
	}
	return &Handler{
		config:  config,
		catalog: catalog,
		obs:     obs,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
		today:   models.Today,
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
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "UNKNOWN_ERROR"
		if errors.Is(err, ErrTaskNotFound) {
			errorCode = "TASK_NOT_FOUND"
		} else if errors.Is(err, ErrImportFailed) {
			errorCode = "IMPORT_FAILED"
		} else if errors.Is(err, ErrInvalidPayload) {
			errorCode = "INVALID_PAYLOAD"
		}
		h.recordJob(ctx, start, "failed")
		h.failJob(client, job, errorCode, err.Error())
		return
	}

	h.recordJob(ctx, start, "completed")
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	start, err := models.ParseDate(input.VacancyStart)
	if err != nil {
		return nil, fmt.Errorf("%w: vacancyStart: %v", ErrInvalidPayload, err)
	}
	moveIn, err := models.ParseDate(input.TargetMoveIn)
	if err != nil {
		return nil, fmt.Errorf("%w: targetMoveIn: %v", ErrInvalidPayload, err)
	}
	if err := vacancy.ValidateWindow(start, moveIn); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	today := h.today()
	if input.Today != "" {
		if today, err = models.ParseDate(input.Today); err != nil {
			return nil, fmt.Errorf("%w: today: %v", ErrInvalidPayload, err)
		}
	}

	instance := vacancy.NewInstance(h.catalog, start, moveIn)
	source := sourceStandard
	if strings.TrimSpace(input.ApolloCSV) != "" {
		if instance, err = apollo.ImportCSV(strings.NewReader(input.ApolloCSV), start, moveIn); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImportFailed, err)
		}
		source = sourceApollo
	}

	if err := instance.ApplyUpdates(input.TaskUpdates); err != nil {
		if errors.Is(err, vacancy.ErrTaskNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrTaskNotFound, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	includeTasks := h.config.IncludeTasksByDefault
	if input.IncludeTasks != nil {
		includeTasks = *input.IncludeTasks
	}

	snap := vacancy.BuildSnapshot(instance, today, includeTasks)
	critical := instance.Report(today).CriticalAlerts()

	metrics.ReadinessScore.Set(float64(snap.Insights.ReadinessScore))
	if h.obs != nil {
		h.obs.RecordReport(ctx, string(snap.Insights.ReadinessLevel))
	}

	h.logger.Info("vacancy report built", map[string]interface{}{
		"vacancyStart":   start.String(),
		"targetMoveIn":   moveIn.String(),
		"dataSource":     source,
		"readinessScore": snap.Insights.ReadinessScore,
		"overdue":        len(snap.OverdueTasks),
	})

	return &Output{
		ReadinessScore: snap.Insights.ReadinessScore,
		ReadinessLevel: string(snap.Insights.ReadinessLevel),
		OverdueCount:   len(snap.OverdueTasks),
		CriticalAlerts: critical,
		DataSource:     source,
		Snapshot:       snap,
	}, nil
}

func (h *Handler) recordJob(ctx context.Context, start time.Time, status string) {
	elapsed := time.Since(start)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(elapsed.Seconds())
	if h.obs != nil {
		h.obs.RecordJobProcessed(ctx, TaskType, status)
		h.obs.RecordJobDuration(ctx, TaskType, elapsed, status)
	}
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

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()
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
