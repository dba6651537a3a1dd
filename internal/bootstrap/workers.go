// internal/bootstrap/workers.go
package bootstrap

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"vacancy-workers/internal/common/config"
	"vacancy-workers/internal/common/observability"
	"vacancy-workers/internal/models"
	"vacancy-workers/internal/vacancy"
	eva "vacancy-workers/internal/workers/applications/evaluate-application"
	saa "vacancy-workers/internal/workers/applications/send-application-alert"
	sub "vacancy-workers/internal/workers/applications/submit-application"
	bvr "vacancy-workers/internal/workers/vacancy/build-vacancy-report"
)

// WorkerHandler is what a job worker needs from a handler.
type WorkerHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// Handlers builds every job handler keyed by task type. Timeouts come from
// the worker's config entry.
func (a *App) Handlers(obs *observability.Observability) map[string]WorkerHandler {
	timeout := func(taskType string, fallback time.Duration) time.Duration {
		if ms := config.GetWorkerConfig(a.Config, taskType).Timeout; ms > 0 {
			return config.GetDuration(ms)
		}
		return fallback
	}

	subCfg := sub.LoadConfig()
	subCfg.Timeout = timeout(sub.TaskType, subCfg.Timeout)

	evaCfg := eva.LoadConfig()
	evaCfg.Timeout = timeout(eva.TaskType, evaCfg.Timeout)

	saaCfg := saa.LoadConfig()
	saaCfg.Timeout = timeout(saa.TaskType, saaCfg.Timeout)
	saaCfg.MaxRetries = config.GetWorkerConfig(a.Config, saa.TaskType).MaxRetries
	saaCfg.Templates = models.DefaultTemplates

	bvrCfg := bvr.LoadConfig()
	bvrCfg.Timeout = timeout(bvr.TaskType, bvrCfg.Timeout)

	return map[string]WorkerHandler{
		sub.TaskType: sub.NewHandler(subCfg, a.Service, a.Validator, a.Log),
		eva.TaskType: eva.NewHandler(evaCfg, a.Service, a.Log),
		saa.TaskType: saa.NewHandler(saaCfg, a.Publisher, a.Log),
		bvr.TaskType: bvr.NewHandler(bvrCfg, vacancy.StandardCatalog(), obs, a.Log),
	}
}

// StartWorkers opens a job worker for every enabled task type.
func (a *App) StartWorkers(client zbc.Client, obs *observability.Observability) []worker.JobWorker {
	var started []worker.JobWorker
	for taskType, handler := range a.Handlers(obs) {
		if !config.IsWorkerEnabled(a.Config, taskType) {
			a.Log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
			continue
		}
		started = append(started, startWorker(client, taskType, config.GetWorkerConfig(a.Config, taskType), handler.Handle, a))
	}
	a.Log.Info("workers registered", map[string]interface{}{"count": len(started)})
	return started
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), a *App) worker.JobWorker {
	builder := client.NewJobWorker().
		JobType(taskType).
		Handler(handlerFunc).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout))
	if a.Config.App.Name != "" {
		builder = builder.Name(a.Config.App.Name)
	}
	jw := builder.Open()

	a.Log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
	return jw
}
