// internal/bootstrap/app.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"vacancy-workers/internal/alerts"
	"vacancy-workers/internal/api"
	"vacancy-workers/internal/applications"
	"vacancy-workers/internal/common/aws"
	"vacancy-workers/internal/common/config"
	"vacancy-workers/internal/common/database"
	"vacancy-workers/internal/common/logger"
	"vacancy-workers/internal/common/validation"
	"vacancy-workers/internal/repository"
	"vacancy-workers/pkg/registry"
)

// App holds the collaborators shared by the HTTP server, the Zeebe workers
// and the pending-review sweep.
type App struct {
	Config    *config.Config
	Log       logger.Logger
	Service   *applications.Service
	Publisher *alerts.Fanout
	Registry  *registry.ActivityRegistry
	Validator *validation.Validator
	Checks    map[string]api.ReadinessCheck

	closers []func() error
}

// Retry controls how long New waits for backends that are enabled in config.
type Retry struct {
	Attempts     int
	InitialDelay time.Duration
}

var DefaultRetry = Retry{Attempts: 10, InitialDelay: 2 * time.Second}

// New connects every enabled backend and falls back to in-memory
// collaborators for the rest.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, retry Retry) (*App, error) {
	app := &App{
		Config: cfg,
		Log:    log,
		Checks: make(map[string]api.ReadinessCheck),
	}

	reg, err := registry.LoadOrDefault(cfg.Vacancy.RegistryPath)
	if err != nil {
		return nil, fmt.Errorf("load activity registry: %w", err)
	}
	app.Registry = reg

	app.Validator, err = validation.NewValidator(reg)
	if err != nil {
		return nil, err
	}

	var (
		repo applications.Repository = applications.NewMemoryRepository()
		opts                         = []applications.Option{applications.WithLogger(log)}
	)

	if cfg.Database.Postgres.Enabled {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, pg.Close)

		err = retryWithBackoff(func() error { return pg.Ping(ctx) }, retry, log, "PostgreSQL connection")
		if err != nil {
			app.Close()
			return nil, err
		}

		pgRepo := repository.NewPostgresRepository(pg.DB)
		if err := pgRepo.EnsureSchema(ctx); err != nil {
			app.Close()
			return nil, err
		}
		repo = pgRepo
		app.Checks["postgres"] = pg.Ping
		log.Info("PostgreSQL connected successfully", nil)
	}

	if rcfg := cfg.Database.Redis; rcfg.Enabled {
		rdb, err := database.NewRedis(rcfg)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.closers = append(app.closers, rdb.Close)

		err = retryWithBackoff(func() error { return rdb.Ping(ctx) }, retry, log, "Redis connection")
		if err != nil {
			app.Close()
			return nil, err
		}

		// With Postgres on, ids come from its sequence.
		if !cfg.Database.Postgres.Enabled {
			opts = append(opts, applications.WithIDGenerator(repository.NewRedisIDGenerator(rdb.Client, rcfg.KeyPrefix)))
		}
		opts = append(opts,
			applications.WithStatusCache(repository.NewRedisStatusCache(rdb.Client, rcfg.KeyPrefix, config.GetDuration(rcfg.StatusTTL))),
		)
		app.Checks["redis"] = rdb.Ping
		log.Info("Redis connected successfully", nil)
	}

	if escfg := cfg.Database.Elasticsearch; escfg.Enabled {
		es, err := database.NewElasticsearch(escfg)
		if err != nil {
			app.Close()
			return nil, err
		}

		err = retryWithBackoff(func() error { return es.Ping(ctx) }, retry, log, "Elasticsearch connection")
		if err != nil {
			app.Close()
			return nil, err
		}

		opts = append(opts, applications.WithOutcomeSink(repository.NewAuditIndexer(es.Client, escfg.AuditIndex)))
		app.Checks["elasticsearch"] = es.Ping
		log.Info("Elasticsearch connected successfully", nil)
	}

	app.Publisher, err = newPublisher(ctx, cfg, log)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Service = applications.NewService(repo, app.Publisher, cfg.Evaluation, opts...)
	log.Info("application service ready", map[string]interface{}{
		"alertChannels": app.Publisher.Channels(),
	})
	return app, nil
}

// NewInMemory builds an App with no external backends.
func NewInMemory(cfg applications.EvaluationConfig, log logger.Logger) *App {
	publisher := alerts.NewFanout(log, alerts.NewLogPublisher(log))
	reg := registry.Default()
	validator, _ := validation.NewValidator(reg)
	return &App{
		Config:    &config.Config{Evaluation: cfg},
		Log:       log,
		Service:   applications.NewService(applications.NewMemoryRepository(), publisher, cfg, applications.WithLogger(log)),
		Publisher: publisher,
		Registry:  reg,
		Validator: validator,
		Checks:    make(map[string]api.ReadinessCheck),
	}
}

func newPublisher(ctx context.Context, cfg *config.Config, log logger.Logger) (*alerts.Fanout, error) {
	awsCfg := cfg.Integrations.AWS
	var channels []alerts.Channel

	if awsCfg.SNS.Enabled {
		client, err := aws.NewSNSClient(ctx, awsCfg.Region)
		if err != nil {
			return nil, err
		}
		channels = append(channels, alerts.NewSNSPublisher(client, awsCfg.SNS.TopicARN))
	}
	if awsCfg.SES.Enabled {
		client, err := aws.NewSESClient(ctx, awsCfg.Region)
		if err != nil {
			return nil, err
		}
		channels = append(channels, alerts.NewSESPublisher(client, awsCfg.SES.FromEmail, awsCfg.SES.Recipients))
	}
	if len(channels) == 0 {
		channels = append(channels, alerts.NewLogPublisher(log))
	}

	return alerts.NewFanout(log, channels...), nil
}

// Close releases backend connections in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Log.Warn("close failed", map[string]interface{}{"error": err.Error()})
		}
	}
	a.closers = nil
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, retry Retry, log logger.Logger, operationName string) error {
	var err error
	delay := retry.InitialDelay
	attempts := retry.Attempts
	if attempts < 1 {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < attempts-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  attempts,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, attempts, err)
}
