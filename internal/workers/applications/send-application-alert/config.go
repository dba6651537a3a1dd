// internal/workers/applications/send-application-alert/config.go
package sendapplicationalert

import (
	"time"

	"vacancy-workers/internal/models"
)

type Config struct {
	Timeout    time.Duration
	MaxRetries int
	Templates  map[string]models.NotificationTemplate
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    15 * time.Second,
		MaxRetries: 2,
		Templates:  models.DefaultTemplates,
	}
}
