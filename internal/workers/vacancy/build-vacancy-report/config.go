// internal/workers/vacancy/build-vacancy-report/config.go
package buildvacancyreport

import "time"

type Config struct {
	Timeout time.Duration
	// IncludeTasksByDefault applies when the job omits includeTasks.
	IncludeTasksByDefault bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
