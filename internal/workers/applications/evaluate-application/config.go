// internal/workers/applications/evaluate-application/config.go
package evaluateapplication

import "time"

type Config struct {
	Timeout time.Duration
	// FailOnAlertError throws ALERT_FAILED instead of completing when the
	// approval alert could not be delivered.
	FailOnAlertError bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
