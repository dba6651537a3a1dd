// internal/workers/applications/evaluate-application/models.go
package evaluateapplication

import "vacancy-workers/internal/applications"

type Input struct {
	ApplicationID string `json:"applicationId"`
}

type Output struct {
	ApplicationID string                        `json:"applicationId"`
	Status        string                        `json:"status"`
	Decision      string                        `json:"decision"`
	TotalScore    int16                         `json:"totalScore"`
	Rationale     string                        `json:"rationale"`
	AlertSent     bool                          `json:"alertSent"`
	Components    []applications.ScoreComponent `json:"components,omitempty"`
}
