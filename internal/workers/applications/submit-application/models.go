// internal/workers/applications/submit-application/models.go
package submitapplication

import "vacancy-workers/internal/applications"

type Input struct {
	Submission *applications.Submission `json:"submission"`
}

type Output struct {
	ApplicationID     string `json:"applicationId"`
	Status            string `json:"status"`
	DecisionRationale string `json:"decisionRationale"`
}
