// internal/vacancy/snapshot.go
package vacancy

import (
	"vacancy-workers/internal/models"
)

// Snapshot bundles everything the report endpoints and workers return for a
// vacancy as of one date.
type Snapshot struct {
	VacancyStart models.Date `json:"vacancy_start"`
	TargetMoveIn models.Date `json:"target_move_in"`
	Today        models.Date `json:"today"`
	ReportSummary
	Insights Insights         `json:"insights"`
	Tasks    []TaskDetailView `json:"tasks,omitempty"`
}

func BuildSnapshot(instance *WorkflowInstance, today models.Date, includeTasks bool) Snapshot {
	summary := instance.Report(today).Summary()
	snap := Snapshot{
		VacancyStart:  instance.VacancyStart(),
		TargetMoveIn:  instance.TargetMoveIn(),
		Today:         today,
		ReportSummary: summary,
		Insights:      GenerateInsights(summary, instance, today),
	}
	if includeTasks {
		snap.Tasks = instance.TaskDetails()
	}
	return snap
}
