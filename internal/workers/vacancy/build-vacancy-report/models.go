// internal/workers/vacancy/build-vacancy-report/models.go
package buildvacancyreport

import "vacancy-workers/internal/vacancy"

type Input struct {
	VacancyStart string               `json:"vacancyStart"`
	TargetMoveIn string               `json:"targetMoveIn"`
	Today        string               `json:"today,omitempty"`
	IncludeTasks *bool                `json:"includeTasks,omitempty"`
	ApolloCSV    string               `json:"apolloCsv,omitempty"`
	TaskUpdates  []vacancy.TaskUpdate `json:"taskUpdates,omitempty"`
}

type Output struct {
	ReadinessScore int              `json:"readinessScore"`
	ReadinessLevel string           `json:"readinessLevel"`
	OverdueCount   int              `json:"overdueCount"`
	CriticalAlerts int              `json:"criticalAlerts"`
	DataSource     string           `json:"dataSource"`
	Snapshot       vacancy.Snapshot `json:"snapshot"`
}
