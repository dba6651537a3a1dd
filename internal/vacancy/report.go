// internal/vacancy/report.go
package vacancy

import (
	"sort"

	"vacancy-workers/internal/models"
)

type StageProgress struct {
	Completed int
	Total     int
}

func (p StageProgress) Outstanding() int {
	if p.Total < p.Completed {
		return 0
	}
	return p.Total - p.Completed
}

type RoleLoad struct {
	Open    int
	Overdue int
}

type TaskSnapshot struct {
	Key     string
	Name    string
	Stage   Stage
	Role    Role
	DueDate models.Date
	Status  TaskStatus
}

type ComplianceAlert struct {
	TaskKey  string
	Topic    string
	Detail   string
	Severity Severity
}

// VacancyReport is a point-in-time fold of a workflow instance. It is never
// persisted; build a new one for each "as of" date.
type VacancyReport struct {
	AsOf             models.Date
	StageProgress    map[Stage]StageProgress
	RoleLoad         map[Role]RoleLoad
	OverdueTasks     []TaskSnapshot
	ComplianceAlerts []ComplianceAlert
}

// Report folds every task into stage/role counters, overdue entries and
// compliance alerts in a single pass.
func (w *WorkflowInstance) Report(today models.Date) *VacancyReport {
	report := &VacancyReport{
		AsOf:          today,
		StageProgress: make(map[Stage]StageProgress),
		RoleLoad:      make(map[Role]RoleLoad),
	}

	for _, task := range w.tasks {
		tmpl := task.Template

		progress := report.StageProgress[tmpl.Stage]
		progress.Total++
		if task.IsCompleted() {
			progress.Completed++
		}
		report.StageProgress[tmpl.Stage] = progress

		if task.IsCompleted() {
			continue
		}

		overdue := task.DueDate.Before(today)

		load := report.RoleLoad[tmpl.Role]
		load.Open++
		if overdue {
			load.Overdue++
		}
		report.RoleLoad[tmpl.Role] = load

		severity := SeverityWarning
		if overdue {
			severity = SeverityCritical
			report.OverdueTasks = append(report.OverdueTasks, TaskSnapshot{
				Key:     tmpl.Key,
				Name:    tmpl.Name,
				Stage:   tmpl.Stage,
				Role:    tmpl.Role,
				DueDate: task.DueDate,
				Status:  task.Status,
			})
		}
		for _, note := range tmpl.Compliance {
			report.ComplianceAlerts = append(report.ComplianceAlerts, ComplianceAlert{
				TaskKey:  tmpl.Key,
				Topic:    note.Topic,
				Detail:   note.Detail,
				Severity: severity,
			})
		}
	}

	sort.SliceStable(report.OverdueTasks, func(i, j int) bool {
		return report.OverdueTasks[i].DueDate.Before(report.OverdueTasks[j].DueDate)
	})

	return report
}

func (r *VacancyReport) CriticalAlerts() int {
	n := 0
	for _, a := range r.ComplianceAlerts {
		if a.Severity == SeverityCritical {
			n++
		}
	}
	return n
}
