// internal/vacancy/views.go
package vacancy

import (
	"sort"

	"vacancy-workers/internal/models"
)

type StageProgressEntry struct {
	Stage      Stage  `json:"stage"`
	StageLabel string `json:"stage_label"`
	Completed  int    `json:"completed"`
	Total      int    `json:"total"`
}

type RoleLoadEntry struct {
	Role      Role   `json:"role"`
	RoleLabel string `json:"role_label"`
	Open      int    `json:"open"`
	Overdue   int    `json:"overdue"`
}

type TaskSnapshotView struct {
	Key         string       `json:"key"`
	Name        string       `json:"name"`
	Stage       Stage        `json:"stage"`
	StageLabel  string       `json:"stage_label"`
	Role        Role         `json:"role"`
	RoleLabel   string       `json:"role_label"`
	DueDate     models.Date  `json:"due_date"`
	Status      TaskStatus   `json:"status"`
	StatusLabel string       `json:"status_label"`
	CompletedOn *models.Date `json:"completed_on,omitempty"`
}

type ComplianceAlertView struct {
	TaskKey       string   `json:"task_key"`
	Topic         string   `json:"topic"`
	Detail        string   `json:"detail"`
	Severity      Severity `json:"severity"`
	SeverityLabel string   `json:"severity_label"`
}

// TaskDetailView extends the snapshot with the template's checklist text.
type TaskDetailView struct {
	TaskSnapshotView
	Deliverables []string         `json:"deliverables"`
	Compliance   []ComplianceNote `json:"compliance"`
}

// ReportSummary is the wire shape of a VacancyReport.
type ReportSummary struct {
	StageProgress    []StageProgressEntry  `json:"stage_progress"`
	RoleLoad         []RoleLoadEntry       `json:"role_load"`
	OverdueTasks     []TaskSnapshotView    `json:"overdue_tasks"`
	ComplianceAlerts []ComplianceAlertView `json:"compliance_alerts"`
}

// Summary flattens the report maps into stage and role order. Roles with no
// open work are left out.
func (r *VacancyReport) Summary() ReportSummary {
	summary := ReportSummary{
		StageProgress:    []StageProgressEntry{},
		RoleLoad:         []RoleLoadEntry{},
		OverdueTasks:     make([]TaskSnapshotView, 0, len(r.OverdueTasks)),
		ComplianceAlerts: make([]ComplianceAlertView, 0, len(r.ComplianceAlerts)),
	}

	for _, stage := range Stages() {
		progress, ok := r.StageProgress[stage]
		if !ok {
			continue
		}
		summary.StageProgress = append(summary.StageProgress, StageProgressEntry{
			Stage:      stage,
			StageLabel: stage.Label(),
			Completed:  progress.Completed,
			Total:      progress.Total,
		})
	}

	for _, role := range Roles() {
		load, ok := r.RoleLoad[role]
		if !ok {
			continue
		}
		summary.RoleLoad = append(summary.RoleLoad, RoleLoadEntry{
			Role:      role,
			RoleLabel: role.Label(),
			Open:      load.Open,
			Overdue:   load.Overdue,
		})
	}

	for _, task := range r.OverdueTasks {
		summary.OverdueTasks = append(summary.OverdueTasks, TaskSnapshotView{
			Key:         task.Key,
			Name:        task.Name,
			Stage:       task.Stage,
			StageLabel:  task.Stage.Label(),
			Role:        task.Role,
			RoleLabel:   task.Role.Label(),
			DueDate:     task.DueDate,
			Status:      task.Status,
			StatusLabel: task.Status.Label(),
		})
	}

	for _, alert := range r.ComplianceAlerts {
		summary.ComplianceAlerts = append(summary.ComplianceAlerts, ComplianceAlertView{
			TaskKey:       alert.TaskKey,
			Topic:         alert.Topic,
			Detail:        alert.Detail,
			Severity:      alert.Severity,
			SeverityLabel: alert.Severity.Label(),
		})
	}

	return summary
}

// TaskDetails lists every task sorted by due date; ties keep catalog order.
func (w *WorkflowInstance) TaskDetails() []TaskDetailView {
	views := make([]TaskDetailView, 0, len(w.tasks))
	for _, task := range w.tasks {
		tmpl := task.Template.clone()
		view := TaskDetailView{
			TaskSnapshotView: TaskSnapshotView{
				Key:         tmpl.Key,
				Name:        tmpl.Name,
				Stage:       tmpl.Stage,
				StageLabel:  tmpl.Stage.Label(),
				Role:        tmpl.Role,
				RoleLabel:   tmpl.Role.Label(),
				DueDate:     task.DueDate,
				Status:      task.Status,
				StatusLabel: task.Status.Label(),
			},
			Deliverables: tmpl.Deliverables,
			Compliance:   tmpl.Compliance,
		}
		if task.CompletedOn != nil {
			day := *task.CompletedOn
			view.CompletedOn = &day
		}
		views = append(views, view)
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].DueDate.Before(views[j].DueDate)
	})
	return views
}
