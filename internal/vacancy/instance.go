// internal/vacancy/instance.go
package vacancy

import (
	"vacancy-workers/internal/models"
)

type TaskInstance struct {
	Template    TaskTemplate `json:"template"`
	DueDate     models.Date  `json:"due_date"`
	Status      TaskStatus   `json:"status"`
	CompletedOn *models.Date `json:"completed_on,omitempty"`
}

func (t TaskInstance) IsCompleted() bool { return t.Status == StatusCompleted }

// IsOverdue reports whether the task is still open after its due date.
func (t TaskInstance) IsOverdue(today models.Date) bool {
	return !t.IsCompleted() && t.DueDate.Before(today)
}

// WorkflowInstance binds a catalog to one vacancy. Tasks are fixed at creation;
// only their status changes afterwards.
type WorkflowInstance struct {
	vacancyStart models.Date
	targetMoveIn models.Date
	tasks        []TaskInstance
}

func NewInstance(catalog *Catalog, vacancyStart, targetMoveIn models.Date) *WorkflowInstance {
	templates := catalog.Templates()
	tasks := make([]TaskInstance, 0, len(templates))
	for _, tmpl := range templates {
		tasks = append(tasks, TaskInstance{
			Template: tmpl,
			DueDate:  tmpl.Due.Resolve(vacancyStart, targetMoveIn),
			Status:   StatusNotStarted,
		})
	}
	return &WorkflowInstance{
		vacancyStart: vacancyStart,
		targetMoveIn: targetMoveIn,
		tasks:        tasks,
	}
}

func (w *WorkflowInstance) VacancyStart() models.Date { return w.vacancyStart }
func (w *WorkflowInstance) TargetMoveIn() models.Date { return w.targetMoveIn }

// Tasks returns a snapshot of the task instances in catalog order.
func (w *WorkflowInstance) Tasks() []TaskInstance {
	out := make([]TaskInstance, len(w.tasks))
	copy(out, w.tasks)
	return out
}

func (w *WorkflowInstance) Task(key string) (TaskInstance, bool) {
	for _, t := range w.tasks {
		if t.Template.Key == key {
			return t, true
		}
	}
	return TaskInstance{}, false
}

// SetStatus moves a task to status. completedOn is kept only when status is
// Completed and may be nil when the completion date is unknown. Any
// transition is accepted, including reopening a completed task.
func (w *WorkflowInstance) SetStatus(key string, status TaskStatus, completedOn *models.Date) error {
	for i := range w.tasks {
		if w.tasks[i].Template.Key != key {
			continue
		}
		w.tasks[i].Status = status
		w.tasks[i].CompletedOn = nil
		if status == StatusCompleted && completedOn != nil {
			day := *completedOn
			w.tasks[i].CompletedOn = &day
		}
		return nil
	}
	return &TaskNotFoundError{Key: key}
}

func (w *WorkflowInstance) CompletedCount() int {
	n := 0
	for _, t := range w.tasks {
		if t.IsCompleted() {
			n++
		}
	}
	return n
}
