// internal/vacancy/domain.go
package vacancy

import (
	"errors"
	"fmt"

	"vacancy-workers/internal/models"
)

type Stage string

const (
	StageMarketing Stage = "marketing_and_advertising"
	StageScreening Stage = "screening_and_application"
	StageLeasing   Stage = "lease_signing_and_move_in"
	StageHandoff   Stage = "handoff"
)

// Stages lists every stage in workflow order.
func Stages() []Stage {
	return []Stage{StageMarketing, StageScreening, StageLeasing, StageHandoff}
}

func (s Stage) Label() string {
	switch s {
	case StageMarketing:
		return "Marketing & Advertising"
	case StageScreening:
		return "Screening & Application"
	case StageLeasing:
		return "Lease Signing & Move-In"
	case StageHandoff:
		return "Handoff"
	default:
		return string(s)
	}
}

type Role string

const (
	RoleLeasingAgent              Role = "leasing_agent"
	RoleComplianceCoordinator     Role = "compliance_coordinator"
	RolePropertyManager           Role = "property_manager"
	RolePropertyManagerAccounting Role = "property_manager_accounting"
)

func Roles() []Role {
	return []Role{RoleLeasingAgent, RoleComplianceCoordinator, RolePropertyManager, RolePropertyManagerAccounting}
}

func (r Role) Label() string {
	switch r {
	case RoleLeasingAgent:
		return "Leasing Agent"
	case RoleComplianceCoordinator:
		return "Compliance Coordinator"
	case RolePropertyManager:
		return "Property Manager"
	case RolePropertyManagerAccounting:
		return "Property Manager (Accounting)"
	default:
		return string(r)
	}
}

type TaskStatus string

const (
	StatusNotStarted TaskStatus = "not_started"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusBlocked    TaskStatus = "blocked"
)

func (s TaskStatus) Label() string {
	switch s {
	case StatusNotStarted:
		return "Not Started"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusBlocked:
		return "Blocked"
	default:
		return string(s)
	}
}

func ParseTaskStatus(value string) (TaskStatus, error) {
	switch s := TaskStatus(value); s {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusBlocked:
		return s, nil
	}
	return "", fmt.Errorf("unknown task status %q", value)
}

type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

func (s Severity) Label() string {
	switch s {
	case SeverityWarning:
		return "Warning"
	case SeverityCritical:
		return "Critical"
	default:
		return string(s)
	}
}

type DueRuleKind string

const (
	DueDaysFromVacancy  DueRuleKind = "days_from_vacancy"
	DueDaysBeforeMoveIn DueRuleKind = "days_before_move_in"
	DueOnMoveIn         DueRuleKind = "on_move_in"
)

// DueDateRule anchors a task to the vacancy start or the target move-in.
type DueDateRule struct {
	Kind DueRuleKind `json:"kind"`
	Days int         `json:"days,omitempty"`
}

func DaysFromVacancy(n int) DueDateRule  { return DueDateRule{Kind: DueDaysFromVacancy, Days: n} }
func DaysBeforeMoveIn(n int) DueDateRule { return DueDateRule{Kind: DueDaysBeforeMoveIn, Days: n} }
func OnMoveIn() DueDateRule              { return DueDateRule{Kind: DueOnMoveIn} }

// Resolve turns the rule into a calendar date. Past dates are returned as-is.
func (r DueDateRule) Resolve(vacancyStart, targetMoveIn models.Date) models.Date {
	switch r.Kind {
	case DueDaysFromVacancy:
		return vacancyStart.AddDays(r.Days)
	case DueDaysBeforeMoveIn:
		return targetMoveIn.AddDays(-r.Days)
	default:
		return targetMoveIn
	}
}

type ComplianceNote struct {
	Topic  string `json:"topic"`
	Detail string `json:"detail"`
}

type TaskTemplate struct {
	Key          string           `json:"key"`
	Name         string           `json:"name"`
	Stage        Stage            `json:"stage"`
	Role         Role             `json:"role"`
	Due          DueDateRule      `json:"due"`
	Deliverables []string         `json:"deliverables"`
	Compliance   []ComplianceNote `json:"compliance"`
}

func (t TaskTemplate) clone() TaskTemplate {
	t.Deliverables = append([]string(nil), t.Deliverables...)
	t.Compliance = append([]ComplianceNote(nil), t.Compliance...)
	return t
}

var ErrTaskNotFound = errors.New("TASK_NOT_FOUND")

type TaskNotFoundError struct {
	Key string
}

func (e *TaskNotFoundError) Error() string {
	return fmt.Sprintf("task with key %s not found", e.Key)
}

func (e *TaskNotFoundError) Is(target error) bool {
	return target == ErrTaskNotFound
}
