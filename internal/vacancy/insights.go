// internal/vacancy/insights.go
package vacancy

import (
	"encoding/json"
	"fmt"
	"math"

	"vacancy-workers/internal/models"
)

type ReadinessLevel string

const (
	ReadinessOnTrack ReadinessLevel = "on_track"
	ReadinessMonitor ReadinessLevel = "monitor"
	ReadinessAtRisk  ReadinessLevel = "at_risk"
)

func (l ReadinessLevel) Label() string {
	switch l {
	case ReadinessOnTrack:
		return "On Track"
	case ReadinessMonitor:
		return "Monitor"
	case ReadinessAtRisk:
		return "At Risk"
	default:
		return string(l)
	}
}

// Insights is advisory narrative derived from report counters. Nothing
// downstream makes decisions from the text lists.
type Insights struct {
	ReadinessScore        int            `json:"readiness_score"`
	ReadinessLevel        ReadinessLevel `json:"readiness_level"`
	ExpectedCompletionPct float64        `json:"expected_completion_pct"`
	DaysUntilMoveIn       int            `json:"days_until_move_in"`
	DaysSinceVacancy      int            `json:"days_since_vacancy"`
	FocusStage            string         `json:"focus_stage,omitempty"`
	FocusStageCompletion  *float64       `json:"focus_stage_completion,omitempty"`
	Blockers              []string       `json:"blockers,omitempty"`
	Observations          []string       `json:"ai_observations,omitempty"`
	RecommendedActions    []string       `json:"recommended_actions,omitempty"`
	AutomationTriggers    []string       `json:"automation_triggers,omitempty"`
}

// MarshalJSON adds readiness_label next to the level value.
func (i Insights) MarshalJSON() ([]byte, error) {
	type plain Insights
	return json.Marshal(struct {
		plain
		ReadinessLabel string `json:"readiness_label"`
	}{plain: plain(i), ReadinessLabel: i.ReadinessLevel.Label()})
}

var stageActions = map[Stage]string{
	StageMarketing: "Refresh listing creative and auto-respond to new leads via SMS & email",
	StageScreening: "Trigger AI-driven applicant nudges and status updates across channels",
	StageLeasing:   "Bundle lease packet tasks and push DocuSign reminders automatically",
	StageHandoff:   "Send welcome workflow kickoff with onboarding checklist",
}

// GenerateInsights scores readiness for the instance as of today.
func GenerateInsights(summary ReportSummary, instance *WorkflowInstance, today models.Date) Insights {
	total := len(instance.tasks)
	completed := instance.CompletedCount()
	open := total - completed

	score := 0
	if total > 0 {
		score = int(math.Round(float64(completed) / float64(total) * 100))
	}
	score = clampInt(score, 0, 100)

	overdue := len(summary.OverdueTasks)
	daysUntil := instance.targetMoveIn.DaysSince(today)
	daysSince := today.DaysSince(instance.vacancyStart)
	window := instance.targetMoveIn.DaysSince(instance.vacancyStart)

	expected := 1.0
	if window > 0 {
		expected = math.Min(math.Max(float64(daysSince)/float64(window), 0), 1)
	}
	threshold := expected*100 - 10
	atRiskTiming := daysUntil <= 0 && open > 0
	atRiskProgress := float64(score) < math.Max(threshold, 0)

	var level ReadinessLevel
	switch {
	case score >= 80 && overdue == 0:
		level = ReadinessOnTrack
	case score >= 60 && overdue <= 1 && daysUntil > 3:
		level = ReadinessMonitor
	case atRiskTiming || atRiskProgress:
		level = ReadinessAtRisk
	default:
		level = ReadinessMonitor
	}

	insights := Insights{
		ReadinessScore:        score,
		ReadinessLevel:        level,
		ExpectedCompletionPct: expected,
		DaysUntilMoveIn:       daysUntil,
		DaysSinceVacancy:      daysSince,
	}

	focus, hasFocus := focusStage(summary.StageProgress)
	if hasFocus {
		insights.FocusStage = focus.StageLabel
		if focus.Total > 0 {
			completion := float64(focus.Completed) / float64(focus.Total)
			insights.FocusStageCompletion = &completion
		}
	}

	for i, task := range summary.OverdueTasks {
		if i == 3 {
			break
		}
		insights.Blockers = append(insights.Blockers,
			fmt.Sprintf("%s (%s), overdue since %s", task.Name, task.RoleLabel, task.DueDate))
	}
	if len(insights.Blockers) == 0 && open > 0 && daysUntil <= 3 {
		insights.Blockers = append(insights.Blockers, "Move-in is days away with open tasks remaining")
	}

	if total > 0 {
		insights.Observations = append(insights.Observations,
			fmt.Sprintf("%d of %d tasks complete (%d%% readiness)", completed, total, score))
	}
	if overdue > 0 {
		insights.Observations = append(insights.Observations,
			fmt.Sprintf("%d critical task(s) overdue impacting compliance", overdue))
	}
	if float64(score)+5 < expected*100 {
		insights.Observations = append(insights.Observations,
			fmt.Sprintf("Progress is %.0f%% below expected pace for this vacancy window", math.Round(expected*100-float64(score))))
	}
	if daysUntil <= 7 {
		insights.Observations = append(insights.Observations,
			fmt.Sprintf("%d day(s) until target move-in; prioritize move-in readiness", maxInt(daysUntil, 0)))
	}

	if hasFocus {
		if outstanding := focus.Total - focus.Completed; outstanding > 0 {
			insights.RecommendedActions = append(insights.RecommendedActions,
				fmt.Sprintf("Concentrate automation on %s (%d open item%s)", focus.StageLabel, outstanding, plural(outstanding)))
		}
		if action, ok := stageActions[focus.Stage]; ok {
			insights.RecommendedActions = append(insights.RecommendedActions, action)
		}
	}
	if len(summary.ComplianceAlerts) > 0 {
		insights.RecommendedActions = append(insights.RecommendedActions,
			"Escalate compliance checklist to coordinator with documented follow-up")
	}
	if daysUntil <= 5 && open > 0 {
		insights.RecommendedActions = append(insights.RecommendedActions,
			"Schedule daily readiness standups until move-in blockers are cleared")
	}

	for _, entry := range summary.StageProgress {
		if outstanding := entry.Total - entry.Completed; outstanding > 0 {
			insights.AutomationTriggers = append(insights.AutomationTriggers,
				fmt.Sprintf("Auto-remind %s owners of %d remaining task%s", entry.StageLabel, outstanding, plural(outstanding)))
		}
	}
	if overdue > 0 {
		insights.AutomationTriggers = append(insights.AutomationTriggers,
			"Dispatch compliance alerts to AppFolio task queues for overdue work")
	}

	if len(insights.Observations) == 0 {
		insights.Observations = append(insights.Observations,
			"No blockers detected; maintain current automation cadence")
	}

	return insights
}

// focusStage picks the incomplete stage with the most outstanding tasks.
// On a tie the earlier stage wins.
func focusStage(entries []StageProgressEntry) (StageProgressEntry, bool) {
	var best StageProgressEntry
	found := false
	for _, entry := range entries {
		outstanding := entry.Total - entry.Completed
		if outstanding <= 0 {
			continue
		}
		if !found || outstanding > best.Total-best.Completed {
			best = entry
			found = true
		}
	}
	return best, found
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
