// cmd/vacancyctl/render.go
package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"vacancy-workers/internal/applications"
	"vacancy-workers/internal/vacancy"
	"vacancy-workers/internal/vacancy/marketing"
)

var titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))

var headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).MarginTop(1)

var mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

var criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

var boxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#444444")).
	Padding(0, 1)

var levelColors = map[vacancy.ReadinessLevel]lipgloss.Color{
	vacancy.ReadinessOnTrack: lipgloss.Color("#4CAF50"),
	vacancy.ReadinessMonitor: lipgloss.Color("#F5A623"),
	vacancy.ReadinessAtRisk:  lipgloss.Color("#FF6B6B"),
}

func renderReport(snap vacancy.Snapshot, source string) string {
	ins := snap.Insights
	level := lipgloss.NewStyle().Bold(true).Foreground(levelColors[ins.ReadinessLevel]).
		Render(ins.ReadinessLevel.Label())

	header := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(fmt.Sprintf("Vacancy %s → move-in %s", snap.VacancyStart, snap.TargetMoveIn)),
		mutedStyle.Render(fmt.Sprintf("as of %s · %s data", snap.Today, source)),
		fmt.Sprintf("Readiness %d/100 %s · %d days to move-in · %.0f%% expected complete",
			ins.ReadinessScore, level, ins.DaysUntilMoveIn, ins.ExpectedCompletionPct),
	)

	sections := []string{boxStyle.Render(header)}

	var stages []string
	for _, s := range snap.StageProgress {
		stages = append(stages, fmt.Sprintf("%-22s %d/%d", s.StageLabel, s.Completed, s.Total))
	}
	sections = append(sections, headingStyle.Render("Stage progress"), strings.Join(stages, "\n"))

	if len(snap.RoleLoad) > 0 {
		var roles []string
		for _, r := range snap.RoleLoad {
			line := fmt.Sprintf("%-22s %d open", r.RoleLabel, r.Open)
			if r.Overdue > 0 {
				line += criticalStyle.Render(fmt.Sprintf(" · %d overdue", r.Overdue))
			}
			roles = append(roles, line)
		}
		sections = append(sections, headingStyle.Render("Open work by role"), strings.Join(roles, "\n"))
	}

	if len(snap.OverdueTasks) > 0 {
		var overdue []string
		for _, t := range snap.OverdueTasks {
			overdue = append(overdue, criticalStyle.Render(fmt.Sprintf("%s  %s (%s)", t.DueDate, t.Name, t.RoleLabel)))
		}
		sections = append(sections, headingStyle.Render("Overdue"), strings.Join(overdue, "\n"))
	}

	if len(snap.ComplianceAlerts) > 0 {
		var alerts []string
		for _, a := range snap.ComplianceAlerts {
			line := fmt.Sprintf("[%s] %s: %s", a.SeverityLabel, a.Topic, a.Detail)
			if a.Severity == vacancy.SeverityCritical {
				line = criticalStyle.Render(line)
			}
			alerts = append(alerts, line)
		}
		sections = append(sections, headingStyle.Render("Compliance"), strings.Join(alerts, "\n"))
	}

	sections = appendList(sections, "Blockers", ins.Blockers)
	sections = appendList(sections, "Recommended actions", ins.RecommendedActions)
	sections = appendList(sections, "Automation triggers", ins.AutomationTriggers)

	if len(snap.Tasks) > 0 {
		var tasks []string
		for _, t := range snap.Tasks {
			tasks = append(tasks, fmt.Sprintf("%s  %-40s %s", t.DueDate, t.Name, mutedStyle.Render(t.StatusLabel)))
		}
		sections = append(sections, headingStyle.Render("Tasks"), strings.Join(tasks, "\n"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func appendList(sections []string, heading string, items []string) []string {
	if len(items) == 0 {
		return sections
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "• " + item
	}
	return append(sections, headingStyle.Render(heading), strings.Join(lines, "\n"))
}

func renderOutcome(record applications.Record) string {
	lines := []string{
		titleStyle.Render(fmt.Sprintf("Application %s", record.ID())),
		fmt.Sprintf("Status    %s", record.Status.Label()),
		fmt.Sprintf("Decision  %s", record.DecisionRationale()),
	}
	if ev := record.Evaluation; ev != nil {
		lines = append(lines, fmt.Sprintf("Score     %d", ev.TotalScore))
		for _, c := range ev.Components {
			lines = append(lines, mutedStyle.Render(fmt.Sprintf("  %-22s %4d  %s", c.Factor, c.Score, c.Notes)))
		}
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func renderPlan(listing marketing.ListingContext, plan *marketing.Plan) string {
	header := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(fmt.Sprintf("%s %s", listing.PropertyName, listing.UnitID)),
		mutedStyle.Render(fmt.Sprintf("Google Doc %s · %d photo(s)", plan.GoogleDocID, len(plan.SelectedPhotos))),
	)
	sections := []string{boxStyle.Render(header), strings.TrimSpace(plan.Description)}

	if plan.MissingPhotos {
		sections = append(sections, criticalStyle.Render("No listing photos found; request a new shoot."))
	}
	sections = append(sections, mutedStyle.Render(plan.ComplianceSummary))

	if len(plan.ProspectOutcomes) > 0 {
		var prospects []string
		for _, o := range plan.ProspectOutcomes {
			prospects = append(prospects, fmt.Sprintf("• %s: %s", o.Name, o.Decision), mutedStyle.Render("  "+o.Rationale))
		}
		sections = append(sections, headingStyle.Render("Sample prospects"), strings.Join(prospects, "\n"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
