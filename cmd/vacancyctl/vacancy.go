// cmd/vacancyctl/vacancy.go
package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"vacancy-workers/internal/models"
	"vacancy-workers/internal/vacancy"
	"vacancy-workers/internal/vacancy/apollo"
)

var vacancyCmd = &cobra.Command{
	Use:   "vacancy",
	Short: "Vacancy workflow reports and the task catalog",
}

var vacancyReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build a readiness report for a vacancy window",
	RunE:  runVacancyReport,
}

var vacancyCatalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the standard task catalog",
	RunE:  runVacancyCatalog,
}

var (
	vacancyStartFlag string
	targetMoveInFlag string
	todayFlag        string
	apolloFileFlag   string
	reportJSONFlag   bool
	includeTasksFlag bool
	catalogFormat    string
)

func init() {
	vacancyReportCmd.Flags().StringVar(&vacancyStartFlag, "vacancy-start", "", "First day the unit is vacant (YYYY-MM-DD)")
	vacancyReportCmd.Flags().StringVar(&targetMoveInFlag, "target-move-in", "", "Target move-in date (YYYY-MM-DD)")
	vacancyReportCmd.Flags().StringVar(&todayFlag, "today", "", "Report date (defaults to the local date)")
	vacancyReportCmd.Flags().StringVar(&apolloFileFlag, "apollo-csv", "", "Apollo task export (.csv or .xlsx)")
	vacancyReportCmd.Flags().BoolVar(&reportJSONFlag, "json", false, "Print the snapshot as JSON")
	vacancyReportCmd.Flags().BoolVar(&includeTasksFlag, "include-tasks", false, "Include per-task checklist detail")
	_ = vacancyReportCmd.MarkFlagRequired("vacancy-start")
	_ = vacancyReportCmd.MarkFlagRequired("target-move-in")

	vacancyCatalogCmd.Flags().StringVarP(&catalogFormat, "format", "f", "yaml", "Output format: yaml or json")

	vacancyCmd.AddCommand(vacancyReportCmd, vacancyCatalogCmd)
}

func runVacancyReport(cmd *cobra.Command, args []string) error {
	start, err := models.ParseDate(vacancyStartFlag)
	if err != nil {
		return fmt.Errorf("--vacancy-start: %w", err)
	}
	moveIn, err := models.ParseDate(targetMoveInFlag)
	if err != nil {
		return fmt.Errorf("--target-move-in: %w", err)
	}
	if err := vacancy.ValidateWindow(start, moveIn); err != nil {
		return err
	}

	today := models.Today()
	if todayFlag != "" {
		if today, err = models.ParseDate(todayFlag); err != nil {
			return fmt.Errorf("--today: %w", err)
		}
	}

	instance := vacancy.NewInstance(vacancy.StandardCatalog(), start, moveIn)
	source := "standard"
	if apolloFileFlag != "" {
		if instance, err = apollo.ImportFile(apolloFileFlag, start, moveIn); err != nil {
			return err
		}
		source = "apollo"
	}

	snap := vacancy.BuildSnapshot(instance, today, includeTasksFlag)
	out := cmd.OutOrStdout()
	if reportJSONFlag {
		return writeJSON(out, struct {
			DataSource string `json:"data_source"`
			vacancy.Snapshot
		}{source, snap})
	}
	_, err = fmt.Fprintln(out, renderReport(snap, source))
	return err
}

// catalogEntry is the export shape of a task template, with due rules
// spelled out for people editing the catalog by hand.
type catalogEntry struct {
	Key          string                   `json:"key" yaml:"key"`
	Name         string                   `json:"name" yaml:"name"`
	Stage        string                   `json:"stage" yaml:"stage"`
	Role         string                   `json:"role" yaml:"role"`
	Due          string                   `json:"due" yaml:"due"`
	Deliverables []string                 `json:"deliverables" yaml:"deliverables"`
	Compliance   []vacancy.ComplianceNote `json:"compliance,omitempty" yaml:"compliance,omitempty"`
}

func describeDue(rule vacancy.DueDateRule) string {
	switch rule.Kind {
	case vacancy.DueDaysFromVacancy:
		return fmt.Sprintf("%d days after vacancy start", rule.Days)
	case vacancy.DueDaysBeforeMoveIn:
		return fmt.Sprintf("%d days before move-in", rule.Days)
	default:
		return "on move-in day"
	}
}

func catalogEntries(catalog *vacancy.Catalog) []catalogEntry {
	templates := catalog.Templates()
	entries := make([]catalogEntry, 0, len(templates))
	for _, t := range templates {
		entries = append(entries, catalogEntry{
			Key:          t.Key,
			Name:         t.Name,
			Stage:        t.Stage.Label(),
			Role:         t.Role.Label(),
			Due:          describeDue(t.Due),
			Deliverables: t.Deliverables,
			Compliance:   t.Compliance,
		})
	}
	return entries
}

func runVacancyCatalog(cmd *cobra.Command, args []string) error {
	entries := catalogEntries(vacancy.StandardCatalog())
	out := cmd.OutOrStdout()

	switch catalogFormat {
	case "json":
		return writeJSON(out, entries)
	case "yaml", "":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(map[string]interface{}{"tasks": entries}); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q (want yaml or json)", catalogFormat)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
