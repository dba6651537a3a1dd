// cmd/vacancyctl/demo.go
package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"vacancy-workers/internal/applications"
	"vacancy-workers/internal/bootstrap"
	"vacancy-workers/internal/common/config"
	"vacancy-workers/internal/common/logger"
	"vacancy-workers/internal/models"
	"vacancy-workers/internal/scheduler"
	"vacancy-workers/internal/vacancy"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Walk a seeded vacancy and three applicants through the engines",
	RunE:  runDemo,
}

const demoBase = `{
	"listing": {"unit_id": "A-203", "property_code": "DSM-PARKVIEW", "listed_rent": 1180, "available_on": "2025-10-01", "deposit_required": 2100},
	"household": {"adults": 1, "children": 1, "bedrooms_required": 2},
	"screening_answers": {"requested_accessibility_accommodations": ["Lowered countertop"], "requested_move_in": "2025-10-15"},
	"income": {"gross_monthly_income": 4300, "verified_income_sources": ["Employer paystub"], "housing_voucher_amount": 450},
	"rental_history": [{"property_name": "Maple Court", "paid_on_time": true}],
	"credit_score": 712,
	"criminal_history": [{"classification": "Misdemeanor", "years_since": 6}]
}`

type demoApplicant struct {
	label  string
	mutate func(*applications.Submission)
}

var demoApplicants = []demoApplicant{
	{label: "qualified applicant"},
	{label: "recent violent felony", mutate: func(s *applications.Submission) {
		s.CriminalHistory = []applications.CriminalRecord{{
			Classification: applications.ViolentFelony,
			YearsSince:     2,
			Jurisdiction:   "Polk County",
			Description:    "Assault",
		}}
	}},
	{label: "deposit above cap", mutate: func(s *applications.Submission) {
		s.Listing.DepositRequired = 2361
	}},
}

var demoWindow = struct{ start, moveIn, today string }{"2025-09-24", "2025-10-15", "2025-10-01"}

func runDemo(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	out := cmd.OutOrStdout()

	app := bootstrap.NewInMemory(applications.DefaultEvaluationConfig(), logger.NewNoOpLogger())
	defer app.Close()

	fmt.Fprintln(out, titleStyle.Render("Applications"))
	for _, applicant := range demoApplicants {
		var sub applications.Submission
		if err := json.Unmarshal([]byte(demoBase), &sub); err != nil {
			return err
		}
		if applicant.mutate != nil {
			applicant.mutate(&sub)
		}

		record, err := screen(ctx, app.Service, sub)
		if err != nil {
			fmt.Fprintf(out, "%s: %s\n", applicant.label, criticalStyle.Render(err.Error()))
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", applicant.label, renderOutcome(record))
	}

	sweep := scheduler.NewPendingSweep(app.Service, app.Publisher, config.DefaultPendingSweep, config.DefaultPendingLimit)
	result := sweep.RunOnce(ctx)
	fmt.Fprintf(out, "\npending-review sweep: %d checked, %d reminders sent, %d failed\n\n",
		result.Checked, result.Published, result.Failed)

	start := models.MustParseDate(demoWindow.start)
	moveIn := models.MustParseDate(demoWindow.moveIn)
	today := models.MustParseDate(demoWindow.today)
	completed := models.MustParseDate("2025-09-26")

	instance := vacancy.NewInstance(vacancy.StandardCatalog(), start, moveIn)
	if err := instance.ApplyUpdates([]vacancy.TaskUpdate{
		{Key: "marketing_publish_listing", Status: vacancy.StatusCompleted, CompletedOn: &completed},
		{Key: "screening_manage_inquiries", Status: vacancy.StatusInProgress},
	}); err != nil {
		return err
	}

	_, err := fmt.Fprintln(out, renderReport(vacancy.BuildSnapshot(instance, today, false), "standard"))
	return err
}
