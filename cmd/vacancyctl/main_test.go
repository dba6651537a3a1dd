package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vacancy-workers/internal/applications"
	"vacancy-workers/internal/vacancy"
	"vacancy-workers/pkg/registry"
)

func resetFlags() {
	configFlag = ""
	vacancyStartFlag, targetMoveInFlag, todayFlag, apolloFileFlag = "", "", "", ""
	reportJSONFlag, includeTasksFlag = false, false
	catalogFormat = "yaml"
	submissionFile, evaluateJSON = "", false
	listingFile, driveCredentials, listingJSON = "", "", false
}

func run(t *testing.T, fn func(*cobra.Command, []string) error) (string, error) {
	t.Helper()
	t.Cleanup(resetFlags)
	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)
	err := fn(cmd, []string{})
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRootCommand_Wiring(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "worker", "vacancy", "applications", "registry", "demo"} {
		assert.True(t, names[want], "missing command %s", want)
	}
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestVacancyCatalog_YAML(t *testing.T) {
	out, err := run(t, runVacancyCatalog)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "tasks:"))
	assert.Contains(t, out, "key: marketing_publish_listing")
	assert.Contains(t, out, "0 days after vacancy start")
	assert.Contains(t, out, "on move-in day")
}

func TestVacancyCatalog_JSON(t *testing.T) {
	catalogFormat = "json"
	out, err := run(t, runVacancyCatalog)
	require.NoError(t, err)

	var entries []catalogEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.Len(t, entries, vacancy.StandardCatalog().Len())
	assert.Equal(t, "Create and Publish Listing", entries[0].Name)
}

func TestVacancyCatalog_UnsupportedFormat(t *testing.T) {
	catalogFormat = "toml"
	_, err := run(t, runVacancyCatalog)
	assert.EqualError(t, err, `unsupported format "toml" (want yaml or json)`)
}

func TestVacancyReport_JSON(t *testing.T) {
	vacancyStartFlag, targetMoveInFlag, todayFlag = "2025-09-24", "2025-10-15", "2025-10-01"
	reportJSONFlag, includeTasksFlag = true, true

	out, err := run(t, runVacancyReport)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "standard", body["data_source"])
	assert.Equal(t, "2025-10-01", body["today"])
	assert.Len(t, body["stage_progress"], len(vacancy.Stages()))
	assert.Len(t, body["tasks"], vacancy.StandardCatalog().Len())
	assert.Contains(t, body["insights"], "readiness_label")
}

func TestVacancyReport_Rendered(t *testing.T) {
	vacancyStartFlag, targetMoveInFlag, todayFlag = "2025-09-24", "2025-10-15", "2025-10-01"

	out, err := run(t, runVacancyReport)

	require.NoError(t, err)
	assert.Contains(t, out, "Readiness")
	assert.Contains(t, out, "Stage progress")
	assert.Contains(t, out, "Create and Publish Listing")
	assert.Contains(t, out, "standard data")
}

func TestVacancyReport_Apollo(t *testing.T) {
	vacancyStartFlag, targetMoveInFlag, todayFlag = "2025-09-24", "2025-10-15", "2025-10-01"
	apolloFileFlag = writeFile(t, "apollo.csv",
		"Name,Created At,Completed At,Last Modified\nCreate and Publish Listing,2025-09-24,2025-09-26,2025-09-26\n")
	reportJSONFlag = true

	out, err := run(t, runVacancyReport)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "apollo", body["data_source"])
}

func TestVacancyReport_Errors(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		moveIn  string
		today   string
		wantErr string
	}{
		{name: "bad start", start: "09/24/2025", moveIn: "2025-10-15", wantErr: "--vacancy-start"},
		{name: "bad move-in", start: "2025-09-24", moveIn: "soon", wantErr: "--target-move-in"},
		{name: "bad today", start: "2025-09-24", moveIn: "2025-10-15", today: "yesterday", wantErr: "--today"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vacancyStartFlag, targetMoveInFlag, todayFlag = tt.start, tt.moveIn, tt.today
			_, err := run(t, runVacancyReport)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestVacancyReport_InvertedWindow(t *testing.T) {
	vacancyStartFlag, targetMoveInFlag = "2025-10-15", "2025-09-24"

	_, err := run(t, runVacancyReport)

	assert.True(t, errors.Is(err, vacancy.ErrInvalidWindow))
}

const testSubmission = `{
	"listing": {"unit_id": "A-203", "property_code": "DSM-PARKVIEW", "listed_rent": 1180, "available_on": "2025-10-01", "deposit_required": 2100},
	"household": {"adults": 1, "children": 1, "bedrooms_required": 2},
	"screening_answers": {"requested_accessibility_accommodations": ["Lowered countertop"], "requested_move_in": "2025-10-15"},
	"income": {"gross_monthly_income": 4300, "verified_income_sources": ["Employer paystub"], "housing_voucher_amount": 450},
	"rental_history": [{"property_name": "Maple Court", "paid_on_time": true}],
	"credit_score": 712,
	"criminal_history": [{"classification": "Misdemeanor", "years_since": 6}]
}`

const testSubmissionYAML = `
listing:
  unit_id: A-203
  property_code: DSM-PARKVIEW
  listed_rent: 1180
  available_on: "2025-10-01"
  deposit_required: 2100
household:
  adults: 1
  children: 1
  bedrooms_required: 2
screening_answers:
  requested_accessibility_accommodations: [Lowered countertop]
  requested_move_in: "2025-10-15"
income:
  gross_monthly_income: 4300
  verified_income_sources: [Employer paystub]
  housing_voucher_amount: 450
rental_history:
  - property_name: Maple Court
    paid_on_time: true
credit_score: 712
criminal_history:
  - classification: Misdemeanor
    years_since: 6
`

func TestApplicationsEvaluate_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "json", file: "submission.json", content: testSubmission},
		{name: "yaml", file: "submission.yaml", content: testSubmissionYAML},
		{name: "yml", file: "submission.YML", content: testSubmissionYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submissionFile = writeFile(t, tt.file, tt.content)
			evaluateJSON = true

			out, err := run(t, runApplicationsEvaluate)
			require.NoError(t, err)

			var record struct {
				Profile struct {
					ApplicationID string `json:"application_id"`
				} `json:"profile"`
				Status     string `json:"status"`
				Evaluation *struct {
					TotalScore int `json:"total_score"`
				} `json:"evaluation"`
			}
			require.NoError(t, json.Unmarshal([]byte(out), &record))
			assert.Equal(t, "app-000001", record.Profile.ApplicationID)
			assert.Equal(t, string(applications.StatusApproved), record.Status)
			require.NotNil(t, record.Evaluation)
			assert.Equal(t, 70, record.Evaluation.TotalScore)
		})
	}
}

func TestApplicationsEvaluate_Rendered(t *testing.T) {
	submissionFile = writeFile(t, "submission.json", testSubmission)

	out, err := run(t, runApplicationsEvaluate)

	require.NoError(t, err)
	assert.Contains(t, out, "Application app-000001")
	assert.Contains(t, out, "Status    approved")
	assert.Contains(t, out, "Score     70")
}

func TestApplicationsEvaluate_ComplianceViolation(t *testing.T) {
	submissionFile = writeFile(t, "submission.json",
		strings.Replace(testSubmission, `"deposit_required": 2100`, `"deposit_required": 2361`, 1))

	_, err := run(t, runApplicationsEvaluate)

	var svcErr *applications.ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, applications.KindCompliance, svcErr.Kind)
}

func TestReadSubmission_Errors(t *testing.T) {
	_, err := readSubmission(writeFile(t, "submission.txt", testSubmission))
	assert.EqualError(t, err, `unsupported submission format ".txt"`)

	_, err = readSubmission(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	_, err = readSubmission(writeFile(t, "broken.yaml", "listing: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse ")
}

func TestRegistryExport(t *testing.T) {
	out, err := run(t, runRegistryExport)
	require.NoError(t, err)

	var reg registry.ActivityRegistry
	require.NoError(t, json.Unmarshal([]byte(out), &reg))
	assert.ElementsMatch(t, registry.Default().TaskTypes(), reg.TaskTypes())
}

func TestDemo(t *testing.T) {
	out, err := run(t, runDemo)

	require.NoError(t, err)
	assert.Contains(t, out, "qualified applicant")
	assert.Contains(t, out, "Status    approved")
	assert.Contains(t, out, "Status    under_review")
	assert.Contains(t, out, "deposit above cap")
	assert.Contains(t, out, "pending-review sweep: 1 checked, 1 reminders sent, 0 failed")
	assert.Contains(t, out, "Stage progress")
}

func listingDocument() string {
	return `{
	"listing": {
		"unit_id": "A-203", "property_code": "DSM-PARKVIEW", "property_name": "Parkview Flats",
		"address": "410 Park Ave, Des Moines, IA", "bedrooms": 2, "bathrooms": 1, "square_feet": 880,
		"rent": 1180, "deposit": 2100, "amenities": ["Secure entry"], "drive_folder_id": "parkview-a203",
		"available_on": "2025-10-01"
	},
	"sample_applicants": [{"name": "Qualified household", "submission": ` + testSubmission + `}]
}`
}

func TestVacancyListing_JSON(t *testing.T) {
	listingFile = writeFile(t, "listing.json", listingDocument())
	listingJSON = true

	out, err := run(t, runVacancyListing)
	require.NoError(t, err)

	var plan struct {
		GoogleDocID      string `json:"google_doc_id"`
		MissingPhotos    bool   `json:"missing_photos"`
		Description      string `json:"description"`
		ProspectOutcomes []struct {
			Name     string `json:"name"`
			Decision string `json:"decision"`
		} `json:"prospect_outcomes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.Equal(t, "doc-001", plan.GoogleDocID)
	assert.True(t, plan.MissingPhotos)
	assert.Contains(t, plan.Description, "Parkview Flats A-203 - Available October 01, 2025")
	require.Len(t, plan.ProspectOutcomes, 1)
	assert.Equal(t, "Qualified household", plan.ProspectOutcomes[0].Name)
	assert.Equal(t, "application approved", plan.ProspectOutcomes[0].Decision)
}

func TestVacancyListing_Rendered(t *testing.T) {
	listingFile = writeFile(t, "listing.json", listingDocument())

	out, err := run(t, runVacancyListing)

	require.NoError(t, err)
	assert.Contains(t, out, "Parkview Flats A-203")
	assert.Contains(t, out, "No listing photos found")
	assert.Contains(t, out, "Sample prospects")
	assert.Contains(t, out, "Qualified household: application approved")
}

func TestVacancyListing_UnsupportedFormat(t *testing.T) {
	listingFile = writeFile(t, "listing.toml", listingDocument())

	_, err := run(t, runVacancyListing)

	assert.EqualError(t, err, `unsupported listing format ".toml"`)
}
