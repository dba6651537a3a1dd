package repository

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vacancy-workers/internal/applications"
	"vacancy-workers/internal/models"
)

func testSubmission() applications.Submission {
	credit := uint16(712)
	voucher := uint32(450)
	return applications.Submission{
		Listing: applications.ListingSnapshot{
			UnitID:          "A-203",
			PropertyCode:    "DSM-PARKVIEW",
			ListedRent:      1180,
			AvailableOn:     models.MustParseDate("2025-10-01"),
			DepositRequired: 2100,
		},
		Household: applications.HouseholdComposition{Adults: 1, Children: 1, BedroomsRequired: 2},
		Income: applications.IncomeDeclaration{
			GrossMonthlyIncome:    4300,
			VerifiedIncomeSources: []string{"Employer paystub"},
			HousingVoucherAmount:  &voucher,
		},
		RentalHistory: []applications.RentalReference{{PropertyName: "Maple Court", PaidOnTime: true}},
		CreditScore:   &credit,
	}
}

// submittedRecord runs the guard so the stored profile looks like real
// intake output.
func submittedRecord(t *testing.T, id applications.ApplicationID) applications.Record {
	t.Helper()
	guard := applications.ComplianceGuardFromConfig(applications.DefaultEvaluationConfig())
	profile, err := guard.ProfileFromSubmission(testSubmission())
	require.NoError(t, err)
	profile.ApplicationID = id
	return applications.Record{Profile: *profile, Status: applications.StatusSubmitted}
}

func evaluatedRecord(t *testing.T, id applications.ApplicationID) applications.Record {
	t.Helper()
	record := submittedRecord(t, id)
	outcome := applications.NewEvaluationEngine(applications.DefaultEvaluationConfig()).Score(&record.Profile)
	record.Status = outcome.Decision.Status()
	record.Evaluation = &outcome
	return record
}
