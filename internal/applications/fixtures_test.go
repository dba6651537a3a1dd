// internal/applications/fixtures_test.go
package applications

import (
	"vacancy-workers/internal/models"
)

func testConfig() EvaluationConfig {
	minCredit := uint16(600)
	return EvaluationConfig{
		MinimumRentToIncomeRatio:   0.3,
		MinimumCreditScore:         &minCredit,
		MaxEvictions:               1,
		ViolentFelonyLookbackYears: 7,
		NonViolentLookbackYears:    5,
		MisdemeanorLookbackYears:   3,
		DepositCapMultiplier:       2.0,
	}
}

func u16(v uint16) *uint16 { return &v }
func u32(v uint32) *uint32 { return &v }

func sampleSubmission() Submission {
	return Submission{
		Listing: ListingSnapshot{
			UnitID:          "A-203",
			PropertyCode:    "DSM-PARKVIEW",
			ListedRent:      1180,
			AvailableOn:     models.MustParseDate("2025-10-01"),
			DepositRequired: 2100,
		},
		Household: HouseholdComposition{Adults: 1, Children: 1, BedroomsRequired: 2},
		ScreeningAnswers: ScreeningAnswers{
			RequestedAccessibilityAccommodations: []string{"Lowered countertop"},
			RequestedMoveIn:                      models.MustParseDate("2025-10-15"),
			DisclosedVouchers:                    []SubsidyProgram{{Program: "HCV", MonthlyAmount: 450}},
		},
		Income: IncomeDeclaration{
			GrossMonthlyIncome:    4300,
			VerifiedIncomeSources: []string{"Employer paystub"},
			HousingVoucherAmount:  u32(450),
		},
		RentalHistory: []RentalReference{{
			PropertyName: "Maple Court",
			PaidOnTime:   true,
			TenancyStart: models.MustParseDate("2021-06-01"),
		}},
		CreditScore: u16(712),
		CriminalHistory: []CriminalRecord{{
			Classification: Misdemeanor,
			YearsSince:     6,
			Jurisdiction:   "Polk County",
			Description:    "Trespass",
		}},
		SupportingDocuments: []DocumentDescriptor{{
			Name:       "paystub.pdf",
			Category:   DocumentIncomeVerification,
			StorageKey: "docs/paystub.pdf",
		}},
	}
}

func manualReviewSubmission() Submission {
	sub := sampleSubmission()
	sub.CriminalHistory = append(sub.CriminalHistory, CriminalRecord{
		Classification: ViolentFelony,
		YearsSince:     2,
		Jurisdiction:   "Polk County",
		Description:    "Assault",
	})
	return sub
}

func prohibitedSubmission() Submission {
	sub := sampleSubmission()
	sub.ScreeningAnswers.ProhibitedPreferences = []ProhibitedPractice{
		{Kind: ProtectedClassInquiry, Field: "disability"},
	}
	return sub
}
