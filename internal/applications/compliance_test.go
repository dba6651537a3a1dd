// internal/applications/compliance_test.go
package applications

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileFromSubmissionBuildsFactors(t *testing.T) {
	guard := ComplianceGuardFromConfig(testConfig())

	profile, err := guard.ProfileFromSubmission(sampleSubmission())
	require.NoError(t, err)

	assert.Equal(t, ApplicationID("pending"), profile.ApplicationID)
	assert.Equal(t, []LawfulFactorKind{
		FactorRentToIncome,
		FactorCreditScore,
		FactorRentalHistory,
		FactorCriminalHistoryWindow,
		FactorVoucherCoverage,
		FactorIowaSecurityDepositCompliance,
	}, profile.LawfulFactors.Kinds())

	ratio, ok := profile.LawfulFactors.decimal(FactorRentToIncome)
	require.True(t, ok)
	assert.InDelta(t, 1180.0/4300.0, ratio, 1e-5)

	credit, ok := profile.LawfulFactors.count(FactorCreditScore)
	require.True(t, ok)
	assert.Equal(t, uint32(712), credit)

	evictions, ok := profile.LawfulFactors.count(FactorRentalHistory)
	require.True(t, ok)
	assert.Zero(t, evictions)

	window, ok := profile.LawfulFactors.decimal(FactorCriminalHistoryWindow)
	require.True(t, ok)
	assert.Equal(t, float32(6), window)

	coverage, ok := profile.LawfulFactors.decimal(FactorVoucherCoverage)
	require.True(t, ok)
	assert.InDelta(t, 450.0/1180.0, coverage, 1e-5)

	compliant, ok := profile.LawfulFactors.boolean(FactorIowaSecurityDepositCompliance)
	require.True(t, ok)
	assert.True(t, compliant)

	assert.Equal(t, []string{"Lowered countertop"}, profile.Accommodations)
}

func TestProfileFromSubmissionDoesNotAliasInput(t *testing.T) {
	guard := ComplianceGuardFromConfig(testConfig())
	sub := sampleSubmission()

	profile, err := guard.ProfileFromSubmission(sub)
	require.NoError(t, err)

	sub.Income.VerifiedIncomeSources[0] = "changed"
	*sub.CreditScore = 1
	*sub.Income.HousingVoucherAmount = 0

	assert.Equal(t, "Employer paystub", profile.DeclaredIncome.VerifiedIncomeSources[0])
	assert.Equal(t, uint16(712), *profile.CreditScore)
	assert.Equal(t, uint32(450), *profile.DeclaredIncome.HousingVoucherAmount)
}

func TestProfileFromSubmissionOptionalFactors(t *testing.T) {
	guard := ComplianceGuardFromConfig(testConfig())
	sub := sampleSubmission()
	sub.CreditScore = nil
	sub.CriminalHistory = nil
	sub.Income.HousingVoucherAmount = nil

	profile, err := guard.ProfileFromSubmission(sub)
	require.NoError(t, err)

	assert.False(t, profile.LawfulFactors.Has(FactorCreditScore))
	assert.False(t, profile.LawfulFactors.Has(FactorCriminalHistoryWindow))

	coverage, ok := profile.LawfulFactors.decimal(FactorVoucherCoverage)
	require.True(t, ok)
	assert.Zero(t, coverage)
	assert.Equal(t, 4, profile.LawfulFactors.Len())
}

func TestCriminalWindowUsesMostRecentRecord(t *testing.T) {
	guard := ComplianceGuardFromConfig(testConfig())

	profile, err := guard.ProfileFromSubmission(manualReviewSubmission())
	require.NoError(t, err)

	window, ok := profile.LawfulFactors.decimal(FactorCriminalHistoryWindow)
	require.True(t, ok)
	assert.Equal(t, float32(2), window)
}

func TestEvictionCountFromHistory(t *testing.T) {
	guard := ComplianceGuardFromConfig(testConfig())
	sub := sampleSubmission()
	sub.RentalHistory = append(sub.RentalHistory,
		RentalReference{PropertyName: "Elm", FiledEviction: true},
		RentalReference{PropertyName: "Oak", FiledEviction: true},
	)

	profile, err := guard.ProfileFromSubmission(sub)
	require.NoError(t, err)

	evictions, _ := profile.LawfulFactors.count(FactorRentalHistory)
	assert.Equal(t, uint32(2), evictions)
}

func TestComplianceViolations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Submission)
		kind    ViolationKind
		message string
	}{
		{
			name: "prohibited practice",
			mutate: func(s *Submission) {
				s.ScreeningAnswers.ProhibitedPreferences = []ProhibitedPractice{{Kind: ProtectedClassInquiry, Field: "disability"}}
			},
			kind:    ViolationProhibitedPractice,
			message: `submission captured prohibited screening practice: ProtectedClassInquiry { field: "disability" }`,
		},
		{
			name: "unit prohibited practice",
			mutate: func(s *Submission) {
				s.ScreeningAnswers.ProhibitedPreferences = []ProhibitedPractice{{Kind: BlanketCriminalHistoryBan}}
			},
			kind:    ViolationProhibitedPractice,
			message: "submission captured prohibited screening practice: BlanketCriminalHistoryBan",
		},
		{
			name:    "no verified income sources",
			mutate:  func(s *Submission) { s.Income.VerifiedIncomeSources = nil },
			kind:    ViolationMissingIncomeDocumentation,
			message: "missing verified income documentation for LIHTC/IFA requirements",
		},
		{
			name:    "empty household",
			mutate:  func(s *Submission) { s.Household = HouseholdComposition{} },
			kind:    ViolationIncompleteHousehold,
			message: "household composition incomplete",
		},
		{
			name:    "deposit over cap",
			mutate:  func(s *Submission) { s.Listing.DepositRequired = 2361 },
			kind:    ViolationIowaSecurityDepositCap,
			message: "security deposit exceeds Iowa two month cap (required <= 2360, found 2361)",
		},
		{
			name:    "zero gross income",
			mutate:  func(s *Submission) { s.Income.GrossMonthlyIncome = 0 },
			kind:    ViolationMissingIncomeDocumentation,
			message: "missing verified income documentation for LIHTC/IFA requirements",
		},
	}

	guard := ComplianceGuardFromConfig(testConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := sampleSubmission()
			tt.mutate(&sub)

			profile, err := guard.ProfileFromSubmission(sub)
			require.Error(t, err)
			assert.Nil(t, profile)
			assert.True(t, errors.Is(err, ErrComplianceViolation))

			var violation *ComplianceViolation
			require.True(t, errors.As(err, &violation))
			assert.Equal(t, tt.kind, violation.Kind)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestComplianceCheckOrder(t *testing.T) {
	guard := ComplianceGuardFromConfig(testConfig())

	// Every check fails at once; the prohibited practice must win.
	sub := prohibitedSubmission()
	sub.Income.VerifiedIncomeSources = nil
	sub.Household = HouseholdComposition{}
	sub.Listing.DepositRequired = 99999
	sub.Income.GrossMonthlyIncome = 0

	_, err := guard.ProfileFromSubmission(sub)
	var violation *ComplianceViolation
	require.True(t, errors.As(err, &violation))
	assert.Equal(t, ViolationProhibitedPractice, violation.Kind)

	sub.ScreeningAnswers.ProhibitedPreferences = nil
	_, err = guard.ProfileFromSubmission(sub)
	require.True(t, errors.As(err, &violation))
	assert.Equal(t, ViolationMissingIncomeDocumentation, violation.Kind)

	sub.Income.VerifiedIncomeSources = []string{"W2"}
	_, err = guard.ProfileFromSubmission(sub)
	require.True(t, errors.As(err, &violation))
	assert.Equal(t, ViolationIncompleteHousehold, violation.Kind)

	sub.Household.Adults = 2
	_, err = guard.ProfileFromSubmission(sub)
	require.True(t, errors.As(err, &violation))
	assert.Equal(t, ViolationIowaSecurityDepositCap, violation.Kind)
	assert.Equal(t, uint32(2360), violation.MaxDeposit)
	assert.Equal(t, uint32(99999), violation.FoundDeposit)

	sub.Listing.DepositRequired = 1000
	_, err = guard.ProfileFromSubmission(sub)
	require.True(t, errors.As(err, &violation))
	assert.Equal(t, ViolationMissingIncomeDocumentation, violation.Kind)
}

func TestCompliancePolicy(t *testing.T) {
	tests := []struct {
		name       string
		multiplier float32
		rent       uint32
		want       uint32
	}{
		{"default multiplier", 2.0, 1180, 2360},
		{"fractional result rounds up", 1.5, 1001, 1502},
		{"zero rent", 2.0, 0, 0},
		{"non-positive falls back", -1, 500, 1000},
		{"zero falls back", 0, 500, 1000},
		{"nan falls back", float32(math.NaN()), 500, 1000},
		{"inf falls back", float32(math.Inf(1)), 500, 1000},
		{"saturates", 4, math.MaxUint32, math.MaxUint32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := NewCompliancePolicy(tt.multiplier)
			assert.Equal(t, tt.want, policy.MaxDepositFor(tt.rent))
		})
	}

	assert.Equal(t, DefaultDepositCapMultiplier, CompliancePolicy{}.DepositCapMultiplier())
}

func TestZeroRentAllowsOnlyZeroDeposit(t *testing.T) {
	guard := ComplianceGuardFromConfig(testConfig())
	sub := sampleSubmission()
	sub.Listing.ListedRent = 0
	sub.Listing.DepositRequired = 1

	_, err := guard.ProfileFromSubmission(sub)
	var violation *ComplianceViolation
	require.True(t, errors.As(err, &violation))
	assert.Equal(t, ViolationIowaSecurityDepositCap, violation.Kind)
	assert.Zero(t, violation.MaxDeposit)

	sub.Listing.DepositRequired = 0
	profile, err := guard.ProfileFromSubmission(sub)
	require.NoError(t, err)
	coverage, _ := profile.LawfulFactors.decimal(FactorVoucherCoverage)
	assert.Zero(t, coverage)
}
