// internal/applications/compliance.go
package applications

import (
	"errors"
	"fmt"
	"math"
)

// ErrComplianceViolation matches every *ComplianceViolation via errors.Is.
var ErrComplianceViolation = errors.New("COMPLIANCE_VIOLATION")

type ViolationKind string

const (
	ViolationProhibitedPractice         ViolationKind = "prohibited_practice"
	ViolationIowaSecurityDepositCap     ViolationKind = "iowa_security_deposit_cap"
	ViolationMissingIncomeDocumentation ViolationKind = "missing_income_documentation"
	ViolationIncompleteHousehold        ViolationKind = "incomplete_household"
)

// ComplianceViolation is a rejected submission. The caller fixes the input;
// nothing here is retried.
type ComplianceViolation struct {
	Kind         ViolationKind
	Practice     ProhibitedPractice
	MaxDeposit   uint32
	FoundDeposit uint32
}

func (v *ComplianceViolation) Error() string {
	switch v.Kind {
	case ViolationProhibitedPractice:
		return fmt.Sprintf("submission captured prohibited screening practice: %v", v.Practice)
	case ViolationIowaSecurityDepositCap:
		return fmt.Sprintf("security deposit exceeds Iowa two month cap (required <= %d, found %d)", v.MaxDeposit, v.FoundDeposit)
	case ViolationMissingIncomeDocumentation:
		return "missing verified income documentation for LIHTC/IFA requirements"
	case ViolationIncompleteHousehold:
		return "household composition incomplete"
	default:
		return fmt.Sprintf("compliance violation: %s", v.Kind)
	}
}

func (v *ComplianceViolation) Is(target error) bool {
	return target == ErrComplianceViolation
}

const DefaultDepositCapMultiplier float32 = 2.0

// CompliancePolicy holds the Iowa deposit dial.
type CompliancePolicy struct {
	depositCapMultiplier float32
}

// NewCompliancePolicy falls back to the default for non-positive or
// non-finite multipliers.
func NewCompliancePolicy(multiplier float32) CompliancePolicy {
	m := float64(multiplier)
	if math.IsNaN(m) || math.IsInf(m, 0) || m <= 0 {
		multiplier = DefaultDepositCapMultiplier
	}
	return CompliancePolicy{depositCapMultiplier: multiplier}
}

func (p CompliancePolicy) DepositCapMultiplier() float32 {
	if p.depositCapMultiplier == 0 {
		return DefaultDepositCapMultiplier
	}
	return p.depositCapMultiplier
}

// MaxDepositFor is ceil(rent * multiplier), saturating at MaxUint32.
func (p CompliancePolicy) MaxDepositFor(listedRent uint32) uint32 {
	if listedRent == 0 {
		return 0
	}
	limit := math.Ceil(float64(listedRent) * float64(p.DepositCapMultiplier()))
	if limit >= math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(limit)
}

// ComplianceGuard turns a raw submission into an ApplicantProfile.
type ComplianceGuard struct {
	policy CompliancePolicy
}

func NewComplianceGuard(policy CompliancePolicy) *ComplianceGuard {
	return &ComplianceGuard{policy: policy}
}

func ComplianceGuardFromConfig(cfg EvaluationConfig) *ComplianceGuard {
	return NewComplianceGuard(NewCompliancePolicy(cfg.DepositCapMultiplier))
}

func (g *ComplianceGuard) Policy() CompliancePolicy { return g.policy }

// pendingID is replaced by the service once an id is assigned.
const pendingID ApplicationID = "pending"

// ProfileFromSubmission runs the checks in a fixed order; the first failure
// wins. Income is checked a second time after the deposit cap because the cap
// depends on rent alone.
func (g *ComplianceGuard) ProfileFromSubmission(sub Submission) (*ApplicantProfile, error) {
	if len(sub.ScreeningAnswers.ProhibitedPreferences) > 0 {
		return nil, &ComplianceViolation{
			Kind:     ViolationProhibitedPractice,
			Practice: sub.ScreeningAnswers.ProhibitedPreferences[0],
		}
	}

	if len(sub.Income.VerifiedIncomeSources) == 0 {
		return nil, &ComplianceViolation{Kind: ViolationMissingIncomeDocumentation}
	}

	if sub.Household.Adults == 0 && sub.Household.Children == 0 {
		return nil, &ComplianceViolation{Kind: ViolationIncompleteHousehold}
	}

	capAmount := g.policy.MaxDepositFor(sub.Listing.ListedRent)
	if sub.Listing.DepositRequired > capAmount {
		return nil, &ComplianceViolation{
			Kind:         ViolationIowaSecurityDepositCap,
			MaxDeposit:   capAmount,
			FoundDeposit: sub.Listing.DepositRequired,
		}
	}

	if sub.Income.GrossMonthlyIncome == 0 {
		return nil, &ComplianceViolation{Kind: ViolationMissingIncomeDocumentation}
	}

	var factors LawfulFactors
	rent := float32(sub.Listing.ListedRent)

	factors.set(FactorRentToIncome, Decimal(rent/float32(sub.Income.GrossMonthlyIncome)))

	if sub.CreditScore != nil {
		factors.set(FactorCreditScore, Count(uint32(*sub.CreditScore)))
	}

	factors.set(FactorRentalHistory, Count(evictionCount(sub.RentalHistory)))

	if len(sub.CriminalHistory) > 0 {
		window := sub.CriminalHistory[0].YearsSince
		for _, record := range sub.CriminalHistory[1:] {
			if record.YearsSince < window {
				window = record.YearsSince
			}
		}
		factors.set(FactorCriminalHistoryWindow, Decimal(float32(window)))
	}

	coverage := float32(0)
	if sub.Income.HousingVoucherAmount != nil && sub.Listing.ListedRent > 0 {
		coverage = float32(*sub.Income.HousingVoucherAmount) / rent
	}
	factors.set(FactorVoucherCoverage, Decimal(coverage))

	factors.set(FactorIowaSecurityDepositCompliance, Boolean(true))

	return &ApplicantProfile{
		ApplicationID:   pendingID,
		LawfulFactors:   factors,
		Household:       sub.Household,
		Listing:         sub.Listing,
		DeclaredIncome:  cloneIncome(sub.Income),
		RentalHistory:   append([]RentalReference(nil), sub.RentalHistory...),
		CreditScore:     cloneUint16(sub.CreditScore),
		CriminalHistory: append([]CriminalRecord(nil), sub.CriminalHistory...),
		Accommodations:  append([]string(nil), sub.ScreeningAnswers.RequestedAccessibilityAccommodations...),
	}, nil
}

func evictionCount(history []RentalReference) uint32 {
	var n uint32
	for _, ref := range history {
		if ref.FiledEviction {
			n++
		}
	}
	return n
}

func cloneIncome(in IncomeDeclaration) IncomeDeclaration {
	out := in
	out.VerifiedIncomeSources = append([]string(nil), in.VerifiedIncomeSources...)
	if in.HousingVoucherAmount != nil {
		v := *in.HousingVoucherAmount
		out.HousingVoucherAmount = &v
	}
	return out
}

func cloneUint16(v *uint16) *uint16 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
