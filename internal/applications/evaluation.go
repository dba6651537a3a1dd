// internal/applications/evaluation.go
package applications

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EvaluationConfig is the scoring rubric. MinimumRentToIncomeRatio is the
// highest rent/income ratio still accepted; the name is kept for wire
// compatibility with stored configs.
type EvaluationConfig struct {
	MinimumRentToIncomeRatio   float32 `json:"minimum_rent_to_income_ratio" mapstructure:"minimum_rent_to_income_ratio" yaml:"minimum_rent_to_income_ratio"`
	MinimumCreditScore         *uint16 `json:"minimum_credit_score,omitempty" mapstructure:"minimum_credit_score" yaml:"minimum_credit_score,omitempty"`
	MaxEvictions               uint8   `json:"max_evictions" mapstructure:"max_evictions" yaml:"max_evictions"`
	ViolentFelonyLookbackYears uint8   `json:"violent_felony_lookback_years" mapstructure:"violent_felony_lookback_years" yaml:"violent_felony_lookback_years"`
	NonViolentLookbackYears    uint8   `json:"non_violent_lookback_years" mapstructure:"non_violent_lookback_years" yaml:"non_violent_lookback_years"`
	MisdemeanorLookbackYears   uint8   `json:"misdemeanor_lookback_years" mapstructure:"misdemeanor_lookback_years" yaml:"misdemeanor_lookback_years"`
	DepositCapMultiplier       float32 `json:"deposit_cap_multiplier" mapstructure:"deposit_cap_multiplier" yaml:"deposit_cap_multiplier"`
}

// DefaultEvaluationConfig is the production rubric.
func DefaultEvaluationConfig() EvaluationConfig {
	minCredit := uint16(650)
	return EvaluationConfig{
		MinimumRentToIncomeRatio:   0.28,
		MinimumCreditScore:         &minCredit,
		MaxEvictions:               0,
		ViolentFelonyLookbackYears: 7,
		NonViolentLookbackYears:    5,
		MisdemeanorLookbackYears:   3,
		DepositCapMultiplier:       2.0,
	}
}

type ScoreComponent struct {
	Factor LawfulFactorKind `json:"factor"`
	Score  int16            `json:"score"`
	Notes  string           `json:"notes"`
}

type EvaluationOutcome struct {
	ApplicationID ApplicationID    `json:"application_id"`
	Decision      Decision         `json:"decision"`
	TotalScore    int16            `json:"total_score"`
	Components    []ScoreComponent `json:"components"`
}

type DecisionKind string

const (
	DecisionApproved            DecisionKind = "Approved"
	DecisionConditionalApproval DecisionKind = "ConditionalApproval"
	DecisionDenied              DecisionKind = "Denied"
	DecisionManualReview        DecisionKind = "ManualReview"
)

// Decision is the adjudication outcome. RequiredActions belongs to
// ConditionalApproval, Reasons to ManualReview and Denial to Denied.
type Decision struct {
	Kind            DecisionKind  `json:"kind"`
	RequiredActions []string      `json:"required_actions,omitempty"`
	Reasons         []string      `json:"reasons,omitempty"`
	Denial          *DenialReason `json:"denial,omitempty"`
}

func Approved() Decision { return Decision{Kind: DecisionApproved} }

func ConditionalApproval(actions ...string) Decision {
	return Decision{Kind: DecisionConditionalApproval, RequiredActions: actions}
}

func ManualReview(reasons ...string) Decision {
	return Decision{Kind: DecisionManualReview, Reasons: reasons}
}

func Denied(reason DenialReason) Decision {
	return Decision{Kind: DecisionDenied, Denial: &reason}
}

func (d Decision) Summary() string {
	switch d.Kind {
	case DecisionApproved:
		return "application approved"
	case DecisionConditionalApproval:
		if len(d.RequiredActions) == 0 {
			return "conditional approval"
		}
		return "conditional approval: " + strings.Join(d.RequiredActions, ", ")
	case DecisionDenied:
		if d.Denial == nil {
			return "denied"
		}
		return d.Denial.Summary()
	case DecisionManualReview:
		if len(d.Reasons) == 0 {
			return "requires manual review"
		}
		return "manual review required: " + strings.Join(d.Reasons, "; ")
	default:
		return string(d.Kind)
	}
}

// Status maps the decision onto the record status. Anything that is neither
// approved nor denied waits for review.
func (d Decision) Status() Status {
	switch d.Kind {
	case DecisionApproved:
		return StatusApproved
	case DecisionDenied:
		return StatusDenied
	default:
		return StatusUnderReview
	}
}

type DenialKind string

const (
	DenialInsufficientIncome      DenialKind = "InsufficientIncome"
	DenialAdverseCreditHistory    DenialKind = "AdverseCreditHistory"
	DenialExcessiveEvictions      DenialKind = "ExcessiveEvictions"
	DenialCriminalDisqualifier    DenialKind = "CriminalDisqualifier"
	DenialIncompleteDocumentation DenialKind = "IncompleteDocumentation"
)

// DenialReason backs adverse action notices. Only the fields of Kind are set.
type DenialReason struct {
	Kind           DenialKind             `json:"kind"`
	RequiredRatio  float32                `json:"required_ratio,omitempty"`
	ActualRatio    float32                `json:"actual_ratio,omitempty"`
	Evictions      uint8                  `json:"evictions,omitempty"`
	Classification CriminalClassification `json:"classification,omitempty"`
	YearsSince     uint8                  `json:"years_since,omitempty"`
}

func (r DenialReason) Summary() string {
	switch r.Kind {
	case DenialInsufficientIncome:
		return fmt.Sprintf("denied for insufficient income (required %.2f, actual %.2f)", r.RequiredRatio, r.ActualRatio)
	case DenialAdverseCreditHistory:
		return "denied for adverse credit history"
	case DenialExcessiveEvictions:
		return fmt.Sprintf("denied for %d eviction(s)", r.Evictions)
	case DenialCriminalDisqualifier:
		return fmt.Sprintf("denied for %v %d years ago", r.Classification, r.YearsSince)
	case DenialIncompleteDocumentation:
		return "denied for incomplete documentation"
	default:
		return "denied"
	}
}

// scoreSignals carries the values the decision phase needs from scoring.
type scoreSignals struct {
	rentToIncome  float32
	creditScore   *uint16
	evictionCount uint8
	violentFelony string
	hasViolent    bool
}

// EvaluationEngine applies a rubric to profiles. It holds no state besides
// the config and is safe for concurrent use.
type EvaluationEngine struct {
	config EvaluationConfig
}

func NewEvaluationEngine(cfg EvaluationConfig) *EvaluationEngine {
	return &EvaluationEngine{config: cfg}
}

func (e *EvaluationEngine) Config() EvaluationConfig { return e.config }

// Score is deterministic: the same profile and config always produce the same
// components in the same order.
func (e *EvaluationEngine) Score(profile *ApplicantProfile) EvaluationOutcome {
	components, total, signals := scoreProfile(profile, e.config)
	return EvaluationOutcome{
		ApplicationID: profile.ApplicationID,
		Decision:      decideOutcome(profile, e.config, signals),
		TotalScore:    total,
		Components:    components,
	}
}

func scoreProfile(profile *ApplicantProfile, cfg EvaluationConfig) ([]ScoreComponent, int16, scoreSignals) {
	var components []ScoreComponent
	var total int16
	add := func(factor LawfulFactorKind, score int16, notes string) {
		components = append(components, ScoreComponent{Factor: factor, Score: score, Notes: notes})
		total += score
	}

	ratio, ok := profile.LawfulFactors.decimal(FactorRentToIncome)
	if !ok {
		ratio = float32(profile.Listing.ListedRent) / float32(profile.DeclaredIncome.GrossMonthlyIncome)
	}
	threshold := cfg.MinimumRentToIncomeRatio
	if ratio <= threshold {
		add(FactorRentToIncome, 30, fmt.Sprintf("rent-to-income ratio %.2f within policy threshold %.2f", ratio, threshold))
	} else {
		add(FactorRentToIncome, -40, fmt.Sprintf("ratio %.2f exceeds required %.2f", ratio, threshold))
	}

	if cfg.MinimumCreditScore != nil {
		minimum := *cfg.MinimumCreditScore
		switch score := profile.CreditScore; {
		case score != nil && *score >= minimum:
			add(FactorCreditScore, 20, fmt.Sprintf("credit score %d meets minimum %d", *score, minimum))
		case score != nil:
			add(FactorCreditScore, -25, fmt.Sprintf("credit score %d below minimum %d", *score, minimum))
		default:
			add(FactorCreditScore, -10, "missing credit history")
		}
	}

	var evictions uint8
	if n, ok := profile.LawfulFactors.count(FactorRentalHistory); ok {
		evictions = saturateUint8(n)
	} else {
		evictions = saturateUint8(evictionCount(profile.RentalHistory))
	}
	switch {
	case evictions == 0:
		add(FactorRentalHistory, 10, "no prior evictions")
	case evictions <= cfg.MaxEvictions:
		add(FactorRentalHistory, -10, fmt.Sprintf("%d eviction(s) within policy", evictions))
	default:
		add(FactorRentalHistory, -25, fmt.Sprintf("%d eviction(s) exceeds allowance", evictions))
	}

	if coverage, ok := profile.LawfulFactors.decimal(FactorVoucherCoverage); ok && coverage > 0 {
		add(FactorVoucherCoverage, 5, fmt.Sprintf("voucher covers %.0f%% of rent", coverage*100))
	}

	if compliant, ok := profile.LawfulFactors.boolean(FactorIowaSecurityDepositCompliance); ok && compliant {
		add(FactorIowaSecurityDepositCompliance, 5, "security deposit within Iowa cap")
	}

	signals := scoreSignals{
		rentToIncome:  ratio,
		creditScore:   profile.CreditScore,
		evictionCount: evictions,
	}
	for _, record := range profile.CriminalHistory {
		if record.Classification == ViolentFelony && record.YearsSince <= cfg.ViolentFelonyLookbackYears {
			signals.violentFelony = record.Description
			signals.hasViolent = true
			break
		}
	}

	return components, total, signals
}

// decideOutcome applies the policy rules in precedence order. The numeric
// total plays no part.
func decideOutcome(profile *ApplicantProfile, cfg EvaluationConfig, signals scoreSignals) Decision {
	if signals.hasViolent {
		return ManualReview(fmt.Sprintf("Recent violent felony within %d years: %s",
			cfg.ViolentFelonyLookbackYears, signals.violentFelony))
	}

	if signals.rentToIncome > cfg.MinimumRentToIncomeRatio {
		return Denied(DenialReason{
			Kind:          DenialInsufficientIncome,
			RequiredRatio: cfg.MinimumRentToIncomeRatio,
			ActualRatio:   signals.rentToIncome,
		})
	}

	if cfg.MinimumCreditScore != nil {
		if signals.creditScore == nil || *signals.creditScore < *cfg.MinimumCreditScore {
			return Denied(DenialReason{Kind: DenialAdverseCreditHistory})
		}
	}

	if signals.evictionCount > cfg.MaxEvictions {
		return Denied(DenialReason{Kind: DenialExcessiveEvictions, Evictions: signals.evictionCount})
	}

	if compliant, ok := profile.LawfulFactors.boolean(FactorIowaSecurityDepositCompliance); ok && !compliant {
		return ConditionalApproval("Adjust deposit to Iowa cap")
	}

	return Approved()
}

func saturateUint8(n uint32) uint8 {
	if n > 255 {
		return 255
	}
	return uint8(n)
}

// MarshalJSON keeps the decision readable in audit indexes by adding the
// summary text.
func (o EvaluationOutcome) MarshalJSON() ([]byte, error) {
	type plain EvaluationOutcome
	return json.Marshal(struct {
		plain
		Summary string `json:"summary"`
	}{plain: plain(o), Summary: o.Decision.Summary()})
}
