// internal/applications/domain.go

// Package applications screens rental applicants against a lawful,
// auditable rubric. Raw submissions pass through the ComplianceGuard before
// anything downstream can see them; scoring reads only the resulting profile.
package applications

import (
	"bytes"
	"encoding/json"
	"fmt"

	"vacancy-workers/internal/models"
)

type ApplicationID string

func (id ApplicationID) String() string { return string(id) }

// ListingSnapshot is the advertised vacancy as seen at intake.
type ListingSnapshot struct {
	UnitID          string      `json:"unit_id"`
	PropertyCode    string      `json:"property_code"`
	ListedRent      uint32      `json:"listed_rent"`
	AvailableOn     models.Date `json:"available_on"`
	DepositRequired uint32      `json:"deposit_required"`
}

// Submission is applicant-supplied data. It is never mutated after intake.
type Submission struct {
	Listing             ListingSnapshot      `json:"listing"`
	Household           HouseholdComposition `json:"household"`
	ScreeningAnswers    ScreeningAnswers     `json:"screening_answers"`
	Income              IncomeDeclaration    `json:"income"`
	RentalHistory       []RentalReference    `json:"rental_history"`
	CreditScore         *uint16              `json:"credit_score,omitempty"`
	CriminalHistory     []CriminalRecord     `json:"criminal_history"`
	SupportingDocuments []DocumentDescriptor `json:"supporting_documents"`
}

// HouseholdComposition carries counts only; no protected characteristics.
type HouseholdComposition struct {
	Adults           uint8 `json:"adults"`
	Children         uint8 `json:"children"`
	BedroomsRequired uint8 `json:"bedrooms_required"`
}

type ScreeningAnswers struct {
	Pets                                 bool                 `json:"pets"`
	ServiceAnimals                       bool                 `json:"service_animals"`
	Smoker                               bool                 `json:"smoker"`
	RequestedAccessibilityAccommodations []string             `json:"requested_accessibility_accommodations"`
	RequestedMoveIn                      models.Date          `json:"requested_move_in"`
	DisclosedVouchers                    []SubsidyProgram     `json:"disclosed_vouchers"`
	ProhibitedPreferences                []ProhibitedPractice `json:"prohibited_preferences"`
}

type IncomeDeclaration struct {
	GrossMonthlyIncome    uint32   `json:"gross_monthly_income"`
	VerifiedIncomeSources []string `json:"verified_income_sources"`
	HousingVoucherAmount  *uint32  `json:"housing_voucher_amount,omitempty"`
}

type RentalReference struct {
	PropertyName  string       `json:"property_name"`
	PaidOnTime    bool         `json:"paid_on_time"`
	FiledEviction bool         `json:"filed_eviction"`
	TenancyStart  models.Date  `json:"tenancy_start"`
	TenancyEnd    *models.Date `json:"tenancy_end,omitempty"`
}

type CriminalClassification string

const (
	ViolentFelony    CriminalClassification = "ViolentFelony"
	NonViolentFelony CriminalClassification = "NonViolentFelony"
	Misdemeanor      CriminalClassification = "Misdemeanor"
)

type CriminalRecord struct {
	Classification CriminalClassification `json:"classification"`
	YearsSince     uint8                  `json:"years_since"`
	Jurisdiction   string                 `json:"jurisdiction"`
	Description    string                 `json:"description"`
}

type DocumentCategory string

const (
	DocumentIdentification     DocumentCategory = "Identification"
	DocumentIncomeVerification DocumentCategory = "IncomeVerification"
	DocumentRentalReference    DocumentCategory = "RentalReference"
	DocumentSpecialProgram     DocumentCategory = "SpecialProgram"
	DocumentMisc               DocumentCategory = "Misc"
)

type DocumentDescriptor struct {
	Name       string           `json:"name"`
	Category   DocumentCategory `json:"category"`
	StorageKey string           `json:"storage_key"`
}

type SubsidyProgram struct {
	Program       string `json:"program"`
	MonthlyAmount uint32 `json:"monthly_amount"`
}

type PracticeKind string

const (
	SteeringBasedOnFamilialStatus PracticeKind = "SteeringBasedOnFamilialStatus"
	SourceOfIncomeDiscrimination  PracticeKind = "SourceOfIncomeDiscrimination"
	BlanketCriminalHistoryBan     PracticeKind = "BlanketCriminalHistoryBan"
	DisparateResponseCadence      PracticeKind = "DisparateResponseCadence"
	ProtectedClassInquiry         PracticeKind = "ProtectedClassInquiry"
)

// ProhibitedPractice records a Fair Housing / Iowa Civil Rights Act
// violation captured during screening. Field is set only for
// ProtectedClassInquiry.
//
// On the wire unit variants are bare strings and ProtectedClassInquiry is
// {"ProtectedClassInquiry":{"field":"..."}}.
type ProhibitedPractice struct {
	Kind  PracticeKind
	Field string
}

func (p ProhibitedPractice) String() string {
	if p.Kind == ProtectedClassInquiry {
		return fmt.Sprintf("ProtectedClassInquiry { field: %q }", p.Field)
	}
	return string(p.Kind)
}

func (p ProhibitedPractice) MarshalJSON() ([]byte, error) {
	if p.Kind == ProtectedClassInquiry {
		return json.Marshal(map[string]map[string]string{
			string(ProtectedClassInquiry): {"field": p.Field},
		})
	}
	return json.Marshal(string(p.Kind))
}

func (p *ProhibitedPractice) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var kind string
		if err := json.Unmarshal(data, &kind); err != nil {
			return err
		}
		switch k := PracticeKind(kind); k {
		case SteeringBasedOnFamilialStatus, SourceOfIncomeDiscrimination,
			BlanketCriminalHistoryBan, DisparateResponseCadence:
			*p = ProhibitedPractice{Kind: k}
			return nil
		}
		return fmt.Errorf("unknown prohibited practice %q", kind)
	}

	var tagged map[string]struct {
		Field string `json:"field"`
	}
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("invalid prohibited practice: %w", err)
	}
	inquiry, ok := tagged[string(ProtectedClassInquiry)]
	if !ok || len(tagged) != 1 {
		return fmt.Errorf("invalid prohibited practice %s", string(data))
	}
	*p = ProhibitedPractice{Kind: ProtectedClassInquiry, Field: inquiry.Field}
	return nil
}

// Status is derived from the latest decision; no evaluation means Submitted.
type Status string

const (
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusDenied      Status = "denied"
	StatusWaitlisted  Status = "waitlisted"
)

func (s Status) Label() string { return string(s) }

func ParseStatus(value string) (Status, error) {
	switch s := Status(value); s {
	case StatusSubmitted, StatusUnderReview, StatusApproved, StatusDenied, StatusWaitlisted:
		return s, nil
	}
	return "", fmt.Errorf("unknown application status %q", value)
}

// ApplicantProfile is the only applicant data scoring may read.
type ApplicantProfile struct {
	ApplicationID   ApplicationID        `json:"application_id"`
	LawfulFactors   LawfulFactors        `json:"lawful_factors"`
	Household       HouseholdComposition `json:"household"`
	Listing         ListingSnapshot      `json:"listing"`
	DeclaredIncome  IncomeDeclaration    `json:"declared_income"`
	RentalHistory   []RentalReference    `json:"rental_history"`
	CreditScore     *uint16              `json:"credit_score,omitempty"`
	CriminalHistory []CriminalRecord     `json:"criminal_history"`
	Accommodations  []string             `json:"accommodations"`
}

// Record is the persisted unit: profile, status and latest outcome.
type Record struct {
	Profile    ApplicantProfile   `json:"profile"`
	Status     Status             `json:"status"`
	Evaluation *EvaluationOutcome `json:"evaluation,omitempty"`
}

func (r Record) ID() ApplicationID { return r.Profile.ApplicationID }

// DecisionRationale is the latest decision summary.
func (r Record) DecisionRationale() string {
	if r.Evaluation == nil {
		return "pending evaluation"
	}
	return r.Evaluation.Decision.Summary()
}

func (r Record) StatusView() StatusView {
	view := StatusView{
		ApplicationID:     r.Profile.ApplicationID,
		Status:            r.Status,
		DecisionRationale: r.DecisionRationale(),
	}
	if r.Evaluation != nil {
		score := r.Evaluation.TotalScore
		view.TotalScore = &score
	}
	return view
}

type StatusView struct {
	ApplicationID     ApplicationID `json:"application_id"`
	Status            Status        `json:"status"`
	DecisionRationale string        `json:"decision_rationale"`
	TotalScore        *int16        `json:"total_score"`
}

// PendingView is returned for ids the repository does not know yet.
func PendingView(id ApplicationID) StatusView {
	return StatusView{
		ApplicationID:     id,
		Status:            StatusSubmitted,
		DecisionRationale: "pending evaluation",
	}
}
