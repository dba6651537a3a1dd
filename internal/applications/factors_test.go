// internal/applications/factors_test.go
package applications

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLawfulFactorsJSONOrder(t *testing.T) {
	var factors LawfulFactors
	factors.set(FactorIowaSecurityDepositCompliance, Boolean(true))
	factors.set(FactorRentToIncome, Decimal(0.25))
	factors.set(FactorCreditScore, Count(700))

	data, err := json.Marshal(factors)
	require.NoError(t, err)
	assert.Equal(t,
		`{"RentToIncome":{"Decimal":0.25},"CreditScore":{"Count":700},"IowaSecurityDepositCompliance":{"Boolean":true}}`,
		string(data))

	var decoded LawfulFactors
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, factors, decoded)
}

func TestLawfulFactorValueDecodeErrors(t *testing.T) {
	tests := map[string]string{
		"two tags":    `{"Decimal":1,"Count":2}`,
		"unknown tag": `{"Float":1}`,
		"wrong type":  `{"Count":"many"}`,
		"not object":  `3`,
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			var v LawfulFactorValue
			assert.Error(t, json.Unmarshal([]byte(input), &v))
		})
	}
}

func TestLawfulFactorsRejectUnknownKind(t *testing.T) {
	var factors LawfulFactors
	err := json.Unmarshal([]byte(`{"Ethnicity":{"Text":"x"}}`), &factors)
	assert.Error(t, err)
}

func TestLawfulFactorValueAccessors(t *testing.T) {
	v := Text("note")
	text, ok := v.AsText()
	assert.True(t, ok)
	assert.Equal(t, "note", text)

	_, ok = v.AsDecimal()
	assert.False(t, ok)
	assert.Equal(t, `Text("note")`, v.String())
	assert.Equal(t, "None", LawfulFactorValue{}.String())

	_, err := json.Marshal(LawfulFactorValue{})
	assert.Error(t, err)
}

func TestFactorKindNames(t *testing.T) {
	for _, kind := range FactorKinds() {
		parsed, err := ParseFactorKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}
	_, err := ParseFactorKind("Race")
	assert.Error(t, err)
	assert.Equal(t, "LawfulFactorKind(42)", LawfulFactorKind(42).String())
}

func TestProhibitedPracticeJSON(t *testing.T) {
	tests := []struct {
		practice ProhibitedPractice
		wire     string
	}{
		{ProhibitedPractice{Kind: SourceOfIncomeDiscrimination}, `"SourceOfIncomeDiscrimination"`},
		{ProhibitedPractice{Kind: ProtectedClassInquiry, Field: "religion"}, `{"ProtectedClassInquiry":{"field":"religion"}}`},
	}
	for _, tt := range tests {
		t.Run(string(tt.practice.Kind), func(t *testing.T) {
			data, err := json.Marshal(tt.practice)
			require.NoError(t, err)
			assert.JSONEq(t, tt.wire, string(data))

			var decoded ProhibitedPractice
			require.NoError(t, json.Unmarshal([]byte(tt.wire), &decoded))
			assert.Equal(t, tt.practice, decoded)
		})
	}

	var p ProhibitedPractice
	assert.Error(t, json.Unmarshal([]byte(`"ReligiousPreference"`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"Other":{}}`), &p))
}

func TestSubmissionDecodesSnakeCase(t *testing.T) {
	payload := `{
		"listing": {"unit_id": "A-203", "property_code": "DSM", "listed_rent": 1180,
			"available_on": "2025-10-01", "deposit_required": 2100},
		"household": {"adults": 1, "children": 1, "bedrooms_required": 2},
		"screening_answers": {"pets": false, "service_animals": false, "smoker": false,
			"requested_accessibility_accommodations": [], "requested_move_in": "2025-10-15",
			"disclosed_vouchers": [], "prohibited_preferences": ["DisparateResponseCadence"]},
		"income": {"gross_monthly_income": 4300, "verified_income_sources": ["W2"], "housing_voucher_amount": 450},
		"rental_history": [],
		"credit_score": 712,
		"criminal_history": [],
		"supporting_documents": []
	}`

	var sub Submission
	require.NoError(t, json.Unmarshal([]byte(payload), &sub))
	assert.Equal(t, uint32(1180), sub.Listing.ListedRent)
	assert.Equal(t, "2025-10-15", sub.ScreeningAnswers.RequestedMoveIn.String())
	assert.Equal(t, uint32(450), *sub.Income.HousingVoucherAmount)
	assert.Equal(t, []ProhibitedPractice{{Kind: DisparateResponseCadence}}, sub.ScreeningAnswers.ProhibitedPreferences)
}

func TestStatusViewJSON(t *testing.T) {
	data, err := json.Marshal(PendingView("app-000009"))
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"application_id":"app-000009","status":"submitted","decision_rationale":"pending evaluation","total_score":null}`,
		string(data))

	_, err = ParseStatus("withdrawn")
	assert.Error(t, err)
	status, err := ParseStatus("waitlisted")
	require.NoError(t, err)
	assert.Equal(t, StatusWaitlisted, status)
}
