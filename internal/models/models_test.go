package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicyClone_IsIndependent(t *testing.T) {
	original := &Policy{
		PolicyID:       "POL-1",
		CurrentCapRate: Float64(3.9),
		NonFinancialData: &NonFinancialData{
			PrimaryBeneficiary: &Beneficiary{Name: "Ann", AllocationPercent: 100},
		},
		Alerts: []Alert{{AlertID: "ALT-POL-1-REP", Reasons: []string{"gap"}}},
	}

	clone := original.Clone()
	*clone.CurrentCapRate = 5.0
	clone.NonFinancialData.PrimaryBeneficiary.Name = "Bob"
	clone.Alerts[0].Reasons[0] = "changed"

	assert.Equal(t, 3.9, *original.CurrentCapRate)
	assert.Equal(t, "Ann", original.NonFinancialData.PrimaryBeneficiary.Name)
	assert.Equal(t, "gap", original.Alerts[0].Reasons[0])
}

func TestPolicy_EffectiveRateAndRider(t *testing.T) {
	tests := []struct {
		name      string
		policy    Policy
		rate      float64
		hasIncome bool
	}{
		{"renewal wins", Policy{CurrentCapRate: Float64(4.0), RenewalCapRate: Float64(3.4)}, 3.4, false},
		{"current only", Policy{CurrentCapRate: Float64(4.0)}, 4.0, false},
		{"zero renewal falls through", Policy{CurrentCapRate: Float64(4.0), RenewalCapRate: Float64(0)}, 4.0, false},
		{"zero renewal and no current", Policy{RenewalCapRate: Float64(0)}, 0, false},
		{"no rates", Policy{}, 0, false},
		{"income rider by type", Policy{RiderType: "Guaranteed Income Rider"}, 0, true},
		{"income rider by base", Policy{IncomeBase: Float64(100000)}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.rate, tt.policy.EffectiveRate())
			assert.Equal(t, tt.hasIncome, tt.policy.HasIncomeRider())
		})
	}
}

func TestProduct_BestCapRateAndBounds(t *testing.T) {
	p := Product{
		IndexOptions: []IndexOption{
			{Strategy: "Annual Point-to-Point Cap", CurrentValue: 5.5},
			{Strategy: "Participation Rate", CurrentValue: 40},
			{Strategy: "Monthly Cap", CurrentValue: 6.25},
		},
	}
	p.ApplyDefaults()

	best, ok := p.BestCapRate()
	assert.True(t, ok)
	assert.Equal(t, 6.25, best)
	assert.True(t, p.AcceptsPremium(10000))
	assert.False(t, p.AcceptsPremium(9999.99))
	assert.True(t, p.AcceptsAge(85))
	assert.False(t, p.AcceptsAge(86))
	assert.Equal(t, "Moderate", p.RiskProfile)
}

func TestClientView(t *testing.T) {
	c := &Client{
		Client:      ClientIdentity{AccountNumber: "ACC-1001", Name: "Mary Ellen Jones"},
		Suitability: SuitabilityProfile{Age: 61, RiskTolerance: "Moderate"},
	}

	view := c.View()
	assert.Equal(t, "ACC-1001", view.ClientID)
	assert.Equal(t, "Mary", view.FirstName)
	assert.Equal(t, "Ellen Jones", view.LastName)
	assert.Equal(t, "System", view.Suitability.UpdatedBy)
}

func TestSuitabilityUpdate(t *testing.T) {
	assert.True(t, SuitabilityUpdate{}.IsEmpty())

	income := "Income"
	profile := SuitabilityProfile{PrimaryObjective: "Growth", RiskTolerance: "Aggressive"}
	SuitabilityUpdate{PrimaryObjective: &income}.ApplyTo(&profile)

	assert.Equal(t, "Income", profile.PrimaryObjective)
	assert.Equal(t, "Aggressive", profile.RiskTolerance)
}
