package matcher

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajharbinger/annuity-review-api/internal/models"
)

// stubCatalog ignores the type filter so the matcher's own filtering is exercised
type stubCatalog struct {
	products []models.Product
	err      error
}

func (s *stubCatalog) GetProductsByType(string) ([]models.Product, error) {
	return s.products, s.err
}

func product(id, carrier, name string, capRate float64, years int) models.Product {
	p := models.Product{
		ProductID:         id,
		Carrier:           carrier,
		ProductName:       name,
		ProductType:       "FIA",
		AvailableStates:   []string{"TX"},
		SurrenderSchedule: models.SurrenderSchedule{Years: years},
		SuitableFor:       []string{"Income"},
		RiskProfile:       "Conservative",
	}
	if capRate > 0 {
		p.IndexOptions = []models.IndexOption{
			{IndexName: "S&P 500", Strategy: "Annual Point-to-Point Cap", CurrentValue: capRate},
			{IndexName: "S&P 500", Strategy: "Participation Rate", CurrentValue: 45},
		}
	}
	p.ApplyDefaults()
	return p
}

func testCatalog() *stubCatalog {
	alpha := product("P-A", "Symetra", "Alpha", 6.0, 7)
	alpha.IsNewProduct = true
	alpha.SuitableFor = []string{"Growth", "Income"}
	alpha.RiskProfile = "Moderate"

	beta := product("P-B", "Athene", "Beta", 5.0, 10)
	beta.BonusRate = models.Float64(5)
	gamma := product("P-C", "Zeta Life", "Gamma", 5.0, 10)
	gamma.BonusRate = models.Float64(5)

	fixed := product("P-D", "Symetra", "Fixed Delta", 0, 5)
	fixed.ProductType = "Fixed"

	epsilon := product("P-E", "Allianz", "Epsilon", 0, 12)
	epsilon.AvailableStates = []string{"CA"}
	epsilon.AgeMax = 60
	epsilon.MinimumPremium = 200000
	epsilon.RiskProfile = "Aggressive"

	// gamma precedes beta so the productId tie-break is observable
	return &stubCatalog{products: []models.Product{gamma, fixed, alpha, epsilon, beta}}
}

func testPolicy() *models.Policy {
	return &models.Policy{
		PolicyID:               "POL-1",
		ProductType:            "FIA",
		Carrier:                "Legacy Life",
		ApplicationState:       "TX",
		AccountValue:           150000,
		SurrenderScheduleYears: 10,
		CurrentCapRate:         models.Float64(4.0),
	}
}

func testClient() *models.Client {
	return &models.Client{Suitability: models.SuitabilityProfile{Age: 61, PrimaryObjective: "Growth", RiskTolerance: "Moderate"}}
}

func TestScore(t *testing.T) {
	m := New(testCatalog(), []string{"Symetra", "Brighthouse Financial"})
	catalog := testCatalog().products

	tests := []struct {
		name     string
		product  models.Product
		expected float64
	}{
		// 50 carrier + 10 new + 30 objective + 20 risk + 10 cap + 15 surrender + 10 state + 5 premium + 5 age
		{"preferred match", catalog[2], 155},
		// 5 cap + 10 bonus + 10 state + 5 premium + 5 age
		{"bonus product", catalog[4], 35},
		{"out of bounds", catalog[3], 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, m.Score(&tt.product, testPolicy(), testClient()))
		})
	}
}

func TestScore_RenewalRateAndFixedProducts(t *testing.T) {
	m := New(&stubCatalog{}, nil)

	policy := testPolicy()
	policy.RenewalCapRate = models.Float64(5.5)
	p := product("P-A", "Other", "Alpha", 6.0, 10)
	// renewal rate 5.5 is compared, not the current 4.0: 2.5 cap + 10 state + 5 premium + 5 age
	assert.Equal(t, 22.5, m.Score(&p, policy, testClient()))

	// a zero renewal rate falls back to the current 4.0: 10 cap + 10 state + 5 premium + 5 age
	policy.RenewalCapRate = models.Float64(0)
	assert.Equal(t, 30.0, m.Score(&p, policy, testClient()))

	fixedPolicy := testPolicy()
	fixedPolicy.ProductType = "Fixed"
	fixedPolicy.CurrentCapRate = models.Float64(3.0)
	f := product("F-1", "Other", "Fixed", 0, 10)
	f.ProductType = "Fixed"
	f.CurrentFixedRate = models.Float64(4.5)
	assert.Equal(t, 35.0, m.Score(&f, fixedPolicy, testClient()))
}

func TestFindAlternatives(t *testing.T) {
	m := New(testCatalog(), []string{"Symetra"})

	tests := []struct {
		name       string
		maxResults int
		expected   []string
	}{
		{"default", 0, []string{"P-A", "P-B", "P-C"}},
		{"one", 1, []string{"P-A"}},
		{"clamped to five", 10, []string{"P-A", "P-B", "P-C", "P-E"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := m.FindAlternatives(testPolicy(), testClient(), tt.maxResults)
			require.NoError(t, err)

			var ids []string
			for i, r := range results {
				ids = append(ids, r.ProductID)
				assert.Equal(t, "FIA", r.ProductType)
				if i > 0 {
					assert.GreaterOrEqual(t, results[i-1].MatchScore, r.MatchScore)
				}
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestFindAlternatives_SourceError(t *testing.T) {
	m := New(&stubCatalog{err: errors.New("catalog unavailable")}, nil)
	_, err := m.FindAlternatives(testPolicy(), testClient(), 3)
	assert.Error(t, err)
}

func TestCreateComparison(t *testing.T) {
	m := New(testCatalog(), []string{"Symetra", "Brighthouse Financial"})

	cmp, err := m.CreateComparison(testPolicy(), testClient(), 3)
	require.NoError(t, err)

	assert.Equal(t, "POL-1", cmp.CurrentPolicy.PolicyID)
	assert.Len(t, cmp.Alternatives, 3)
	assert.Equal(t, Disclaimer, cmp.Disclaimer)
	assert.Equal(t, []string{
		"Showing 1 products from preferred carriers (Symetra, Brighthouse Financial)",
		"Symetra Alpha offers up to 6% cap vs. current 4%",
		"Athene Beta offers up to 5% cap vs. current 4%",
		"Zeta Life Gamma offers up to 5% cap vs. current 4%",
		"Alpha has shorter 7-year surrender period",
	}, cmp.ComparisonNotes)
}

func TestCreateComparison_NoCandidates(t *testing.T) {
	m := New(testCatalog(), []string{"Symetra"})
	policy := testPolicy()
	policy.ProductType = "VA"

	cmp, err := m.CreateComparison(policy, testClient(), 3)
	require.NoError(t, err)
	assert.Empty(t, cmp.Alternatives)
	assert.Equal(t, []string{NoAlternativesNote}, cmp.ComparisonNotes)
}

func TestClampMaxResults(t *testing.T) {
	assert.Equal(t, 3, ClampMaxResults(0))
	assert.Equal(t, 1, ClampMaxResults(1))
	assert.Equal(t, 5, ClampMaxResults(5))
	assert.Equal(t, 5, ClampMaxResults(6))
}
