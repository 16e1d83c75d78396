package matcher

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ajharbinger/annuity-review-api/internal/models"
)

const (
	DefaultMaxResults = 3
	MaxResultsLimit   = 5
	maxNotes          = 5

	NoAlternativesNote = "No suitable alternatives found at this time."
	Disclaimer         = "Illustrative comparison only. Not a recommendation. Suitability review required."
)

// Scoring weights
const (
	preferredCarrierBonus = 50.0
	newProductBonus       = 10.0
	objectiveBonus        = 30.0
	riskProfileBonus      = 20.0
	capRateMultiplier     = 5.0
	fixedRateMultiplier   = 10.0
	shorterSurrenderBonus = 15.0
	bonusRateMultiplier   = 2.0
	stateAvailableBonus   = 10.0
	premiumBoundsBonus    = 5.0
	ageBoundsBonus        = 5.0
)

// ProductSource is the slice of the catalog the matcher reads
type ProductSource interface {
	GetProductsByType(productType string) ([]models.Product, error)
}

// ScoredProduct is a catalog product with its match score. The product fields
// serialize flat alongside matchScore.
type ScoredProduct struct {
	models.Product
	MatchScore float64 `json:"matchScore"`
}

// PolicySnapshot is the current-policy side of a comparison
type PolicySnapshot struct {
	PolicyID         string            `json:"policyId"`
	PolicyLabel      string            `json:"policyLabel"`
	Carrier          string            `json:"carrier"`
	ProductType      string            `json:"productType"`
	AccountValue     float64           `json:"accountValue"`
	CurrentCapRate   *float64          `json:"currentCapRate"`
	RenewalCapRate   *float64          `json:"renewalCapRate"`
	SurrenderEndDate string            `json:"surrenderEndDate"`
	Fees             models.PolicyFees `json:"fees"`
}

// Comparison is the replacement module's side-by-side view
type Comparison struct {
	CurrentPolicy   PolicySnapshot  `json:"currentPolicy"`
	Alternatives    []ScoredProduct `json:"alternatives"`
	ComparisonNotes []string        `json:"comparisonNotes"`
	Disclaimer      string          `json:"disclaimer"`
}

// Matcher ranks catalog products as replacements for an in-force policy
type Matcher struct {
	products  ProductSource
	preferred map[string]bool
	order     []string
}

// New creates a matcher. preferredCarriers earn the carrier affinity bonus.
func New(products ProductSource, preferredCarriers []string) *Matcher {
	m := &Matcher{products: products, preferred: make(map[string]bool)}
	for _, c := range preferredCarriers {
		if c == "" || m.preferred[c] {
			continue
		}
		m.preferred[c] = true
		m.order = append(m.order, c)
	}
	return m
}

// ClampMaxResults bounds a requested result count to [1, MaxResultsLimit].
// Zero or negative selects DefaultMaxResults.
func ClampMaxResults(n int) int {
	switch {
	case n <= 0:
		return DefaultMaxResults
	case n > MaxResultsLimit:
		return MaxResultsLimit
	default:
		return n
	}
}

// FindAlternatives returns products of the policy's type ordered by descending
// score. Ties are broken by productId ascending.
func (m *Matcher) FindAlternatives(policy *models.Policy, client *models.Client, maxResults int) ([]ScoredProduct, error) {
	candidates, err := m.products.GetProductsByType(policy.ProductType)
	if err != nil {
		return nil, err
	}

	scored := make([]ScoredProduct, 0, len(candidates))
	for _, product := range candidates {
		if product.ProductType != policy.ProductType {
			continue
		}
		scored = append(scored, ScoredProduct{Product: product, MatchScore: m.Score(&product, policy, client)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].MatchScore != scored[j].MatchScore {
			return scored[i].MatchScore > scored[j].MatchScore
		}
		return scored[i].ProductID < scored[j].ProductID
	})

	limit := ClampMaxResults(maxResults)
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// Score sums the independent match signals for one candidate
func (m *Matcher) Score(product *models.Product, policy *models.Policy, client *models.Client) float64 {
	profile := client.Suitability
	score := 0.0

	if m.preferred[product.Carrier] {
		score += preferredCarrierBonus
	}
	if product.IsNewProduct {
		score += newProductBonus
	}
	if product.SuitableForObjective(profile.PrimaryObjective) {
		score += objectiveBonus
	}
	if product.RiskProfile == profile.RiskTolerance {
		score += riskProfileBonus
	}

	current := policy.EffectiveRate()
	switch policy.ProductType {
	case "FIA":
		if best, ok := product.BestCapRate(); ok && best > current {
			score += (best - current) * capRateMultiplier
		}
	case "Fixed":
		if product.CurrentFixedRate != nil && *product.CurrentFixedRate > current {
			score += (*product.CurrentFixedRate - current) * fixedRateMultiplier
		}
	}

	if product.SurrenderSchedule.Years < policy.SurrenderScheduleYears {
		score += shorterSurrenderBonus
	}
	if product.BonusRate != nil {
		score += *product.BonusRate * bonusRateMultiplier
	}
	if product.AvailableIn(policy.ApplicationState) {
		score += stateAvailableBonus
	}
	if product.AcceptsPremium(policy.AccountValue) {
		score += premiumBoundsBonus
	}
	if product.AcceptsAge(profile.Age) {
		score += ageBoundsBonus
	}
	return score
}

// CreateComparison pairs the policy snapshot with its top alternatives and notes
func (m *Matcher) CreateComparison(policy *models.Policy, client *models.Client, maxResults int) (*Comparison, error) {
	alternatives, err := m.FindAlternatives(policy, client, maxResults)
	if err != nil {
		return nil, err
	}

	return &Comparison{
		CurrentPolicy: PolicySnapshot{
			PolicyID:         policy.PolicyID,
			PolicyLabel:      policy.PolicyLabel,
			Carrier:          policy.Carrier,
			ProductType:      policy.ProductType,
			AccountValue:     policy.AccountValue,
			CurrentCapRate:   policy.CurrentCapRate,
			RenewalCapRate:   policy.RenewalCapRate,
			SurrenderEndDate: policy.SurrenderEndDate,
			Fees:             policy.Fees,
		},
		Alternatives:    alternatives,
		ComparisonNotes: m.notes(policy, alternatives),
		Disclaimer:      Disclaimer,
	}, nil
}

// notes lists highlights in priority order, capped at maxNotes
func (m *Matcher) notes(policy *models.Policy, alternatives []ScoredProduct) []string {
	if len(alternatives) == 0 {
		return []string{NoAlternativesNote}
	}

	notes := []string{}
	partners := 0
	for _, alt := range alternatives {
		if m.preferred[alt.Carrier] {
			partners++
		}
	}
	if partners > 0 {
		notes = append(notes, fmt.Sprintf("Showing %d products from preferred carriers (%s)", partners, strings.Join(m.order, ", ")))
	}

	current := policy.EffectiveRate()
	for _, alt := range alternatives {
		switch policy.ProductType {
		case "FIA":
			if best, ok := alt.BestCapRate(); ok && best > current {
				notes = append(notes, fmt.Sprintf("%s %s offers up to %s%% cap vs. current %s%%",
					alt.Carrier, alt.ProductName, rate(best), rate(current)))
			}
		case "Fixed":
			if alt.CurrentFixedRate != nil && *alt.CurrentFixedRate > current {
				notes = append(notes, fmt.Sprintf("%s %s offers %s%% fixed rate vs. current %s%%",
					alt.Carrier, alt.ProductName, rate(*alt.CurrentFixedRate), rate(current)))
			}
		}
	}

	for _, alt := range alternatives {
		if alt.SurrenderSchedule.Years < policy.SurrenderScheduleYears {
			notes = append(notes, fmt.Sprintf("%s has shorter %d-year surrender period", alt.ProductName, alt.SurrenderSchedule.Years))
		}
	}

	for _, alt := range alternatives {
		if alt.BonusRate != nil && *alt.BonusRate > 0 {
			notes = append(notes, fmt.Sprintf("%s includes %s%% premium bonus", alt.ProductName, rate(*alt.BonusRate)))
		}
		if len(alt.CompetitiveAdvantages) > 0 {
			notes = append(notes, fmt.Sprintf("%s: %s", alt.ProductName, alt.CompetitiveAdvantages[0]))
		}
	}

	if len(notes) > maxNotes {
		notes = notes[:maxNotes]
	}
	return notes
}

func rate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
