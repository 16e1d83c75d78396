package models

import "strings"

// Product is an immutable catalog entry
type Product struct {
	ProductID             string            `json:"productId"`
	Carrier               string            `json:"carrier"`
	ProductName           string            `json:"productName"`
	ProductType           string            `json:"productType"`
	IssueYear             int               `json:"issueYear"`
	AvailableStates       []string          `json:"availableStates"`
	IndexOptions          []IndexOption     `json:"indexOptions"`
	GuaranteedMinimumRate *float64          `json:"guaranteedMinimumRate,omitempty"`
	CurrentFixedRate      *float64          `json:"currentFixedRate,omitempty"`
	Fees                  ProductFees       `json:"fees"`
	AvailableRiders       []Rider           `json:"availableRiders"`
	SurrenderSchedule     SurrenderSchedule `json:"surrenderSchedule"`
	MinimumPremium        float64           `json:"minimumPremium"`
	MaximumPremium        *float64          `json:"maximumPremium,omitempty"`
	AgeMin                int               `json:"ageMin"`
	AgeMax                int               `json:"ageMax"`
	BonusRate             *float64          `json:"bonusRate,omitempty"`
	LiquidityFeatures     []string          `json:"liquidityFeatures"`
	KeyBenefits           []string          `json:"keyBenefits"`
	SuitableFor           []string          `json:"suitableFor"`
	RiskProfile           string            `json:"riskProfile"`
	IsNewProduct          bool              `json:"isNewProduct"`
	CompetitiveAdvantages []string          `json:"competitiveAdvantages"`
}

// IndexOption is one crediting strategy
type IndexOption struct {
	IndexName    string  `json:"indexName"`
	Strategy     string  `json:"strategy"`
	CurrentValue float64 `json:"currentValue"`
	Floor        float64 `json:"floor"`
}

// ProductFees are annual charges as percentages
type ProductFees struct {
	MEFee             float64  `json:"m_e_fee"`
	AdministrativeFee float64  `json:"administrativeFee"`
	FundExpenses      *float64 `json:"fundExpenses,omitempty"`
}

// Rider is an optional benefit a product offers
type Rider struct {
	RiderName  string   `json:"riderName"`
	RiderType  string   `json:"riderType"`
	AnnualFee  float64  `json:"annualFee"`
	Features   []string `json:"features"`
	RollUpRate *float64 `json:"rollUpRate,omitempty"`
	PayoutRate *float64 `json:"payoutRate,omitempty"`
}

// SurrenderSchedule lists the declining surrender charge per contract year
type SurrenderSchedule struct {
	Years                 int       `json:"years"`
	Schedule              []float64 `json:"schedule"`
	FreeWithdrawalPercent float64   `json:"freeWithdrawalPercent"`
}

// ApplyDefaults fills the catalog defaults for fields absent in source data
func (p *Product) ApplyDefaults() {
	if p.MinimumPremium == 0 {
		p.MinimumPremium = 10000
	}
	if p.AgeMax == 0 {
		p.AgeMax = 85
	}
	if p.RiskProfile == "" {
		p.RiskProfile = "Moderate"
	}
	if p.SurrenderSchedule.FreeWithdrawalPercent == 0 {
		p.SurrenderSchedule.FreeWithdrawalPercent = 10
	}
}

// BestCapRate returns the highest current value among strategies ending in "Cap"
func (p *Product) BestCapRate() (float64, bool) {
	best, found := 0.0, false
	for _, opt := range p.IndexOptions {
		if !strings.HasSuffix(opt.Strategy, "Cap") {
			continue
		}
		if !found || opt.CurrentValue > best {
			best, found = opt.CurrentValue, true
		}
	}
	return best, found
}

// AvailableIn reports whether the product is sold in the state
func (p *Product) AvailableIn(state string) bool {
	for _, s := range p.AvailableStates {
		if s == state {
			return true
		}
	}
	return false
}

// SuitableForObjective reports whether the objective is among the product's tags
func (p *Product) SuitableForObjective(objective string) bool {
	for _, s := range p.SuitableFor {
		if s == objective {
			return true
		}
	}
	return false
}

// AcceptsPremium reports whether amount falls within the premium bounds
func (p *Product) AcceptsPremium(amount float64) bool {
	if amount < p.MinimumPremium {
		return false
	}
	return p.MaximumPremium == nil || amount <= *p.MaximumPremium
}

// AcceptsAge reports whether age falls within the issue-age bounds
func (p *Product) AcceptsAge(age int) bool {
	return age >= p.AgeMin && age <= p.AgeMax
}
