package models

// Asset classes referenced by acquisition scoring
const (
	AssetClassCash        = "CASH"
	AssetClassEquity      = "EQUITY"
	AssetClassFixedIncome = "FIXED_INCOME"
	AssetClassAnnuity     = "ANNUITY"
)

// ClientPosition is a point-in-time snapshot of a client's outside holdings
type ClientPosition struct {
	ClientAccountNumber string           `json:"clientAccountNumber"`
	AsOfDate            string           `json:"asOfDate"`
	TotalPortfolioValue float64          `json:"totalPortfolioValue"`
	Positions           []Position       `json:"positions"`
	Summary             PortfolioSummary `json:"summary"`
	Alerts              []Alert          `json:"alerts"`

	Version int64 `json:"version"`
}

// Position is a single holding
type Position struct {
	PositionID     string   `json:"positionId"`
	AssetClass     string   `json:"assetClass"`
	AccountType    string   `json:"accountType"`
	Symbol         string   `json:"symbol,omitempty"`
	Description    string   `json:"description"`
	Quantity       *float64 `json:"quantity,omitempty"`
	MarketValue    float64  `json:"marketValue"`
	CostBasis      *float64 `json:"costBasis,omitempty"`
	UnrealizedGain *float64 `json:"unrealizedGain,omitempty"`
	CurrentYield   *float64 `json:"currentYield,omitempty"`
	MaturityDate   string   `json:"maturityDate,omitempty"`
	CurrentRate    *float64 `json:"currentRate,omitempty"`
}

// PortfolioSummary holds allocations as fractions of the total and totals in dollars
type PortfolioSummary struct {
	EquityAllocation       float64 `json:"equityAllocation"`
	FixedIncomeAllocation  float64 `json:"fixedIncomeAllocation"`
	CashAllocation         float64 `json:"cashAllocation"`
	AnnuityAllocation      float64 `json:"annuityAllocation"`
	AlternativesAllocation float64 `json:"alternativesAllocation"`
	TaxableValue           float64 `json:"taxableValue"`
	QualifiedValue         float64 `json:"qualifiedValue"`
	TotalCash              float64 `json:"totalCash"`
	TotalEquities          float64 `json:"totalEquities"`
	TotalFixedIncome       float64 `json:"totalFixedIncome"`
	TotalAnnuities         float64 `json:"totalAnnuities"`
}

// Clone returns a deep copy safe to mutate
func (c *ClientPosition) Clone() *ClientPosition {
	if c == nil {
		return nil
	}
	out := *c
	out.Positions = make([]Position, len(c.Positions))
	for i, p := range c.Positions {
		out.Positions[i] = p
		out.Positions[i].Quantity = cloneFloat(p.Quantity)
		out.Positions[i].CostBasis = cloneFloat(p.CostBasis)
		out.Positions[i].UnrealizedGain = cloneFloat(p.UnrealizedGain)
		out.Positions[i].CurrentYield = cloneFloat(p.CurrentYield)
		out.Positions[i].CurrentRate = cloneFloat(p.CurrentRate)
	}
	out.Alerts = CloneAlerts(c.Alerts)
	return &out
}

// CashUnrealizedGain sums unrealized gains on cash-class holdings
func (c *ClientPosition) CashUnrealizedGain() float64 {
	total := 0.0
	for _, p := range c.Positions {
		if p.AssetClass == AssetClassCash && p.UnrealizedGain != nil {
			total += *p.UnrealizedGain
		}
	}
	return total
}

// AcquisitionSummary is one row of the cross-client opportunity listing
type AcquisitionSummary struct {
	ClientAccountNumber string  `json:"clientAccountNumber"`
	ClientName          string  `json:"clientName"`
	TotalPortfolioValue float64 `json:"totalPortfolioValue"`
	AlertCount          int     `json:"alertCount"`
	Alerts              []Alert `json:"alerts"`
}
