package models

import (
	"strings"
	"time"
)

// ClientIdentity is the stable external key plus display name of a client
type ClientIdentity struct {
	AccountNumber string `json:"clientAccountNumber"`
	Name          string `json:"clientName"`
}

// SuitabilityProfile is the flat suitability record kept for each client
type SuitabilityProfile struct {
	Age                  int    `json:"age"`
	LifeStage            string `json:"lifeStage"`
	MaritalStatus        string `json:"maritalStatus"`
	Dependents           int    `json:"dependents"`
	RiskTolerance        string `json:"riskTolerance"`
	InvestmentExperience string `json:"investmentExperience"`
	VolatilityComfort    string `json:"volatilityComfort"`
	PrimaryObjective     string `json:"primaryObjective"`
	SecondaryObjective   string `json:"secondaryObjective"`
	LiquidityImportance  string `json:"liquidityImportance"`
	InvestmentHorizon    string `json:"investmentHorizon"`
	WithdrawalHorizon    string `json:"withdrawalHorizon"`
	CurrentIncomeNeed    string `json:"currentIncomeNeed"`
	AnnualIncomeRange    string `json:"annualIncomeRange"`
	NetWorthRange        string `json:"netWorthRange"`
	LiquidNetWorthRange  string `json:"liquidNetWorthRange"`
	TaxBracket           string `json:"taxBracket"`
	RetirementTargetYear *int   `json:"retirementTargetYear,omitempty"`
	State                string `json:"state"`
	Citizenship          string `json:"citizenship"`
	AdvisoryModel        string `json:"advisoryModel"`
	IsFeeBasedAccount    bool   `json:"isFeeBasedAccount"`
}

// Client pairs a client identity with its suitability profile
type Client struct {
	Client      ClientIdentity     `json:"client"`
	Suitability SuitabilityProfile `json:"clientSuitabilityProfile"`

	Version   int64      `json:"version"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	UpdatedBy string     `json:"updatedBy,omitempty"`
}

// AccountNumber is a shortcut for c.Client.AccountNumber
func (c *Client) AccountNumber() string {
	return c.Client.AccountNumber
}

// FirstName returns the first token of the display name
func (c *Client) FirstName() string {
	parts := strings.Fields(c.Client.Name)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// LastName returns everything after the first token of the display name
func (c *Client) LastName() string {
	parts := strings.Fields(c.Client.Name)
	if len(parts) < 2 {
		return ""
	}
	return strings.Join(parts[1:], " ")
}

// Clone returns a deep copy safe to mutate
func (c *Client) Clone() *Client {
	if c == nil {
		return nil
	}
	out := *c
	if c.Suitability.RetirementTargetYear != nil {
		year := *c.Suitability.RetirementTargetYear
		out.Suitability.RetirementTargetYear = &year
	}
	if c.UpdatedAt != nil {
		ts := *c.UpdatedAt
		out.UpdatedAt = &ts
	}
	return &out
}

// SuitabilityUpdate is a partial patch; nil fields are left unchanged
type SuitabilityUpdate struct {
	RiskTolerance       *string `json:"riskTolerance,omitempty"`
	PrimaryObjective    *string `json:"primaryObjective,omitempty"`
	SecondaryObjective  *string `json:"secondaryObjective,omitempty"`
	CurrentIncomeNeed   *string `json:"currentIncomeNeed,omitempty"`
	LifeStage           *string `json:"lifeStage,omitempty"`
	LiquidityImportance *string `json:"liquidityImportance,omitempty"`
}

// IsEmpty reports whether the patch names no field at all
func (u SuitabilityUpdate) IsEmpty() bool {
	return u.RiskTolerance == nil &&
		u.PrimaryObjective == nil &&
		u.SecondaryObjective == nil &&
		u.CurrentIncomeNeed == nil &&
		u.LifeStage == nil &&
		u.LiquidityImportance == nil
}

// ApplyTo replaces each named field of the profile
func (u SuitabilityUpdate) ApplyTo(p *SuitabilityProfile) {
	if u.RiskTolerance != nil {
		p.RiskTolerance = *u.RiskTolerance
	}
	if u.PrimaryObjective != nil {
		p.PrimaryObjective = *u.PrimaryObjective
	}
	if u.SecondaryObjective != nil {
		p.SecondaryObjective = *u.SecondaryObjective
	}
	if u.CurrentIncomeNeed != nil {
		p.CurrentIncomeNeed = *u.CurrentIncomeNeed
	}
	if u.LifeStage != nil {
		p.LifeStage = *u.LifeStage
	}
	if u.LiquidityImportance != nil {
		p.LiquidityImportance = *u.LiquidityImportance
	}
}

// ClientView is the shape the advisor UI consumes
type ClientView struct {
	ClientID      string          `json:"clientId"`
	AccountNumber string          `json:"clientAccountNumber"`
	Name          string          `json:"name"`
	FirstName     string          `json:"firstName"`
	LastName      string          `json:"lastName"`
	Age           int             `json:"age"`
	Suitability   SuitabilityView `json:"suitability"`
	Version       int64           `json:"version"`
}

// SuitabilityView is the editable subset of the profile plus audit stamp
type SuitabilityView struct {
	RiskTolerance       string     `json:"riskTolerance"`
	PrimaryObjective    string     `json:"primaryObjective"`
	SecondaryObjective  string     `json:"secondaryObjective"`
	CurrentIncomeNeed   string     `json:"currentIncomeNeed"`
	LifeStage           string     `json:"lifeStage"`
	LiquidityImportance string     `json:"liquidityImportance"`
	LastUpdated         *time.Time `json:"lastUpdated,omitempty"`
	UpdatedBy           string     `json:"updatedBy"`
}

// View converts the record to its UI representation
func (c *Client) View() ClientView {
	updatedBy := c.UpdatedBy
	if updatedBy == "" {
		updatedBy = "System"
	}
	return ClientView{
		ClientID:      c.Client.AccountNumber,
		AccountNumber: c.Client.AccountNumber,
		Name:          c.Client.Name,
		FirstName:     c.FirstName(),
		LastName:      c.LastName(),
		Age:           c.Suitability.Age,
		Suitability: SuitabilityView{
			RiskTolerance:       c.Suitability.RiskTolerance,
			PrimaryObjective:    c.Suitability.PrimaryObjective,
			SecondaryObjective:  c.Suitability.SecondaryObjective,
			CurrentIncomeNeed:   c.Suitability.CurrentIncomeNeed,
			LifeStage:           c.Suitability.LifeStage,
			LiquidityImportance: c.Suitability.LiquidityImportance,
			LastUpdated:         c.UpdatedAt,
			UpdatedBy:           updatedBy,
		},
		Version: c.Version,
	}
}
