package models

import (
	"strings"
	"time"
)

// Policy is an in-force annuity contract owned by one client
type Policy struct {
	PolicyID               string            `json:"policyId"`
	ClientAccountNumber    string            `json:"clientAccountNumber"`
	PolicyLabel            string            `json:"policyLabel"`
	Carrier                string            `json:"carrier"`
	ProductType            string            `json:"productType"`
	IssueDate              string            `json:"issueDate"`
	ApplicationState       string            `json:"applicationState"`
	AccountValue           float64           `json:"accountValue"`
	IncomeBase             *float64          `json:"incomeBase,omitempty"`
	RiderType              string            `json:"riderType"`
	IncomeActivated        bool              `json:"incomeActivated"`
	SurrenderScheduleYears int               `json:"surrenderScheduleYears"`
	SurrenderEndDate       string            `json:"surrenderEndDate"`
	CurrentCapRate         *float64          `json:"currentCapRate,omitempty"`
	RenewalDays            *int              `json:"renewalDays,omitempty"`
	RenewalCapRate         *float64          `json:"renewalCapRate,omitempty"`
	Fees                   PolicyFees        `json:"fees"`
	NonFinancialData       *NonFinancialData `json:"nonFinancialData,omitempty"`
	Notes                  string            `json:"notes"`
	Alerts                 []Alert           `json:"alerts"`

	Version   int64      `json:"version"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// PolicyFees are annual charges as percentages
type PolicyFees struct {
	MEFee    float64 `json:"m_e_fee"`
	RiderFee float64 `json:"riderFee"`
}

// HasIncomeRider reports whether the policy carries a guaranteed income benefit
func (p *Policy) HasIncomeRider() bool {
	return strings.Contains(strings.ToLower(p.RiderType), "income") || p.IncomeBase != nil
}

// EffectiveRate is the first non-zero of the renewal cap and the current cap,
// else zero
func (p *Policy) EffectiveRate() float64 {
	if p.RenewalCapRate != nil && *p.RenewalCapRate != 0 {
		return *p.RenewalCapRate
	}
	if p.CurrentCapRate != nil {
		return *p.CurrentCapRate
	}
	return 0
}

// Clone returns a deep copy safe to mutate
func (p *Policy) Clone() *Policy {
	if p == nil {
		return nil
	}
	out := *p
	out.IncomeBase = cloneFloat(p.IncomeBase)
	out.CurrentCapRate = cloneFloat(p.CurrentCapRate)
	out.RenewalCapRate = cloneFloat(p.RenewalCapRate)
	if p.RenewalDays != nil {
		days := *p.RenewalDays
		out.RenewalDays = &days
	}
	out.NonFinancialData = p.NonFinancialData.Clone()
	out.Alerts = CloneAlerts(p.Alerts)
	if p.UpdatedAt != nil {
		ts := *p.UpdatedAt
		out.UpdatedAt = &ts
	}
	return &out
}

// AlertOfType returns the first alert of the given type, if any
func (p *Policy) AlertOfType(t AlertType) (Alert, bool) {
	for _, a := range p.Alerts {
		if a.Type == t {
			return a, true
		}
	}
	return Alert{}, false
}

// NonFinancialData holds administrative owner and beneficiary details
type NonFinancialData struct {
	OwnerName             string          `json:"ownerName"`
	OwnerSSN              string          `json:"ownerSSN"`
	PrimaryBeneficiary    *Beneficiary    `json:"primaryBeneficiary,omitempty"`
	ContingentBeneficiary *Beneficiary    `json:"contingentBeneficiary,omitempty"`
	ContactInfo           *ContactInfo    `json:"contactInfo,omitempty"`
	TaxWithholding        *TaxWithholding `json:"taxWithholding,omitempty"`
	SpecialInstructions   string          `json:"specialInstructions"`
	LastUpdated           string          `json:"lastUpdated"`
}

// Beneficiary on a policy's administrative record
type Beneficiary struct {
	Name              string  `json:"name"`
	Relationship      string  `json:"relationship"`
	SSN               string  `json:"ssn"`
	DateOfBirth       string  `json:"dateOfBirth"`
	AllocationPercent float64 `json:"allocationPercent"`
}

// ContactInfo of the policy owner
type ContactInfo struct {
	Address string `json:"address"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

// TaxWithholding elections as percentages
type TaxWithholding struct {
	Federal *float64 `json:"federal,omitempty"`
	State   *float64 `json:"state,omitempty"`
}

// Clone returns a deep copy safe to mutate
func (n *NonFinancialData) Clone() *NonFinancialData {
	if n == nil {
		return nil
	}
	out := *n
	if n.PrimaryBeneficiary != nil {
		b := *n.PrimaryBeneficiary
		out.PrimaryBeneficiary = &b
	}
	if n.ContingentBeneficiary != nil {
		b := *n.ContingentBeneficiary
		out.ContingentBeneficiary = &b
	}
	if n.ContactInfo != nil {
		c := *n.ContactInfo
		out.ContactInfo = &c
	}
	if n.TaxWithholding != nil {
		out.TaxWithholding = &TaxWithholding{
			Federal: cloneFloat(n.TaxWithholding.Federal),
			State:   cloneFloat(n.TaxWithholding.State),
		}
	}
	return &out
}

// PolicySummary is the list-view projection of a policy
type PolicySummary struct {
	PolicyID            string         `json:"policyId"`
	ClientAccountNumber string         `json:"clientAccountNumber"`
	PolicyLabel         string         `json:"policyLabel"`
	Carrier             string         `json:"carrier"`
	ProductType         string         `json:"productType"`
	AccountValue        float64        `json:"accountValue"`
	RenewalDays         *int           `json:"renewalDays"`
	CurrentCapRate      *float64       `json:"currentCapRate"`
	RenewalCapRate      *float64       `json:"renewalCapRate"`
	Alerts              []AlertSummary `json:"alerts"`
}

// Summary projects the policy for list views
func (p *Policy) Summary() PolicySummary {
	alerts := make([]AlertSummary, 0, len(p.Alerts))
	for _, a := range p.Alerts {
		alerts = append(alerts, a.Summary())
	}
	return PolicySummary{
		PolicyID:            p.PolicyID,
		ClientAccountNumber: p.ClientAccountNumber,
		PolicyLabel:         p.PolicyLabel,
		Carrier:             p.Carrier,
		ProductType:         p.ProductType,
		AccountValue:        p.AccountValue,
		RenewalDays:         p.RenewalDays,
		CurrentCapRate:      p.CurrentCapRate,
		RenewalCapRate:      p.RenewalCapRate,
		Alerts:              alerts,
	}
}

// ClientPolicyGroup is one dashboard row: a client and all of its policies
type ClientPolicyGroup struct {
	ClientAccountNumber string          `json:"clientAccountNumber"`
	ClientName          string          `json:"clientName"`
	Policies            []PolicySummary `json:"policies"`
	TotalAlerts         int             `json:"totalAlerts"`
	HighSeverityCount   int             `json:"highSeverityCount"`
	MediumSeverityCount int             `json:"mediumSeverityCount"`
	LowSeverityCount    int             `json:"lowSeverityCount"`
}

// Add appends a policy summary and tallies its alerts by severity
func (g *ClientPolicyGroup) Add(p *Policy) {
	g.Policies = append(g.Policies, p.Summary())
	for _, a := range p.Alerts {
		g.TotalAlerts++
		switch a.Severity {
		case SeverityHigh:
			g.HighSeverityCount++
		case SeverityMedium:
			g.MediumSeverityCount++
		case SeverityLow:
			g.LowSeverityCount++
		}
	}
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

// Float64 returns a pointer to v
func Float64(v float64) *float64 {
	return &v
}

// Int returns a pointer to v
func Int(v int) *int {
	return &v
}
