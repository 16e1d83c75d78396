package transaction

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ajharbinger/annuity-review-api/internal/models"
)

const (
	minClientAge        = 18
	typicalMaxClientAge = 85
)

var (
	fullAllocation = decimal.NewFromInt(100)
	// inclusive bound on |sum - 100|
	allocationTolerance = decimal.RequireFromString("0.02")
)

// ValidationResult holds the findings of one validation pass. Only Errors
// affect IsValid.
type ValidationResult struct {
	IsValid         bool     `json:"isValid"`
	Errors          []string `json:"errors"`
	Warnings        []string `json:"warnings"`
	MissingFields   []string `json:"missingFields"`
	ComplianceFlags []string `json:"complianceFlags"`
}

func (r *ValidationResult) addError(msg string)   { r.Errors = append(r.Errors, msg) }
func (r *ValidationResult) addWarning(msg string) { r.Warnings = append(r.Warnings, msg) }

// Validate runs every payload check in order. The checks are independent and
// each appends to a single list.
func Validate(p *models.ReplacementTransaction) ValidationResult {
	r := ValidationResult{
		Errors:          []string{},
		Warnings:        []string{},
		MissingFields:   []string{},
		ComplianceFlags: []string{},
	}

	// Premium arithmetic is exact
	np := p.NewProduct
	if !np.InitialPremium.Equal(np.ExchangeAmount.Add(np.AdditionalPremium)) {
		r.addError("Initial premium does not equal exchange amount plus additional premium")
	}

	if !p.SuitabilityProfile.UnderstandsReplacement {
		r.ComplianceFlags = append(r.ComplianceFlags, "Client understanding of replacement not confirmed")
	}
	if !p.SuitabilityProfile.ComparedAlternatives {
		r.addWarning("Client did not compare multiple alternatives")
	}

	checklist := p.ComplianceChecklist
	if !checklist.ReplacementFormSigned {
		r.addError("State replacement form not signed")
	}
	if !checklist.SuitabilityReviewCompleted {
		r.addError("Suitability review not completed")
	}
	if !checklist.IsSuitable {
		r.addError("Transaction determined not suitable")
	}

	if p.ExchangeType.Is1035() {
		if !checklist.Is1035Exchange {
			r.addError("Exchange type indicates 1035 but compliance checklist not marked")
		}
		if !checklist.ExchangeFormCompleted {
			r.addError("1035 exchange form not completed")
		}
	}

	validateBeneficiaries(p.Beneficiaries, &r)

	if p.Client.Age < minClientAge {
		r.addError(fmt.Sprintf("Client age below minimum (%d)", minClientAge))
	}
	if p.Client.Age > typicalMaxClientAge {
		r.addWarning(fmt.Sprintf("Client age above typical maximum (%d) - may require underwriting", typicalMaxClientAge))
	}

	cp := p.CurrentPolicy
	if cp.SurrenderCharge != nil && cp.SurrenderCharge.IsPositive() && strings.TrimSpace(cp.SurrenderChargeJustification) == "" {
		r.addWarning("Surrender charges apply but no justification provided")
	}

	if checklist.StateApprovalRequired && !checklist.StateApprovalReceived {
		r.addError("State approval required but not received")
	}

	if !p.Advisor.HasCarrierAppointment {
		r.addError("Advisor does not have carrier appointment")
	}
	if !p.Advisor.HasProductTraining {
		r.addWarning("Advisor has not completed product training")
	}

	tax := p.TaxWithholding
	if tax.FederalWithholding && !hasFederalElection(tax) {
		r.addError("Federal withholding elected but no percentage or amount specified")
	}
	if !tax.W9OnFile {
		r.addError("W-9 form not on file")
	}

	r.MissingFields = missingFields(p)
	r.IsValid = len(r.Errors) == 0
	return r
}

func validateBeneficiaries(beneficiaries []models.BeneficiaryDesignation, r *ValidationResult) {
	var primary, contingent []models.BeneficiaryDesignation
	for _, b := range beneficiaries {
		switch b.BeneficiaryType {
		case models.BeneficiaryPrimary:
			primary = append(primary, b)
		case models.BeneficiaryContingent:
			contingent = append(contingent, b)
		}
	}

	if len(primary) == 0 {
		r.addWarning("No primary beneficiaries designated")
	} else if total := allocationTotal(primary); !withinTolerance(total) {
		r.addError(fmt.Sprintf("Primary beneficiary allocations total %s%%, must equal 100%%", total.String()))
	}

	if len(contingent) == 0 {
		r.addWarning("No contingent beneficiaries designated")
	} else if total := allocationTotal(contingent); !withinTolerance(total) {
		r.addWarning(fmt.Sprintf("Contingent beneficiary allocations total %s%%, expected 100%%", total.String()))
	}
}

// allocationTotal sums in decimal so 49.98 + 50 is exactly 99.98
func allocationTotal(beneficiaries []models.BeneficiaryDesignation) decimal.Decimal {
	total := decimal.Zero
	for _, b := range beneficiaries {
		total = total.Add(decimal.NewFromFloat(b.AllocationPercent))
	}
	return total
}

func withinTolerance(total decimal.Decimal) bool {
	return total.Sub(fullAllocation).Abs().LessThanOrEqual(allocationTolerance)
}

// hasFederalElection treats zero values as not specified
func hasFederalElection(tax models.TaxWithholdingElections) bool {
	if tax.FederalPercent != nil && *tax.FederalPercent != 0 {
		return true
	}
	return tax.FederalFlatAmount != nil && !tax.FederalFlatAmount.IsZero()
}

func missingFields(p *models.ReplacementTransaction) []string {
	required := []struct {
		name  string
		value string
	}{
		{"client.firstName", p.Client.FirstName},
		{"client.lastName", p.Client.LastName},
		{"client.ssn", p.Client.SSN},
		{"client.dateOfBirth", p.Client.DateOfBirth},
		{"currentPolicy.policyNumber", p.CurrentPolicy.PolicyNumber},
		{"newProduct.productId", p.NewProduct.ProductID},
		{"advisor.advisorId", p.Advisor.AdvisorID},
	}

	missing := []string{}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}
