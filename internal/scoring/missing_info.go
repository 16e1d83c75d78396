package scoring

import (
	"fmt"

	"github.com/ajharbinger/annuity-review-api/internal/models"
)

const missingInfoAlgorithmVersion = "missing_info_v1.0"

// missingField is one administrative deficiency found on a policy
type missingField struct {
	Field    string `json:"field"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
	Reason   string `json:"-"`
}

// adminAudit is the result of inspecting a policy's non-financial record
type adminAudit struct {
	critical  []missingField
	important []missingField
	outdated  []missingField

	completeness      float64
	noTaxElection     bool
	lastUpdated       string
	ageYears          float64
	ageKnown          bool
	primaryMissing    bool
	primaryIncomplete bool
	recordPresent     bool
}

func taxElectionMissing(n *models.NonFinancialData) bool {
	return n.TaxWithholding == nil || (n.TaxWithholding.Federal == nil && n.TaxWithholding.State == nil)
}

// audit lists every deficiency in the order reasons are reported
func (e *Engine) audit(p *models.Policy) adminAudit {
	t := e.thresholds.MissingInfo
	n := p.NonFinancialData
	result := adminAudit{recordPresent: n != nil}
	if n == nil {
		n = &models.NonFinancialData{}
	}

	switch ben := n.PrimaryBeneficiary; {
	case ben == nil:
		result.primaryMissing = true
		result.critical = append(result.critical, missingField{
			Field: "primary_beneficiary", Status: "NULL", Priority: "CRITICAL",
			Reason: "Primary beneficiary not designated",
		})
		result.completeness += t.PrimaryMissingPoints
	case ben.SSN == "" || ben.DateOfBirth == "":
		result.primaryIncomplete = true
		if ben.SSN == "" {
			result.important = append(result.important, missingField{
				Field: "primary_beneficiary_ssn", Status: "Incomplete (missing SSN)", Priority: "HIGH",
				Reason: "Primary beneficiary SSN missing",
			})
		}
		if ben.DateOfBirth == "" {
			result.important = append(result.important, missingField{
				Field: "primary_beneficiary_dob", Status: "Incomplete (missing DOB)", Priority: "HIGH",
				Reason: "Primary beneficiary date of birth missing",
			})
		}
		result.completeness += t.PrimaryIncompletePoints
	}

	if taxElectionMissing(n) {
		result.noTaxElection = true
		result.important = append(result.important, missingField{
			Field: "tax_withholding_federal", Status: "Not elected", Priority: "HIGH",
			Reason: "Tax withholding elections not selected",
		})
		result.completeness += t.TaxElectionPoints
	}

	contact := n.ContactInfo
	if contact == nil {
		contact = &models.ContactInfo{}
	}
	if contact.Email == "" {
		result.outdated = append(result.outdated, missingField{
			Field: "email_address", Status: "Missing", Priority: "MEDIUM",
			Reason: "Owner email address missing",
		})
		result.completeness += t.EmailPoints
	}
	if contact.Address == "" {
		result.outdated = append(result.outdated, missingField{
			Field: "owner_address", Status: "Missing", Priority: "MEDIUM",
			Reason: "Owner mailing address missing",
		})
		result.completeness += t.AddressPoints
	}

	if n.ContingentBeneficiary == nil {
		result.completeness += t.ContingentPoints
	}

	result.lastUpdated = n.LastUpdated
	if updated, ok := parseDate(n.LastUpdated); ok {
		result.ageYears = yearsSince(e.now(), updated)
		result.ageKnown = true
	}
	return result
}

func (r adminAudit) stale(years float64) bool {
	return r.ageKnown && r.ageYears > years
}

func (r adminAudit) reasons() []string {
	var reasons []string
	for _, group := range [][]missingField{r.critical, r.important, r.outdated} {
		for _, f := range group {
			reasons = append(reasons, f.Reason)
		}
	}
	if len(reasons) == 0 {
		return []string{"Administrative data requires update"}
	}
	return reasons
}

// triggerMissingInfo: no record, primary beneficiary missing or incomplete, no
// tax election, no email, or data older than StaleYears
func (e *Engine) triggerMissingInfo(s Subject) bool {
	r := e.audit(s.Policy)
	if !r.recordPresent || len(r.critical) > 0 || len(r.important) > 0 {
		return true
	}
	for _, f := range r.outdated {
		if f.Field == "email_address" {
			return true
		}
	}
	return r.stale(e.thresholds.MissingInfo.StaleYears)
}

// scoreMissingInfo sums completeness, recency, regulatory criticality and the
// integration bonus, clamped to MaxScore
func (e *Engine) scoreMissingInfo(s Subject) *models.Alert {
	t := e.thresholds.MissingInfo
	p := s.Policy
	r := e.audit(p)

	var recency float64
	switch {
	case r.lastUpdated == "":
		recency = t.RecencyNever
	case !r.ageKnown:
		recency = t.RecencyUnparseable
	case r.ageYears > 5:
		recency = t.RecencyOver5Years
	case r.ageYears > 3:
		recency = t.RecencyOver3Years
	case r.ageYears > 1:
		recency = t.RecencyOver1Year
	}

	regulatory := float64(len(r.critical)) * t.CriticalPoints
	if len(r.important) > 0 && regulatory < t.ImportantPoints {
		regulatory = t.ImportantPoints
	}
	integration := t.IntegrationPoints

	score := clampScore(r.completeness+recency+regulatory+integration, t.MaxScore)
	severity := tiered(score, t.HighScore, t.MediumScore, false, false)

	reasons := r.reasons()
	var reasonShort string
	switch count := len(reasons); {
	case count == 1:
		reasonShort = reasons[0]
	case count <= 3:
		reasonShort = fmt.Sprintf("%d fields need attention", count)
	default:
		reasonShort = fmt.Sprintf("%d missing/incomplete fields", count)
	}

	alert := e.newAlert(fmt.Sprintf("ALT-%s-MISS", p.PolicyID), models.AlertMissingInfo, score, severity)
	alert.Title = "Missing Information"
	alert.ReasonShort = reasonShort
	alert.Reasons = reasons

	var keyFactors []string
	if len(r.critical) > 0 {
		keyFactors = append(keyFactors, "Primary beneficiary designation missing (required field)")
	}
	if r.noTaxElection {
		keyFactors = append(keyFactors, "Tax withholding elections never completed")
	}
	if r.primaryIncomplete {
		keyFactors = append(keyFactors, "Beneficiary information incomplete (missing SSN or DOB)")
	}
	if recency >= t.RecencyOver3Years {
		if r.ageKnown {
			keyFactors = append(keyFactors, fmt.Sprintf("Owner contact information outdated by %d+ years", int(r.ageYears)))
		} else {
			keyFactors = append(keyFactors, "Contact information never updated")
		}
	}
	keyFactors = append(keyFactors, "Account profile has current information available for auto-update")

	requiresInput := []string{}
	if r.primaryMissing {
		requiresInput = append(requiresInput, "primary_beneficiary")
	}
	if r.noTaxElection {
		requiresInput = append(requiresInput, "tax_withholding_elections")
	}

	a := alert.AIAnalysis
	a.Confidence = 0.85
	if r.lastUpdated != "" {
		a.Confidence = 0.92
	}
	a.Breakdown = map[string]float64{
		"data_completeness":     round1(r.completeness),
		"data_recency":          round1(recency),
		"regulatory_importance": round1(regulatory),
		"integration_eligible":  round1(integration),
	}
	a.KeyFactors = keyFactors
	a.Details = map[string]interface{}{
		"missing_fields_analysis": map[string]interface{}{
			"critical_missing":  nonNilFields(r.critical),
			"important_missing": nonNilFields(r.important),
			"outdated_fields":   nonNilFields(r.outdated),
		},
		"dtcc_integration": map[string]interface{}{
			"eligible_for_update":        true,
			"estimated_fields_to_update": len(r.critical) + len(r.important) + len(r.outdated),
			"auto_apply_from_profile":    []string{"owner_name", "ssn", "address", "email", "phone"},
			"requires_advisor_input":     requiresInput,
		},
		"compliance_notes": []string{
			"Beneficiary designation recommended for estate planning",
			"Tax withholding elections help clients avoid year-end tax surprises",
			"Contact information updates ensure policy communications reach client",
		},
	}
	a.DataPointsAnalyzed = 8
	a.AlgorithmVersion = missingInfoAlgorithmVersion
	return alert
}

func nonNilFields(fields []missingField) []missingField {
	if fields == nil {
		return []missingField{}
	}
	return fields
}
