package scoring

import (
	"fmt"
	"math"

	"github.com/ajharbinger/annuity-review-api/internal/models"
)

var riskLevels = map[string]int{
	"Conservative": 1,
	"Moderate":     2,
	"Aggressive":   3,
}

func riskLevel(tolerance string, fallback int) int {
	if level, ok := riskLevels[tolerance]; ok {
		return level
	}
	return fallback
}

// ageObjectiveMismatch is the first trigger clause: an older client still on a growth objective
func (e *Engine) ageObjectiveMismatch(c *models.Client) bool {
	t := e.thresholds.Suitability
	return c.Suitability.Age >= t.DriftAge && c.Suitability.PrimaryObjective == t.GrowthObjective
}

// policyAgeYears is the time since issue in 365-day years; zero when unparseable
func (e *Engine) policyAgeYears(p *models.Policy) float64 {
	issued, ok := parseDate(p.IssueDate)
	if !ok {
		return 0
	}
	return e.now().Sub(issued).Hours() / 24 / 365
}

// periodicReviewDue is the second trigger clause
func (e *Engine) periodicReviewDue(p *models.Policy) bool {
	return e.policyAgeYears(p) >= float64(e.thresholds.Suitability.ReviewIntervalYears)
}

func (e *Engine) triggerSuitabilityDrift(s Subject) bool {
	return e.ageObjectiveMismatch(s.Client) || e.periodicReviewDue(s.Policy)
}

// scoreSuitabilityDrift compares the current profile against the baseline
// profile: risk drift (<= 35), objective shift, financial change (<= 20) and
// horizon compression (<= 15). A shift to Income without an income rider is
// critical and forces HIGH.
func (e *Engine) scoreSuitabilityDrift(s Subject) *models.Alert {
	t := e.thresholds.Suitability
	p := s.Policy
	profile := s.Client.Suitability

	originalRisk := t.BaselineRiskTolerance
	currentRisk := profile.RiskTolerance
	riskDrift := math.Abs(float64(riskLevel(currentRisk, 2) - riskLevel(originalRisk, 1)))
	riskScore := math.Min(35, riskDrift*t.RiskPointsPerLevel)

	originalObjective := t.BaselineObjective
	currentObjective := profile.PrimaryObjective
	hasRider := p.HasIncomeRider()
	changed := originalObjective != currentObjective
	critical := changed && currentObjective == "Income" && !hasRider
	objectiveScore := t.ObjectiveStableScore
	switch {
	case critical:
		objectiveScore = t.ObjectiveCriticalScore
	case changed:
		objectiveScore = t.ObjectiveChangedScore
	}

	netWorth := t.AssumedNetWorthChange
	income := t.AssumedIncomeChange
	financialScore := math.Min(20, (math.Abs(netWorth)+math.Abs(income))/2*20)

	originalHorizon := t.BaselineHorizonYears
	currentHorizon, ok := leadingInt(profile.InvestmentHorizon)
	if !ok {
		currentHorizon = originalHorizon
	}
	horizonDrift := math.Abs(float64(currentHorizon - originalHorizon))
	horizonScore := math.Min(15, horizonDrift/10*15)

	score := clampScore(riskScore+objectiveScore+financialScore+horizonScore, t.MaxScore)
	severity := tiered(score, t.HighScore, t.MediumScore, critical, false)

	alert := e.newAlert(fmt.Sprintf("ALT-%s-SUIT", p.PolicyID), models.AlertSuitabilityDrift, score, severity)
	alert.Title = "Suitability Review Recommended"
	alert.ReasonShort = "Life stage and objectives may have shifted"
	alert.Reasons = []string{
		"Policy age suggests periodic suitability review",
		"Client profile changes may warrant product reassessment",
		"Compliance best practice: verify current suitability",
	}

	mismatches := []string{}
	if critical {
		mismatches = append(mismatches, "Objective shifted to Income but policy has no income rider")
		if days, ok := e.surrenderDays(p); ok && days > 0 && currentHorizon < originalHorizon {
			years := int(math.Ceil(float64(days) / 365))
			mismatches = append(mismatches, fmt.Sprintf("Time horizon shortened but %d years surrender period remaining", years))
		}
	}

	riskSeverity := models.SeverityLow
	if riskDrift >= 1 {
		riskSeverity = models.SeverityMedium
	}
	objectiveSeverity := models.SeverityMedium
	var mismatch interface{}
	if critical {
		objectiveSeverity = models.SeverityHigh
		mismatch = "Policy lacks income rider feature"
	}

	a := alert.AIAnalysis
	switch severity {
	case models.SeverityHigh:
		a.Confidence = 0.88
	case models.SeverityMedium:
		a.Confidence = 0.81
	default:
		a.Confidence = 0.72
	}
	a.Breakdown = map[string]float64{
		"risk_tolerance":      round1(riskScore),
		"primary_objective":   round1(objectiveScore),
		"financial_situation": round1(financialScore),
		"time_horizon":        round1(horizonScore),
	}
	a.KeyFactors = []string{
		fmt.Sprintf("Risk tolerance shifted from %s to %s", originalRisk, currentRisk),
		fmt.Sprintf("Objective changed from %s to %s", originalObjective, currentObjective),
		fmt.Sprintf("Net worth increased %d%%, income up %d%%", int(netWorth*100), int(income*100)),
	}
	a.Details = map[string]interface{}{
		"drift_analysis": map[string]interface{}{
			"risk_tolerance": map[string]interface{}{
				"original":    originalRisk,
				"current":     currentRisk,
				"drift_score": round1(riskScore),
				"severity":    riskSeverity,
			},
			"primary_objective": map[string]interface{}{
				"original":    originalObjective,
				"current":     currentObjective,
				"drift_score": round1(objectiveScore),
				"severity":    objectiveSeverity,
				"mismatch":    mismatch,
			},
			"financial_situation": map[string]interface{}{
				"net_worth_change": fmt.Sprintf("%+d%%", int(netWorth*100)),
				"income_change":    fmt.Sprintf("%+d%%", int(income*100)),
				"drift_score":      round1(financialScore),
			},
			"time_horizon": map[string]interface{}{
				"original":    fmt.Sprintf("%d+ years", originalHorizon),
				"current":     profile.InvestmentHorizon,
				"drift_score": round1(horizonScore),
			},
		},
		"critical_mismatches": mismatches,
		"review_rationale": []string{
			"Client profile has materially changed since policy issue",
			"Current needs may not align with product features",
			"Suitability verification recommended per compliance",
		},
		"policy_age_years": round1(e.policyAgeYears(p)),
	}
	a.DataPointsAnalyzed = 19
	return alert
}
