package scoring

import (
	"fmt"
	"math"

	"github.com/ajharbinger/annuity-review-api/internal/models"
)

// replacementGap returns market - currentCap. ok is false when no cap is on file.
func (e *Engine) replacementGap(p *models.Policy) (gap float64, ok bool) {
	if p.CurrentCapRate == nil {
		return 0, false
	}
	return e.thresholds.Replacement.MarketAverageRate - *p.CurrentCapRate, true
}

// surrenderDays is the number of days until the surrender schedule ends.
// ok is false when the end date is absent or unparseable.
func (e *Engine) surrenderDays(p *models.Policy) (int, bool) {
	end, ok := parseDate(p.SurrenderEndDate)
	if !ok {
		return 0, false
	}
	return daysUntil(e.now(), end), true
}

func (e *Engine) surrenderEndingSoon(p *models.Policy) bool {
	days, ok := e.surrenderDays(p)
	return ok && days < e.thresholds.Replacement.SurrenderSoonDays
}

// triggerReplacement: gap > GapHigh, or surrender ending soon and gap > GapLow
func (e *Engine) triggerReplacement(s Subject) bool {
	gap, ok := e.replacementGap(s.Policy)
	if !ok {
		return false
	}
	t := e.thresholds.Replacement
	return gap > t.GapHigh || (e.surrenderEndingSoon(s.Policy) && gap > t.GapLow)
}

// scoreReplacement sums performance gap (<= PerformanceMax), suitability match,
// cost savings from surrender timing and feature upgrade availability
func (e *Engine) scoreReplacement(s Subject) *models.Alert {
	t := e.thresholds.Replacement
	p := s.Policy
	current := *p.CurrentCapRate
	best := t.BestAlternativeRate

	// a zero cap cannot be compared proportionally; treat it as the widest gap
	improvement := 1.0
	if current > 0 {
		improvement = (best - current) / current
	}
	performance := math.Max(0, math.Min(t.PerformanceMax, improvement*t.PerformanceMax))

	endingSoon := e.surrenderEndingSoon(p)
	cost := t.CostSavings
	if endingSoon {
		cost = t.CostSavingsEndingSoon
	}

	hasRider := p.HasIncomeRider()
	feature := t.FeatureUpgradeBaseline
	if !hasRider {
		feature = t.FeatureUpgradeNoRider
	}

	score := clampScore(performance+t.SuitabilityScore+cost+feature, t.MaxScore)
	severity := tiered(score, t.HighScore, t.MediumScore, false, false)

	alert := e.newAlert(fmt.Sprintf("ALT-%s-REP", p.PolicyID), models.AlertReplacement, score, severity)
	alert.Title = "Replacement Opportunity"
	alert.ReasonShort = "Material performance gap vs. market alternatives"
	alert.Reasons = []string{
		fmt.Sprintf("Current policy cap rate (%s%%) significantly below market", num(current)),
		"Better alternatives available with superior features",
		"Surrender schedule considerations favorable for replacement",
	}

	featureFactor := "Better fee structure available"
	if !hasRider {
		featureFactor = fmt.Sprintf("Income rider opportunity: %s%% rollup available", num(t.IncomeRiderRollup))
	}
	timingFactor := "Approaching surrender schedule end"
	if endingSoon {
		days, _ := e.surrenderDays(p)
		months := 0
		if days > 0 {
			months = int(float64(days) / 365 * 12)
		}
		timingFactor = fmt.Sprintf("Surrender period ending in %d months", months)
	}

	a := alert.AIAnalysis
	a.Confidence = replacementConfidence(score, t)
	a.Breakdown = map[string]float64{
		"performance_gap":         round1(performance),
		"suitability_improvement": round1(t.SuitabilityScore),
		"cost_savings":            round1(cost),
		"feature_upgrade":         round1(feature),
	}
	a.KeyFactors = []string{
		fmt.Sprintf("Cap rate gap: current %s%% vs. available %s%% (%d%% improvement)",
			num(current), num(best), int(improvement*100)),
		featureFactor,
		timingFactor,
	}
	a.DataPointsAnalyzed = 23
	return alert
}

func replacementConfidence(score int, t ReplacementThresholds) float64 {
	var c float64
	switch {
	case score >= t.HighScore:
		c = 0.85 + float64(score-t.HighScore)*0.01
	case score >= t.MediumScore:
		c = 0.75 + float64(score-t.MediumScore)*0.01
	default:
		c = 0.65
	}
	return round2(math.Min(c, 0.95))
}
