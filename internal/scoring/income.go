package scoring

import (
	"fmt"
	"math"
	"time"

	"github.com/ajharbinger/annuity-review-api/internal/models"
)

func (e *Engine) triggerIncomeActivation(s Subject) bool {
	t := e.thresholds.Income
	p := s.Policy
	profile := s.Client.Suitability
	return p.HasIncomeRider() &&
		!p.IncomeActivated &&
		profile.Age >= t.EligibilityAge &&
		containsString(t.IncomeNeeds, profile.CurrentIncomeNeed)
}

// scoreIncomeActivation: urgency = max(0, 100 - DaysToOptimal/3), multiplied by
// DeferralMultiplier when the rider rolls up
func (e *Engine) scoreIncomeActivation(s Subject) *models.Alert {
	t := e.thresholds.Income
	p := s.Policy
	age := s.Client.Suitability.Age

	incomeBase := p.AccountValue
	if p.IncomeBase != nil {
		incomeBase = *p.IncomeBase
	}

	deferredBase := incomeBase * math.Pow(1+t.RollupRate, float64(t.DeferralYears))
	incomeNow := incomeBase * t.PayoutRateNow
	incomeLater := deferredBase * t.PayoutRateDeferred
	foregone := incomeNow * float64(t.DeferralYears)
	gain := incomeLater - incomeNow

	days := t.DaysToOptimal
	urgency := math.Max(0, 100-float64(days)/3)
	multiplier := 1.0
	if t.RollupRate > 0 {
		multiplier = t.DeferralMultiplier
	}

	score := clampScore(urgency*multiplier, t.MaxScore)
	severity := tiered(score, t.HighScore, t.MediumScore, days <= t.HighDays, days <= t.MediumDays)

	start := e.now().AddDate(0, 0, days)
	end := time.Date(start.Year(), time.December, 31, 0, 0, 0, 0, start.Location())

	alert := e.newAlert(fmt.Sprintf("ALT-%s-INC", p.PolicyID), models.AlertIncomeActivation, score, severity)
	alert.Title = "Income Activation Timing Review"
	alert.ReasonShort = "Client approaching optimal income activation window"
	alert.Reasons = []string{
		"Income rider available but not activated",
		"Client age and income needs suggest review timing",
		"Deferral vs. activation tradeoffs warrant discussion",
	}

	laterAge := age + t.DeferralYears
	a := alert.AIAnalysis
	switch severity {
	case models.SeverityHigh:
		a.Confidence = 0.92
	case models.SeverityMedium:
		a.Confidence = 0.85
	default:
		a.Confidence = 0.75
	}
	a.Breakdown = map[string]float64{
		"urgency":           round1(urgency),
		"complexity_factor": multiplier,
	}
	a.KeyFactors = []string{
		"Client approaching income rider eligibility",
		fmt.Sprintf("%s%% annual rollup creates significant deferral value", pct(t.RollupRate)),
		fmt.Sprintf("Payout rate increases from %s%% to %s%% at age %d", pct(t.PayoutRateNow), pct(t.PayoutRateDeferred), laterAge),
	}
	a.Details = map[string]interface{}{
		"optimal_activation_window": map[string]interface{}{
			"start_date": start.Format(dateLayout),
			"end_date":   end.Format(dateLayout),
			"reason":     fmt.Sprintf("Maximizes %s%% rollup while meeting stated income need", pct(t.RollupRate)),
		},
		"scenarios": []map[string]interface{}{
			{
				"action":        "Activate Now",
				"income_base":   "$" + money(incomeBase),
				"annual_income": fmt.Sprintf("$%s (%s%% payout at age %d)", money(incomeNow), pct(t.PayoutRateNow), age),
			},
			{
				"action":        fmt.Sprintf("Delay %d Years", t.DeferralYears),
				"income_base":   fmt.Sprintf("$%s (after rollup)", money(deferredBase)),
				"annual_income": fmt.Sprintf("$%s (%s%% payout at age %d)", money(incomeLater), pct(t.PayoutRateDeferred), laterAge),
				"tradeoff":      fmt.Sprintf("Give up $%s in income to gain $%s/year ongoing", money(foregone), money(gain)),
			},
		},
		"days_to_optimal": days,
	}
	a.DataPointsAnalyzed = 18
	return alert
}
