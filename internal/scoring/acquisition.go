package scoring

import (
	"fmt"
	"math"

	"github.com/ajharbinger/annuity-review-api/internal/models"
)

// Acquisition rules look for new annuity business in a client's outside
// holdings. Allocations are fractions of the total portfolio. A client without
// a known age never qualifies.

func acquisitionID(code, accountNumber string) string {
	return fmt.Sprintf("ACQ-%s-%s", code, accountKey(accountNumber))
}

func acquisitionConfidence(severity models.Severity, high, medium, low float64) float64 {
	switch severity {
	case models.SeverityHigh:
		return high
	case models.SeverityMedium:
		return medium
	default:
		return low
	}
}

// EXCESS_LIQUIDITY

func (e *Engine) triggerExcessLiquidity(s Subject) bool {
	t := e.thresholds.Acquisition.ExcessLiquidity
	summary := s.Position.Summary
	age := s.Client.Suitability.Age
	return age > 0 &&
		summary.CashAllocation > t.MinCashAllocation &&
		summary.TotalCash > t.MinCash &&
		age < t.MaxAge
}

func (e *Engine) scoreExcessLiquidity(s Subject) *models.Alert {
	t := e.thresholds.Acquisition.ExcessLiquidity
	annuityYield := e.thresholds.Acquisition.BestFIACap
	summary := s.Position.Summary
	profile := s.Client.Suitability

	liquidity := profile.LiquidityImportance
	if liquidity == "" {
		liquidity = "Medium"
	}

	cash := summary.TotalCash
	allocation := summary.CashAllocation
	suggested := cash * t.ReallocationShare
	improvement := suggested * (annuityYield - t.CashYield)

	excess := (allocation - t.MinCashAllocation) * 100
	amountScore := math.Min(40, cash/100000*10)
	opportunityScore := math.Min(30, improvement/5000*10)
	urgencyScore := 10.0
	if liquidity == "Low" {
		urgencyScore = 20
	}

	score := clampScore(amountScore+opportunityScore+urgencyScore, t.MaxScore)
	severity := tiered(score, t.HighScore, t.MediumScore, false, false)

	alert := e.newAlert(acquisitionID("EXL", s.Position.ClientAccountNumber), models.AlertExcessLiquidity, score, severity)
	alert.Title = fmt.Sprintf("Excess Cash Alert: $%s Earning %s%%", money(cash), pct(t.CashYield))
	alert.ReasonShort = fmt.Sprintf("Move $%s to annuity for $%s/year gain", money(suggested), money(improvement))
	alert.Reasons = []string{
		fmt.Sprintf("%.0f%% cash allocation (recommended: 10-15%%)", allocation*100),
		fmt.Sprintf("$%s earning ~%s%% in money market", money(cash), pct(t.CashYield)),
		fmt.Sprintf("Fixed indexed annuity available at %s%% cap", pct(annuityYield)),
		fmt.Sprintf("Liquidity importance: %s (permits annuity allocation)", liquidity),
		fmt.Sprintf("Age %d (suitable time horizon)", profile.Age),
	}

	a := alert.AIAnalysis
	a.Confidence = acquisitionConfidence(severity, 0.88, 0.82, 0.75)
	a.Breakdown = map[string]float64{
		"cash_excess_score": round1(excess),
		"amount_score":      round1(amountScore),
		"opportunity_score": round1(opportunityScore),
		"urgency_score":     urgencyScore,
	}
	a.Recommendation = map[string]interface{}{
		"product_type":         "Fixed Indexed Annuity",
		"suggested_allocation": round2(suggested),
		"expected_annual_gain": round2(improvement),
		"features":             []string{"10% annual penalty-free withdrawals", "Principal protection", "Index upside participation"},
	}
	a.KeyFactors = []string{
		fmt.Sprintf("$%s in cash (%.0f%% of portfolio)", money(cash), allocation*100),
		fmt.Sprintf("Current yield: %s%% vs. available %s%%", pct(t.CashYield), pct(annuityYield)),
		fmt.Sprintf("Estimated gain: $%s/year on $%s", money(improvement), money(suggested)),
	}
	a.DataPointsAnalyzed = 12
	return alert
}

// PORTFOLIO_UNPROTECTED

func (e *Engine) triggerPortfolioUnprotected(s Subject) bool {
	t := e.thresholds.Acquisition.Unprotected
	summary := s.Position.Summary
	profile := s.Client.Suitability
	return profile.Age > 0 &&
		summary.EquityAllocation > t.MaxEquityAllocation &&
		profile.Age >= t.MinAge &&
		summary.AnnuityAllocation == 0 &&
		containsString(t.LifeStages, profile.LifeStage) &&
		containsString(t.Objectives, profile.PrimaryObjective)
}

func (e *Engine) scorePortfolioUnprotected(s Subject) *models.Alert {
	t := e.thresholds.Acquisition.Unprotected
	summary := s.Position.Summary
	profile := s.Client.Suitability
	age := profile.Age
	equity := summary.EquityAllocation

	suggested := s.Position.TotalPortfolioValue * t.AllocationShare
	guaranteed := suggested * t.GLWBPayoutRate

	equityExcess := (equity - t.MaxEquityAllocation) * 100
	ageScore := math.Min(30, float64(age-t.MinAge)*2)
	objectiveMatch := 25.0
	if profile.PrimaryObjective == "Income" {
		objectiveMatch = 35
	}
	unprotected := 0.0
	if summary.AnnuityAllocation == 0 {
		unprotected = 20
	}

	score := clampScore(equityExcess+ageScore+objectiveMatch+unprotected, t.MaxScore)
	severity := tiered(score, t.HighScore, t.MediumScore, false, false)

	alert := e.newAlert(acquisitionID("UNP", s.Position.ClientAccountNumber), models.AlertPortfolioUnprotected, score, severity)
	alert.Title = fmt.Sprintf("%.0f%% Equities at Age %d with No Guaranteed Income", equity*100, age)
	alert.ReasonShort = fmt.Sprintf("Allocate $%s to annuity with GLWB for downside protection", money(suggested))
	alert.Reasons = []string{
		fmt.Sprintf("%.0f%% equity allocation (exposed to market volatility)", equity*100),
		fmt.Sprintf("Age %d, life stage: %s", age, profile.LifeStage),
		fmt.Sprintf("Primary objective: %s (needs guaranteed income)", profile.PrimaryObjective),
		"Zero allocation to annuities or guaranteed income products",
		fmt.Sprintf("GLWB could provide $%s/year guaranteed income", money(guaranteed)),
	}

	a := alert.AIAnalysis
	a.Confidence = acquisitionConfidence(severity, 0.91, 0.84, 0.76)
	a.Breakdown = map[string]float64{
		"equity_excess_score":   round1(equityExcess),
		"age_urgency_score":     round1(ageScore),
		"objective_match_score": objectiveMatch,
		"unprotected_score":     unprotected,
	}
	a.Recommendation = map[string]interface{}{
		"product_type":             "Variable Annuity with GLWB Rider",
		"suggested_allocation":     round2(suggested),
		"guaranteed_annual_income": round2(guaranteed),
		"features":                 []string{"Guaranteed Lifetime Withdrawal Benefit", "Market participation", "Downside protection"},
	}
	a.KeyFactors = []string{
		fmt.Sprintf("%.0f%% equities without downside protection", equity*100),
		fmt.Sprintf("Age %d, %s - heightened sequence-of-returns risk", age, profile.LifeStage),
		fmt.Sprintf("%s objective requires guaranteed income layer", profile.PrimaryObjective),
		fmt.Sprintf("$%s/year guaranteed income available", money(guaranteed)),
	}
	a.DataPointsAnalyzed = 15
	return alert
}

// CD_MATURITY

// maturingCD picks the fixed income holding closest to maturity inside the lookahead window
func (e *Engine) maturingCD(pos *models.ClientPosition) (models.Position, int, bool) {
	t := e.thresholds.Acquisition.CDMaturity
	now := e.now()

	var best models.Position
	bestDays, found := 0, false
	for _, p := range pos.Positions {
		if p.AssetClass != models.AssetClassFixedIncome || p.MaturityDate == "" {
			continue
		}
		maturity, ok := parseDate(p.MaturityDate)
		if !ok {
			continue
		}
		days := daysUntil(now, maturity)
		if days <= 0 || days > t.LookaheadDays {
			continue
		}
		if !found || days < bestDays {
			best, bestDays, found = p, days, true
		}
	}
	return best, bestDays, found
}

func (e *Engine) cdRate(p models.Position) float64 {
	if p.CurrentRate != nil {
		return *p.CurrentRate
	}
	return e.thresholds.Acquisition.CDMaturity.DefaultRate
}

func (e *Engine) triggerCDMaturity(s Subject) bool {
	t := e.thresholds.Acquisition.CDMaturity
	if s.Client.Suitability.Age <= 0 {
		return false
	}
	cd, _, ok := e.maturingCD(s.Position)
	return ok && cd.MarketValue > t.MinAmount && e.cdRate(cd) < t.MaxRate
}

func (e *Engine) scoreCDMaturity(s Subject) *models.Alert {
	t := e.thresholds.Acquisition.CDMaturity
	myga := e.thresholds.Acquisition.BestMYGARate
	cd, days, _ := e.maturingCD(s.Position)

	amount := cd.MarketValue
	rate := e.cdRate(cd)
	differential := myga - rate
	improvement := amount * differential

	amountScore := math.Min(30, amount/100000*15)
	rateGapScore := math.Min(40, differential/0.01*10)
	urgencyScore := math.Min(30, 30-float64(days)/3)

	score := clampScore(amountScore+rateGapScore+urgencyScore, t.MaxScore)
	severity := tiered(score, t.HighScore, t.MediumScore, days <= t.HighDays, false)

	alert := e.newAlert(acquisitionID("CDM", s.Position.ClientAccountNumber), models.AlertCDMaturity, score, severity)
	alert.Title = fmt.Sprintf("$%s CD Maturing in %d Days at %s%%", money(amount), days, pct(rate))
	alert.ReasonShort = fmt.Sprintf("Multi-year guaranteed annuity (MYGA) offering %s%%", pct(myga))
	alert.Reasons = []string{
		fmt.Sprintf("CD matures on %s (%d days)", cd.MaturityDate, days),
		fmt.Sprintf("Current CD rate: %s%%", pct(rate)),
		fmt.Sprintf("Best MYGA rate: %s%% (%.1f%% improvement)", pct(myga), differential*100),
		fmt.Sprintf("Estimated gain: $%s/year", money(improvement)),
		"MYGA offers comparable safety with better yield",
	}

	a := alert.AIAnalysis
	a.Confidence = acquisitionConfidence(severity, 0.92, 0.85, 0.78)
	a.Breakdown = map[string]float64{
		"amount_score":   round1(amountScore),
		"rate_gap_score": round1(rateGapScore),
		"urgency_score":  round1(urgencyScore),
	}
	a.Recommendation = map[string]interface{}{
		"product_type":         "Multi-Year Guaranteed Annuity (MYGA)",
		"suggested_allocation": amount,
		"guaranteed_rate":      myga,
		"term":                 "5 years",
		"expected_annual_gain": round2(improvement),
		"features":             []string{"Guaranteed rate", "Tax deferral", "Principal protection"},
	}
	a.KeyFactors = []string{
		fmt.Sprintf("$%s CD maturing in %d days", money(amount), days),
		fmt.Sprintf("%.1f%% rate improvement available", differential*100),
		fmt.Sprintf("$%s/year additional income", money(improvement)),
		"Time-sensitive: Act before auto-renewal",
	}
	a.Details = map[string]interface{}{"position_id": cd.PositionID}
	a.DataPointsAnalyzed = 8
	return alert
}

// INCOME_GAP

type incomeGap struct {
	retirementYear  int
	years           int
	expenses        float64
	guaranteed      float64
	gap             float64
	coverage        float64
	requiredBalance float64
}

func (e *Engine) estimateIncomeGap(s Subject) incomeGap {
	t := e.thresholds.Acquisition.IncomeGap
	g := incomeGap{retirementYear: t.DefaultRetirementYear, guaranteed: t.SocialSecurity}
	if y := s.Client.Suitability.RetirementTargetYear; y != nil {
		g.retirementYear = *y
	}
	g.years = g.retirementYear - e.now().Year()
	g.expenses = s.Position.TotalPortfolioValue * t.WithdrawalRate
	g.gap = g.expenses - g.guaranteed
	if g.expenses > 0 {
		g.coverage = g.guaranteed / g.expenses
	}
	if t.PayoutRate > 0 {
		g.requiredBalance = g.gap / t.PayoutRate
	}
	return g
}

func (e *Engine) triggerIncomeGap(s Subject) bool {
	t := e.thresholds.Acquisition.IncomeGap
	profile := s.Client.Suitability
	if profile.Age <= 0 || profile.Age < t.MinAge || profile.PrimaryObjective != t.Objective {
		return false
	}
	if s.Position.Summary.AnnuityAllocation > 0 {
		return false
	}
	g := e.estimateIncomeGap(s)
	return g.years <= t.MaxYearsToRetirement && g.expenses > 0 && g.gap > 0 && g.coverage < t.MaxCoverage
}

func (e *Engine) scoreIncomeGap(s Subject) *models.Alert {
	t := e.thresholds.Acquisition.IncomeGap
	age := s.Client.Suitability.Age
	g := e.estimateIncomeGap(s)

	gapSeverity := math.Min(40, g.gap/10000*5)
	urgencyScore := math.Max(0, math.Min(30, 30-float64(g.years)*10))
	objectiveScore := 20.0
	ageScore := math.Min(10, float64(age-t.MinAge))

	score := clampScore(gapSeverity+urgencyScore+objectiveScore+ageScore, t.MaxScore)
	severity := tiered(score, t.HighScore, t.MediumScore, g.years <= 1, false)

	plural := "s"
	if g.years == 1 {
		plural = ""
	}
	product := "Immediate Annuity (SPIA)"
	if g.years > 1 {
		product = "Deferred Income Annuity (DIA)"
	}

	alert := e.newAlert(acquisitionID("ING", s.Position.ClientAccountNumber), models.AlertIncomeGap, score, severity)
	alert.Title = fmt.Sprintf("Retirement in %d Year%s: $%s Income Gap", g.years, plural, money(g.gap))
	alert.ReasonShort = "Deferred income annuity to close gap with guaranteed lifetime payment"
	alert.Reasons = []string{
		fmt.Sprintf("Retirement target: %d (%d years away)", g.retirementYear, g.years),
		fmt.Sprintf("Estimated annual expenses: $%s", money(g.expenses)),
		fmt.Sprintf("Guaranteed income sources: $%s (Social Security)", money(g.guaranteed)),
		fmt.Sprintf("Income gap: $%s/year", money(g.gap)),
		fmt.Sprintf("Required annuity allocation: $%s at %s%% payout", money(g.requiredBalance), pct(t.PayoutRate)),
	}

	a := alert.AIAnalysis
	a.Confidence = acquisitionConfidence(severity, 0.89, 0.83, 0.77)
	a.Breakdown = map[string]float64{
		"gap_severity_score":     round1(gapSeverity),
		"urgency_score":          round1(urgencyScore),
		"income_objective_score": objectiveScore,
		"age_score":              ageScore,
	}
	a.Recommendation = map[string]interface{}{
		"product_type":             product,
		"suggested_allocation":     round2(g.requiredBalance),
		"guaranteed_annual_income": round2(g.gap),
		"income_start_year":        g.retirementYear,
		"features":                 []string{"Lifetime income guarantee", "Inflation protection option", "Joint-life available"},
	}
	a.KeyFactors = []string{
		fmt.Sprintf("$%s annual income gap identified", money(g.gap)),
		fmt.Sprintf("Retirement in %d year(s) - limited time to secure income", g.years),
		fmt.Sprintf("Only %.0f%% of expenses covered by guaranteed sources", g.coverage*100),
		fmt.Sprintf("Annuity allocation of $%s would close gap", money(g.requiredBalance)),
	}
	a.DataPointsAnalyzed = 14
	return alert
}

// DIVERSIFICATION_GAP

func (e *Engine) triggerDiversificationGap(s Subject) bool {
	t := e.thresholds.Acquisition.Diversification
	profile := s.Client.Suitability
	return profile.Age > 0 &&
		s.Position.TotalPortfolioValue > t.MinPortfolio &&
		s.Position.Summary.AnnuityAllocation == 0 &&
		profile.Age >= t.MinAge &&
		containsString(t.RiskTolerances, profile.RiskTolerance)
}

func (e *Engine) scoreDiversificationGap(s Subject) *models.Alert {
	t := e.thresholds.Acquisition.Diversification
	profile := s.Client.Suitability
	total := s.Position.TotalPortfolioValue
	suggested := total * t.AllocationShare

	sizeScore := math.Min(30, total/t.MinPortfolio*10)
	riskScore := 20.0
	if profile.RiskTolerance == "Conservative" {
		riskScore = 30
	}
	ageScore := math.Min(20, float64(profile.Age-t.MinAge))
	missingScore := 15.0

	score := clampScore(sizeScore+riskScore+ageScore+missingScore, t.MaxScore)
	severity := models.SeverityLow
	if score >= t.MediumScore {
		severity = models.SeverityMedium
	}

	share := t.AllocationShare * 100
	alert := e.newAlert(acquisitionID("DVG", s.Position.ClientAccountNumber), models.AlertDiversificationGap, score, severity)
	alert.Title = fmt.Sprintf("$%s Portfolio with 0%% Insurance Products", money(total))
	alert.ReasonShort = fmt.Sprintf("Diversify with %s%% annuity allocation ($%s)", num(share), money(suggested))
	alert.Reasons = []string{
		fmt.Sprintf("$%s portfolio with zero annuity allocation", money(total)),
		fmt.Sprintf("Risk tolerance: %s (insurance products appropriate)", profile.RiskTolerance),
		fmt.Sprintf("Age %d (suitable for annuity time horizon)", profile.Age),
		"Missing downside protection and guaranteed growth layer",
		fmt.Sprintf("%s%% allocation would add $%s in principal-protected assets", num(share), money(suggested)),
	}

	a := alert.AIAnalysis
	a.Confidence = acquisitionConfidence(severity, 0.81, 0.81, 0.74)
	a.Breakdown = map[string]float64{
		"portfolio_size_score":     round1(sizeScore),
		"risk_match_score":         riskScore,
		"age_score":                ageScore,
		"missing_allocation_score": missingScore,
	}
	a.Recommendation = map[string]interface{}{
		"product_type":                 "Fixed Indexed Annuity",
		"suggested_allocation":         round2(suggested),
		"target_allocation_percentage": share,
		"features":                     []string{"Principal protection", "Tax deferral", "Guaranteed growth floor", "Index upside"},
	}
	a.KeyFactors = []string{
		"Zero insurance product diversification",
		fmt.Sprintf("%s risk profile supports guaranteed products", profile.RiskTolerance),
		"Missing downside protection layer",
		fmt.Sprintf("$%s allocation would balance equity risk", money(suggested)),
	}
	a.DataPointsAnalyzed = 10
	return alert
}
