package models

// AlertType is the closed enumeration of alert kinds
type AlertType string

const (
	AlertReplacement      AlertType = "REPLACEMENT"
	AlertIncomeActivation AlertType = "INCOME_ACTIVATION"
	AlertSuitabilityDrift AlertType = "SUITABILITY_DRIFT"
	AlertMissingInfo      AlertType = "MISSING_INFO"

	// Acquisition alerts are keyed to a client's portfolio, not a policy
	AlertExcessLiquidity      AlertType = "EXCESS_LIQUIDITY"
	AlertPortfolioUnprotected AlertType = "PORTFOLIO_UNPROTECTED"
	AlertTaxInefficiency      AlertType = "TAX_INEFFICIENCY"
	AlertCDMaturity           AlertType = "CD_MATURITY"
	AlertIncomeGap            AlertType = "INCOME_GAP"
	AlertQualifiedOpportunity AlertType = "QUALIFIED_OPPORTUNITY"
	AlertBeneficiaryPlanning  AlertType = "BENEFICIARY_PLANNING"
	AlertDiversificationGap   AlertType = "DIVERSIFICATION_GAP"
)

// PolicyAlertTypes are evaluated against every policy by the batch driver
var PolicyAlertTypes = []AlertType{
	AlertReplacement,
	AlertIncomeActivation,
	AlertSuitabilityDrift,
	AlertMissingInfo,
}

// AcquisitionAlertTypes are evaluated against every client position snapshot
var AcquisitionAlertTypes = []AlertType{
	AlertExcessLiquidity,
	AlertPortfolioUnprotected,
	AlertCDMaturity,
	AlertIncomeGap,
	AlertDiversificationGap,
}

// IsAcquisition reports whether the type is scored over positions
func (t AlertType) IsAcquisition() bool {
	for _, at := range AcquisitionAlertTypes {
		if at == t {
			return true
		}
	}
	return false
}

// Severity is the alert tier
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

// Alert is a scored finding attached to a policy or a position snapshot
type Alert struct {
	AlertID     string      `json:"alertId"`
	Type        AlertType   `json:"type"`
	Severity    Severity    `json:"severity"`
	Title       string      `json:"title"`
	ReasonShort string      `json:"reasonShort"`
	Reasons     []string    `json:"reasons"`
	CreatedAt   string      `json:"createdAt"`
	AIAnalysis  *AIAnalysis `json:"ai_analysis,omitempty"`
}

// AIAnalysis explains how an alert score was produced
type AIAnalysis struct {
	Score              int                    `json:"ai_score"`
	Confidence         float64                `json:"confidence"`
	Breakdown          map[string]float64     `json:"scoring_breakdown"`
	KeyFactors         []string               `json:"key_factors"`
	Recommendation     map[string]interface{} `json:"recommendation,omitempty"`
	Details            map[string]interface{} `json:"details,omitempty"`
	DataPointsAnalyzed int                    `json:"data_points_analyzed"`
	GeneratedAt        string                 `json:"generated_at"`
	AlgorithmVersion   string                 `json:"algorithm_version"`
}

// AlertSummary is the list-view projection of an alert
type AlertSummary struct {
	AlertID     string    `json:"alertId"`
	Type        AlertType `json:"type"`
	Severity    Severity  `json:"severity"`
	Title       string    `json:"title"`
	ReasonShort string    `json:"reasonShort"`
}

// Summary projects the alert for list views
func (a Alert) Summary() AlertSummary {
	return AlertSummary{
		AlertID:     a.AlertID,
		Type:        a.Type,
		Severity:    a.Severity,
		Title:       a.Title,
		ReasonShort: a.ReasonShort,
	}
}

// CloneAlerts copies the slice and each alert's nested collections
func CloneAlerts(alerts []Alert) []Alert {
	if alerts == nil {
		return nil
	}
	out := make([]Alert, len(alerts))
	for i, a := range alerts {
		out[i] = a
		out[i].Reasons = append([]string(nil), a.Reasons...)
		if a.AIAnalysis != nil {
			analysis := *a.AIAnalysis
			analysis.KeyFactors = append([]string(nil), a.AIAnalysis.KeyFactors...)
			analysis.Breakdown = make(map[string]float64, len(a.AIAnalysis.Breakdown))
			for k, v := range a.AIAnalysis.Breakdown {
				analysis.Breakdown[k] = v
			}
			out[i].AIAnalysis = &analysis
		}
	}
	return out
}
