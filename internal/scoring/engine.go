package scoring

import (
	"time"

	"github.com/ajharbinger/annuity-review-api/internal/models"
)

// AlgorithmVersion is stamped on every generated analysis
const AlgorithmVersion = "1.0.0"

// Subject bundles the records one rule evaluates. Policy rules read Policy and
// Client; acquisition rules read Position and Client.
type Subject struct {
	Policy   *models.Policy
	Position *models.ClientPosition
	Client   *models.Client
}

// rule is an independent trigger predicate plus the scorer run only when it holds
type rule struct {
	trigger func(s Subject) bool
	score   func(s Subject) *models.Alert
}

// Engine evaluates alert rules against a fixed reference clock. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	thresholds Thresholds
	now        func() time.Time
	rules      map[models.AlertType]rule
}

// NewEngine creates an engine. A nil clock uses wall time.
func NewEngine(thresholds Thresholds, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	e := &Engine{thresholds: thresholds, now: now}
	e.rules = map[models.AlertType]rule{
		models.AlertReplacement:          {e.triggerReplacement, e.scoreReplacement},
		models.AlertIncomeActivation:     {e.triggerIncomeActivation, e.scoreIncomeActivation},
		models.AlertSuitabilityDrift:     {e.triggerSuitabilityDrift, e.scoreSuitabilityDrift},
		models.AlertMissingInfo:          {e.triggerMissingInfo, e.scoreMissingInfo},
		models.AlertExcessLiquidity:      {e.triggerExcessLiquidity, e.scoreExcessLiquidity},
		models.AlertPortfolioUnprotected: {e.triggerPortfolioUnprotected, e.scorePortfolioUnprotected},
		models.AlertCDMaturity:           {e.triggerCDMaturity, e.scoreCDMaturity},
		models.AlertIncomeGap:            {e.triggerIncomeGap, e.scoreIncomeGap},
		models.AlertDiversificationGap:   {e.triggerDiversificationGap, e.scoreDiversificationGap},
	}
	return e
}

// NewDefaultEngine creates an engine with DefaultThresholds and wall time
func NewDefaultEngine() *Engine {
	return NewEngine(DefaultThresholds(), nil)
}

// Thresholds returns the constants the engine was built with
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// Now returns the engine's reference time
func (e *Engine) Now() time.Time {
	return e.now()
}

// Triggers reports whether the rule for kind fires for the subject. Unknown
// kinds and subjects missing a required record never fire.
func (e *Engine) Triggers(kind models.AlertType, s Subject) bool {
	r, ok := e.rules[kind]
	if !ok || !s.complete(kind) {
		return false
	}
	return r.trigger(s)
}

// Evaluate runs the rule for kind and returns the alert when it fires
func (e *Engine) Evaluate(kind models.AlertType, s Subject) (*models.Alert, bool) {
	if !e.Triggers(kind, s) {
		return nil, false
	}
	alert := e.rules[kind].score(s)
	if alert == nil {
		return nil, false
	}
	return alert, true
}

// EvaluatePolicy runs every policy rule in a fixed order
func (e *Engine) EvaluatePolicy(policy *models.Policy, client *models.Client) []models.Alert {
	return e.evaluateAll(models.PolicyAlertTypes, Subject{Policy: policy, Client: client})
}

// EvaluatePosition runs every acquisition rule in a fixed order
func (e *Engine) EvaluatePosition(position *models.ClientPosition, client *models.Client) []models.Alert {
	return e.evaluateAll(models.AcquisitionAlertTypes, Subject{Position: position, Client: client})
}

func (e *Engine) evaluateAll(kinds []models.AlertType, s Subject) []models.Alert {
	alerts := make([]models.Alert, 0, len(kinds))
	for _, kind := range kinds {
		if alert, ok := e.Evaluate(kind, s); ok {
			alerts = append(alerts, *alert)
		}
	}
	return alerts
}

func (s Subject) complete(kind models.AlertType) bool {
	if s.Client == nil {
		return false
	}
	if kind.IsAcquisition() {
		return s.Position != nil
	}
	return s.Policy != nil
}

// newAlert fills the fields every alert shares
func (e *Engine) newAlert(id string, kind models.AlertType, score int, severity models.Severity) *models.Alert {
	now := e.now()
	return &models.Alert{
		AlertID:   id,
		Type:      kind,
		Severity:  severity,
		CreatedAt: now.Format(dateLayout),
		AIAnalysis: &models.AIAnalysis{
			Score:            score,
			Breakdown:        map[string]float64{},
			GeneratedAt:      now.UTC().Format(time.RFC3339),
			AlgorithmVersion: AlgorithmVersion,
		},
	}
}
