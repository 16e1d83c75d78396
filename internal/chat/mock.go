package chat

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
)

const generalTemplates = "general"

type intent string

const (
	intentExplain intent = "explain"
	intentCompare intent = "compare"
	intentDraft   intent = "draft"
	intentDefault intent = "default"
)

// keyword lists are checked in this order; the first match wins
var intentKeywords = []struct {
	intent intent
	words  []string
}{
	{intentExplain, []string{"explain", "why", "what", "rationale"}},
	{intentCompare, []string{"compare", "difference", "options", "alternatives"}},
	{intentDraft, []string{"draft", "write", "note", "summary", "document"}},
}

var mockTemplates = map[string]map[intent][]string{
	"REPLACEMENT": {
		intentExplain: {
			"This replacement opportunity alert was triggered because:\n\n" +
				"• The policy is approaching renewal with a material cap rate reduction\n" +
				"• Market conditions show higher cap rates available from competitive carriers\n" +
				"• The surrender schedule is ending soon, providing flexibility\n\n" +
				"A replacement review allows you to assess whether alternative products " +
				"better align with current client objectives and market conditions.",
			"The alert identifies a potential optimization opportunity based on:\n\n" +
				"• Renewal rate decline from {current_cap}% to {renewal_cap}%\n" +
				"• Current market rates averaging {market_rate}% for similar products\n" +
				"• Minimal surrender charges remaining\n\n" +
				"This doesn't mean replacement is necessary, but warrants a thorough review.",
		},
		intentCompare: {
			"Comparing the current policy to alternatives:\n\n" +
				"**Current Policy Advantages:**\n" +
				"• Established relationship with carrier\n" +
				"• Known performance history\n" +
				"• Minimal fees remaining\n\n" +
				"**Alternative Product Advantages:**\n" +
				"• Higher cap rates (up to {alt_cap}%)\n" +
				"• Enhanced income rider options\n" +
				"• Shorter surrender schedules\n\n" +
				"**Key Considerations:**\n" +
				"• New surrender period if replaced\n" +
				"• Underwriting may be required\n" +
				"• Transaction costs and timing",
			"Here's a neutral comparison:\n\n" +
				"The current policy offers stability and known performance. " +
				"Alternative products show {cap_difference}% higher caps and enhanced features, " +
				"but would restart the surrender schedule.\n\n" +
				"**Tradeoffs:**\n" +
				"• Growth potential vs. liquidity timeline\n" +
				"• New product features vs. familiarity\n" +
				"• Market timing considerations",
		},
		intentDraft: {
			"**Best Interest Review Summary**\n\n" +
				"After reviewing the client's current policy and available alternatives, " +
				"key considerations include:\n\n" +
				"1. **Performance**: Alternative products offer cap rates {cap_difference}% higher " +
				"than the renewal rate\n\n" +
				"2. **Client Objectives**: Client's {objective} objective aligns with products " +
				"offering {features}\n\n" +
				"3. **Tradeoffs**: Higher potential returns vs. new surrender period\n\n" +
				"4. **Suitability**: Client's {risk_tolerance} risk tolerance and {life_stage} " +
				"life stage were considered\n\n" +
				"This review identifies options for discussion with the client. " +
				"The final decision should reflect their preferences and circumstances.",
		},
	},
	"INCOME_ACTIVATION": {
		intentExplain: {
			"**Income Timing Considerations:**\n\n" +
				"**Begin Income Now:**\n" +
				"• Immediate cash flow\n" +
				"• Locks in current payout rate\n" +
				"• Reduces principal growth potential\n\n" +
				"**Delay Income (e.g., 2 years):**\n" +
				"• Income base continues to roll up\n" +
				"• Higher future payout amounts\n" +
				"• Requires other income sources meanwhile\n\n" +
				"The optimal timing depends on current income needs, " +
				"other retirement assets, and longevity expectations.",
			"Timing income activation involves balancing:\n\n" +
				"• **Current needs**: Does the client need income now?\n" +
				"• **Roll-up value**: Income base grows {rollup_rate}% annually if delayed\n" +
				"• **Break-even**: Delaying pays off if living beyond age {breakeven_age}\n" +
				"• **Flexibility**: Once activated, can't be reversed\n\n" +
				"This is a personal decision based on financial situation and health outlook.",
		},
		intentDraft: {
			"**Income Activation Decision - Client Discussion Points**\n\n" +
				"Your income rider has reached eligibility. Here are your options:\n\n" +
				"**Option 1: Activate Now**\n" +
				"• Begin receiving ${monthly_now}/month for life\n" +
				"• Guaranteed income starts immediately\n" +
				"• Principal continues to participate in market growth\n\n" +
				"**Option 2: Delay Activation**\n" +
				"• Income base grows {rollup_rate}% each year you wait\n" +
				"• Future monthly income: ${monthly_future} if started at age {future_age}\n" +
				"• More flexibility if circumstances change\n\n" +
				"We should discuss your current income needs and other assets to determine " +
				"the best timing for your situation.",
		},
	},
	"SUITABILITY_DRIFT": {
		intentExplain: {
			"This suitability review is recommended because:\n\n" +
				"• Time has passed since the original suitability assessment\n" +
				"• Life circumstances may have changed (age, objectives, needs)\n" +
				"• The product's features should still align with current goals\n\n" +
				"This is routine practice to ensure the policy remains appropriate. " +
				"It doesn't necessarily indicate any problem with the current policy.",
			"**Why Review Suitability Now:**\n\n" +
				"The client's situation when the policy was purchased may differ from today:\n\n" +
				"• Original Objective: {original_objective}\n" +
				"• Current Life Stage: {current_life_stage}\n" +
				"• Time Horizon: {years_held} years since issue\n\n" +
				"A suitability review confirms the product still fits or identifies " +
				"any adjustments needed.",
		},
		intentDraft: {
			"**Suitability Review Documentation**\n\n" +
				"Reviewed client's current profile against existing policy:\n\n" +
				"• **Client Profile**: Age {age}, {life_stage}, {risk_tolerance} risk tolerance\n" +
				"• **Current Objectives**: {objectives}\n" +
				"• **Policy Features**: {product_type} with {features}\n\n" +
				"**Assessment**: Product features {alignment} with current client objectives. " +
				"{recommendation_text}\n\n" +
				"Documented in accordance with regulatory requirements.",
		},
	},
	generalTemplates: {
		intentDefault: {
			"I'm here to help explain this alert and discuss considerations. " +
				"Could you tell me more about what specific aspect you'd like to explore?\n\n" +
				"I can help with:\n" +
				"• Explaining why this alert was triggered\n" +
				"• Comparing options and tradeoffs\n" +
				"• Drafting review notes or client explanations",
			"I can assist with analyzing this situation. What would be most helpful?\n\n" +
				"• Walk through the alert rationale\n" +
				"• Discuss potential next steps\n" +
				"• Generate documentation for your review",
		},
	},
}

// MockProvider answers from a fixed template library without network calls
type MockProvider struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewMockProvider creates a mock provider drawing template choices from src
func NewMockProvider(src rand.Source) *MockProvider {
	return &MockProvider{rng: rand.New(src)}
}

// Name implements Provider
func (m *MockProvider) Name() string { return "mock" }

// Chat implements Provider
func (m *MockProvider) Chat(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	alertType, ok := contextString(req.Context, "activeAlertType")
	if !ok {
		alertType = generalTemplates
	}

	text := fillPlaceholders(m.pick(templatesFor(alertType, classify(lastUserMessage(req.Messages)))), req.Context)
	tokens := len(text) / 4

	return &Response{
		Message:        text,
		ConversationID: conversationID(req.Context),
		BasedOn:        mockBasedOn(req.Context),
		Provider:       m.Name(),
		TokensUsed:     &tokens,
	}, nil
}

func (m *MockProvider) pick(options []string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return options[m.rng.Intn(len(options))]
}

func classify(message string) intent {
	lower := strings.ToLower(message)
	for _, k := range intentKeywords {
		for _, w := range k.words {
			if strings.Contains(lower, w) {
				return k.intent
			}
		}
	}
	return intentDefault
}

// templatesFor falls back to the general replies when the alert type has no
// template for the intent
func templatesFor(alertType string, in intent) []string {
	if byIntent, ok := mockTemplates[alertType]; ok {
		if options := byIntent[in]; len(options) > 0 {
			return options
		}
	}
	return mockTemplates[generalTemplates][intentDefault]
}

func fillPlaceholders(text string, ctxData map[string]interface{}) string {
	value := func(key, fallback string) string {
		if v, ok := ctxData[key]; ok && v != nil {
			return fmt.Sprint(v)
		}
		return fallback
	}

	return strings.NewReplacer(
		"{current_cap}", value("currentCapRate", "3.9"),
		"{renewal_cap}", value("renewalCapRate", "3.4"),
		"{market_rate}", "5.5",
		"{alt_cap}", "6.0",
		"{cap_difference}", "1.5",
		"{objective}", value("clientObjective", "income"),
		"{objectives}", value("clientObjective", "income"),
		"{features}", "guaranteed lifetime income",
		"{risk_tolerance}", value("clientRiskTolerance", "moderate"),
		"{life_stage}", value("clientLifeStage", "pre-retirement"),
		"{rollup_rate}", "7",
		"{breakeven_age}", "78",
		"{monthly_now}", "2,500",
		"{monthly_future}", "2,850",
		"{future_age}", "67",
		"{original_objective}", "growth",
		"{current_life_stage}", "pre-retirement",
		"{years_held}", "8",
		"{age}", value("clientAge", "62"),
		"{product_type}", "Fixed Index Annuity",
		"{alignment}", "align well",
		"{recommendation_text}", "No changes recommended at this time.",
	).Replace(text)
}

func mockBasedOn(ctxData map[string]interface{}) map[string]interface{} {
	basedOn := map[string]interface{}{}
	if _, ok := contextString(ctxData, "clientAccountNumber"); ok {
		basedOn["clientFields"] = []string{"age", "riskTolerance", "primaryObjective"}
	}
	if _, ok := contextString(ctxData, "policyId"); ok {
		basedOn["policyFields"] = []string{"currentCapRate", "renewalRate"}
	}
	if ids := alternativeIDs(ctxData); len(ids) > 0 {
		basedOn["alternativesUsed"] = ids
	}
	if len(basedOn) == 0 {
		return nil
	}
	return basedOn
}

// alternativeIDs reads productId from each entry of context["alternatives"]
func alternativeIDs(ctxData map[string]interface{}) []string {
	list, ok := ctxData["alternatives"].([]interface{})
	if !ok {
		return nil
	}
	ids := []string{}
	for _, item := range list {
		if alt, ok := item.(map[string]interface{}); ok {
			if id, ok := alt["productId"].(string); ok && id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
