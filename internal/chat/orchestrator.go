package chat

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/ajharbinger/annuity-review-api/internal/errors"
	"github.com/ajharbinger/annuity-review-api/internal/logger"
)

const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
	DefaultTimeout     = 30 * time.Second
)

// Recorder receives one observation per provider call
type Recorder interface {
	ObserveChat(provider, outcome string, duration time.Duration)
}

var quickActions = map[string][]string{
	"REPLACEMENT": {
		"Explain why this alert was triggered",
		"Compare current policy to alternatives",
		"Draft best-interest summary",
		"Analyze suitability changes",
	},
	"INCOME_ACTIVATION": {
		"Explain timing tradeoffs",
		"Draft client explanation",
		"Calculate break-even scenarios",
		"Compare now vs. delayed income",
	},
	"SUITABILITY_DRIFT": {
		"Explain review rationale",
		"Draft suitability review note",
		"Summarize profile changes",
		"Document assessment",
	},
}

var defaultQuickActions = []string{
	"Explain this alert",
	"Draft review note",
	"Provide guidance",
}

// Options configures an Orchestrator
type Options struct {
	Model     string
	MaxTokens int
	Timeout   time.Duration
	Recorder  Recorder
	Logger    logger.Logger
	Now       func() time.Time
}

// ProviderInfo describes the configured provider
type ProviderInfo struct {
	Provider string       `json:"provider"`
	Mode     string       `json:"mode"`
	Model    string       `json:"model"`
	Health   HealthStatus `json:"health"`
}

// Orchestrator fronts the configured provider for the advisor copilot
type Orchestrator struct {
	provider  Provider
	health    *HealthMonitor
	recorder  Recorder
	log       logger.Logger
	model     string
	maxTokens int
	timeout   time.Duration
	now       func() time.Time
}

// NewOrchestrator wraps provider, which stays fixed for the process lifetime
func NewOrchestrator(provider Provider, opts Options) *Orchestrator {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{
		provider:  provider,
		health:    NewHealthMonitor(opts.Now),
		recorder:  opts.Recorder,
		log:       opts.Logger,
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
		timeout:   opts.Timeout,
		now:       opts.Now,
	}
}

// Chat appends message to history and asks the provider for a reply. A nil
// temperature uses DefaultTemperature.
func (o *Orchestrator) Chat(ctx context.Context, message string, history []Message, ctxData map[string]interface{}, temperature *float64) (*Response, error) {
	if strings.TrimSpace(message) == "" {
		return nil, apperrors.InvalidInput("message is required", nil)
	}
	temp := DefaultTemperature
	if temperature != nil {
		temp = *temperature
	}
	if temp < 0 || temp > 1 {
		return nil, apperrors.InvalidInput("temperature must be between 0 and 1", nil)
	}

	messages := make([]Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, Message{Role: RoleUser, Content: message})

	// the caller's map is never mutated
	data := make(map[string]interface{}, len(ctxData)+1)
	for k, v := range ctxData {
		data[k] = v
	}
	if _, ok := contextString(data, "conversationId"); !ok {
		data["conversationId"] = uuid.NewString()
	}

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := o.now()
	resp, err := o.provider.Chat(callCtx, Request{
		Messages:    messages,
		Context:     data,
		Temperature: temp,
		MaxTokens:   o.maxTokens,
	})
	elapsed := o.now().Sub(start)

	if err != nil {
		o.health.RecordFailure(o.provider.Name(), err.Error())
		o.observe("error", elapsed)
		o.log.Error("Chat provider call failed", err, "provider", o.provider.Name(), "duration_ms", elapsed.Milliseconds())
		if _, ok := apperrors.As(err); ok {
			return nil, err
		}
		if callCtx.Err() == context.DeadlineExceeded {
			return nil, apperrors.ProviderTimeout("chat provider did not respond in time", err)
		}
		return nil, apperrors.ProviderError("chat provider failed", err)
	}

	o.health.RecordSuccess()
	o.observe("success", elapsed)
	o.log.Debug("Chat reply generated", "provider", resp.Provider, "duration_ms", elapsed.Milliseconds())
	return resp, nil
}

func (o *Orchestrator) observe(outcome string, d time.Duration) {
	if o.recorder != nil {
		o.recorder.ObserveChat(o.provider.Name(), outcome, d)
	}
}

// QuickActions lists suggested prompts for an alert type
func (o *Orchestrator) QuickActions(alertType string) []string {
	actions, ok := quickActions[alertType]
	if !ok {
		actions = defaultQuickActions
	}
	return append([]string(nil), actions...)
}

// Close releases resources held by the provider, if it holds any
func (o *Orchestrator) Close() {
	if closer, ok := o.provider.(interface{ Close() }); ok {
		closer.Close()
	}
}

// ProviderInfo reports the provider in use and its health
func (o *Orchestrator) ProviderInfo() ProviderInfo {
	info := ProviderInfo{
		Provider: o.provider.Name(),
		Mode:     "live",
		Model:    "N/A",
		Health:   o.health.Status(),
	}
	if info.Provider == "mock" {
		info.Mode = "mock"
	} else if o.model != "" {
		info.Model = o.model
	}
	return info
}
