package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/ajharbinger/annuity-review-api/internal/errors"
)

// HostedProvider calls an OpenAI-compatible chat completions endpoint
type HostedProvider struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	model      string
}

// completionRequest is the chat completions request body
type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// completionResponse is the subset of the response the provider reads
type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage *struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage,omitempty"`
}

// NewHostedProvider creates a hosted provider. The deadline comes from the
// caller's context, so the HTTP client carries no timeout of its own.
func NewHostedProvider(endpoint, apiKey, model string) *HostedProvider {
	return &HostedProvider{
		httpClient: &http.Client{},
		endpoint:   endpoint,
		apiKey:     apiKey,
		model:      model,
	}
}

// Name implements Provider
func (h *HostedProvider) Name() string { return "openai" }

// Chat implements Provider. Calls are never retried.
func (h *HostedProvider) Chat(ctx context.Context, req Request) (*Response, error) {
	messages := req.Messages
	if len(req.Context) > 0 && !hasSystemMessage(messages) {
		messages = append([]Message{{Role: RoleSystem, Content: systemPrompt(req.Context)}}, messages...)
	}

	body, err := json.Marshal(completionRequest{
		Model:       h.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, apperrors.InternalError("failed to marshal chat request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, apperrors.ProviderError("failed to create chat request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+h.apiKey)

	resp, err := h.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperrors.ProviderTimeout("chat provider did not respond in time", err).WithOperation("HostedProvider.Chat")
		}
		return nil, apperrors.ProviderError("failed to reach chat provider", err).WithOperation("HostedProvider.Chat")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.ProviderError("failed to read chat response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.ProviderError(fmt.Sprintf("chat provider returned status %d", resp.StatusCode), nil).
			WithDetails(truncate(string(respBody), 500)).
			WithOperation("HostedProvider.Chat")
	}

	var completion completionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return nil, apperrors.ProviderError("failed to parse chat response", err)
	}
	if len(completion.Choices) == 0 {
		return nil, apperrors.ProviderError("chat provider returned no choices", nil)
	}

	out := &Response{
		Message:        completion.Choices[0].Message.Content,
		ConversationID: conversationID(req.Context),
		BasedOn:        hostedBasedOn(req.Context),
		Provider:       h.Name(),
	}
	if completion.Usage != nil {
		tokens := completion.Usage.TotalTokens
		out.TokensUsed = &tokens
	}
	return out, nil
}

// Close releases idle connections
func (h *HostedProvider) Close() {
	h.httpClient.CloseIdleConnections()
}

func hasSystemMessage(messages []Message) bool {
	for _, m := range messages {
		if m.Role == RoleSystem {
			return true
		}
	}
	return false
}

func systemPrompt(ctxData map[string]interface{}) string {
	parts := []string{
		"You are an AI assistant for financial advisors reviewing annuity policies.",
		"Your role is to provide decision support - not recommendations.",
		"Always maintain a neutral, educational tone.",
		"Avoid 'buy/sell' language. Focus on tradeoffs and considerations.",
		"",
	}

	if v, ok := contextString(ctxData, "clientAccountNumber"); ok {
		parts = append(parts, "Client Account: "+v)
	}
	if v, ok := contextString(ctxData, "policyId"); ok {
		parts = append(parts, "Policy ID: "+v)
	}
	if v, ok := contextString(ctxData, "activeAlertType"); ok {
		parts = append(parts, "Active Alert: "+v)
	}
	if s, ok := ctxData["clientSuitability"].(map[string]interface{}); ok {
		parts = append(parts,
			fmt.Sprintf("Client Age: %v", s["age"]),
			fmt.Sprintf("Risk Tolerance: %v", s["riskTolerance"]),
			fmt.Sprintf("Primary Objective: %v", s["primaryObjective"]),
		)
	}
	if p, ok := ctxData["policyDetails"].(map[string]interface{}); ok {
		parts = append(parts, fmt.Sprintf("Current Policy: %v", p["policyLabel"]))
		if c, ok := p["currentCapRate"]; ok && c != nil {
			parts = append(parts, fmt.Sprintf("Current Cap: %v%%", c))
		}
	}
	return strings.Join(parts, "\n")
}

func hostedBasedOn(ctxData map[string]interface{}) map[string]interface{} {
	basedOn := map[string]interface{}{}
	if _, ok := ctxData["clientSuitability"].(map[string]interface{}); ok {
		basedOn["clientFields"] = []string{"age", "riskTolerance", "primaryObjective", "incomeNeed"}
	}
	if _, ok := ctxData["policyDetails"].(map[string]interface{}); ok {
		basedOn["policyFields"] = []string{"issueDate", "currentCapRate", "renewalRate", "surrenderSchedule"}
	}
	if ids := alternativeIDs(ctxData); len(ids) > 0 {
		basedOn["alternativesUsed"] = ids
	}
	if len(basedOn) == 0 {
		return nil
	}
	return basedOn
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
