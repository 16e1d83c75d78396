package chat

import (
	"context"
	"math/rand"
	"time"

	"github.com/ajharbinger/annuity-review-api/pkg/config"
)

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is what the orchestrator hands a provider
type Request struct {
	Messages    []Message
	Context     map[string]interface{}
	Temperature float64
	MaxTokens   int
}

// Response is a provider's reply
type Response struct {
	Message        string                 `json:"message"`
	ConversationID *string                `json:"conversationId"`
	BasedOn        map[string]interface{} `json:"basedOn"`
	Provider       string                 `json:"provider"`
	TokensUsed     *int                   `json:"tokensUsed"`
}

// Provider generates chat replies
type Provider interface {
	Chat(ctx context.Context, req Request) (*Response, error)
	Name() string
}

// NewProvider selects the provider for the process. cfg must already be validated.
func NewProvider(cfg *config.Config) Provider {
	if cfg.UseMockProvider() {
		return NewMockProvider(rand.NewSource(time.Now().UnixNano()))
	}
	return NewHostedProvider(cfg.AIEndpoint, cfg.AIAPIKey, cfg.AIModel)
}

// lastUserMessage returns the most recent user turn, or ""
func lastUserMessage(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

func conversationID(ctxData map[string]interface{}) *string {
	if id, ok := ctxData["conversationId"].(string); ok && id != "" {
		return &id
	}
	return nil
}

func contextString(ctxData map[string]interface{}, key string) (string, bool) {
	v, ok := ctxData[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}
