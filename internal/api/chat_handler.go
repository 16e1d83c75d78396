package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ajharbinger/annuity-review-api/internal/chat"
	"github.com/ajharbinger/annuity-review-api/internal/services"
)

// ChatRequest is the advisor copilot request body
type ChatRequest struct {
	Message             string                 `json:"message" binding:"required"`
	Context             map[string]interface{} `json:"context"`
	ConversationHistory []chat.Message         `json:"conversation_history"`
	Temperature         *float64               `json:"temperature" binding:"omitempty,gte=0,lte=1"`
}

// ChatHandler handles the advisor copilot endpoints
type ChatHandler struct {
	chatService services.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat forwards the message to the configured provider. The orchestrator
// applies the configured provider deadline.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.chatService.Chat(c.Request.Context(), req.Message, req.ConversationHistory, req.Context, req.Temperature)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetQuickActions returns suggested prompts for an alert type
func (h *ChatHandler) GetQuickActions(c *gin.Context) {
	alertType := c.Param("alertType")
	c.JSON(http.StatusOK, gin.H{
		"alert_type": alertType,
		"actions":    h.chatService.QuickActions(alertType),
	})
}

func (h *ChatHandler) GetProviderInfo(c *gin.Context) {
	c.JSON(http.StatusOK, h.chatService.ProviderInfo())
}
