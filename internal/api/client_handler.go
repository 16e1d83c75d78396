package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ajharbinger/annuity-review-api/internal/models"
	"github.com/ajharbinger/annuity-review-api/internal/services"
)

// ClientHandler handles client profile and opportunity requests
type ClientHandler struct {
	clientService services.ClientService
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService services.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

func (h *ClientHandler) GetClients(c *gin.Context) {
	clients, err := h.clientService.GetAll()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

func (h *ClientHandler) GetClient(c *gin.Context) {
	client, err := h.clientService.GetByAccount(c.Param("acct"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// UpdateSuitability applies a partial suitability patch. The editor is taken
// from updated_by and defaults to "Advisor".
func (h *ClientHandler) UpdateSuitability(c *gin.Context) {
	var update models.SuitabilityUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	expectedVersion, ok := queryInt(c, "expected_version", 0)
	if !ok {
		badRequest(c, "expected_version must be an integer")
		return
	}

	client, err := h.clientService.UpdateSuitability(c.Param("acct"), update, c.Query("updated_by"), int64(expectedVersion))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// GetClientPolicies lists the client's policy summaries
func (h *ClientHandler) GetClientPolicies(c *gin.Context) {
	policies, err := h.clientService.GetPolicies(c.Param("acct"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, policies)
}

func (h *ClientHandler) GetAcquisitionAlerts(c *gin.Context) {
	summary, err := h.clientService.GetAcquisitionAlerts(c.Param("acct"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetAllAcquisitionAlerts lists every client with portfolio opportunities
func (h *ClientHandler) GetAllAcquisitionAlerts(c *gin.Context) {
	summaries, err := h.clientService.GetAllAcquisitionAlerts()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":   len(summaries),
		"clients": summaries,
	})
}
