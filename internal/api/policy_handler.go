package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ajharbinger/annuity-review-api/internal/matcher"
	"github.com/ajharbinger/annuity-review-api/internal/models"
	"github.com/ajharbinger/annuity-review-api/internal/services"
)

// PolicyHandler handles policy review operations
type PolicyHandler struct {
	policyService services.PolicyService
}

// NewPolicyHandler creates a new policy handler
func NewPolicyHandler(policyService services.PolicyService) *PolicyHandler {
	return &PolicyHandler{policyService: policyService}
}

// GetPolicies returns every policy grouped by client, most alerts first
func (h *PolicyHandler) GetPolicies(c *gin.Context) {
	groups, err := h.policyService.GetGroupedByClient()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

// GetPolicy returns the full policy record
func (h *PolicyHandler) GetPolicy(c *gin.Context) {
	policy, err := h.policyService.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, policy)
}

// UpdateNonFinancial replaces the policy's non-financial data.
// expected_version optionally guards against a concurrent edit.
func (h *PolicyHandler) UpdateNonFinancial(c *gin.Context) {
	var data models.NonFinancialData
	if err := c.ShouldBindJSON(&data); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	expectedVersion, ok := queryInt(c, "expected_version", 0)
	if !ok {
		badRequest(c, "expected_version must be an integer")
		return
	}

	policy, err := h.policyService.UpdateNonFinancial(c.Param("id"), &data, int64(expectedVersion))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, policy)
}

// GetAlternatives returns replacement candidates for the policy
func (h *PolicyHandler) GetAlternatives(c *gin.Context) {
	maxResults, ok := queryInt(c, "max_results", matcher.DefaultMaxResults)
	if !ok || maxResults < 1 || maxResults > matcher.MaxResultsLimit {
		badRequest(c, "max_results must be an integer between 1 and 5")
		return
	}

	comparison, err := h.policyService.GetAlternatives(c.Param("id"), maxResults)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comparison)
}

// EvaluateAlerts recomputes the policy's alerts without storing them
func (h *PolicyHandler) EvaluateAlerts(c *gin.Context) {
	policyID := c.Param("id")
	alerts, err := h.policyService.PreviewAlerts(policyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"policyId": policyID,
		"alerts":   alerts,
		"count":    len(alerts),
	})
}
