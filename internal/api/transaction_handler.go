package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ajharbinger/annuity-review-api/internal/models"
	"github.com/ajharbinger/annuity-review-api/internal/services"
)

const defaultListLimit = 50

// TransactionHandler handles replacement transaction requests
type TransactionHandler struct {
	transactionService services.TransactionService
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactionService services.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// Validate runs every payload check and returns the findings. An invalid
// payload is still a 200 response.
func (h *TransactionHandler) Validate(c *gin.Context) {
	var payload models.ReplacementTransaction
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, "Invalid transaction payload: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, h.transactionService.Validate(&payload))
}

// Submit validates and records the transaction. Validation failures are 400
// with the finding lists.
func (h *TransactionHandler) Submit(c *gin.Context) {
	var payload models.ReplacementTransaction
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, "Invalid transaction payload: "+err.Error())
		return
	}

	result, err := h.transactionService.Submit(&payload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// createFromContextQuery is the query of create-from-context
type createFromContextQuery struct {
	PolicyID            string `form:"policy_id" binding:"required"`
	ProductID           string `form:"product_id" binding:"required"`
	ClientAccountNumber string `form:"client_account_number" binding:"required"`
}

// CreateFromContext returns a prefilled template for policy_id, product_id and
// client_account_number
func (h *TransactionHandler) CreateFromContext(c *gin.Context) {
	var query createFromContextQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, "policy_id, product_id and client_account_number are required")
		return
	}

	template, err := h.transactionService.CreateFromContext(query.PolicyID, query.ProductID, query.ClientAccountNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

// List returns stored transactions, filtered by client_account_number and status
func (h *TransactionHandler) List(c *gin.Context) {
	limit, ok := queryInt(c, "limit", defaultListLimit)
	if !ok || limit < 1 {
		badRequest(c, "limit must be a positive integer")
		return
	}
	status := models.TransactionStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		badRequest(c, "Unknown transaction status: "+string(status))
		return
	}

	items, err := h.transactionService.List(c.Query("client_account_number"), status, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":        len(items),
		"transactions": items,
	})
}

func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	txn, err := h.transactionService.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

func (h *TransactionHandler) GetStatus(c *gin.Context) {
	status, err := h.transactionService.GetStatus(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}
