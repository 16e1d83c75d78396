package api

import (
	"github.com/gin-gonic/gin"

	"github.com/ajharbinger/annuity-review-api/internal/metrics"
	"github.com/ajharbinger/annuity-review-api/internal/services"
)

// SetupRoutes configures all API routes. m may be nil, in which case
// /metrics is not served.
func SetupRoutes(r *gin.Engine, svcs *services.Services, m *metrics.Metrics) {
	healthHandler := NewHealthHandler()
	policyHandler := NewPolicyHandler(svcs.Policy)
	clientHandler := NewClientHandler(svcs.Client)
	productHandler := NewProductHandler(svcs.Product)
	transactionHandler := NewTransactionHandler(svcs.Transaction)
	chatHandler := NewChatHandler(svcs.Chat)
	alertsHandler := NewAlertsHandler(svcs.Alerts)

	r.GET("/", healthHandler.Root)
	r.GET("/health", healthHandler.Health)
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	api := r.Group("/api")
	{
		// Policy review
		api.GET("/policies", policyHandler.GetPolicies)
		api.GET("/policies/:id", policyHandler.GetPolicy)
		api.PUT("/policies/:id/non-financial", policyHandler.UpdateNonFinancial)
		api.GET("/policies/:id/alternatives", policyHandler.GetAlternatives)
		api.POST("/policies/:id/alerts/evaluate", policyHandler.EvaluateAlerts)

		// Clients
		api.GET("/clients", clientHandler.GetClients)
		api.GET("/clients/:acct", clientHandler.GetClient)
		api.PATCH("/clients/:acct/suitability", clientHandler.UpdateSuitability)
		api.GET("/clients/:acct/policies", clientHandler.GetClientPolicies)
		api.GET("/clients/:acct/acquisition-alerts", clientHandler.GetAcquisitionAlerts)
		api.GET("/acquisition-alerts", clientHandler.GetAllAcquisitionAlerts)

		// Product catalog
		api.GET("/products", productHandler.GetProducts)
		api.GET("/products/:id", productHandler.GetProduct)
		api.GET("/products/carrier/:name", productHandler.GetProductsByCarrier)

		// Alert pipeline
		api.GET("/alerts/pipeline/status", alertsHandler.GetPipelineStatus)
		api.POST("/alerts/pipeline/run", alertsHandler.RunOnce)
	}

	txns := api.Group("/replacement-transactions")
	{
		txns.POST("/validate", transactionHandler.Validate)
		txns.POST("/submit", transactionHandler.Submit)
		txns.POST("/create-from-context", transactionHandler.CreateFromContext)
		txns.GET("", transactionHandler.List)
		txns.GET("/:id", transactionHandler.GetTransaction)
		txns.GET("/:id/status", transactionHandler.GetStatus)
	}

	ai := api.Group("/ai")
	{
		ai.POST("/chat", chatHandler.Chat)
		ai.GET("/quick-actions/:alertType", chatHandler.GetQuickActions)
		ai.GET("/provider-info", chatHandler.GetProviderInfo)
	}
}
