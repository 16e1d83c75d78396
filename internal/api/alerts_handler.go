package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ajharbinger/annuity-review-api/internal/services"
)

// AlertsHandler exposes the alert pipeline
type AlertsHandler struct {
	pipeline *services.AlertPipeline
}

func NewAlertsHandler(pipeline *services.AlertPipeline) *AlertsHandler {
	return &AlertsHandler{pipeline: pipeline}
}

// GetPipelineStatus reports whether the periodic refresh is active
func (h *AlertsHandler) GetPipelineStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"running":   h.pipeline.IsRunning(),
		"timestamp": time.Now(),
	})
}

// RunOnce recomputes and stores alerts for the requested scope
func (h *AlertsHandler) RunOnce(c *gin.Context) {
	config := services.DefaultPipelineConfig()
	if scope := c.Query("scope"); scope != "" {
		switch scope {
		case services.ScopePolicies, services.ScopeAcquisition, services.ScopeAll:
			config.Scope = scope
		default:
			badRequest(c, "scope must be one of policies, acquisition, all")
			return
		}
	}
	if batchSize, ok := queryInt(c, "batch_size", config.BatchSize); ok && batchSize > 0 {
		config.BatchSize = batchSize
	}
	if maxConcurrent, ok := queryInt(c, "max_concurrent", config.MaxConcurrent); ok && maxConcurrent > 0 {
		config.MaxConcurrent = maxConcurrent
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Minute)
	defer cancel()

	stats, err := h.pipeline.RunOnce(ctx, config)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run alert cycle: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Alert cycle completed successfully",
		"config":    config,
		"stats":     stats,
		"timestamp": time.Now(),
	})
}
