package chat

import (
	"strings"
	"sync"
	"time"
)

// HealthMonitor tracks chat provider call outcomes
type HealthMonitor struct {
	mu                   sync.RWMutex
	now                  func() time.Time
	totalCalls           int64
	successfulCalls      int64
	failedCalls          int64
	consecutiveFailures  int64
	lastFailureTime      time.Time
	lastSuccessTime      time.Time
	recentFailures       []FailureRecord
	maxRecentFailures    int
	failureThreshold     float64 // failure rate above which the provider is unhealthy
	consecutiveThreshold int64
}

// FailureRecord is one failed provider call
type FailureRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Provider  string    `json:"provider"`
	Error     string    `json:"error"`
	Category  string    `json:"category"`
}

// HealthStatus is a point-in-time view of provider health
type HealthStatus struct {
	IsHealthy           bool            `json:"isHealthy"`
	TotalCalls          int64           `json:"totalCalls"`
	SuccessfulCalls     int64           `json:"successfulCalls"`
	FailedCalls         int64           `json:"failedCalls"`
	SuccessRate         float64         `json:"successRate"`
	ConsecutiveFailures int64           `json:"consecutiveFailures"`
	LastFailureTime     *time.Time      `json:"lastFailureTime,omitempty"`
	LastSuccessTime     *time.Time      `json:"lastSuccessTime,omitempty"`
	RecentFailures      []FailureRecord `json:"recentFailures"`
	HealthIssues        []string        `json:"healthIssues"`
	RecommendedActions  []string        `json:"recommendedActions"`
}

// NewHealthMonitor creates a monitor. A nil clock uses time.Now.
func NewHealthMonitor(now func() time.Time) *HealthMonitor {
	if now == nil {
		now = time.Now
	}
	return &HealthMonitor{
		now:                  now,
		maxRecentFailures:    50,
		failureThreshold:     0.2,
		consecutiveThreshold: 5,
		recentFailures:       make([]FailureRecord, 0, 50),
	}
}

// RecordSuccess records a successful provider call
func (h *HealthMonitor) RecordSuccess() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.totalCalls++
	h.successfulCalls++
	h.consecutiveFailures = 0
	h.lastSuccessTime = h.now()
}

// RecordFailure records a failed provider call
func (h *HealthMonitor) RecordFailure(provider, errorMsg string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ts := h.now()
	h.totalCalls++
	h.failedCalls++
	h.consecutiveFailures++
	h.lastFailureTime = ts

	h.recentFailures = append(h.recentFailures, FailureRecord{
		Timestamp: ts,
		Provider:  provider,
		Error:     errorMsg,
		Category:  categorizeError(errorMsg),
	})
	if len(h.recentFailures) > h.maxRecentFailures {
		h.recentFailures = h.recentFailures[1:]
	}
}

// Status returns the current health status
func (h *HealthMonitor) Status() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := HealthStatus{
		IsHealthy:           true,
		TotalCalls:          h.totalCalls,
		SuccessfulCalls:     h.successfulCalls,
		FailedCalls:         h.failedCalls,
		ConsecutiveFailures: h.consecutiveFailures,
		RecentFailures:      make([]FailureRecord, len(h.recentFailures)),
		HealthIssues:        []string{},
		RecommendedActions:  []string{},
	}
	copy(status.RecentFailures, h.recentFailures)

	status.SuccessRate = 1.0
	if h.totalCalls > 0 {
		status.SuccessRate = float64(h.successfulCalls) / float64(h.totalCalls)
	}
	if !h.lastFailureTime.IsZero() {
		ts := h.lastFailureTime
		status.LastFailureTime = &ts
	}
	if !h.lastSuccessTime.IsZero() {
		ts := h.lastSuccessTime
		status.LastSuccessTime = &ts
	}

	if h.totalCalls >= 10 && status.SuccessRate < (1.0-h.failureThreshold) {
		status.IsHealthy = false
		status.HealthIssues = append(status.HealthIssues, "High failure rate detected (>20%)")
		status.RecommendedActions = append(status.RecommendedActions, "Check chat provider connectivity and credentials")
	}

	if h.consecutiveFailures >= h.consecutiveThreshold {
		status.IsHealthy = false
		status.HealthIssues = append(status.HealthIssues, "Multiple consecutive failures detected")
		status.RecommendedActions = append(status.RecommendedActions, "Verify chat provider status and account quota")
	}

	h.analyzeFailurePatterns(&status)
	return status
}

// analyzeFailurePatterns flags a category that dominates recent failures
func (h *HealthMonitor) analyzeFailurePatterns(status *HealthStatus) {
	if len(h.recentFailures) < 3 {
		return
	}

	counts := make(map[string]int)
	for _, f := range h.recentFailures {
		counts[f.Category]++
	}

	total := len(h.recentFailures)
	// fixed order keeps the issue list stable
	for _, category := range []string{"timeout", "rate_limit", "authentication", "network"} {
		if float64(counts[category])/float64(total) <= 0.5 {
			continue
		}
		switch category {
		case "timeout":
			status.HealthIssues = append(status.HealthIssues, "Frequent timeout errors detected")
			status.RecommendedActions = append(status.RecommendedActions, "Consider raising AI_TIMEOUT_MS or lowering AI_MAX_TOKENS")
		case "rate_limit":
			status.HealthIssues = append(status.HealthIssues, "Rate limiting detected")
			status.RecommendedActions = append(status.RecommendedActions, "Reduce chat request volume or raise the provider quota")
		case "authentication":
			status.HealthIssues = append(status.HealthIssues, "Authentication errors detected")
			status.RecommendedActions = append(status.RecommendedActions, "Verify AI_API_KEY")
		case "network":
			status.HealthIssues = append(status.HealthIssues, "Network connectivity issues detected")
			status.RecommendedActions = append(status.RecommendedActions, "Check network connectivity and AI_ENDPOINT")
		}
	}
}

// categorizeError buckets an error message by its likely cause
func categorizeError(errorMsg string) string {
	msg := strings.ToLower(errorMsg)

	switch {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline"), strings.Contains(msg, "in time"):
		return "timeout"
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "429"):
		return "rate_limit"
	case strings.Contains(msg, "unauthorized"), strings.Contains(msg, "401"), strings.Contains(msg, "403"):
		return "authentication"
	case strings.Contains(msg, "network"), strings.Contains(msg, "connection"), strings.Contains(msg, "dns"), strings.Contains(msg, "reach"):
		return "network"
	default:
		return "other"
	}
}
