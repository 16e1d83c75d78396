package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajharbinger/annuity-review-api/internal/models"
)

func TestMiddlewareCountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	require.NoError(t, m.Register())

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/policies/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	for _, path := range []string{"/api/policies/POL-1", "/api/policies/POL-2", "/nope"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/policies/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "annuity_review_http_requests_total")
}

func TestDomainCounters(t *testing.T) {
	m := New()
	require.NoError(t, m.Register())

	m.RecordAlerts([]models.Alert{
		{Type: models.AlertReplacement, Severity: models.SeverityHigh},
		{Type: models.AlertReplacement, Severity: models.SeverityHigh},
		{Type: models.AlertMissingInfo, Severity: models.SeverityLow},
	})
	m.ObserveChat("mock", "success", 5*time.Millisecond)
	m.RecordTransaction(TxnSubmitted)
	m.ObserveAlertRun("policies", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AlertsGenerated.WithLabelValues("REPLACEMENT", "HIGH")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChatRequestsTotal.WithLabelValues("mock", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransactionsTotal.WithLabelValues(TxnSubmitted)))
}

func TestRegisterTwiceFails(t *testing.T) {
	m := New()
	require.NoError(t, m.Register())
	assert.Error(t, m.Register())
}
