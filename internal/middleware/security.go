package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ajharbinger/annuity-review-api/internal/logger"
	"github.com/ajharbinger/annuity-review-api/pkg/config"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	// 10MB
	defaultMaxRequestSize = 10 * 1024 * 1024
)

// API responses carry no active content
const contentSecurityPolicy = "default-src 'none'; script-src 'none'; style-src 'none'; img-src 'none'; " +
	"connect-src 'self'; font-src 'none'; object-src 'none'; media-src 'none'; frame-src 'none'; " +
	"base-uri 'none'; form-action 'none'"

var securityHeaders = [][2]string{
	{"X-Frame-Options", "DENY"},
	{"X-Content-Type-Options", "nosniff"},
	{"X-XSS-Protection", "1; mode=block"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Content-Security-Policy", contentSecurityPolicy},
	// client records must not be cached by intermediaries
	{"Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate"},
	{"Pragma", "no-cache"},
	{"Expires", "0"},
	{"Server", ""},
}

// SecurityHeadersMiddleware adds the standard security headers to all responses
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range securityHeaders {
			c.Header(h[0], h[1])
		}
		c.Next()
	}
}

// CORSMiddleware allows the configured advisor UI origins
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	allowed := make(map[string]bool)
	for _, origin := range cfg.GetAllowedOrigins() {
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		if origin := c.Request.Header.Get("Origin"); allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With, "+RequestIDHeader)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// RequestIDMiddleware propagates or assigns an X-Request-ID
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestID returns the request ID assigned by RequestIDMiddleware
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// InputValidationMiddleware caps the body size and checks content types on
// requests that carry a body
func InputValidationMiddleware(maxSize int64) gin.HandlerFunc {
	if maxSize <= 0 {
		maxSize = defaultMaxRequestSize
	}
	allowedTypes := []string{"application/json"}
	suspiciousAgents := []string{"sqlmap", "nikto", "nmap", "masscan", "<script", "javascript:"}

	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)

		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			// create-from-context posts with query parameters only
			if c.Request.ContentLength != 0 {
				contentType := c.GetHeader("Content-Type")
				if contentType == "" {
					c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Content-Type header is required"})
					return
				}
				if !hasAnyPrefix(contentType, allowedTypes) {
					c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
						"error":         "Unsupported content type",
						"allowed_types": allowedTypes,
					})
					return
				}
			}
		}

		ua := strings.ToLower(c.GetHeader("User-Agent"))
		for _, pattern := range suspiciousAgents {
			if strings.Contains(ua, pattern) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Request blocked for security reasons"})
				return
			}
		}
		c.Next()
	}
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// RateLimiter is a per-client sliding window limiter held in memory
type RateLimiter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	now       func() time.Time
	clients   map[string][]time.Time
	lastSweep time.Time
}

// NewRateLimiter allows limit requests per window per client IP
func NewRateLimiter(limit int, window time.Duration, now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{limit: limit, window: window, now: now, clients: make(map[string][]time.Time)}
}

// Allow records a request for key and reports whether it is within the limit
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if now.Sub(r.lastSweep) >= r.window {
		r.sweep(now)
	}

	kept := r.clients[key][:0]
	for _, ts := range r.clients[key] {
		if now.Sub(ts) <= r.window {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= r.limit {
		if len(kept) == 0 {
			delete(r.clients, key)
		} else {
			r.clients[key] = kept
		}
		return false
	}
	r.clients[key] = append(kept, now)
	return true
}

// sweep drops clients whose newest request has left the window
func (r *RateLimiter) sweep(now time.Time) {
	for key, stamps := range r.clients {
		if len(stamps) == 0 || now.Sub(stamps[len(stamps)-1]) > r.window {
			delete(r.clients, key)
		}
	}
	r.lastSweep = now
}

// tracked returns the number of clients held in memory
func (r *RateLimiter) tracked() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Middleware rejects clients over the limit with 429
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	retryAfter := strconv.Itoa(int(r.window.Seconds()))
	return func(c *gin.Context) {
		if !r.Allow(c.ClientIP()) {
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": retryAfter,
			})
			return
		}
		c.Next()
	}
}

// RateLimitingMiddleware allows 100 requests per minute per IP
func RateLimitingMiddleware() gin.HandlerFunc {
	return NewRateLimiter(100, time.Minute, nil).Middleware()
}

// LoggingMiddleware writes one structured record per request
func LoggingMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"status", status,
			"method", c.Request.Method,
			"path", path,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"request_id", RequestID(c),
		}
		switch {
		case status >= 500:
			var err error
			if last := c.Errors.Last(); last != nil {
				err = last.Err
			}
			log.Error("Request failed", err, fields...)
		case status >= 400:
			log.Warn("Request rejected", append(fields, "user_agent", c.Request.UserAgent())...)
		default:
			log.Info("Request handled", fields...)
		}
	}
}
