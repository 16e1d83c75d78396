package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ajharbinger/annuity-review-api/internal/errors"
)

// respondError writes err with the status its code maps to. Validation
// failures carry their error and warning lists.
func respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	appErr, ok := apperrors.As(err)
	if !ok {
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "Internal server error", "code": apperrors.ErrCodeInternalError})
		return
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}

	body := gin.H{"error": appErr.Message, "code": appErr.Code}
	if appErr.Code == apperrors.ErrCodeValidationError {
		body["errors"] = nonNil(appErr.Errors)
		body["warnings"] = nonNil(appErr.Warnings)
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message, "code": apperrors.ErrCodeInvalidInput})
}

// queryInt parses an optional integer query parameter
func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
