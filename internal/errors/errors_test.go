package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"not found", NotFound("policy missing", nil), http.StatusNotFound},
		{"invalid input", InvalidInput("bad body", nil), http.StatusBadRequest},
		{"validation", ValidationError("checklist failed", nil), http.StatusBadRequest},
		{"conflict", Conflict("stale version", nil), http.StatusConflict},
		{"provider", ProviderError("upstream failed", nil), http.StatusBadGateway},
		{"provider timeout", ProviderTimeout("deadline exceeded", nil), http.StatusGatewayTimeout},
		{"wrapped", fmt.Errorf("context: %w", NotFound("client missing", nil)), http.StatusNotFound},
		{"plain error", stderrors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestAppErrorChain(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := ProviderError("chat provider unavailable", cause).WithOperation("HostedProvider.Chat")

	assert.True(t, Is(err, ErrCodeProviderError))
	assert.False(t, Is(err, ErrCodeNotFound))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "HostedProvider.Chat", err.Operation)
	assert.Contains(t, err.Error(), "caused by: connection refused")
}
