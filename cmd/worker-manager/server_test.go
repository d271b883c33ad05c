package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRouter(t *testing.T) {
	healthy := readinessCheck{name: "zeebe", probe: func(context.Context) error { return nil }}
	broken := readinessCheck{name: "redis", probe: func(context.Context) error { return errors.New("connection refused") }}

	tests := []struct {
		name       string
		checks     []readinessCheck
		path       string
		wantStatus int
		validate   func(t *testing.T, body map[string]interface{})
	}{
		{
			name:       "health",
			path:       "/health",
			wantStatus: http.StatusOK,
			validate: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "healthy", body["status"])
			},
		},
		{
			name:       "ready with no checks",
			path:       "/ready",
			wantStatus: http.StatusOK,
		},
		{
			name:       "ready",
			checks:     []readinessCheck{healthy},
			path:       "/ready",
			wantStatus: http.StatusOK,
			validate: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "ready", body["status"])
			},
		},
		{
			name:       "not ready",
			checks:     []readinessCheck{healthy, broken},
			path:       "/ready",
			wantStatus: http.StatusServiceUnavailable,
			validate: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "not_ready", body["status"])
				assert.Equal(t, map[string]interface{}{"redis": "connection refused"}, body["failures"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newRouter(zap.NewNop(), tt.checks...).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			if tt.validate != nil {
				tt.validate(t, body)
			}
		})
	}
}

func TestRouter_Metrics(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(zap.NewNop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
