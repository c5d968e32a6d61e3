package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

type fakeConnector struct{ connected bool }

func (f fakeConnector) IsConnected() bool { return f.connected }

func TestHealthService_CheckHealth(t *testing.T) {
	tests := []struct {
		name     string
		host     Pinger
		mqtt     Connector
		status   HealthStatus
		wantBody string
		wantCode int
	}{
		{"all healthy", fakePinger{}, fakeConnector{true}, HealthStatusHealthy, "ok", http.StatusOK},
		{"mqtt disabled", fakePinger{}, nil, HealthStatusHealthy, "ok", http.StatusOK},
		{"mqtt down", fakePinger{}, fakeConnector{false}, HealthStatusDegraded, "degraded", http.StatusOK},
		{"host down", fakePinger{err: errors.New("401")}, fakeConnector{true}, HealthStatusUnhealthy, "unhealthy", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewHealthService(tt.host, nil, tt.mqtt, "test")
			report := svc.CheckHealth(context.Background())
			require.Equal(t, tt.status, report.Status)
			require.Contains(t, report.Components, "home_assistant")

			body, code := svc.SimpleHealthCheck(context.Background())
			require.Equal(t, tt.wantBody, body)
			require.Equal(t, tt.wantCode, code)
		})
	}
}
