package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusDegraded  HealthStatus = "degraded"
)

// ComponentHealth represents the health of a specific component
type ComponentHealth struct {
	Status    HealthStatus `json:"status"`
	Message   string       `json:"message,omitempty"`
	Latency   string       `json:"latency,omitempty"`
	CheckedAt time.Time    `json:"checked_at"`
}

// HealthReport represents the overall health report
type HealthReport struct {
	Status     HealthStatus               `json:"status"`
	Version    string                     `json:"version"`
	CheckedAt  time.Time                  `json:"checked_at"`
	Components map[string]ComponentHealth `json:"components"`
}

// Pinger is satisfied by the Home Assistant client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Connector is satisfied by MQTT-backed adapters.
type Connector interface {
	IsConnected() bool
}

type HealthService struct {
	host    Pinger
	redis   *redis.Client
	mqtt    Connector
	version string
}

// NewHealthService builds a health service. redisClient and mqtt may be nil
// when those integrations are disabled.
func NewHealthService(host Pinger, redisClient *redis.Client, mqtt Connector, version string) *HealthService {
	if version == "" {
		version = "0.0.1"
	}
	return &HealthService{
		host:    host,
		redis:   redisClient,
		mqtt:    mqtt,
		version: version,
	}
}

func (s *HealthService) CheckHealth(ctx context.Context) *HealthReport {
	report := &HealthReport{
		Status:     HealthStatusHealthy,
		Version:    s.version,
		CheckedAt:  time.Now(),
		Components: make(map[string]ComponentHealth),
	}

	// The host platform is required; everything else only degrades.
	hostHealth := s.checkHost(ctx)
	report.Components["home_assistant"] = hostHealth
	if hostHealth.Status != HealthStatusHealthy {
		report.Status = HealthStatusUnhealthy
	}

	if s.redis != nil {
		redisHealth := s.checkRedis(ctx)
		report.Components["redis"] = redisHealth
		if redisHealth.Status != HealthStatusHealthy && report.Status == HealthStatusHealthy {
			report.Status = HealthStatusDegraded
		}
	}

	if s.mqtt != nil {
		mqttHealth := s.checkMQTT()
		report.Components["mqtt"] = mqttHealth
		if mqttHealth.Status != HealthStatusHealthy && report.Status == HealthStatusHealthy {
			report.Status = HealthStatusDegraded
		}
	}

	return report
}

func (s *HealthService) checkHost(ctx context.Context) ComponentHealth {
	start := time.Now()

	if s.host == nil {
		return ComponentHealth{
			Status:    HealthStatusUnhealthy,
			Message:   "Home Assistant client not initialized",
			CheckedAt: time.Now(),
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.host.Ping(ctx); err != nil {
		return ComponentHealth{
			Status:    HealthStatusUnhealthy,
			Message:   fmt.Sprintf("Home Assistant ping failed: %v", err),
			Latency:   time.Since(start).String(),
			CheckedAt: time.Now(),
		}
	}

	return ComponentHealth{
		Status:    HealthStatusHealthy,
		Latency:   time.Since(start).String(),
		CheckedAt: time.Now(),
	}
}

func (s *HealthService) checkRedis(ctx context.Context) ComponentHealth {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.redis.Ping(ctx).Err(); err != nil {
		return ComponentHealth{
			Status:    HealthStatusUnhealthy,
			Message:   fmt.Sprintf("Redis ping failed: %v", err),
			Latency:   time.Since(start).String(),
			CheckedAt: time.Now(),
		}
	}

	return ComponentHealth{
		Status:    HealthStatusHealthy,
		Latency:   time.Since(start).String(),
		CheckedAt: time.Now(),
	}
}

func (s *HealthService) checkMQTT() ComponentHealth {
	if !s.mqtt.IsConnected() {
		return ComponentHealth{
			Status:    HealthStatusUnhealthy,
			Message:   "MQTT client not connected",
			CheckedAt: time.Now(),
		}
	}
	return ComponentHealth{
		Status:    HealthStatusHealthy,
		CheckedAt: time.Now(),
	}
}

// SimpleHealthCheck returns a simple health status for load balancers
func (s *HealthService) SimpleHealthCheck(ctx context.Context) (string, int) {
	report := s.CheckHealth(ctx)

	switch report.Status {
	case HealthStatusHealthy:
		return "ok", http.StatusOK
	case HealthStatusDegraded:
		return "degraded", http.StatusOK
	default:
		return "unhealthy", http.StatusServiceUnavailable
	}
}
