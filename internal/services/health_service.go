package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// HealthService reports liveness and basic runtime statistics.
type HealthService struct {
	version   string
	portfolio *PortfolioService
	hub       clientCounter
	startTime time.Time
	logger    *slog.Logger
}

type clientCounter interface {
	ClientCount() int
}

// HealthStatus represents the health check response.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// NewHealthService creates the health service. hub may be nil.
func NewHealthService(version string, portfolio *PortfolioService, hub clientCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		portfolio: portfolio,
		hub:       hub,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// Check returns the current health status.
func (s *HealthService) Check(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   s.version,
		Runtime: map[string]interface{}{
			"uptime_seconds": time.Since(s.startTime).Seconds(),
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
			"os":             runtime.GOOS,
			"arch":           runtime.GOARCH,
		},
		Services: map[string]interface{}{},
	}

	portfolio := map[string]interface{}{"loaded": false}
	if info, err := s.portfolio.Info(ctx); err == nil {
		portfolio["loaded"] = true
		portfolio["source"] = info.Source
		portfolio["clean_rows"] = info.CleanRows
	}
	status.Services["portfolio"] = portfolio

	if s.hub != nil {
		status.Services["websocket"] = map[string]interface{}{
			"clients": s.hub.ClientCount(),
		}
	}

	return status
}
