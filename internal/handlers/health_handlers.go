package handlers

import (
	"context"
	"net/http"
	"time"

	"gurukul/internal/caching"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	db       *pgxpool.Pool
	redisSvc caching.CacheService
}

// NewHealthHandlers creates a new health handlers instance
func NewHealthHandlers(db *pgxpool.Pool, redisSvc caching.CacheService) *HealthHandlers {
	return &HealthHandlers{
		db:       db,
		redisSvc: redisSvc,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Version   string            `json:"version"`
}

// HealthCheck performs health checks on the backing services
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
		Version:   "1.0.0",
	}

	if err := h.db.Ping(ctx); err != nil {
		health.Services["database"] = "unhealthy"
		health.Status = "degraded"
	} else {
		health.Services["database"] = "healthy"
	}

	if err := h.checkRedis(ctx); err != nil {
		health.Services["redis"] = "unhealthy"
		health.Status = "degraded"
	} else {
		health.Services["redis"] = "healthy"
	}

	statusCode := http.StatusOK
	if health.Status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}
	return c.JSON(statusCode, health)
}

// ReadinessCheck is the lightweight probe for orchestrators
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

func (h *HealthHandlers) checkRedis(ctx context.Context) error {
	probeKey := "health:probe"
	if err := h.redisSvc.SetString(ctx, probeKey, "ok", 10*time.Second); err != nil {
		return err
	}
	_, err := h.redisSvc.GetString(ctx, probeKey)
	return err
}
