package database

import (
	"context"
	"fmt"
	"time"
)

// HealthChecker reports store connectivity
type HealthChecker struct {
	gw *Gateway
}

func NewHealthChecker(gw *Gateway) *HealthChecker {
	return &HealthChecker{gw: gw}
}

// Check pings the store and runs a trivial query
func (h *HealthChecker) Check(ctx context.Context) error {
	if h.gw == nil {
		return fmt.Errorf("database connection is nil")
	}
	if err := h.gw.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	var result int
	if err := h.gw.QueryRow(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query failed: %w", err)
	}
	return nil
}

// Status returns a health document plus whether the store is reachable
func (h *HealthChecker) Status(ctx context.Context) (map[string]interface{}, bool) {
	check := map[string]interface{}{"status": "ok"}
	healthy := true
	if err := h.Check(ctx); err != nil {
		check["status"] = "error"
		check["error"] = err.Error()
		healthy = false
	}

	status := "ok"
	if !healthy {
		status = "degraded"
	}

	driver := "database"
	if h.gw != nil {
		driver = h.gw.Driver()
	}

	return map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    map[string]interface{}{driver: check},
	}, healthy
}
