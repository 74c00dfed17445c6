package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	database "gitlab.com/maplesense1/phm.server/src/production/PHM.Database"
)

// HealthController serves liveness and readiness probes
type HealthController struct {
	checker *database.HealthChecker
}

func NewHealthController(checker *database.HealthChecker) *HealthController {
	return &HealthController{checker: checker}
}

// RegisterRoutes registers the public health routes
func (c *HealthController) RegisterRoutes(router gin.IRouter) {
	router.GET("/health/live", c.HealthLive)
	router.GET("/health/ready", c.HealthReady)
}

func (c *HealthController) HealthLive(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (c *HealthController) HealthReady(ctx *gin.Context) {
	checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	status, healthy := c.checker.Status(checkCtx)
	if !healthy {
		ctx.JSON(http.StatusServiceUnavailable, status)
		return
	}
	ctx.JSON(http.StatusOK, status)
}
