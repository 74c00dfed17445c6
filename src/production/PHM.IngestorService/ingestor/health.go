package phmingestor

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthRouter serves GET /health with MQTT and API connectivity
func HealthRouter(ing *Ingestor) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		mqttStatus := "disconnected"
		if ing.IsConnected() {
			mqttStatus = "connected"
		}

		apiStatus := "disconnected"
		if err := ing.api.Health(ctx); err == nil {
			apiStatus = "connected"
		}

		status, code := "healthy", http.StatusOK
		if mqttStatus != "connected" || apiStatus != "connected" {
			status, code = "unhealthy", http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"services": gin.H{
				"mqtt":        mqttStatus,
				"api_service": apiStatus,
			},
			"queue_depth": len(ing.msgCh),
		})
	})
	return router
}
