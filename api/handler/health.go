package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/forage/models"
	"github.com/use-agent/forage/runtime"
)

// Health returns a handler for GET /api/v1/health.
//
// Reports degraded while the specialized extraction backend is still
// warming up or has failed; the built-in parser keeps serving either way.
func Health(rt *runtime.Facade, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		ready := rt.WaitForReady(50 * time.Millisecond)

		status := "healthy"
		if !ready {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:       status,
			Uptime:       time.Since(startTime).Round(time.Second).String(),
			BackendReady: ready,
			Version:      "0.1.0",
		})
	}
}
