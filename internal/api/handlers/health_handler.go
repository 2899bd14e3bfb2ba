// server/internal/api/handlers/health_handler.go
package handlers

import (
	"net/http"

	"equipment-dispatch-api-server/internal/health"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	Reporter *health.Reporter
}

func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, h.Reporter.Report())
}
