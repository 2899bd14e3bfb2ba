// server/internal/api/handlers/sensor_handler.go
package handlers

import (
	"net/http"
	"time"

	"equipment-dispatch-api-server/internal/models"
	"equipment-dispatch-api-server/internal/sensors"

	"github.com/gin-gonic/gin"
)

type SensorHandler struct {
	Readings  *sensors.Readings
	Forwarder *sensors.Forwarder
}

// GetSensorData handles GET /sensor-data.
func (h *SensorHandler) GetSensorData(c *gin.Context) {
	reading, cached := h.Readings.Current(c.Request.Context())

	source := "generated"
	if cached {
		source = "cache"
	}
	c.JSON(http.StatusOK, gin.H{"source": source, "data": reading})
}

// SendAlert handles POST /alert: validates the alert and forwards it to the events service.
func (h *SensorHandler) SendAlert(c *gin.Context) {
	var req models.AlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": sensors.ErrMissingAlertFields.Error()})
		return
	}

	alert, err := sensors.BuildAlert(req, time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.Forwarder.Forward(c.Request.Context(), alert)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to forward alert to events service",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"message":         "Alert sent successfully",
		"alert":           alert,
		"events_response": resp,
	})
}
