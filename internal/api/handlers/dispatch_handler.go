// server/internal/api/handlers/dispatch_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"equipment-dispatch-api-server/internal/dispatch"
	"equipment-dispatch-api-server/internal/models"

	"github.com/gin-gonic/gin"
)

type DispatchHandler struct {
	Service *dispatch.Service
}

type DispatchResponse struct {
	Success     bool             `json:"success"`
	Message     string           `json:"message"`
	DispatchID  string           `json:"dispatch_id"`
	Equipment   models.Equipment `json:"equipment"`
	SentToQueue bool             `json:"sent_to_queue"`
}

// CreateDispatch handles POST /dispatch.
func (h *DispatchHandler) CreateDispatch(c *gin.Context) {
	var payload models.DispatchRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		// An id that is not a string can never match a registry entry.
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "equipment_id" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": dispatch.ErrEquipmentNotFound.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "JSON body required"})
		return
	}

	result, err := h.Service.Dispatch(c.Request.Context(), payload)
	if err != nil {
		if dispatch.IsRejection(err) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, DispatchResponse{
		Success:     true,
		Message:     "Urgent dispatch sent successfully",
		DispatchID:  result.Event.ID,
		Equipment:   result.Equipment,
		SentToQueue: true,
	})
}
