// server/internal/api/handlers/equipment_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"equipment-dispatch-api-server/internal/metrics"
	"equipment-dispatch-api-server/internal/models"
	"equipment-dispatch-api-server/internal/registry"

	"github.com/gin-gonic/gin"
)

// EquipmentCache is the snapshot side of the cache layer.
type EquipmentCache interface {
	GetEquipments(ctx context.Context) ([]models.Equipment, bool)
	PutEquipments(ctx context.Context, items []models.Equipment) bool
}

type EquipmentHandler struct {
	Registry *registry.Store
	Cache    EquipmentCache
}

type EquipmentListResponse struct {
	Success    bool               `json:"success"`
	Total      int                `json:"total"`
	Timestamp  string             `json:"timestamp"`
	Equipments []models.Equipment `json:"equipments"`
	Cached     bool               `json:"cached"`
}

// GetEquipments answers from the cached snapshot when present; on a miss it reads the
// registry and writes the snapshot back so the next call is a hit.
func (h *EquipmentHandler) GetEquipments(c *gin.Context) {
	ctx := c.Request.Context()

	items, cached := h.Cache.GetEquipments(ctx)
	if cached {
		metrics.EquipmentCacheLookups.WithLabelValues("hit").Inc()
	} else {
		metrics.EquipmentCacheLookups.WithLabelValues("miss").Inc()
		items = h.Registry.All()
		h.Cache.PutEquipments(ctx, items)
	}
	if items == nil {
		items = []models.Equipment{}
	}

	c.JSON(http.StatusOK, EquipmentListResponse{
		Success:    true,
		Total:      len(items),
		Timestamp:  time.Now().Format(models.TimestampLayout),
		Equipments: items,
		Cached:     cached,
	})
}
