// server/internal/registry/seed.go
package registry

import "equipment-dispatch-api-server/internal/models"

// DefaultEquipment is the equipment the logistics API starts with.
func DefaultEquipment() []models.Equipment {
	return []models.Equipment{
		{ID: "EQ001", Name: "Centrifugal Pump", Type: "pump", Status: models.StatusAvailable, Location: "Warehouse A", LastMaintenance: "2024-01-15"},
		{ID: "EQ002", Name: "Safety Valve", Type: "valve", Status: models.StatusInTransit, Location: "Well WELL_3", LastMaintenance: "2024-02-10"},
		{ID: "EQ003", Name: "Pressure Sensor", Type: "sensor", Status: models.StatusMaintenance, Location: "Workshop", LastMaintenance: "2024-03-01"},
		{ID: "EQ004", Name: "Electric Motor", Type: "motor", Status: models.StatusAvailable, Location: "Warehouse B", LastMaintenance: "2023-12-20"},
		{ID: "EQ005", Name: `Pipe 6"`, Type: "pipe", Status: models.StatusAvailable, Location: "Stock Yard", LastMaintenance: models.NoMaintenanceRecord},
	}
}
