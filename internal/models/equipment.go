// server/internal/models/equipment.go
package models

import "fmt"

// EquipmentStatus is the closed set of states a piece of equipment can be in.
type EquipmentStatus string

const (
	StatusAvailable   EquipmentStatus = "available"
	StatusInTransit   EquipmentStatus = "in_transit"
	StatusMaintenance EquipmentStatus = "maintenance"
)

// Valid reports whether s is one of the known equipment statuses.
func (s EquipmentStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusInTransit, StatusMaintenance:
		return true
	}
	return false
}

// NoMaintenanceRecord marks equipment whose last maintenance date is unknown.
const NoMaintenanceRecord = "N/A"

// Equipment is one record of the equipment registry.
type Equipment struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Type            string          `json:"type"` // pump, valve, sensor, motor, pipe, ...
	Status          EquipmentStatus `json:"status"`
	Location        string          `json:"location"`
	LastMaintenance string          `json:"last_maintenance"` // YYYY-MM-DD or NoMaintenanceRecord
}

// Validate checks the fields the registry relies on.
func (e Equipment) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("equipment id is empty")
	}
	if !e.Status.Valid() {
		return fmt.Errorf("equipment %s has unknown status %q", e.ID, e.Status)
	}
	return nil
}
