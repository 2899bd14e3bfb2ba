// server/internal/models/sensor.go
package models

const (
	SensorStatusNormal   = "normal"
	SensorStatusCritical = "critical"

	// UnknownWell is used when an alert does not name the well it came from.
	UnknownWell = "UNKNOWN"
)

// SensorReading is one simulated snapshot of a well's telemetry.
type SensorReading struct {
	Timestamp   string      `json:"timestamp"`
	WellID      string      `json:"well_id"`
	Temperature Measurement `json:"temperature"`
	Pressure    Measurement `json:"pressure"`
	Status      string      `json:"status"`
}

// AlertRequest is the body of POST /alert.
type AlertRequest struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
	WellID   string `json:"well_id"`
}

// Alert is what gets forwarded to the events service.
type Alert struct {
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
	Severity  string `json:"severity"`
	WellID    string `json:"well_id"`
	Source    string `json:"source"`
}
