// server/internal/models/dispatch_request.go
package models

const (
	DefaultDispatchMessage  = "Urgent dispatch without details"
	DefaultDispatchPriority = "high"

	// DispatchStatusDispatched is the only status a published DispatchEvent carries.
	DispatchStatusDispatched = "dispatched"
)

// DispatchRequest is the body of POST /dispatch.
// Priority is an open label; anything the caller sends is passed through.
type DispatchRequest struct {
	EquipmentID string `json:"equipment_id"`
	Message     string `json:"message"`
	Priority    string `json:"priority"`
}

// WithDefaults fills the optional fields the caller left empty.
func (r DispatchRequest) WithDefaults() DispatchRequest {
	if r.Message == "" {
		r.Message = DefaultDispatchMessage
	}
	if r.Priority == "" {
		r.Priority = DefaultDispatchPriority
	}
	return r
}

// DispatchEvent is the message published to the logistics queue and kept as a receipt
// in the cache. It is never modified once built.
type DispatchEvent struct {
	ID            string `json:"id"`
	Timestamp     string `json:"timestamp"` // RFC 3339 with offset
	EquipmentID   string `json:"equipment_id"`
	EquipmentName string `json:"equipment_name"`
	Message       string `json:"message"`
	Priority      string `json:"priority"`
	Status        string `json:"status"`
	Source        string `json:"source"`
}

// TimestampLayout is ISO-8601 with a numeric UTC offset, e.g. 2024-05-01T10:00:00+00:00.
const TimestampLayout = "2006-01-02T15:04:05-07:00"
