// server/internal/dispatch/errors.go
package dispatch

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingEquipmentID rejects a request without an equipment id.
	ErrMissingEquipmentID = errors.New("equipment_id is required")
	// ErrEquipmentNotFound rejects a request for equipment the registry does not hold.
	ErrEquipmentNotFound = errors.New("equipment not found")
	// ErrTransportUnavailable rejects a request while the broker connection is down.
	ErrTransportUnavailable = errors.New("could not connect to message broker")
)

// PublishError means the broker was reachable but the publish itself failed.
type PublishError struct {
	DispatchID string
	Err        error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("failed to publish dispatch %s: %v", e.DispatchID, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// IsRejection reports whether err is a client-side rejection (bad input, unknown
// equipment or no transport) as opposed to a server failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrMissingEquipmentID) ||
		errors.Is(err, ErrEquipmentNotFound) ||
		errors.Is(err, ErrTransportUnavailable)
}
