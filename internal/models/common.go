// server/internal/models/common.go
package models

// Measurement is a sensor value together with its unit.
type Measurement struct {
	Value string `json:"value"` // formatted with two decimals
	Unit  string `json:"unit"`  // e.g. celsius, bar
}
