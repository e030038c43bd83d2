package tlmmodels

import "time"

// SensorReading is one measurement for a piece of equipment.
// The pair (EquipmentID, Timestamp) is the primary key; a second write to
// the same pair overwrites Value and never creates a duplicate row.
type SensorReading struct {
	EquipmentID string    `json:"equipment_id" db:"equipment_id"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
	Value       *float64  `json:"value" db:"value"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
