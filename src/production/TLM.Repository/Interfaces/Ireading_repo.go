package interfaces

import (
	"context"
	"time"

	tlmmodels "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Models"
)

// DefaultQueryLimit caps range queries when the caller does not set one
const DefaultQueryLimit = 100

// ReadingQueryParams represents parameters for equipment-scoped range queries.
// From and To are inclusive; nil means unbounded on that side.
type ReadingQueryParams struct {
	EquipmentID string
	From        *time.Time
	To          *time.Time
	Limit       int
}

// ReadingStatistics represents aggregate statistics over a reading set.
// An empty input yields the zero value (0.0/0.0/0.0/0), never null or NaN.
type ReadingStatistics struct {
	Average float64 `json:"average"`
	Minimum float64 `json:"minimum"`
	Maximum float64 `json:"maximum"`
	Count   int64   `json:"count"`
}

type ReadingRepository interface {
	// Create unconditionally inserts a reading; a duplicate
	// (equipment_id, timestamp) key fails with ErrDuplicateKey.
	Create(ctx context.Context, reading *tlmmodels.SensorReading) (*tlmmodels.SensorReading, error)

	// Upsert applies update-or-insert semantics for one key: an existing
	// row keeps its created_at and gets the new value, a missing row is
	// inserted. Atomic per row; concurrent writers racing on the same key
	// are resolved by the storage engine's uniqueness constraint.
	Upsert(ctx context.Context, equipmentID string, timestamp time.Time, value *float64) error

	// CreateBatch inserts many readings at once (seeding path)
	CreateBatch(ctx context.Context, readings []tlmmodels.SensorReading) error

	// Query operations
	GetAll(ctx context.Context) ([]tlmmodels.SensorReading, error)
	GetEquipmentIDs(ctx context.Context) ([]string, error)
	GetByEquipment(ctx context.Context, params ReadingQueryParams) ([]tlmmodels.SensorReading, error)
	GetReadingsBetween(ctx context.Context, from, to time.Time) ([]tlmmodels.SensorReading, error)
	Count(ctx context.Context) (int64, error)

	// GetEquipmentStatistics aggregates readings for one equipment id with
	// timestamp >= now-window. No matching rows yields zero-filled stats.
	GetEquipmentStatistics(ctx context.Context, equipmentID string, window time.Duration) (*ReadingStatistics, error)
}
