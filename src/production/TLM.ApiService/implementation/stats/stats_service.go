package stats

import (
	"context"
	"fmt"
	"time"

	tlmmodels "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Models"
	interfaces "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Repository/Interfaces"
)

// EmptyPolicy decides what an aggregation returns when no reading falls
// inside the requested window.
type EmptyPolicy int

const (
	// PolicyZeroFill returns zero-valued statistics (0.0/0.0/0.0/0)
	PolicyZeroFill EmptyPolicy = iota
	// PolicyOmit drops the equipment from the result set entirely
	PolicyOmit
	// PolicyFail reports the whole window as having no data
	PolicyFail
)

// EquipmentStatistics pairs an equipment id with its window statistics
type EquipmentStatistics struct {
	EquipmentID string                        `json:"equipment_id"`
	Statistics  interfaces.ReadingStatistics  `json:"statistics"`
}

// Service computes windowed aggregate statistics over the reading store
type Service struct {
	readingRepo interfaces.ReadingRepository

	// now is swappable in tests
	now func() time.Time
}

// NewService creates a new statistics service
func NewService(readingRepo interfaces.ReadingRepository) *Service {
	return &Service{
		readingRepo: readingRepo,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// ForEquipment computes statistics for one equipment id over the trailing
// window. An empty window zero-fills rather than failing.
func (s *Service) ForEquipment(ctx context.Context, equipmentID string, window time.Duration) (*interfaces.ReadingStatistics, error) {
	return s.readingRepo.GetEquipmentStatistics(ctx, equipmentID, window)
}

// ByPeriod partitions readings in [now - windowHours, now] by equipment id
// and computes statistics per partition. Equipment with no reading in range
// is omitted; an entirely empty window fails with ErrNoData, never an empty
// success list.
func (s *Service) ByPeriod(ctx context.Context, windowHours int) ([]EquipmentStatistics, error) {
	if windowHours < 0 {
		return nil, fmt.Errorf("window hours must not be negative: %d", windowHours)
	}

	end := s.now()
	start := end.Add(-time.Duration(windowHours) * time.Hour)

	readings, err := s.readingRepo.GetReadingsBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("windowed readings query: %w", err)
	}

	partitions := partitionValues(readings)
	if len(partitions) == 0 {
		return nil, interfaces.ErrNoData
	}

	results := make([]EquipmentStatistics, 0, len(partitions))
	for equipmentID, values := range partitions {
		st, err := Summarize(values, PolicyOmit)
		if err != nil {
			return nil, err
		}
		if st == nil {
			continue
		}
		results = append(results, EquipmentStatistics{
			EquipmentID: equipmentID,
			Statistics:  *st,
		})
	}

	return results, nil
}

// Summarize computes average, minimum, maximum and count over values,
// applying the given policy when values is empty. A nil result with nil
// error means the caller should omit the entry.
func Summarize(values []float64, policy EmptyPolicy) (*interfaces.ReadingStatistics, error) {
	if len(values) == 0 {
		switch policy {
		case PolicyZeroFill:
			return &interfaces.ReadingStatistics{}, nil
		case PolicyOmit:
			return nil, nil
		default:
			return nil, interfaces.ErrNoData
		}
	}

	sum := values[0]
	min := values[0]
	max := values[0]
	for _, v := range values[1:] {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	return &interfaces.ReadingStatistics{
		Average: sum / float64(len(values)),
		Minimum: min,
		Maximum: max,
		Count:   int64(len(values)),
	}, nil
}

// partitionValues groups non-null measurement values by equipment id.
// NULL values are skipped so both aggregation paths agree with the SQL
// AVG/MIN/MAX semantics.
func partitionValues(readings []tlmmodels.SensorReading) map[string][]float64 {
	partitions := make(map[string][]float64)
	for _, rd := range readings {
		if rd.Value == nil {
			continue
		}
		partitions[rd.EquipmentID] = append(partitions[rd.EquipmentID], *rd.Value)
	}
	return partitions
}
