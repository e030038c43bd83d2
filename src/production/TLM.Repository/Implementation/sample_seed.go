package implementation

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	config "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Config"
	logger "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Logger"
	tlmmodels "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Models"
	interfaces "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Repository/Interfaces"
)

// seedBatchSize bounds the multi-row INSERT so the statement stays under
// driver parameter limits.
const seedBatchSize = 500

// SeedSampleData populates the readings table with a reference dataset on
// first start: one reading per equipment per day over the trailing window,
// values uniform in [3.5, 20.0). A non-empty table is left untouched.
func SeedSampleData(ctx context.Context, repo interfaces.ReadingRepository, cfg *config.SeedConfig, log *logger.Logger) error {
	count, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("sample data count check: %w", err)
	}
	if count > 0 {
		log.Info("Database already contains data; skipping initialization")
		return nil
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now().UTC()

	batch := make([]tlmmodels.SensorReading, 0, seedBatchSize)
	total := 0
	for eq := 1; eq <= cfg.EquipmentCount; eq++ {
		equipmentID := fmt.Sprintf("EQ-%05d", eq)
		for day := 0; day < cfg.Days; day++ {
			ts := now.AddDate(0, 0, -day)
			ts = time.Date(ts.Year(), ts.Month(), ts.Day(),
				rng.Intn(24), rng.Intn(60), 0, 0, time.UTC)
			value := 3.5 + rng.Float64()*16.5

			batch = append(batch, tlmmodels.SensorReading{
				EquipmentID: equipmentID,
				Timestamp:   ts,
				Value:       &value,
				CreatedAt:   now,
			})

			if len(batch) >= seedBatchSize {
				if err := repo.CreateBatch(ctx, batch); err != nil {
					return fmt.Errorf("sample data batch insert: %w", err)
				}
				total += len(batch)
				batch = batch[:0]
			}
		}
	}
	if len(batch) > 0 {
		if err := repo.CreateBatch(ctx, batch); err != nil {
			return fmt.Errorf("sample data batch insert: %w", err)
		}
		total += len(batch)
	}

	log.WithField("readings", total).Info("Sample data initialized")
	return nil
}
