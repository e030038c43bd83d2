package implementation

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	tlmmodels "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Models"
	interfaces "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Repository/Interfaces"
)

type SQLReadingRepository struct {
	db     *sql.DB
	driver string
}

func NewSQLReadingRepository(db *sql.DB, driver string) *SQLReadingRepository {
	return &SQLReadingRepository{db: db, driver: driver}
}

func (r *SQLReadingRepository) Create(ctx context.Context, reading *tlmmodels.SensorReading) (*tlmmodels.SensorReading, error) {
	if reading.CreatedAt.IsZero() {
		reading.CreatedAt = time.Now().UTC()
	}

	query := rebind(r.driver, `
		INSERT INTO sensor_readings (equipment_id, timestamp, value, created_at)
		VALUES (?, ?, ?, ?)
	`)

	_, err := r.db.ExecContext(ctx, query,
		reading.EquipmentID, reading.Timestamp, nullFloat(reading.Value), reading.CreatedAt)
	if err != nil {
		return nil, classifyError(err)
	}

	return reading, nil
}

func (r *SQLReadingRepository) Upsert(ctx context.Context, equipmentID string, timestamp time.Time, value *float64) error {
	// The conflict clause leaves created_at untouched on update, so the
	// insertion time of the first write survives later overwrites.
	query := rebind(r.driver, `
		INSERT INTO sensor_readings (equipment_id, timestamp, value, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (equipment_id, timestamp)
		DO UPDATE SET value = EXCLUDED.value
	`)

	_, err := r.db.ExecContext(ctx, query, equipmentID, timestamp, nullFloat(value), time.Now().UTC())
	return classifyError(err)
}

func (r *SQLReadingRepository) CreateBatch(ctx context.Context, readings []tlmmodels.SensorReading) error {
	if len(readings) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO sensor_readings (equipment_id, timestamp, value, created_at) VALUES `)
	args := make([]interface{}, 0, len(readings)*4)
	for i, rd := range readings {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?)")
		createdAt := rd.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		args = append(args, rd.EquipmentID, rd.Timestamp, nullFloat(rd.Value), createdAt)
	}

	_, err := r.db.ExecContext(ctx, rebind(r.driver, sb.String()), args...)
	return classifyError(err)
}

func (r *SQLReadingRepository) GetAll(ctx context.Context) ([]tlmmodels.SensorReading, error) {
	query := `SELECT equipment_id, timestamp, value, created_at FROM sensor_readings`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReadings(rows)
}

func (r *SQLReadingRepository) GetEquipmentIDs(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT equipment_id FROM sensor_readings`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *SQLReadingRepository) GetByEquipment(ctx context.Context, params interfaces.ReadingQueryParams) ([]tlmmodels.SensorReading, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = interfaces.DefaultQueryLimit
	}

	var sb strings.Builder
	sb.WriteString(`SELECT equipment_id, timestamp, value, created_at FROM sensor_readings WHERE equipment_id = ?`)
	args := []interface{}{params.EquipmentID}

	if params.From != nil {
		sb.WriteString(` AND timestamp >= ?`)
		args = append(args, *params.From)
	}
	if params.To != nil {
		sb.WriteString(` AND timestamp <= ?`)
		args = append(args, *params.To)
	}

	sb.WriteString(` ORDER BY timestamp DESC LIMIT ?`)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, rebind(r.driver, sb.String()), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReadings(rows)
}

func (r *SQLReadingRepository) GetReadingsBetween(ctx context.Context, from, to time.Time) ([]tlmmodels.SensorReading, error) {
	query := rebind(r.driver, `
		SELECT equipment_id, timestamp, value, created_at FROM sensor_readings
		WHERE timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp
	`)

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReadings(rows)
}

func (r *SQLReadingRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sensor_readings`).Scan(&count)
	return count, err
}

func (r *SQLReadingRepository) GetEquipmentStatistics(ctx context.Context, equipmentID string, window time.Duration) (*interfaces.ReadingStatistics, error) {
	startTime := time.Now().UTC().Add(-window)

	// COUNT(value) skips NULL measurements, matching AVG/MIN/MAX semantics
	query := rebind(r.driver, `
		SELECT AVG(value), MIN(value), MAX(value), COUNT(value)
		FROM sensor_readings
		WHERE equipment_id = ? AND timestamp >= ?
	`)

	var avg, min, max sql.NullFloat64
	var count int64

	err := r.db.QueryRowContext(ctx, query, equipmentID, startTime).Scan(&avg, &min, &max, &count)
	if err != nil {
		return nil, fmt.Errorf("equipment statistics query: %w", err)
	}

	// Empty result sets zero-fill rather than returning nulls
	return &interfaces.ReadingStatistics{
		Average: avg.Float64,
		Minimum: min.Float64,
		Maximum: max.Float64,
		Count:   count,
	}, nil
}

func scanReadings(rows *sql.Rows) ([]tlmmodels.SensorReading, error) {
	var readings []tlmmodels.SensorReading
	for rows.Next() {
		var rd tlmmodels.SensorReading
		var value sql.NullFloat64

		if err := rows.Scan(&rd.EquipmentID, &rd.Timestamp, &value, &rd.CreatedAt); err != nil {
			return nil, err
		}
		if value.Valid {
			v := value.Float64
			rd.Value = &v
		}

		readings = append(readings, rd)
	}

	return readings, rows.Err()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
