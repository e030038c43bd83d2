package implementation_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	tlmmodels "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Models"
	"gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Repository/Implementation"
	interfaces "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Repository/Interfaces"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	// A pooled second connection would see a different in-memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	schema := []string{
		`CREATE TABLE sensor_readings (
			equipment_id TEXT NOT NULL,
			timestamp    DATETIME NOT NULL,
			value        FLOAT,
			created_at   DATETIME NOT NULL,
			PRIMARY KEY (equipment_id, timestamp)
		)`,
		`CREATE INDEX idx_equipment_timestamp ON sensor_readings (equipment_id, timestamp)`,
		`CREATE INDEX idx_timestamp ON sensor_readings (timestamp)`,
		`CREATE TABLE users (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL UNIQUE,
			password   TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("schema: %v", err)
		}
	}

	return db
}

func newReadingRepo(t *testing.T) *implementation.SQLReadingRepository {
	t.Helper()
	return implementation.NewSQLReadingRepository(newTestDB(t), "sqlite3")
}

func floatPtr(v float64) *float64 { return &v }

func TestReadingRepo_UpsertTwice_LastWriteWins(t *testing.T) {
	r := newReadingRepo(t)
	ctx := context.Background()

	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	if err := r.Upsert(ctx, "EQ-00001", ts, floatPtr(10.0)); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	first, err := r.GetByEquipment(ctx, interfaces.ReadingQueryParams{EquipmentID: "EQ-00001"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 row, got %d", len(first))
	}
	firstCreatedAt := first[0].CreatedAt

	if err := r.Upsert(ctx, "EQ-00001", ts, floatPtr(20.0)); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	rows, err := r.GetByEquipment(ctx, interfaces.ReadingQueryParams{EquipmentID: "EQ-00001"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected exactly 1 row after upsert, got %d", len(rows))
	}
	if rows[0].Value == nil || *rows[0].Value != 20.0 {
		t.Fatalf("expected value 20.0, got %v", rows[0].Value)
	}
	if !rows[0].CreatedAt.Equal(firstCreatedAt) {
		t.Fatalf("created_at changed on upsert: %v != %v", rows[0].CreatedAt, firstCreatedAt)
	}
}

func TestReadingRepo_Create_DuplicateKey(t *testing.T) {
	r := newReadingRepo(t)
	ctx := context.Background()

	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	if err := r.Upsert(ctx, "EQ-00001", ts, floatPtr(10.0)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := r.Upsert(ctx, "EQ-00001", ts, floatPtr(20.0)); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	_, err := r.Create(ctx, &tlmmodels.SensorReading{
		EquipmentID: "EQ-00001",
		Timestamp:   ts,
		Value:       floatPtr(5.0),
	})
	if !interfaces.IsDuplicateKey(err) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	// The losing create must not have touched the stored value
	rows, err := r.GetByEquipment(ctx, interfaces.ReadingQueryParams{EquipmentID: "EQ-00001"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 1 || *rows[0].Value != 20.0 {
		t.Fatalf("expected single row with value 20.0, got %+v", rows)
	}
}

func TestReadingRepo_GetByEquipment_DescendingAndLimit(t *testing.T) {
	r := newReadingRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		if err := r.Upsert(ctx, "EQ-00001", base.Add(time.Duration(i)*time.Hour), floatPtr(float64(i))); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}
	// Another equipment must not leak into the result
	if err := r.Upsert(ctx, "EQ-00002", base, floatPtr(99.0)); err != nil {
		t.Fatalf("upsert other: %v", err)
	}

	rows, err := r.GetByEquipment(ctx, interfaces.ReadingQueryParams{EquipmentID: "EQ-00001", Limit: 5})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].Timestamp.After(rows[i-1].Timestamp) {
			t.Fatalf("rows not in descending timestamp order: %v after %v", rows[i].Timestamp, rows[i-1].Timestamp)
		}
	}
	if *rows[0].Value != 9.0 {
		t.Fatalf("expected newest value 9.0 first, got %v", *rows[0].Value)
	}
}

func TestReadingRepo_GetByEquipment_StartBoundOnly(t *testing.T) {
	r := newReadingRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 6; i++ {
		if err := r.Upsert(ctx, "EQ-00001", base.Add(time.Duration(i)*time.Hour), floatPtr(float64(i))); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}

	from := base.Add(3 * time.Hour)
	rows, err := r.GetByEquipment(ctx, interfaces.ReadingQueryParams{EquipmentID: "EQ-00001", From: &from})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	// Inclusive lower bound: hours 3, 4 and 5
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows at or after start_time, got %d", len(rows))
	}
	for _, row := range rows {
		if row.Timestamp.Before(from) {
			t.Fatalf("row before start_time: %v", row.Timestamp)
		}
	}
}

func TestReadingRepo_GetEquipmentIDs_Distinct(t *testing.T) {
	r := newReadingRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if err := r.Upsert(ctx, "EQ-00001", base.Add(time.Duration(i)*time.Hour), floatPtr(1.0)); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	if err := r.Upsert(ctx, "EQ-00002", base, floatPtr(2.0)); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	ids, err := r.GetEquipmentIDs(ctx)
	if err != nil {
		t.Fatalf("equipment ids: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 distinct ids, got %v", ids)
	}
}

func TestReadingRepo_Statistics_ZeroFillOnEmpty(t *testing.T) {
	r := newReadingRepo(t)
	ctx := context.Background()

	st, err := r.GetEquipmentStatistics(ctx, "EQ-MISSING", 24*time.Hour)
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if st.Average != 0.0 || st.Minimum != 0.0 || st.Maximum != 0.0 || st.Count != 0 {
		t.Fatalf("expected zero-filled statistics, got %+v", st)
	}
}

func TestReadingRepo_Statistics_RecentWindow(t *testing.T) {
	r := newReadingRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	recent := []float64{10.0, 20.0, 30.0}
	for i, v := range recent {
		if err := r.Upsert(ctx, "EQ-00001", now.Add(-time.Duration(i+1)*time.Hour), floatPtr(v)); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	// Outside the 24h window, must not influence the aggregate
	if err := r.Upsert(ctx, "EQ-00001", now.Add(-48*time.Hour), floatPtr(1000.0)); err != nil {
		t.Fatalf("upsert old: %v", err)
	}

	st, err := r.GetEquipmentStatistics(ctx, "EQ-00001", 24*time.Hour)
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if st.Count != 3 {
		t.Fatalf("expected count 3, got %d", st.Count)
	}
	if st.Minimum != 10.0 || st.Maximum != 30.0 {
		t.Fatalf("unexpected min/max: %+v", st)
	}
	if st.Average != 20.0 {
		t.Fatalf("expected average 20.0, got %v", st.Average)
	}
}

func TestReadingRepo_NullValueRoundTrip(t *testing.T) {
	r := newReadingRepo(t)
	ctx := context.Background()

	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	if err := r.Upsert(ctx, "EQ-00001", ts, nil); err != nil {
		t.Fatalf("upsert null: %v", err)
	}

	rows, err := r.GetByEquipment(ctx, interfaces.ReadingQueryParams{EquipmentID: "EQ-00001"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 1 || rows[0].Value != nil {
		t.Fatalf("expected single row with null value, got %+v", rows)
	}

	// NULL measurements do not count toward aggregates
	st, err := r.GetEquipmentStatistics(ctx, "EQ-00001", 100000*time.Hour)
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if st.Count != 0 {
		t.Fatalf("expected count 0 for null-only readings, got %d", st.Count)
	}
}

func TestReadingRepo_CreateBatchAndCount(t *testing.T) {
	r := newReadingRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	batch := make([]tlmmodels.SensorReading, 0, 7)
	for i := 0; i < 7; i++ {
		batch = append(batch, tlmmodels.SensorReading{
			EquipmentID: "EQ-00001",
			Timestamp:   base.Add(time.Duration(i) * time.Hour),
			Value:       floatPtr(float64(i)),
		})
	}
	if err := r.CreateBatch(ctx, batch); err != nil {
		t.Fatalf("batch insert: %v", err)
	}

	count, err := r.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 7 {
		t.Fatalf("expected 7 rows, got %d", count)
	}
}
