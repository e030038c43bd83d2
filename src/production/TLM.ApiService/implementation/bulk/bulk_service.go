package bulk

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	logger "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Logger"
	interfaces "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Repository/Interfaces"
)

// Required CSV column headers, named exactly as the upload contract states
const (
	columnEquipmentID = "equipmentId"
	columnTimestamp   = "timestamp"
	columnValue       = "value"
)

// timestampLayouts are tried in order when parsing row timestamps
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// RowFailure records one skipped row with enough context to diagnose it
type RowFailure struct {
	Line        int    `json:"line"`
	EquipmentID string `json:"equipment_id"`
	Timestamp   string `json:"timestamp"`
	Reason      string `json:"reason"`
}

// Result reports the outcome of a bulk upsert. Row-level failures are
// observability events, not batch-aborting errors; the batch as a whole
// still succeeds when Failed is non-empty.
type Result struct {
	Applied int          `json:"applied"`
	Failed  []RowFailure `json:"failed,omitempty"`
}

// Service applies tabular update-or-insert batches against the reading store
type Service struct {
	readingRepo interfaces.ReadingRepository
	log         *logger.Logger
}

// NewService creates a new bulk upsert service
func NewService(readingRepo interfaces.ReadingRepository, log *logger.Logger) *Service {
	return &Service{
		readingRepo: readingRepo,
		log:         log.WithComponent("bulk"),
	}
}

// ProcessCSV reads a CSV document with equipmentId, timestamp and value
// columns and upserts each row in input order. A malformed header or an
// unreadable document fails the call; anything row-scoped is recorded in
// the result and processing continues.
func (s *Service) ProcessCSV(ctx context.Context, r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty upload")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns, err := locateColumns(header)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			s.recordFailure(result, RowFailure{Line: line, Reason: err.Error()})
			continue
		}

		row, failure := parseRow(record, columns, line)
		if failure != nil {
			s.recordFailure(result, *failure)
			continue
		}

		if err := s.readingRepo.Upsert(ctx, row.equipmentID, row.timestamp, row.value); err != nil {
			s.recordFailure(result, RowFailure{
				Line:        line,
				EquipmentID: row.equipmentID,
				Timestamp:   row.rawTimestamp,
				Reason:      "storage error: " + err.Error(),
			})
			continue
		}

		result.Applied++
	}

	return result, nil
}

func (s *Service) recordFailure(result *Result, failure RowFailure) {
	result.Failed = append(result.Failed, failure)
	s.log.WithFields(map[string]interface{}{
		"line":         failure.Line,
		"equipment_id": failure.EquipmentID,
		"timestamp":    failure.Timestamp,
	}).Warn("Skipping row: " + failure.Reason)
}

// columnIndexes maps the required headers to their positions
type columnIndexes struct {
	equipmentID int
	timestamp   int
	value       int
}

func locateColumns(header []string) (*columnIndexes, error) {
	idx := columnIndexes{equipmentID: -1, timestamp: -1, value: -1}
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case columnEquipmentID:
			idx.equipmentID = i
		case columnTimestamp:
			idx.timestamp = i
		case columnValue:
			idx.value = i
		}
	}
	if idx.equipmentID < 0 || idx.timestamp < 0 || idx.value < 0 {
		return nil, fmt.Errorf("upload must contain %s, %s and %s columns",
			columnEquipmentID, columnTimestamp, columnValue)
	}
	return &idx, nil
}

type parsedRow struct {
	equipmentID  string
	timestamp    time.Time
	rawTimestamp string
	value        *float64
}

func parseRow(record []string, columns *columnIndexes, line int) (*parsedRow, *RowFailure) {
	maxIdx := columns.equipmentID
	if columns.timestamp > maxIdx {
		maxIdx = columns.timestamp
	}
	if columns.value > maxIdx {
		maxIdx = columns.value
	}
	if len(record) <= maxIdx {
		return nil, &RowFailure{Line: line, Reason: "row has too few columns"}
	}

	equipmentID := strings.TrimSpace(record[columns.equipmentID])
	rawTimestamp := strings.TrimSpace(record[columns.timestamp])
	rawValue := strings.TrimSpace(record[columns.value])

	if equipmentID == "" {
		return nil, &RowFailure{Line: line, Timestamp: rawTimestamp, Reason: "missing equipment id"}
	}

	timestamp, err := parseTimestamp(rawTimestamp)
	if err != nil {
		return nil, &RowFailure{
			Line:        line,
			EquipmentID: equipmentID,
			Timestamp:   rawTimestamp,
			Reason:      "unparseable timestamp",
		}
	}

	// An empty value cell means no measurement was recorded for that instant
	var value *float64
	if rawValue != "" {
		v, err := strconv.ParseFloat(rawValue, 64)
		if err != nil {
			return nil, &RowFailure{
				Line:        line,
				EquipmentID: equipmentID,
				Timestamp:   rawTimestamp,
				Reason:      "unparseable value",
			}
		}
		value = &v
	}

	return &parsedRow{
		equipmentID:  equipmentID,
		timestamp:    timestamp,
		rawTimestamp: rawTimestamp,
		value:        value,
	}, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", raw)
}
