package bulk

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Config"
	logger "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Logger"
	interfaces "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Repository/Interfaces"
)

type upsertCall struct {
	equipmentID string
	timestamp   time.Time
	value       *float64
}

// readingRepoStub records upserts and can fail on chosen equipment ids
type readingRepoStub struct {
	interfaces.ReadingRepository
	calls  []upsertCall
	failOn string
}

func (s *readingRepoStub) Upsert(_ context.Context, equipmentID string, timestamp time.Time, value *float64) error {
	if s.failOn != "" && equipmentID == s.failOn {
		return fmt.Errorf("disk full")
	}
	s.calls = append(s.calls, upsertCall{equipmentID: equipmentID, timestamp: timestamp, value: value})
	return nil
}

func newTestService(repo *readingRepoStub) *Service {
	log := logger.NewLogger(&config.LoggingConfig{Level: "error", Format: "console", Output: "stdout"})
	return NewService(repo, log)
}

func TestProcessCSV_AppliesAllRows(t *testing.T) {
	doc := "equipmentId,timestamp,value\n" +
		"EQ-00001,2026-08-01T10:00:00,12.5\n" +
		"EQ-00002,2026-08-01 11:00:00,7.25\n" +
		"EQ-00003,2026-08-01,3.5\n"

	repo := &readingRepoStub{}
	result, err := newTestService(repo).ProcessCSV(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, 3, result.Applied)
	assert.Empty(t, result.Failed)
	require.Len(t, repo.calls, 3)
	assert.Equal(t, "EQ-00001", repo.calls[0].equipmentID)
	require.NotNil(t, repo.calls[0].value)
	assert.Equal(t, 12.5, *repo.calls[0].value)
	assert.Equal(t, time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC), repo.calls[0].timestamp)
}

func TestProcessCSV_MalformedRowDoesNotAbortBatch(t *testing.T) {
	doc := "equipmentId,timestamp,value\n" +
		"EQ-00001,2026-08-01T10:00:00,12.5\n" +
		"EQ-00002,not-a-timestamp,7.25\n" +
		"EQ-00003,2026-08-01T12:00:00,not-a-number\n" +
		"EQ-00004,2026-08-01T13:00:00,9.0\n"

	repo := &readingRepoStub{}
	result, err := newTestService(repo).ProcessCSV(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Applied)
	require.Len(t, result.Failed, 2)

	assert.Equal(t, 3, result.Failed[0].Line)
	assert.Equal(t, "EQ-00002", result.Failed[0].EquipmentID)
	assert.Equal(t, "unparseable timestamp", result.Failed[0].Reason)

	assert.Equal(t, 4, result.Failed[1].Line)
	assert.Equal(t, "unparseable value", result.Failed[1].Reason)
}

func TestProcessCSV_EmptyValueCellMeansNull(t *testing.T) {
	doc := "equipmentId,timestamp,value\n" +
		"EQ-00001,2026-08-01T10:00:00,\n"

	repo := &readingRepoStub{}
	result, err := newTestService(repo).ProcessCSV(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Applied)
	require.Len(t, repo.calls, 1)
	assert.Nil(t, repo.calls[0].value)
}

func TestProcessCSV_HeaderColumnOrderDoesNotMatter(t *testing.T) {
	doc := "value,equipmentId,timestamp\n" +
		"4.5,EQ-00001,2026-08-01T10:00:00\n"

	repo := &readingRepoStub{}
	result, err := newTestService(repo).ProcessCSV(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Applied)
	require.Len(t, repo.calls, 1)
	assert.Equal(t, "EQ-00001", repo.calls[0].equipmentID)
	require.NotNil(t, repo.calls[0].value)
	assert.Equal(t, 4.5, *repo.calls[0].value)
}

func TestProcessCSV_MissingColumnFailsWholeUpload(t *testing.T) {
	doc := "equipmentId,value\n" +
		"EQ-00001,4.5\n"

	repo := &readingRepoStub{}
	_, err := newTestService(repo).ProcessCSV(context.Background(), strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timestamp")
	assert.Empty(t, repo.calls)
}

func TestProcessCSV_EmptyUploadFails(t *testing.T) {
	_, err := newTestService(&readingRepoStub{}).ProcessCSV(context.Background(), strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty upload")
}

func TestProcessCSV_StorageErrorRecordedPerRow(t *testing.T) {
	doc := "equipmentId,timestamp,value\n" +
		"EQ-BAD,2026-08-01T10:00:00,1.0\n" +
		"EQ-00002,2026-08-01T11:00:00,2.0\n"

	repo := &readingRepoStub{failOn: "EQ-BAD"}
	result, err := newTestService(repo).ProcessCSV(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Applied)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "EQ-BAD", result.Failed[0].EquipmentID)
	assert.Contains(t, result.Failed[0].Reason, "storage error")
}

func TestProcessCSV_MissingEquipmentID(t *testing.T) {
	doc := "equipmentId,timestamp,value\n" +
		",2026-08-01T10:00:00,1.0\n"

	repo := &readingRepoStub{}
	result, err := newTestService(repo).ProcessCSV(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)

	assert.Zero(t, result.Applied)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "missing equipment id", result.Failed[0].Reason)
}
