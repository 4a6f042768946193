package queue

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleMessageAppendsLines(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	for _, ev := range []SyncCompletedEvent{
		{Resource: "people", TotalUpstream: 82, TotalUpserted: 82, DurationMS: 1200, SyncedAt: "2024-05-01T10:00:00Z"},
		{Resource: "films", TotalUpstream: 6, TotalUpserted: 6, DurationMS: 90, SyncedAt: "2024-05-01T10:01:00Z"},
	} {
		body, err := json.Marshal(ev)
		require.NoError(t, err)
		require.NoError(t, handleMessage(dir, body))
	}

	data, err := os.ReadFile(filepath.Join(dir, SyncLogFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "[2024-05-01T10:00:00Z] Sync completed | resource=people | upstream=82 | upserted=82 | took=1200ms", lines[0])
	assert.Contains(t, lines[1], "resource=films")
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, handleMessage(dir, []byte("{not json")))
	assert.Error(t, handleMessage(dir, []byte(`{"total_upstream":3}`)))

	_, err := os.Stat(filepath.Join(dir, SyncLogFile))
	assert.True(t, os.IsNotExist(err))
}
