package iocache

import (
	"bytes"
	"testing"
	"time"

	"github.com/huangsam/witdiff/schema"
	"github.com/stretchr/testify/assert"
)

func TestPrintCacheStatus(t *testing.T) {
	t.Run("disconnected", func(t *testing.T) {
		var buf bytes.Buffer
		PrintCacheStatus(&buf, schema.CacheStatus{Backend: "none"})
		assert.Equal(t, "Cache Backend: none\nConnected: false\n", buf.String())
	})

	t.Run("with entries", func(t *testing.T) {
		var buf bytes.Buffer
		PrintCacheStatus(&buf, schema.CacheStatus{
			Backend:         "sqlite",
			Connected:       true,
			TotalEntries:    12,
			LastEntryTime:   time.Date(2024, 5, 2, 10, 0, 0, 0, time.Local),
			OldestEntryTime: time.Date(2024, 5, 1, 9, 0, 0, 0, time.Local),
			TableSizeBytes:  8192,
		})
		out := buf.String()
		assert.Contains(t, out, "Total Entries: 12\n")
		assert.Contains(t, out, "Last Entry: 2024-05-02 10:00:00\n")
		assert.Contains(t, out, "Oldest Entry: 2024-05-01 09:00:00\n")
		assert.Contains(t, out, "Table Size: 8192 bytes\n")
	})
}

func TestPrintHistoryStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintHistoryStatus(&buf, schema.HistoryStatus{
		Backend:            "sqlite",
		Connected:          true,
		TotalRuns:          2,
		LastRunID:          "run-2",
		LastRunTime:        time.Date(2024, 5, 2, 10, 0, 0, 0, time.Local),
		OldestRunTime:      time.Date(2024, 5, 1, 9, 0, 0, 0, time.Local),
		TotalItemsCompared: 40,
		TableSizes:         map[string]int64{itemResultsTable: 40, comparisonRunsTable: 2},
	})
	out := buf.String()
	assert.Contains(t, out, "Last Run ID: run-2\n")
	assert.Contains(t, out, "Total Items Compared: 40\n")
	assert.Contains(t, out, "Table Sizes:\n  witdiff_comparison_runs: 2 rows\n  witdiff_item_results: 40 rows\n")
}
