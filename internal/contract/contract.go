// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/witdiff/schema"
)

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetNormalizedStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for tracking comparison runs and their item results.
type HistoryStore interface {
	// BeginRun creates a new comparison run and returns its unique ID
	BeginRun(startTime time.Time, configParams map[string]any) (string, error)

	// RecordItemResults stores every item result of one source/target comparison
	RecordItemResults(runID, teamProject string, result schema.ConfigurationComparisonResult) error

	// EndRun updates the run with completion data
	EndRun(runID string, endTime time.Time, totalItems int, percentMatch float64) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns retrieves all comparison runs, oldest first
	GetAllRuns() ([]schema.ComparisonRunRecord, error)

	// GetAllItemResults retrieves all recorded item results
	GetAllItemResults() ([]schema.ItemResultRecord, error)

	// Close closes the underlying connection
	Close() error
}
