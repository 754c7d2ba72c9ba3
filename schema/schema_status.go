package schema

import "time"

// CacheStatus represents the status of the normalized XML cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// HistoryStatus represents the status of the comparison history store.
type HistoryStatus struct {
	Backend            string           `json:"backend"`
	Connected          bool             `json:"connected"`
	TotalRuns          int              `json:"total_runs"`
	LastRunID          string           `json:"last_run_id"`
	LastRunTime        time.Time        `json:"last_run_time"`
	OldestRunTime      time.Time        `json:"oldest_run_time"`
	TotalItemsCompared int              `json:"total_items_compared"`
	TableSizes         map[string]int64 `json:"table_sizes"`
}

// ComparisonRunRecord represents a row from the witdiff_comparison_runs table.
type ComparisonRunRecord struct {
	RunID              string
	StartTime          time.Time
	EndTime            *time.Time
	RunDurationMs      *int32
	TotalItemsCompared *int32
	PercentMatch       *float64
	ConfigParams       *string
}

// ItemResultRecord represents a row from the witdiff_item_results table.
type ItemResultRecord struct {
	RunID        string
	TeamProject  string
	SourceName   string
	TargetName   string
	ItemType     string
	ItemName     string
	Status       string
	PercentMatch float64
	PartsTotal   int32
	PartsEqual   int32
	RecordedAt   time.Time
}
