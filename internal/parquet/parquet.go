// Package parquet provides data structures and functions for exporting witdiff
// comparison history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/witdiff/schema"
	"github.com/parquet-go/parquet-go"
)

// ComparisonRun represents a single witdiff command run with metadata.
// This struct maps to the witdiff_comparison_runs database table.
type ComparisonRun struct {
	// RunID is the UUID of this run
	RunID string `parquet:"run_id,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalItemsCompared is the number of item results the run produced (nullable)
	TotalItemsCompared *int32 `parquet:"total_items_compared,optional,snappy"`

	// PercentMatch is the overall 0..1 match of the run (nullable)
	PercentMatch *float64 `parquet:"percent_match,optional,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// ItemResult represents the verdict for one configuration item in a run.
// This struct maps to the witdiff_item_results database table.
type ItemResult struct {
	RunID        string    `parquet:"run_id,snappy"`
	TeamProject  string    `parquet:"team_project,snappy"`
	SourceName   string    `parquet:"source_name,snappy"`
	TargetName   string    `parquet:"target_name,snappy"`
	ItemType     string    `parquet:"item_type,snappy,dict"`
	ItemName     string    `parquet:"item_name,snappy"`
	Status       string    `parquet:"status,snappy,dict"`
	PercentMatch float64   `parquet:"percent_match,snappy"`
	PartsTotal   int32     `parquet:"parts_total,snappy"`
	PartsEqual   int32     `parquet:"parts_equal,snappy"`
	RecordedAt   time.Time `parquet:"recorded_at,snappy"`
}

// WriteComparisonRunsParquet writes a slice of ComparisonRun structs to a Parquet file.
func WriteComparisonRunsParquet(data []ComparisonRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteItemResultsParquet writes a slice of ItemResult structs to a Parquet file.
func WriteItemResultsParquet(data []ItemResult, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes rows using a schema inferred from the struct tags of T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	// Close flushes the footer, so its error matters
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// ConvertComparisonRunRecords converts schema.ComparisonRunRecord to ComparisonRun for Parquet export.
func ConvertComparisonRunRecords(records []schema.ComparisonRunRecord) []ComparisonRun {
	result := make([]ComparisonRun, len(records))
	for i, record := range records {
		result[i] = ComparisonRun{
			RunID:              record.RunID,
			StartTime:          record.StartTime,
			EndTime:            record.EndTime,
			RunDurationMs:      record.RunDurationMs,
			TotalItemsCompared: record.TotalItemsCompared,
			PercentMatch:       record.PercentMatch,
			ConfigParams:       record.ConfigParams,
		}
	}
	return result
}

// ConvertItemResultRecords converts schema.ItemResultRecord to ItemResult for Parquet export.
func ConvertItemResultRecords(records []schema.ItemResultRecord) []ItemResult {
	result := make([]ItemResult, len(records))
	for i, record := range records {
		result[i] = ItemResult(record)
	}
	return result
}
