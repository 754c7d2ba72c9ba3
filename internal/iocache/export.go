package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/witdiff/internal/contract"
	"github.com/huangsam/witdiff/internal/parquet"
)

// ExecuteHistoryExport writes the comparison history to two Parquet files
// named after outputPrefix.
func ExecuteHistoryExport(w io.Writer, store contract.HistoryStore, outputPrefix string) error {
	if outputPrefix == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history tracking is disabled. Set --history-backend to export")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no comparison history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total comparison runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total item records: %d\n", status.TableSizes[itemResultsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve comparison runs: %w", err)
	}
	items, err := store.GetAllItemResults()
	if err != nil {
		return fmt.Errorf("failed to retrieve item results: %w", err)
	}

	parquetRuns := parquet.ConvertComparisonRunRecords(runs)
	runsFile := outputPrefix + ".comparison_runs.parquet"
	if err := parquet.WriteComparisonRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write comparison runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d comparison runs to: %s\n", len(parquetRuns), runsFile)

	parquetItems := parquet.ConvertItemResultRecords(items)
	itemsFile := outputPrefix + ".item_results.parquet"
	if err := parquet.WriteItemResultsParquet(parquetItems, itemsFile); err != nil {
		return fmt.Errorf("failed to write item results: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d item records to: %s\n", len(parquetItems), itemsFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be read with DuckDB, Pandas, Spark or any other Parquet-compatible tool.")
	return nil
}
