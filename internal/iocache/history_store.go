package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/witdiff/internal/contract"
	"github.com/huangsam/witdiff/schema"
)

// Table names for comparison history.
const (
	comparisonRunsTable = "witdiff_comparison_runs"
	itemResultsTable    = "witdiff_item_results"
)

// historyTables lists the history tables in creation order.
var historyTables = []string{comparisonRunsTable, itemResultsTable}

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDatabase(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// createHistoryTables creates the history tracking tables.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	for _, table := range historyTables {
		if _, err := db.Exec(getCreateHistoryTableQuery(table, backend)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// getCreateHistoryTableQuery returns the CREATE TABLE query of a history table.
// The embedded migrations carry the same definitions.
func getCreateHistoryTableQuery(table string, backend schema.DatabaseBackend) string {
	quoted := quoteTableName(table, backend)

	if table == comparisonRunsTable {
		switch backend {
		case schema.MySQLBackend:
			return fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					run_id VARCHAR(36) PRIMARY KEY,
					start_time DATETIME(6) NOT NULL,
					end_time DATETIME(6),
					run_duration_ms INT,
					total_items_compared INT,
					percent_match DOUBLE,
					config_params TEXT
				);
			`, quoted)
		case schema.PostgreSQLBackend:
			return fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					run_id TEXT PRIMARY KEY,
					start_time TIMESTAMPTZ NOT NULL,
					end_time TIMESTAMPTZ,
					run_duration_ms INT,
					total_items_compared INT,
					percent_match DOUBLE PRECISION,
					config_params TEXT
				);
			`, quoted)
		default: // SQLite
			return fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					run_id TEXT PRIMARY KEY,
					start_time TEXT NOT NULL,
					end_time TEXT,
					run_duration_ms INTEGER,
					total_items_compared INTEGER,
					percent_match REAL,
					config_params TEXT
				);
			`, quoted)
		}
	}

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_id VARCHAR(36) NOT NULL,
				team_project VARCHAR(255) NOT NULL,
				source_name VARCHAR(255) NOT NULL,
				target_name VARCHAR(255) NOT NULL,
				item_type VARCHAR(32) NOT NULL,
				item_name VARCHAR(255) NOT NULL,
				status VARCHAR(32) NOT NULL,
				percent_match DOUBLE NOT NULL,
				parts_total INT NOT NULL,
				parts_equal INT NOT NULL,
				recorded_at DATETIME(6) NOT NULL,
				INDEX idx_item_results_run (run_id)
			);
		`, quoted)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id BIGSERIAL PRIMARY KEY,
				run_id TEXT NOT NULL,
				team_project TEXT NOT NULL,
				source_name TEXT NOT NULL,
				target_name TEXT NOT NULL,
				item_type TEXT NOT NULL,
				item_name TEXT NOT NULL,
				status TEXT NOT NULL,
				percent_match DOUBLE PRECISION NOT NULL,
				parts_total INT NOT NULL,
				parts_equal INT NOT NULL,
				recorded_at TIMESTAMPTZ NOT NULL
			);
		`, quoted)
	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_id TEXT NOT NULL,
				team_project TEXT NOT NULL,
				source_name TEXT NOT NULL,
				target_name TEXT NOT NULL,
				item_type TEXT NOT NULL,
				item_name TEXT NOT NULL,
				status TEXT NOT NULL,
				percent_match REAL NOT NULL,
				parts_total INTEGER NOT NULL,
				parts_equal INTEGER NOT NULL,
				recorded_at TEXT NOT NULL
			);
		`, quoted)
	}
}

// BeginRun creates a new comparison run and returns its unique ID.
// Run IDs are UUIDv7 so they sort by creation time.
func (hs *HistoryStoreImpl) BeginRun(startTime time.Time, configParams map[string]any) (string, error) {
	if hs.db == nil {
		return "", nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config params: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate run ID: %w", err)
	}
	runID := id.String()

	query := rebind(fmt.Sprintf(`INSERT INTO %s (run_id, start_time, config_params) VALUES (?, ?, ?)`,
		quoteTableName(comparisonRunsTable, hs.backend)), hs.backend)
	if _, err := hs.db.Exec(query, runID, formatTime(startTime, hs.backend), string(configJSON)); err != nil {
		return "", fmt.Errorf("failed to insert comparison run: %w", err)
	}
	return runID, nil
}

// RecordItemResults stores every item of a comparison in one transaction.
func (hs *HistoryStoreImpl) RecordItemResults(runID, teamProject string, result schema.ConfigurationComparisonResult) error {
	if hs.db == nil {
		return nil
	}

	tx, err := hs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := rebind(fmt.Sprintf(`
		INSERT INTO %s (run_id, team_project, source_name, target_name, item_type, item_name,
		                status, percent_match, parts_total, parts_equal, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, quoteTableName(itemResultsTable, hs.backend)), hs.backend)
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare item insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	recordedAt := formatTime(time.Now(), hs.backend)
	for _, item := range result.Items {
		partsEqual := 0
		for _, p := range item.Parts {
			if p.Status == schema.AreEqual {
				partsEqual++
			}
		}
		if _, err := stmt.Exec(runID, teamProject, result.Source.Name, result.Target.Name,
			string(item.ItemType), item.ItemName, string(item.Status), item.PercentMatch,
			len(item.Parts), partsEqual, recordedAt); err != nil {
			return fmt.Errorf("failed to insert result for %s: %w", item.DisplayName(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit item results: %w", err)
	}
	return nil
}

// EndRun updates the run with completion data.
func (hs *HistoryStoreImpl) EndRun(runID string, endTime time.Time, totalItems int, percentMatch float64) error {
	if hs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(comparisonRunsTable, hs.backend)

	var startTime timeScanner
	selectQuery := rebind(fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = ?`, quotedTableName), hs.backend)
	if err := hs.db.QueryRow(selectQuery, runID).Scan(&startTime); err != nil {
		return fmt.Errorf("failed to get start_time for run %s: %w", runID, err)
	}
	durationMs := endTime.Sub(startTime.Time).Milliseconds()

	updateQuery := rebind(fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_items_compared = ?, percent_match = ? WHERE run_id = ?`,
		quotedTableName), hs.backend)
	if _, err := hs.db.Exec(updateQuery, formatTime(endTime, hs.backend), durationMs, totalItems, percentMatch, runID); err != nil {
		return fmt.Errorf("failed to update comparison run: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.db == nil {
		return status, nil
	}

	runsTable := quoteTableName(comparisonRunsTable, hs.backend)

	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runsTable)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var lastRun timeScanner
		lastRunQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY start_time DESC, run_id DESC LIMIT 1", runsTable)
		if err := hs.db.QueryRow(lastRunQuery).Scan(&status.LastRunID, &lastRun); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunTime = lastRun.Time

		var oldestRun timeScanner
		oldestRunQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY start_time ASC, run_id ASC LIMIT 1", runsTable)
		if err := hs.db.QueryRow(oldestRunQuery).Scan(&oldestRun); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldestRun.Time

		itemsQuery := fmt.Sprintf("SELECT COALESCE(SUM(total_items_compared), 0) FROM %s", runsTable)
		if err := hs.db.QueryRow(itemsQuery).Scan(&status.TotalItemsCompared); err != nil {
			return status, fmt.Errorf("failed to get total items compared: %w", err)
		}
	}

	for _, table := range historyTables {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))
		if err := hs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves all comparison runs from the store, oldest first.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.ComparisonRunRecord, error) {
	if hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, start_time, end_time, run_duration_ms, total_items_compared, percent_match, config_params
		FROM %s ORDER BY start_time, run_id`, quoteTableName(comparisonRunsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query comparison runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ComparisonRunRecord
	for rows.Next() {
		var record schema.ComparisonRunRecord
		var startTime, endTime timeScanner
		if err := rows.Scan(&record.RunID, &startTime, &endTime, &record.RunDurationMs,
			&record.TotalItemsCompared, &record.PercentMatch, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan comparison run: %w", err)
		}
		record.StartTime = startTime.Time
		record.EndTime = endTime.Ptr()
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comparison runs: %w", err)
	}
	return results, nil
}

// GetAllItemResults retrieves all item results from the store in insertion order.
func (hs *HistoryStoreImpl) GetAllItemResults() ([]schema.ItemResultRecord, error) {
	if hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, team_project, source_name, target_name, item_type, item_name,
		status, percent_match, parts_total, parts_equal, recorded_at
		FROM %s ORDER BY id`, quoteTableName(itemResultsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query item results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ItemResultRecord
	for rows.Next() {
		var record schema.ItemResultRecord
		var recordedAt timeScanner
		if err := rows.Scan(&record.RunID, &record.TeamProject, &record.SourceName, &record.TargetName,
			&record.ItemType, &record.ItemName, &record.Status, &record.PercentMatch,
			&record.PartsTotal, &record.PartsEqual, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item result: %w", err)
		}
		record.RecordedAt = recordedAt.Time
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item results: %w", err)
	}
	return results, nil
}
