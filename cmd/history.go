package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/witdiff/internal/contract"
	"github.com/huangsam/witdiff/internal/iocache"
	"github.com/huangsam/witdiff/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyBackendFromConfig reads the history backend, treating an empty value as NoneBackend.
func historyBackendFromConfig() (schema.DatabaseBackend, string, error) {
	backend := schema.NoneBackend
	if backendStr := viper.GetString("history-backend"); backendStr != "" {
		backend = schema.DatabaseBackend(backendStr)
	}
	connStr := viper.GetString("history-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// historySetup loads minimal configuration needed for history operations.
func historySetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, connStr, err := historyBackendFromConfig()
	if err != nil {
		return err
	}

	// No normalized XML cache for history commands
	if err := iocache.InitStores(schema.NoneBackend, "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")

	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetup loads configuration for migrations without opening the
// stores, so that migrations can run on a fresh database.
func historyMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, connStr, err := historyBackendFromConfig()
	if err != nil {
		return err
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetHistoryDBFilePath()
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr

	return nil
}

// historyMigrateSetupWrapper wraps historyMigrateSetup to provide PreRunE for migrate command.
func historyMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return historyMigrateSetup()
}

// historyDBFilePath returns the SQLite file backing the history store.
func historyDBFilePath() string {
	if cfg.HistoryBackend == schema.SQLiteBackend && cfg.HistoryDBConnect != "" {
		return cfg.HistoryDBConnect
	}
	return contract.GetHistoryDBFilePath()
}

// historyCmd focused on comparison history management.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage comparison history tracking and exports",
	Long: `Manage the comparison history used for drift tracking and reporting.

When enabled, witdiff records every comparison run, storing:
- Run metadata (timestamp, configuration, duration, overall match)
- Per-item status and match percentage for every compared team project

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show history tracking statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  # Track history in the default SQLite file
  WITDIFF_HISTORY_BACKEND=sqlite witdiff projects manifest.yaml

  # Export for analysis in pandas/DuckDB
  witdiff history export --history-backend sqlite --output-file drift`,
}

// historyClearCmd clears the history data.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all comparison history",
	Long: `Delete all stored comparison runs and item results.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  witdiff history export --output-file backup
  witdiff history clear`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearHistory(cfg.HistoryBackend, historyDBFilePath(), cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
	},
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display history tracking statistics and connection details",
	Long: `Show detailed information about comparison history tracking.

Displays:
- Backend type and connection status
- Total number of comparison runs stored
- Last and oldest run timestamps
- Total items compared across all runs
- Database table sizes

Examples:
  # Check history tracking status
  witdiff history status`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetHistoryStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(os.Stdout, status)
	},
}

// historyExportCmd exports history data to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export comparison history to Parquet for BI tools and analytics",
	Long: `Export all stored comparison history to Parquet format.

Writes two files next to the given prefix:
- <prefix>.comparison_runs.parquet - metadata about each comparison run
- <prefix>.item_results.parquet    - status and match of every compared item

Requires: --output-file parameter

Examples:
  # Export all data
  witdiff history export --output-file drift

  # Use with DuckDB for analysis
  duckdb -c "SELECT team_project, avg(percent_match) FROM read_parquet('drift.item_results.parquet') GROUP BY 1"`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteHistoryExport(os.Stdout, iocache.Manager.GetHistoryStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the comparison history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  witdiff history migrate --history-backend sqlite

  # Migrate to specific version
  witdiff history migrate --target-version 1

  # Rollback to initial state
  witdiff history migrate --target-version 0`,
	PreRunE: historyMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, viper.GetInt("target-version")); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
