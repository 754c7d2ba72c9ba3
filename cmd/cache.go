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

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	connStr := viper.GetString("cache-db-connect")

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// No history tracking for cache commands
	if err := iocache.InitStores(backend, connStr, "", ""); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr

	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheDBFilePath returns the SQLite file backing the cache.
func cacheDBFilePath() string {
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.CacheDBConnect != "" {
		return cfg.CacheDBConnect
	}
	return contract.GetCacheDBFilePath()
}

// cacheCmd focused on cache management.
//
// Note: Cache subcommands use minimal initialization (cacheSetup) instead of
// the full sharedSetup used by comparison commands. This avoids validating
// inputs that cache operations never read.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the normalized XML cache (improves performance)",
	Long: `Manage the cache of normalized XML that speeds up repeated comparisons.

Witdiff keys every normalized document by a hash of its item type, TFS
version, and raw content. Unchanged template files are normalized only once.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached data

Examples:
  # Check cache status
  witdiff cache status

  # Clear cache after upgrading witdiff
  witdiff cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached normalized XML",
	Long: `Delete all cached normalized XML from the configured backend.

Use this when:
- Normalization rules changed in a new witdiff release
- Cache may be stale or corrupted
- Testing performance without cache

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table

Examples:
  # Clear SQLite cache (default)
  witdiff cache clear

  # Clear MySQL cache (set connection string via env variable)
  WITDIFF_CACHE_BACKEND=mysql WITDIFF_CACHE_DB_CONNECT="..." witdiff cache clear`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearCache(cfg.CacheBackend, cacheDBFilePath(), cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the normalized XML cache.

Displays:
- Backend type and connection status
- Total number of cached entries
- Last and oldest cache entry timestamps
- Cache database size

Examples:
  # Check cache status
  witdiff cache status`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetNormalizedStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}
