package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/witdiff/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = 1
	MaxPrecision     = 3
	DefaultMinMatch  = 0.0
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for a comparison.
// This struct remains the "final, validated" config.
type Config struct {
	TfsVersion schema.TfsMajorVersion
	InputPath  string // Positional argument: manifest for projects, XML file for normalize
	Workers    int
	Detail     bool
	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	ShowParts  bool
	DumpDir    string
	MinMatch   float64

	CompareMode bool
	SourcePaths []string
	TargetPaths []string
	SourceName  string
	TargetName  string

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	TfsVersion       string  `mapstructure:"tfs-version"`
	OutputFile       string  `mapstructure:"output-file"`
	Workers          int     `mapstructure:"workers"`
	Precision        int     `mapstructure:"precision"`
	Output           string  `mapstructure:"output"`
	Detail           bool    `mapstructure:"detail"`
	Width            int     `mapstructure:"width"`
	CacheBackend     string  `mapstructure:"cache-backend"`
	CacheDBConnect   string  `mapstructure:"cache-db-connect"`
	HistoryBackend   string  `mapstructure:"history-backend"`
	HistoryDBConnect string  `mapstructure:"history-db-connect"`
	Emoji            string  `mapstructure:"emoji"`
	Color            string  `mapstructure:"color"`
	DumpDir          string  `mapstructure:"dump-dir"`
	MinMatch         float64 `mapstructure:"min-match"`

	// --- Fields from compareCmd.Flags() ---
	Source     []string `mapstructure:"source"`
	Target     []string `mapstructure:"target"`
	SourceName string   `mapstructure:"source-name"`
	TargetName string   `mapstructure:"target-name"`

	// --- Fields from normalizeCmd.Flags() ---
	Parts bool `mapstructure:"parts"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.SourcePaths = slices.Clone(c.SourcePaths)
	clone.TargetPaths = slices.Clone(c.TargetPaths)
	return &clone
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processTfsVersion(cfg, input); err != nil {
		return err
	}
	if err := processCompareMode(cfg, input); err != nil {
		return err
	}
	return resolveInputPath(cfg, input)
}

// RevalidateTfsVersion overrides the server version of a cloned config.
// An empty value keeps the current version.
func RevalidateTfsVersion(cfg *Config, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return processTfsVersion(cfg, &ConfigRawInput{TfsVersion: raw})
}

// RevalidateCompare re-checks the comparison fields of a cloned config after
// they were set outside of flag parsing, such as by an MCP tool call.
func RevalidateCompare(cfg *Config) error {
	input := &ConfigRawInput{
		Source:     cfg.SourcePaths,
		Target:     cfg.TargetPaths,
		SourceName: cfg.SourceName,
		TargetName: cfg.TargetName,
	}
	if err := processCompareMode(cfg, input); err != nil {
		return err
	}
	if !cfg.CompareMode {
		return fmt.Errorf("must specify --source and --target")
	}
	return nil
}

// RevalidateInputPath replaces the positional input path of a cloned config.
func RevalidateInputPath(cfg *Config, p string) error {
	if strings.TrimSpace(p) == "" {
		return fmt.Errorf("an input path is required")
	}
	return resolveInputPath(cfg, &ConfigRawInput{InputPathStr: p})
}

// ProcessProfilingConfig enables profiling when a file prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	profilePrefix = strings.TrimSpace(profilePrefix)
	if profilePrefix == "" {
		return nil
	}
	if dir := filepath.Dir(profilePrefix); dir != "." {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return fmt.Errorf("profile directory %s does not exist", dir)
		}
	}
	profile.Enabled = true
	profile.Prefix = profilePrefix
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("history-db-connect: %w", err)
	}

	// The cache may be cleared by deleting its file, so it cannot share one with history
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		historyPath := cfg.HistoryDBConnect
		if historyPath == "" {
			historyPath = GetHistoryDBFilePath()
		}
		if cachePath == historyPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Detail = input.Detail
	cfg.Width = input.Width
	cfg.ShowParts = input.Parts
	cfg.DumpDir = strings.TrimSpace(input.DumpDir)

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 2. Precision and Output Validation ---
	if input.Precision < 0 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", input.Output)
	}

	// --- 3. Match Threshold Validation ---
	if input.MinMatch < 0 || input.MinMatch > 1 {
		return fmt.Errorf("min-match must be between 0.0 and 1.0 (received %.2f)", input.MinMatch)
	}
	cfg.MinMatch = input.MinMatch

	// --- 4. Backend Validation ---
	return validateBackendConfigs(cfg, input)
}

// processTfsVersion parses the server version. An empty value means the newest known release.
func processTfsVersion(cfg *Config, input *ConfigRawInput) error {
	if strings.TrimSpace(input.TfsVersion) == "" {
		cfg.TfsVersion = schema.TfsUnknown
		return nil
	}
	version, err := schema.ParseTfsMajorVersion(input.TfsVersion)
	if err != nil {
		return fmt.Errorf("invalid --tfs-version: %w", err)
	}
	cfg.TfsVersion = version
	return nil
}

// processCompareMode handles the source and target paths of a direct comparison.
func processCompareMode(cfg *Config, input *ConfigRawInput) error {
	cfg.SourcePaths = cleanPaths(input.Source)
	cfg.TargetPaths = cleanPaths(input.Target)
	cfg.SourceName = strings.TrimSpace(input.SourceName)
	cfg.TargetName = strings.TrimSpace(input.TargetName)

	if len(cfg.SourcePaths) == 0 && len(cfg.TargetPaths) == 0 {
		cfg.CompareMode = false
		return nil
	}
	cfg.CompareMode = true

	if len(cfg.SourcePaths) == 0 {
		return fmt.Errorf("must specify --source when --target is given")
	}
	if len(cfg.TargetPaths) == 0 {
		return fmt.Errorf("must specify --target when --source is given")
	}
	if cfg.SourceName == "" {
		cfg.SourceName = defaultConfigurationName(cfg.SourcePaths, "source")
	}
	if cfg.TargetName == "" {
		cfg.TargetName = defaultConfigurationName(cfg.TargetPaths, "target")
	}
	return nil
}

// resolveInputPath makes the positional argument absolute when one was given.
func resolveInputPath(cfg *Config, input *ConfigRawInput) error {
	p := strings.TrimSpace(input.InputPathStr)
	if p == "" {
		cfg.InputPath = ""
		return nil
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return err
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("input path %s: %w", p, err)
	}
	cfg.InputPath = abs
	return nil
}

// cleanPaths splits comma-joined entries and drops blanks.
func cleanPaths(raw []string) []string {
	var out []string
	for _, r := range raw {
		out = append(out, schema.SplitList(r)...)
	}
	return out
}

// defaultConfigurationName names a configuration after its only path, or the
// given fallback when several paths make it up.
func defaultConfigurationName(paths []string, fallback string) string {
	if len(paths) != 1 {
		return fallback
	}
	base := filepath.Base(filepath.Clean(paths[0]))
	if base == "." || base == string(filepath.Separator) {
		return fallback
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
