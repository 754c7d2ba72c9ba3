package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/witdiff/schema"
)

// Color variables for console output.
var (
	IdenticalColor = color.New(color.FgGreen, color.Bold) // IdenticalColor marks a full match.
	CloseColor     = color.New(color.FgCyan)              // CloseColor marks small drift.
	PartialColor   = color.New(color.FgYellow)            // PartialColor marks a caution-level match.
	DivergentColor = color.New(color.FgRed, color.Bold)   // DivergentColor marks a configuration far from its source.
)

// GetColorLabel returns a colored text label for console output (table).
// It uses schema.GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(percentMatch float64) string {
	text := schema.GetPlainLabel(percentMatch)

	switch text {
	case schema.IdenticalValue:
		return IdenticalColor.Sprint(text)
	case schema.CloseValue:
		return CloseColor.Sprint(text)
	case schema.PartialValue:
		return PartialColor.Sprint(text)
	default:
		return DivergentColor.Sprint(text)
	}
}

// GetColorStatus returns a colored comparison status for console output.
func GetColorStatus(status schema.ComparisonStatus) string {
	text := string(status)
	switch status {
	case schema.AreEqual:
		return IdenticalColor.Sprint(text)
	case schema.AreDifferent:
		return PartialColor.Sprint(text)
	default:
		return DivergentColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for normalized XML caching.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".witdiff_cache.db"
	}
	return filepath.Join(homeDir, ".witdiff_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for comparison history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".witdiff_history.db"
	}
	return filepath.Join(homeDir, ".witdiff_history.db")
}

// TruncateName truncates a display name to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so the ellipsis leaves room for content.
func TruncateName(name string, maxWidth int) string {
	runes := []rune(name)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return name
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
