package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/huangsam/witdiff/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetColorLabel(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{"full match", 1.0, schema.IdenticalValue},
		{"exactly close", 0.9, schema.CloseValue},
		{"just before close", 0.89, schema.PartialValue},
		{"exactly partial", 0.5, schema.PartialValue},
		{"no match", 0.0, schema.DivergentValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetColorLabel(tt.input))
		})
	}
}

func TestGetColorStatus(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	for _, status := range []schema.ComparisonStatus{schema.AreEqual, schema.AreDifferent, schema.ExistsOnlyInSource, schema.ExistsOnlyInTarget} {
		assert.Equal(t, string(status), GetColorStatus(status))
	}
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path is stdout", func(t *testing.T) {
		f, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, f)
	})

	t.Run("creates file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.json")
		f, err := SelectOutputFile(path)
		require.NoError(t, err)
		defer func() { _ = f.Close() }()
		assert.FileExists(t, path)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := SelectOutputFile(filepath.Join(t.TempDir(), "missing", "out.json"))
		assert.Error(t, err)
	})
}

func TestDBFilePaths(t *testing.T) {
	cachePath := GetCacheDBFilePath()
	historyPath := GetHistoryDBFilePath()
	assert.True(t, strings.HasSuffix(cachePath, ".witdiff_cache.db"))
	assert.True(t, strings.HasSuffix(historyPath, ".witdiff_history.db"))
	assert.NotEqual(t, cachePath, historyPath)
}

func TestTruncateName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		expected string
	}{
		{"fits", "Bug", 10, "Bug"},
		{"exact width", "Product Backlog Item", 20, "Product Backlog Item"},
		{"truncated", "Product Backlog Item", 10, "Product..."},
		{"width too small", "Product Backlog Item", 3, "Product Backlog Item"},
		{"multibyte runes", "Tâche de développement", 8, "Tâche..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateName(tt.input, tt.maxWidth))
		})
	}
}

func TestParseBoolString(t *testing.T) {
	tests := []struct {
		input       string
		expected    bool
		expectError bool
	}{
		{"yes", true, false},
		{"TRUE", true, false},
		{"1", true, false},
		{"No", false, false},
		{"false", false, false},
		{"0", false, false},
		{"", false, true},
		{"on", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBoolString(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
