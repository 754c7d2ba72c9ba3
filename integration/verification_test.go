//go:build basic

package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/witdiff/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCompareVerification runs witdiff compare and checks the JSON result against the fixtures.
func TestCompareVerification(t *testing.T) {
	home := t.TempDir()
	templateDir, exportDir := writeFixtures(t, home)
	outFile := filepath.Join(home, "result.json")

	_, err := runWitdiffCommand(t, home, "compare",
		"--source", templateDir, "--target", exportDir,
		"--cache-backend", "none", "--output", "json", "--output-file", outFile)
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var result schema.ConfigurationComparisonResult
	require.NoError(t, json.Unmarshal(data, &result))

	assert.Equal(t, "Agile", result.Source.Name)
	assert.Equal(t, "Fabrikam", result.Target.Name)
	require.Len(t, result.Items, 2)

	statuses := map[string]schema.ComparisonStatus{}
	for _, item := range result.Items {
		statuses[item.ItemName] = item.Status
		assert.Empty(t, item.NormalizedSourceXML, "XML is stripped without --detail")
	}
	assert.Equal(t, schema.AreEqual, statuses["Bug"])
	assert.Equal(t, schema.ExistsOnlyInSource, statuses["Task"])
	assert.InDelta(t, 0.5, result.PercentMatch, 1e-9)
}

// TestNormalizeVerification checks that reordered files normalize to the same text.
func TestNormalizeVerification(t *testing.T) {
	home := t.TempDir()
	templateDir, exportDir := writeFixtures(t, home)

	normalize := func(path string) string {
		out := filepath.Join(home, filepath.Base(filepath.Dir(path))+".xml")
		_, err := runWitdiffCommand(t, home, "normalize", path, "--cache-backend", "none", "--output-file", out)
		require.NoError(t, err)
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		return string(data)
	}

	source := normalize(filepath.Join(templateDir, "Bug.xml"))
	target := normalize(filepath.Join(exportDir, "Bug.xml"))
	assert.NotEmpty(t, source)
	assert.Equal(t, source, target)
}

// TestMinMatchGate checks that a comparison below --min-match exits non-zero.
func TestMinMatchGate(t *testing.T) {
	home := t.TempDir()
	templateDir, exportDir := writeFixtures(t, home)

	output, err := runWitdiffCommand(t, home, "compare",
		"--source", templateDir, "--target", exportDir,
		"--cache-backend", "none", "--min-match", "0.9")
	require.Error(t, err)
	assert.Contains(t, output, "match below threshold")
}

// TestCacheAndHistoryOnSQLite runs the persistence commands against default SQLite files.
func TestCacheAndHistoryOnSQLite(t *testing.T) {
	home := t.TempDir()
	templateDir, exportDir := writeFixtures(t, home)

	_, err := runWitdiffCommand(t, home, "compare", "--source", templateDir, "--target", exportDir, "--history-backend", "sqlite")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(home, ".witdiff_cache.db"))
	assert.FileExists(t, filepath.Join(home, ".witdiff_history.db"))

	output, err := runWitdiffCommand(t, home, "history", "status", "--history-backend", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, output, "Total Runs: 1")

	prefix := filepath.Join(home, "drift")
	_, err = runWitdiffCommand(t, home, "history", "export", "--history-backend", "sqlite", "--output-file", prefix)
	require.NoError(t, err)
	assert.FileExists(t, prefix+".comparison_runs.parquet")
	assert.FileExists(t, prefix+".item_results.parquet")

	output, err = runWitdiffCommand(t, home, "cache", "status")
	require.NoError(t, err)
	assert.True(t, strings.Contains(output, "Cache Backend: sqlite"), output)

	_, err = runWitdiffCommand(t, home, "cache", "clear")
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(home, ".witdiff_cache.db"))
}

func TestVersion(t *testing.T) {
	output, err := runWitdiffCommand(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, output, "witdiff CLI")
}
