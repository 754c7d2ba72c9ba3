package outwriter

import (
	"fmt"
	"strings"

	"github.com/huangsam/witdiff/internal/contract"
	"github.com/huangsam/witdiff/schema"
)

// headerIcon returns the emoji prefix for a header line, or nothing when emojis are off.
func headerIcon(cfg *contract.Config, icon string) string {
	if !cfg.UseEmojis {
		return ""
	}
	return icon + " "
}

// LogCompareHeader prints a concise, 2-line header for a direct comparison.
func LogCompareHeader(cfg *contract.Config) {
	// Line 1: The server version that drives normalization
	fmt.Printf("%sTFS: %s\n", headerIcon(cfg, "🔎"), cfg.TfsVersion.Effective())

	// Line 2: The configurations being compared
	fmt.Printf("%sComparing: %s ↔ %s (%s ↔ %s)\n", headerIcon(cfg, "📊"),
		cfg.SourceName, cfg.TargetName,
		strings.Join(cfg.SourcePaths, ","), strings.Join(cfg.TargetPaths, ","))
}

// LogProjectsHeader prints a header for a manifest-driven batch comparison.
func LogProjectsHeader(cfg *contract.Config, version schema.TfsMajorVersion, numSources, numProjects int) {
	fmt.Printf("%sManifest: %s (TFS: %s)\n", headerIcon(cfg, "🔎"), cfg.InputPath, version.Effective())
	fmt.Printf("%sComparing: %d team project(s) against %d source(s) with %d worker(s)\n",
		headerIcon(cfg, "📊"), numProjects, numSources, cfg.Workers)
}
