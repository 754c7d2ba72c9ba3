package cmd

import (
	"errors"

	"github.com/huangsam/witdiff/core"
	"github.com/huangsam/witdiff/internal/contract"
	"github.com/spf13/cobra"
)

// runExecutor runs the given function against the validated config and exits on failure.
func runExecutor(msg string, executeFunc core.ExecutorFunc) {
	if err := executeFunc(rootCtx, cfg, cacheManager); err != nil {
		contract.LogFatal(msg, err)
	}
}

// compareCmd compares one source configuration against one target configuration.
var compareCmd = &cobra.Command{
	Use:   "compare --source <path>... --target <path>...",
	Short: "Compare a source configuration with a target configuration.",
	Long: `Compare a source configuration, usually a process template, with a target
configuration, usually the export of a team project.

Both sides accept XML files and directories. Directories are searched
recursively for work item types, categories, and process configuration.
Every item is normalized before comparison, so reordered elements, attribute
order, whitespace, and version-specific defaults do not count as drift.

The comparison reports, per item:
- Whether it exists on both sides
- Whether the normalized documents are equal
- A weighted match percentage computed from its parts

Examples:
  # Compare a template with an exported project
  witdiff compare --source templates/Agile --target exports/Fabrikam

  # Compare specific files on TFS 2013 and keep the normalized XML
  witdiff compare --source Bug.xml --target exported/Bug.xml --tfs-version 2013 --dump-dir ./normalized

  # Fail the build when the project drifts below 90%
  witdiff compare --source templates/Agile --target exports/Fabrikam --min-match 0.9`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if !cfg.CompareMode {
			contract.LogFatal("Cannot run comparison", errors.New("--source and --target must be provided"))
		}
		runExecutor("Cannot run comparison", core.ExecuteCompare)
	},
}
